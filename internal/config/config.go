// Package config provides hierarchical configuration management for
// releasekit using koanf. Configuration is loaded with priority:
// environment variables > project config (.releasekit/config.yml) > user
// config (XDG config dir) > defaults. A local .env file, if present, is
// loaded into the environment before the env provider runs.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// envPrefix is the prefix for environment variable overrides,
// e.g. RELEASEKIT_REPO_URL -> repo_url.
const envPrefix = "RELEASEKIT_"

// CrateConfig describes one releasable crate of the project.
type CrateConfig struct {
	// CargoToml is the crate's manifest path relative to the project root.
	CargoToml string `koanf:"cargo_toml" validate:"required"`
	// TagPrefix overrides the built-in git tag prefix rules for this crate.
	// Empty means use the defaults (gui-v for nmrs-gui, nmrs-v for nmrs).
	TagPrefix string `koanf:"tag_prefix"`
}

// Configuration holds the releasekit settings.
type Configuration struct {
	// RepoURL is the project repository, used for tarball downloads.
	RepoURL string `koanf:"repo_url" validate:"required,url"`

	// Changelog is the changelog path relative to the project root.
	Changelog string `koanf:"changelog" validate:"required"`

	// PKGBuild and PackageNix are packaging manifest paths relative to the
	// project root. A missing file is skipped with a warning, so projects
	// without AUR or nix packaging can leave these at their defaults.
	PKGBuild   string `koanf:"pkgbuild"`
	PackageNix string `koanf:"package_nix"`

	// NixEntry is the nix entry file used to recover the cargoHash.
	NixEntry string `koanf:"nix_entry"`

	// NixTimeout bounds the nix-build attempt, in seconds.
	NixTimeout int `koanf:"nix_timeout" validate:"min=0,max=3600"`

	// TarballTemplate is the release tarball URL with a {tag} placeholder.
	TarballTemplate string `koanf:"tarball_template" validate:"required"`

	// Crates maps crate names to their per-crate settings.
	Crates map[string]CrateConfig `koanf:"crates"`
}

// TarballURL expands the tarball template for the given tag.
func (c *Configuration) TarballURL(tag string) string {
	return strings.ReplaceAll(c.TarballTemplate, "{tag}", tag)
}

// Crate looks up a crate's settings by name.
func (c *Configuration) Crate(name string) (CrateConfig, bool) {
	crate, ok := c.Crates[name]
	return crate, ok
}

// CrateNames returns the configured crate names, sorted.
func (c *Configuration) CrateNames() []string {
	names := make([]string, 0, len(c.Crates))
	for name := range c.Crates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadOptions configures how configuration is loaded.
type LoadOptions struct {
	// ProjectConfigPath overrides the project config path
	// (default: .releasekit/config.yml).
	ProjectConfigPath string
	// SkipUserConfig suppresses loading the user-level config file.
	SkipUserConfig bool
	// SkipDotenv suppresses loading a local .env file.
	SkipDotenv bool
}

// Load loads configuration from user, project, and environment sources.
// Priority: environment variables > project config > user config > defaults.
func Load(projectConfigPath string) (*Configuration, error) {
	return LoadWithOptions(LoadOptions{ProjectConfigPath: projectConfigPath})
}

// LoadWithOptions loads configuration with custom options.
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")

	for key, value := range GetDefaults() {
		_ = k.Set(key, value)
	}

	if !opts.SkipUserConfig {
		if userPath, err := UserConfigPath(); err == nil {
			if err := loadYAMLConfig(k, userPath, "user"); err != nil {
				return nil, err
			}
		}
	}

	projectPath := opts.ProjectConfigPath
	if projectPath == "" {
		projectPath = ProjectConfigPath()
	}
	if err := loadYAMLConfig(k, projectPath, "project"); err != nil {
		return nil, err
	}

	// CI environments keep overrides in a .env next to the project config.
	if !opts.SkipDotenv {
		_ = godotenv.Load()
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("loading environment config: %w", err)
	}

	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := ValidateConfigValues(&cfg, projectPath); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadYAMLConfig validates and loads a YAML config file. A missing file is
// not an error; defaults apply.
func loadYAMLConfig(k *koanf.Koanf, path, configType string) error {
	if !fileExists(path) {
		return nil
	}
	if err := ValidateYAMLSyntax(path); err != nil {
		return fmt.Errorf("validating YAML syntax for %s config: %w", configType, err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("loading %s config %s: %w", configType, path, err)
	}
	return nil
}

// fileExists returns true if the file exists and is readable.
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// envTransform converts environment variable names to config keys.
// Example: RELEASEKIT_REPO_URL -> repo_url.
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, envPrefix))
}
