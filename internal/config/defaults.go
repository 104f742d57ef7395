package config

// GetDefaultConfigTemplate returns a fully commented config template that
// documents all available options.
func GetDefaultConfigTemplate() string {
	return `# releasekit configuration

# Project repository (tarball downloads derive from this)
repo_url: https://github.com/cachebag/nmrs

# Changelog path relative to the project root
changelog: CHANGELOG.md

# Packaging manifests (skipped with a warning when absent)
pkgbuild: PKGBUILD
package_nix: package.nix

# Nix entry file and build timeout used to recover the cargoHash
nix_entry: default.nix
nix_timeout: 300                      # Seconds; 0 = no limit

# Release tarball URL; {tag} is replaced with the versioned tag (e.g. v0.3.0-beta)
tarball_template: https://github.com/cachebag/nmrs/archive/{tag}.tar.gz

# Releasable crates
crates:
  nmrs:
    cargo_toml: nmrs/Cargo.toml
    tag_prefix: ""                    # Empty = built-in rules (nmrs-v)
  nmrs-gui:
    cargo_toml: nmrs-gui/Cargo.toml
    tag_prefix: ""                    # Empty = built-in rules (gui-v)
`
}

// GetDefaults returns the default configuration values. They mirror the
// layout of the nmrs repository this tooling grew up in.
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"repo_url":         "https://github.com/cachebag/nmrs",
		"changelog":        "CHANGELOG.md",
		"pkgbuild":         "PKGBUILD",
		"package_nix":      "package.nix",
		"nix_entry":        "default.nix",
		"nix_timeout":      300,
		"tarball_template": "https://github.com/cachebag/nmrs/archive/{tag}.tar.gz",
		"crates": map[string]interface{}{
			"nmrs": map[string]interface{}{
				"cargo_toml": "nmrs/Cargo.toml",
				"tag_prefix": "",
			},
			"nmrs-gui": map[string]interface{}{
				"cargo_toml": "nmrs-gui/Cargo.toml",
				"tag_prefix": "",
			},
		},
	}
}
