package bump

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cachebag/releasekit/internal/artifact"
	"github.com/cachebag/releasekit/internal/config"
	"github.com/cachebag/releasekit/internal/release"
)

const testCargoToml = `[package]
name = "nmrs"
version = "0.2.0"
edition = "2021"

[dependencies]
serde = { version = "1.0", features = ["derive"] }
`

const testChangelog = `# Changelog

## [Unreleased]

### Added
- Session restore on startup.

## [0.2.0-beta] - 2024-05-01

### Fixed
- Crash on empty spectra.

[Unreleased]: https://github.com/cachebag/nmrs/compare/v0.2.0-beta...HEAD
[0.2.0-beta]: https://github.com/cachebag/nmrs/compare/v0.1.0...v0.2.0-beta
`

const testPKGBUILD = `pkgname=nmrs
pkgver=0.2.0
pkgrel=1
source=("$pkgname-$pkgver-beta.tar.gz::https://github.com/cachebag/nmrs/archive/v$pkgver-beta.tar.gz")
sha256sums=('0000000000000000000000000000000000000000000000000000000000000000')
`

const testPackageNix = `rustPlatform.buildRustPackage rec {
  pname = "nmrs";
  version = "0.2.0-beta";
  cargoHash = "sha256-oldoldoldoldoldoldoldoldoldoldoldoldoldolds=";
}
`

const testGuiCargoToml = `[package]
name = "nmrs-gui"
version = "0.2.0"
edition = "2021"
`

type stubHasher struct {
	hash string
	err  error
	urls []string
}

func (s *stubHasher) Hash(_ context.Context, url string) (string, error) {
	s.urls = append(s.urls, url)
	if s.err != nil {
		return "", s.err
	}
	return s.hash, nil
}

type stubResolver struct {
	hash  string
	err   error
	calls int
}

func (s *stubResolver) Resolve(_ context.Context, _ string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.hash, nil
}

func projectRoot(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func allFiles() map[string]string {
	return map[string]string{
		"Cargo.toml":   testCargoToml,
		"CHANGELOG.md": testChangelog,
		"PKGBUILD":     testPKGBUILD,
		"package.nix":  testPackageNix,
	}
}

func testConfig() *config.Configuration {
	return &config.Configuration{
		RepoURL:         "https://github.com/cachebag/nmrs",
		Changelog:       "CHANGELOG.md",
		PKGBuild:        "PKGBUILD",
		PackageNix:      "package.nix",
		TarballTemplate: "https://github.com/cachebag/nmrs/archive/{tag}.tar.gz",
		Crates: map[string]config.CrateConfig{
			"nmrs":     {CargoToml: "Cargo.toml"},
			"nmrs-gui": {CargoToml: "gui/Cargo.toml"},
		},
	}
}

func testRelease(t *testing.T, version, channel, crate string) release.Identity {
	t.Helper()
	rel, err := release.NewIdentity(version, channel, crate, "")
	require.NoError(t, err)
	return rel
}

func readFile(t *testing.T, root, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, name))
	require.NoError(t, err)
	return string(data)
}

func resultFor(t *testing.T, results []Result, file string) Result {
	t.Helper()
	for _, r := range results {
		if r.File == file {
			return r
		}
	}
	t.Fatalf("no result for %s in %+v", file, results)
	return Result{}
}

func TestRunFullBump(t *testing.T) {
	root := projectRoot(t, allFiles())
	hasher := &stubHasher{hash: "1111111111111111111111111111111111111111111111111111111111111111"}
	resolver := &stubResolver{hash: "sha256-newnewnewnewnewnewnewnewnewnewnewnewnewnews="}

	runner := &Runner{
		Root:     root,
		Config:   testConfig(),
		Release:  testRelease(t, "0.3.0", "beta", "nmrs"),
		Crate:    "nmrs",
		PriorTag: "v0.2.0-beta",
		Hasher:   hasher,
		Resolver: resolver,
	}

	results := runner.Run(context.Background())
	require.Len(t, results, 4)
	require.False(t, Failed(results))
	for _, res := range results {
		assert.NoError(t, res.Err, res.File)
		assert.True(t, res.Changed, res.File)
	}

	cargo := readFile(t, root, "Cargo.toml")
	assert.Contains(t, cargo, `version = "0.3.0"`)
	assert.Contains(t, cargo, `serde = { version = "1.0"`, "dependency versions must be untouched")

	cl := readFile(t, root, "CHANGELOG.md")
	assert.Contains(t, cl, "## [0.3.0-beta] - ")
	assert.Contains(t, cl, "- Session restore on startup.")
	assert.Contains(t, cl, "[Unreleased]: https://github.com/cachebag/nmrs/compare/nmrs-v0.3.0-beta...HEAD")
	assert.Contains(t, cl, "[0.3.0-beta]: https://github.com/cachebag/nmrs/compare/v0.2.0-beta...nmrs-v0.3.0-beta")

	pkgbuild := readFile(t, root, "PKGBUILD")
	assert.Contains(t, pkgbuild, "pkgver=0.3.0\n")
	assert.Contains(t, pkgbuild, "v0.3.0-beta.tar.gz")
	assert.Contains(t, pkgbuild, "sha256sums=('"+hasher.hash+"')")

	nix := readFile(t, root, "package.nix")
	assert.Contains(t, nix, `version = "0.3.0-beta";`)
	assert.Contains(t, nix, `cargoHash = "`+resolver.hash+`";`)

	require.Len(t, hasher.urls, 1)
	assert.Equal(t, "https://github.com/cachebag/nmrs/archive/nmrs-v0.3.0-beta.tar.gz", hasher.urls[0])
	assert.Equal(t, 1, resolver.calls)
}

func TestRunDerivesPriorTagFromLinkTable(t *testing.T) {
	root := projectRoot(t, allFiles())
	runner := &Runner{
		Root:     root,
		Config:   testConfig(),
		Release:  testRelease(t, "0.3.0", "beta", "nmrs"),
		Crate:    "nmrs",
		Hasher:   &stubHasher{hash: "abc"},
		Resolver: &stubResolver{hash: "sha256-x"},
	}

	results := runner.Run(context.Background())
	require.False(t, Failed(results))

	cl := readFile(t, root, "CHANGELOG.md")
	assert.Contains(t, cl, "compare/v0.2.0-beta...nmrs-v0.3.0-beta")
}

func TestRunGuiCrateLeavesPackagingAlone(t *testing.T) {
	files := allFiles()
	files["gui/Cargo.toml"] = testGuiCargoToml
	root := projectRoot(t, files)
	hasher := &stubHasher{hash: "abc"}
	resolver := &stubResolver{hash: "sha256-x"}

	runner := &Runner{
		Root:     root,
		Config:   testConfig(),
		Release:  testRelease(t, "1.2.0", "beta", "nmrs-gui"),
		Crate:    "nmrs-gui",
		PriorTag: "gui-v1.1.0",
		Hasher:   hasher,
		Resolver: resolver,
	}

	results := runner.Run(context.Background())
	require.Len(t, results, 2)
	require.False(t, Failed(results))

	gui := readFile(t, root, "gui/Cargo.toml")
	assert.Contains(t, gui, `version = "1.2.0"`)
	assert.Contains(t, readFile(t, root, "CHANGELOG.md"), "## [1.2.0-beta]")

	// The packaging files describe the nmrs binary; a GUI release must not
	// rewrite them with its own version or tarball checksum.
	assert.Equal(t, testPKGBUILD, readFile(t, root, "PKGBUILD"))
	assert.Equal(t, testPackageNix, readFile(t, root, "package.nix"))
	assert.Empty(t, hasher.urls)
	assert.Equal(t, 0, resolver.calls)
}

func TestRunChecksumsOnlyGuiCrate(t *testing.T) {
	root := projectRoot(t, allFiles())
	hasher := &stubHasher{hash: "abc"}
	resolver := &stubResolver{hash: "sha256-x"}

	runner := &Runner{
		Root:          root,
		Config:        testConfig(),
		Release:       testRelease(t, "1.2.0", "beta", "nmrs-gui"),
		Crate:         "nmrs-gui",
		ChecksumsOnly: true,
		Hasher:        hasher,
		Resolver:      resolver,
	}

	results := runner.Run(context.Background())
	assert.Empty(t, results)
	assert.Equal(t, testPKGBUILD, readFile(t, root, "PKGBUILD"))
	assert.Equal(t, testPackageNix, readFile(t, root, "package.nix"))
	assert.Empty(t, hasher.urls)
	assert.Equal(t, 0, resolver.calls)
}

func TestRunNoCrateBumpsAllManifests(t *testing.T) {
	files := allFiles()
	files["gui/Cargo.toml"] = testGuiCargoToml
	root := projectRoot(t, files)

	runner := &Runner{
		Root:     root,
		Config:   testConfig(),
		Release:  testRelease(t, "0.3.0", "beta", ""),
		PriorTag: "v0.2.0-beta",
		Hasher:   &stubHasher{hash: "abc"},
		Resolver: &stubResolver{hash: "sha256-x"},
	}

	results := runner.Run(context.Background())
	require.Len(t, results, 5)
	require.False(t, Failed(results))

	assert.True(t, resultFor(t, results, "Cargo.toml").Changed)
	assert.True(t, resultFor(t, results, "gui/Cargo.toml").Changed)
	assert.Contains(t, readFile(t, root, "Cargo.toml"), `version = "0.3.0"`)
	assert.Contains(t, readFile(t, root, "gui/Cargo.toml"), `version = "0.3.0"`)
}

func TestRunChecksumsOnly(t *testing.T) {
	root := projectRoot(t, allFiles())
	hasher := &stubHasher{hash: "2222222222222222222222222222222222222222222222222222222222222222"}
	resolver := &stubResolver{hash: "sha256-freshfreshfreshfreshfreshfreshfreshfreshfrs="}

	runner := &Runner{
		Root:          root,
		Config:        testConfig(),
		Release:       testRelease(t, "0.2.0", "beta", ""),
		ChecksumsOnly: true,
		Hasher:        hasher,
		Resolver:      resolver,
	}

	results := runner.Run(context.Background())
	require.Len(t, results, 2)
	require.False(t, Failed(results))

	assert.Equal(t, testCargoToml, readFile(t, root, "Cargo.toml"))
	assert.Equal(t, testChangelog, readFile(t, root, "CHANGELOG.md"))

	pkgbuild := readFile(t, root, "PKGBUILD")
	assert.Contains(t, pkgbuild, "pkgver=0.2.0\n", "version must be untouched")
	assert.Contains(t, pkgbuild, "sha256sums=('"+hasher.hash+"')")

	nix := readFile(t, root, "package.nix")
	assert.Contains(t, nix, `version = "0.2.0-beta";`, "version must be untouched")
	assert.Contains(t, nix, `cargoHash = "`+resolver.hash+`";`)
}

func TestRunSkipsMissingPackagingFiles(t *testing.T) {
	root := projectRoot(t, map[string]string{
		"Cargo.toml":   testCargoToml,
		"CHANGELOG.md": testChangelog,
	})
	runner := &Runner{
		Root:     root,
		Config:   testConfig(),
		Release:  testRelease(t, "0.3.0", "beta", "nmrs"),
		Crate:    "nmrs",
		PriorTag: "v0.2.0-beta",
		Hasher:   &stubHasher{hash: "abc"},
		Resolver: &stubResolver{hash: "sha256-x"},
	}

	results := runner.Run(context.Background())
	require.False(t, Failed(results))

	pkgbuild := resultFor(t, results, "PKGBUILD")
	assert.False(t, pkgbuild.Changed)
	require.Len(t, pkgbuild.Warnings, 1)
	assert.Contains(t, pkgbuild.Warnings[0], "not found")

	nix := resultFor(t, results, "package.nix")
	assert.False(t, nix.Changed)
	require.Len(t, nix.Warnings, 1)
	assert.Contains(t, nix.Warnings[0], "not found")
}

func TestRunMissingChangelogFails(t *testing.T) {
	files := allFiles()
	delete(files, "CHANGELOG.md")
	root := projectRoot(t, files)

	runner := &Runner{
		Root:     root,
		Config:   testConfig(),
		Release:  testRelease(t, "0.3.0", "beta", "nmrs"),
		Crate:    "nmrs",
		PriorTag: "v0.2.0-beta",
		Hasher:   &stubHasher{hash: "abc"},
		Resolver: &stubResolver{hash: "sha256-x"},
	}

	results := runner.Run(context.Background())
	assert.True(t, Failed(results))
	assert.Error(t, resultFor(t, results, "CHANGELOG.md").Err)
}

func TestRunMissingCargoTomlFails(t *testing.T) {
	files := allFiles()
	delete(files, "Cargo.toml")
	root := projectRoot(t, files)

	runner := &Runner{
		Root:     root,
		Config:   testConfig(),
		Release:  testRelease(t, "0.3.0", "beta", "nmrs"),
		Crate:    "nmrs",
		PriorTag: "v0.2.0-beta",
		Hasher:   &stubHasher{hash: "abc"},
		Resolver: &stubResolver{hash: "sha256-x"},
	}

	results := runner.Run(context.Background())
	assert.True(t, Failed(results))
	assert.Error(t, resultFor(t, results, "Cargo.toml").Err)
}

func TestRunUnknownCrateFails(t *testing.T) {
	root := projectRoot(t, allFiles())
	runner := &Runner{
		Root:     root,
		Config:   testConfig(),
		Release:  testRelease(t, "0.3.0", "beta", "widgets"),
		Crate:    "widgets",
		PriorTag: "v0.2.0-beta",
		Hasher:   &stubHasher{hash: "abc"},
		Resolver: &stubResolver{hash: "sha256-x"},
	}

	results := runner.Run(context.Background())
	assert.True(t, Failed(results))
	assert.ErrorContains(t, resultFor(t, results, "widgets").Err, "not configured")
}

func TestRunUnpublishedTarballWarns(t *testing.T) {
	root := projectRoot(t, allFiles())
	hasher := &stubHasher{err: fmt.Errorf("tarball: %w", artifact.ErrNotFound)}

	runner := &Runner{
		Root:     root,
		Config:   testConfig(),
		Release:  testRelease(t, "0.3.0", "beta", "nmrs"),
		Crate:    "nmrs",
		PriorTag: "v0.2.0-beta",
		Hasher:   hasher,
		Resolver: &stubResolver{hash: "sha256-x"},
	}

	results := runner.Run(context.Background())
	require.False(t, Failed(results))

	res := resultFor(t, results, "PKGBUILD")
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "not published")

	// The version was still bumped, only the checksum stayed.
	pkgbuild := readFile(t, root, "PKGBUILD")
	assert.Contains(t, pkgbuild, "pkgver=0.3.0\n")
	assert.Contains(t, pkgbuild, "sha256sums=('00000000")
}

func TestRunHasherTransportErrorFails(t *testing.T) {
	root := projectRoot(t, allFiles())
	hasher := &stubHasher{err: errors.New("connection reset")}

	runner := &Runner{
		Root:     root,
		Config:   testConfig(),
		Release:  testRelease(t, "0.3.0", "beta", "nmrs"),
		Crate:    "nmrs",
		PriorTag: "v0.2.0-beta",
		Hasher:   hasher,
		Resolver: &stubResolver{hash: "sha256-x"},
	}

	results := runner.Run(context.Background())
	assert.True(t, Failed(results))
	assert.ErrorContains(t, resultFor(t, results, "PKGBUILD").Err, "connection reset")
}

func TestRunResolverUnavailableLeavesHashCleared(t *testing.T) {
	root := projectRoot(t, allFiles())
	resolver := &stubResolver{err: fmt.Errorf("nix-build: %w", artifact.ErrUnavailable)}

	runner := &Runner{
		Root:     root,
		Config:   testConfig(),
		Release:  testRelease(t, "0.3.0", "beta", "nmrs"),
		Crate:    "nmrs",
		PriorTag: "v0.2.0-beta",
		Hasher:   &stubHasher{hash: "abc"},
		Resolver: resolver,
	}

	results := runner.Run(context.Background())
	require.False(t, Failed(results))

	res := resultFor(t, results, "package.nix")
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "manually")

	nix := readFile(t, root, "package.nix")
	assert.Contains(t, nix, `cargoHash = "";`)
	assert.Contains(t, nix, `version = "0.3.0-beta";`)
}
