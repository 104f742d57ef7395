// Package bump orchestrates a version bump across the project's release
// surfaces: crate manifests, packaging files, and the changelog. Every file
// gets its own Result so a failure in one surface never masks the state of
// the others.
package bump

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cachebag/releasekit/internal/artifact"
	"github.com/cachebag/releasekit/internal/changelog"
	"github.com/cachebag/releasekit/internal/config"
	"github.com/cachebag/releasekit/internal/manifest"
	"github.com/cachebag/releasekit/internal/release"
)

// Result records the outcome for a single file.
type Result struct {
	// File is the path relative to the project root.
	File string
	// Changed reports whether the file was rewritten.
	Changed bool
	// Err is the failure for this file, if any.
	Err error
	// Warnings are non-fatal notes, e.g. a skipped optional file.
	Warnings []string
}

func (r *Result) warnf(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Failed reports whether any result carries an error.
func Failed(results []Result) bool {
	for _, r := range results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

// Runner performs a version bump. Zero-value collaborators are not usable;
// construct with all fields set.
type Runner struct {
	// Root is the project root directory. Configured paths resolve
	// relative to it.
	Root string
	// Config is the loaded project configuration.
	Config *config.Configuration
	// Release identifies the version, channel, and tag scheme being cut.
	Release release.Identity
	// Crate names the crate whose Cargo.toml is bumped. Empty means a
	// repo-level release with no crate manifest to touch.
	Crate string
	// PriorTag is the previous release's git tag, used for the changelog
	// comparison link.
	PriorTag string
	// ChecksumsOnly recomputes the PKGBUILD checksum and nix cargoHash
	// without touching versions or the changelog.
	ChecksumsOnly bool
	// Hasher fetches and hashes the release tarball.
	Hasher artifact.HashProvider
	// Resolver recovers the vendored cargoHash via a nix build attempt.
	Resolver artifact.BuildHashResolver
}

// packagingCrate is the crate whose releases drive the AUR and nix
// packaging. PKGBUILD and package.nix describe the nmrs binary only, so
// releases of other crates must leave them alone.
const packagingCrate = "nmrs"

// Run executes the bump and returns one Result per file, in a stable order:
// crate manifests, changelog, then PKGBUILD and package.nix when the release
// is for the packaging crate (or no crate). Callers inspect the results with
// Failed to decide the exit status.
func (r *Runner) Run(ctx context.Context) []Result {
	var results []Result

	if !r.ChecksumsOnly {
		results = append(results, r.bumpCargo()...)
		results = append(results, r.promoteChangelog())
	}

	if r.packagingApplies() {
		results = append(results, r.bumpPKGBUILD(ctx))
		results = append(results, r.bumpNix(ctx))
	}

	return results
}

// packagingApplies reports whether this release may touch the packaging
// files. Crate-less releases cover the whole repository, so they qualify.
func (r *Runner) packagingApplies() bool {
	return r.Crate == "" || r.Crate == packagingCrate
}

// bumpCargo rewrites crate manifest versions. A named crate must be
// configured and its manifest present. With no crate named, every configured
// crate's manifest is bumped, matching the legacy repo-wide releases.
func (r *Runner) bumpCargo() []Result {
	crates := []string{r.Crate}
	if r.Crate == "" {
		crates = r.Config.CrateNames()
	}

	var results []Result
	for _, name := range crates {
		crate, ok := r.Config.Crate(name)
		if !ok {
			results = append(results, Result{
				File: name,
				Err:  fmt.Errorf("crate %q is not configured", name),
			})
			continue
		}
		results = append(results, r.bumpCargoManifest(crate.CargoToml))
	}
	return results
}

// bumpCargoManifest rewrites one Cargo.toml. A missing manifest is an
// error: the crate is configured, so its absence means a wrong root.
func (r *Runner) bumpCargoManifest(relPath string) Result {
	res := Result{File: relPath}
	path := filepath.Join(r.Root, relPath)

	content, err := os.ReadFile(path)
	if err != nil {
		res.Err = fmt.Errorf("reading %s: %w", relPath, err)
		return res
	}

	updated, changed := manifest.SetCargoVersion(string(content), r.Release.Version)
	if !changed {
		return res
	}
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		res.Err = fmt.Errorf("writing %s: %w", relPath, err)
		return res
	}
	res.Changed = true
	return res
}

// promoteChangelog cuts the Unreleased section into the release. A missing
// changelog is an error: releases without notes are not cut.
func (r *Runner) promoteChangelog() Result {
	res := Result{File: r.Config.Changelog}
	path := filepath.Join(r.Root, r.Config.Changelog)

	doc, err := changelog.Load(path)
	if err != nil {
		res.Err = fmt.Errorf("reading %s: %w", r.Config.Changelog, err)
		return res
	}

	priorTag := r.PriorTag
	if priorTag == "" {
		priorTag, err = changelog.PriorTag(doc)
		if err != nil {
			res.Err = fmt.Errorf("resolving prior tag: %w", err)
			return res
		}
	}

	if err := changelog.Promote(doc, r.Release, priorTag); err != nil {
		res.Err = err
		return res
	}

	promoted := doc.Section(r.Release.Label())
	if promoted != nil && promoted.Body == changelog.EmptyBodyPlaceholder {
		res.warnf("Unreleased section was empty; release notes are a placeholder")
	}

	if err := changelog.Save(path, doc); err != nil {
		res.Err = fmt.Errorf("writing %s: %w", r.Config.Changelog, err)
		return res
	}
	res.Changed = true
	return res
}

// bumpPKGBUILD rewrites pkgver and the tarball checksum. The file is
// optional packaging surface: absence is a warning, not a failure.
func (r *Runner) bumpPKGBUILD(ctx context.Context) Result {
	res := Result{File: r.Config.PKGBuild}
	path := filepath.Join(r.Root, r.Config.PKGBuild)

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			res.warnf("%s not found; skipped", r.Config.PKGBuild)
			return res
		}
		res.Err = fmt.Errorf("reading %s: %w", r.Config.PKGBuild, err)
		return res
	}

	updated := string(content)
	if !r.ChecksumsOnly {
		updated, _ = manifest.SetPKGBUILDVersion(updated, r.Release)
	}

	url := r.Config.TarballURL(r.Release.GitTag())
	sum, err := r.Hasher.Hash(ctx, url)
	switch {
	case errors.Is(err, artifact.ErrNotFound):
		res.warnf("release tarball not published yet (%s); checksum left unchanged", url)
	case err != nil:
		res.Err = fmt.Errorf("hashing release tarball: %w", err)
		return res
	default:
		updated, _ = manifest.SetPKGBUILDChecksum(updated, sum)
	}

	if updated == string(content) {
		return res
	}
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		res.Err = fmt.Errorf("writing %s: %w", r.Config.PKGBuild, err)
		return res
	}
	res.Changed = true
	return res
}

// bumpNix rewrites the package.nix version and recovers the cargoHash. Like
// the PKGBUILD, the file is optional. The hash is recovered by clearing it
// and reading the corrected value out of the failed build; when no nix is
// available the hash stays cleared and the result carries a warning so it
// can be filled in by hand.
func (r *Runner) bumpNix(ctx context.Context) Result {
	res := Result{File: r.Config.PackageNix}
	path := filepath.Join(r.Root, r.Config.PackageNix)

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			res.warnf("%s not found; skipped", r.Config.PackageNix)
			return res
		}
		res.Err = fmt.Errorf("reading %s: %w", r.Config.PackageNix, err)
		return res
	}

	updated := string(content)
	if !r.ChecksumsOnly {
		updated, _ = manifest.SetNixVersion(updated, r.Release)
	}
	updated, _ = manifest.ClearCargoHash(updated)

	// The build attempt reads the file from disk, so the cleared hash must
	// be persisted before resolving.
	if updated != string(content) {
		if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
			res.Err = fmt.Errorf("writing %s: %w", r.Config.PackageNix, err)
			return res
		}
		res.Changed = true
	}

	hash, err := r.Resolver.Resolve(ctx, r.Root)
	if err != nil {
		if errors.Is(err, artifact.ErrUnavailable) {
			res.warnf("could not recover cargoHash (%v); fill it in manually", err)
			return res
		}
		res.Err = fmt.Errorf("recovering cargoHash: %w", err)
		return res
	}

	final, changed := manifest.SetCargoHash(updated, hash)
	if !changed {
		return res
	}
	if err := os.WriteFile(path, []byte(final), 0o644); err != nil {
		res.Err = fmt.Errorf("writing %s: %w", r.Config.PackageNix, err)
		return res
	}
	res.Changed = true
	return res
}
