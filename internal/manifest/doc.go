// Package manifest edits version and checksum fields in build manifests:
// Cargo.toml, PKGBUILD, and package.nix. Each edit is a pure single-pass
// rewrite over the file content; reading and writing the files is the
// caller's job so the edits stay trivially testable.
package manifest
