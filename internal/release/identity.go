// Package release models the identity of a single release: a semantic
// version paired with a release channel, plus the version-label and git-tag
// formatting rules shared by the changelog promoter, the release-note
// extractor, and the manifest rewrites.
package release

import (
	"fmt"
	"regexp"
)

// Channel is the release maturity tier. It affects version-label suffixing
// (beta releases carry a "-beta" suffix, stable releases do not) and the
// git tag prefix.
type Channel string

const (
	Beta   Channel = "beta"
	Stable Channel = "stable"
)

// ValidationError reports a malformed version string or an unrecognized
// channel. It is fatal: callers must not mutate any file after receiving one.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.Field, e.Value, e.Message)
}

var versionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// Version is a validated bare semantic version (X.Y.Z, no prefix or suffix).
type Version string

// ParseVersion validates a version string.
// Only the bare X.Y.Z form is accepted; prerelease and build metadata are
// carried by the channel, not the version itself.
func ParseVersion(s string) (Version, error) {
	if !versionPattern.MatchString(s) {
		return "", &ValidationError{
			Field:   "version",
			Value:   s,
			Message: "expected X.Y.Z (e.g. 0.3.0)",
		}
	}
	return Version(s), nil
}

// ParseChannel validates a channel name.
func ParseChannel(s string) (Channel, error) {
	switch Channel(s) {
	case Beta, Stable:
		return Channel(s), nil
	default:
		return "", &ValidationError{
			Field:   "channel",
			Value:   s,
			Message: "expected 'beta' or 'stable'",
		}
	}
}

// Identity identifies one release: version, channel, and the git tag prefix
// for the crate being released. Constructed once per invocation and never
// mutated.
type Identity struct {
	Version   Version
	Channel   Channel
	TagPrefix string
}

// NewIdentity parses and validates the caller-supplied version and channel
// strings, resolving the git tag prefix for the given crate (which may be
// empty). A non-empty prefixOverride takes precedence over the built-in
// crate rules.
func NewIdentity(version, channel, crate, prefixOverride string) (Identity, error) {
	v, err := ParseVersion(version)
	if err != nil {
		return Identity{}, err
	}
	ch, err := ParseChannel(channel)
	if err != nil {
		return Identity{}, err
	}
	prefix := prefixOverride
	if prefix == "" {
		prefix = TagPrefix(crate, ch)
	}
	return Identity{Version: v, Channel: ch, TagPrefix: prefix}, nil
}

// Label returns the changelog label for this release: the bare version for
// stable releases, "{version}-{channel}" otherwise.
func (id Identity) Label() string {
	if id.Channel == Stable {
		return string(id.Version)
	}
	return fmt.Sprintf("%s-%s", id.Version, id.Channel)
}

// VersionTag is the version portion of the git tag. It is identical to
// Label; both names exist because the changelog and the tagging scheme
// arrived at the same format independently.
func (id Identity) VersionTag() string {
	return id.Label()
}

// GitTag returns the full git tag for this release.
func (id Identity) GitTag() string {
	return id.TagPrefix + id.VersionTag()
}

// TagPrefix resolves the git tag prefix for a crate and channel.
//
// GUI releases use gui-v* tags. nmrs releases use nmrs-v* tags. When no
// crate is given, stable releases default to the nmrs-v prefix while beta
// releases keep the legacy bare v prefix.
func TagPrefix(crate string, ch Channel) string {
	switch crate {
	case "nmrs-gui":
		return "gui-v"
	case "nmrs":
		return "nmrs-v"
	case "":
		if ch == Stable {
			return "nmrs-v"
		}
		return "v"
	default:
		// Unknown crates fall back to "<crate>-v", keeping tags unambiguous
		// if a new crate is added before this table is updated.
		return crate + "-v"
	}
}
