package manifest

import (
	"regexp"
	"strings"

	"github.com/cachebag/releasekit/internal/release"
)

var (
	pkgverPattern = regexp.MustCompile(`(?m)^pkgver=.*$`)

	// sha256sumsPattern captures the first hash of the sha256sums array; any
	// further entries (signatures, extra sources) are preserved.
	sha256sumsPattern = regexp.MustCompile(`(sha256sums=\(')([^']+)(')`)
)

// SetPKGBUILDVersion rewrites the pkgver assignment and the versioned tag
// references in the source array of a PKGBUILD.
func SetPKGBUILDVersion(content string, rel release.Identity) (string, bool) {
	updated := content

	if loc := pkgverPattern.FindStringIndex(updated); loc != nil {
		updated = updated[:loc[0]] + "pkgver=" + string(rel.Version) + updated[loc[1]:]
	}

	// Historical PKGBUILDs reference the tag as v$pkgver-beta; pin it to the
	// release's actual version tag instead.
	updated = strings.ReplaceAll(updated, "v$pkgver-beta", "v"+rel.VersionTag())
	updated = strings.ReplaceAll(updated, "$pkgname-$pkgver-beta", "${pkgname}-"+rel.VersionTag())

	return updated, updated != content
}

// SetPKGBUILDChecksum replaces the first entry of the sha256sums array with
// the given hash.
func SetPKGBUILDChecksum(content, hash string) (string, bool) {
	m := sha256sumsPattern.FindStringSubmatchIndex(content)
	if m == nil {
		return content, false
	}
	if content[m[4]:m[5]] == hash {
		return content, false
	}
	return content[:m[4]] + hash + content[m[5]:], true
}
