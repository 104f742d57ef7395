package manifest

import (
	"regexp"

	"github.com/cachebag/releasekit/internal/release"
)

var cargoVersionPattern = regexp.MustCompile(`(?m)^version\s*=\s*"[^"]*"`)

// SetCargoVersion rewrites the package version in a Cargo.toml. Only the
// first `version = "..."` line is touched so dependency tables declaring
// their own version keys are left alone. Returns the new content and
// whether anything changed.
func SetCargoVersion(content string, version release.Version) (string, bool) {
	loc := cargoVersionPattern.FindStringIndex(content)
	if loc == nil {
		return content, false
	}
	replacement := `version = "` + string(version) + `"`
	if content[loc[0]:loc[1]] == replacement {
		return content, false
	}
	return content[:loc[0]] + replacement + content[loc[1]:], true
}
