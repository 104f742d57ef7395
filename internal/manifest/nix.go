package manifest

import (
	"regexp"

	"github.com/cachebag/releasekit/internal/release"
)

var (
	nixVersionPattern   = regexp.MustCompile(`version\s*=\s*"[^"]*";`)
	nixCargoHashPattern = regexp.MustCompile(`cargoHash\s*=\s*"[^"]*";`)
)

// SetNixVersion rewrites the version field in a package.nix.
func SetNixVersion(content string, rel release.Identity) (string, bool) {
	replacement := `version = "` + rel.VersionTag() + `";`
	return replaceFirst(content, nixVersionPattern, replacement)
}

// SetCargoHash rewrites the cargoHash field in a package.nix.
func SetCargoHash(content, hash string) (string, bool) {
	return replaceFirst(content, nixCargoHashPattern, `cargoHash = "`+hash+`";`)
}

// ClearCargoHash empties the cargoHash field. A build attempted against the
// empty hash fails with the corrected hash in its error output, which is how
// the hash is recovered.
func ClearCargoHash(content string) (string, bool) {
	return SetCargoHash(content, "")
}

func replaceFirst(content string, pattern *regexp.Regexp, replacement string) (string, bool) {
	loc := pattern.FindStringIndex(content)
	if loc == nil {
		return content, false
	}
	if content[loc[0]:loc[1]] == replacement {
		return content, false
	}
	return content[:loc[0]] + replacement + content[loc[1]:], true
}
