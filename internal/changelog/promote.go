package changelog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cachebag/releasekit/internal/release"
)

// EmptyBodyPlaceholder is substituted when the Unreleased section has no
// content at promotion time. Empty releases are allowed but flagged for
// human review rather than rejected.
const EmptyBodyPlaceholder = "(No changes documented)"

// MissingSectionError reports that a required section is absent. Promotion
// cannot proceed without it.
type MissingSectionError struct {
	Label string
}

func (e *MissingSectionError) Error() string {
	return fmt.Sprintf("changelog has no [%s] section", e.Label)
}

// MissingLinkError reports that the link table lacks a required entry.
// There is deliberately no fallback tag: a changelog without an Unreleased
// comparison link is malformed and must be fixed by hand.
type MissingLinkError struct {
	Label string
}

func (e *MissingLinkError) Error() string {
	return fmt.Sprintf("changelog link table has no [%s] entry", e.Label)
}

// ErrNoPriorRelease is returned by PriorTag when the link table contains no
// release comparison entry to derive the previous tag from.
var ErrNoPriorRelease = errors.New("changelog link table has no release comparison entry")

// Promote cuts the Unreleased section out of the document, re-labels it with
// the release's label and today's date, opens a fresh empty Unreleased
// section above it, and rewrites the link table so comparison links stay
// consistent. priorTag is the git tag of the previous release and becomes
// the lower bound of the new release's comparison link.
//
// The document is transformed in memory; the caller persists it. Promoting
// twice without editing Unreleased in between mints a second, placeholder
// release section: the precondition that Unreleased has accumulated content
// is the caller's to maintain.
func Promote(doc *Document, rel release.Identity, priorTag string) error {
	return PromoteAt(doc, rel, priorTag, time.Now())
}

// PromoteAt is Promote with an explicit promotion date.
func PromoteAt(doc *Document, rel release.Identity, priorTag string, date time.Time) error {
	idx := -1
	for i, s := range doc.Sections {
		if s.IsUnreleased() {
			if idx >= 0 {
				return fmt.Errorf("changelog has multiple [%s] sections", UnreleasedLabel)
			}
			idx = i
		}
	}
	if idx < 0 {
		return &MissingSectionError{Label: UnreleasedLabel}
	}

	body := strings.TrimSpace(doc.Sections[idx].Body)
	if body == "" {
		body = EmptyBodyPlaceholder
	}

	promoted := Section{
		Label: rel.Label(),
		Date:  date.Format("2006-01-02"),
		Body:  body,
	}

	sections := make([]Section, 0, len(doc.Sections)+1)
	sections = append(sections, doc.Sections[:idx]...)
	sections = append(sections, Section{Label: UnreleasedLabel}, promoted)
	sections = append(sections, doc.Sections[idx+1:]...)
	doc.Sections = sections

	return rewriteLinks(doc, rel, priorTag)
}

// rewriteLinks points the Unreleased comparison at the new tag and inserts
// the new release's entry immediately above it.
func rewriteLinks(doc *Document, rel release.Identity, priorTag string) error {
	idx := -1
	for i, l := range doc.Links {
		if strings.EqualFold(l.Label, UnreleasedLabel) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return &MissingLinkError{Label: UnreleasedLabel}
	}

	base, ok := compareBase(doc.Links[idx].URL)
	if !ok {
		return fmt.Errorf("unreleased link %q is not a comparison URL", doc.Links[idx].URL)
	}

	doc.Links[idx].URL = fmt.Sprintf("%s/compare/%s...HEAD", base, rel.GitTag())

	entry := Link{
		Label: rel.Label(),
		URL:   fmt.Sprintf("%s/compare/%s...%s", base, priorTag, rel.GitTag()),
	}
	links := make([]Link, 0, len(doc.Links)+1)
	links = append(links, doc.Links[:idx]...)
	links = append(links, entry)
	links = append(links, doc.Links[idx:]...)
	doc.Links = links

	return nil
}

// PriorTag derives the previous release's git tag from the link table: the
// first non-Unreleased comparison link in document order is the most
// recently added release, and its upper bound is that release's tag. Table
// order is the source of truth, not semantic version comparison.
func PriorTag(doc *Document) (string, error) {
	for _, l := range doc.Links {
		if strings.EqualFold(l.Label, UnreleasedLabel) {
			continue
		}
		if _, to, ok := compareRange(l.URL); ok {
			return to, nil
		}
	}
	return "", ErrNoPriorRelease
}

// compareBase returns the URL prefix before the /compare/ segment.
func compareBase(url string) (string, bool) {
	i := strings.Index(url, "/compare/")
	if i < 0 {
		return "", false
	}
	return url[:i], true
}

// compareRange splits a comparison URL into its lower and upper bound tags.
func compareRange(url string) (from, to string, ok bool) {
	i := strings.Index(url, "/compare/")
	if i < 0 {
		return "", "", false
	}
	rest := url[i+len("/compare/"):]
	from, to, found := strings.Cut(rest, "...")
	if !found || from == "" || to == "" {
		return "", "", false
	}
	return from, to, true
}
