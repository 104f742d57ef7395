package changelog

import (
	"fmt"
	"strings"

	"github.com/cachebag/releasekit/internal/release"
)

// notFoundBody is the placeholder note body when no matching section exists.
// Extraction is a deliberate soft failure so release pipelines can proceed
// and surface an empty note for human review instead of aborting.
const notFoundBody = "No release notes found."

// Note is a standalone release note extracted from the changelog.
type Note struct {
	Title string
	Body  string
}

// Found reports whether the note was extracted from a real section rather
// than synthesized as a not-found placeholder.
func (n Note) Found() bool {
	return n.Body != notFoundBody
}

// Markdown renders the note as a Markdown document.
func (n Note) Markdown() string {
	return fmt.Sprintf("# %s\n\n%s\n", n.Title, n.Body)
}

// ExtractNotes locates the section for the given release and returns its
// body as a standalone note. The expected label is built with the same
// version/channel formatting rule the promoter uses, and matching is exact:
// a channel mismatch will not find the section. The document is not
// modified.
func ExtractNotes(doc *Document, rel release.Identity) Note {
	label := rel.Label()
	title := "Release " + label

	s := doc.Section(label)
	if s == nil {
		return Note{Title: title, Body: notFoundBody}
	}
	return Note{Title: title, Body: strings.TrimSpace(s.Body)}
}
