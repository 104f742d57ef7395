package changelog

import "fmt"

// UnreleasedLabel is the literal header label of the mutable working section.
// Section matching is case-sensitive; link-table matching is not, because
// historical changelogs wrote the link label as "[unreleased]".
const UnreleasedLabel = "Unreleased"

// Document is an ordered changelog: a preamble (the "# Changelog" heading
// and its introduction), version sections newest-first, and a trailing table
// of comparison links. Sections are never re-sorted; edits only ever splice
// around the Unreleased section's position.
type Document struct {
	Preamble string
	Sections []Section
	Links    []Link
}

// Section is one `## [<label>]` region. Date is empty for the Unreleased
// section and YYYY-MM-DD for released versions. Body holds the section text
// with leading and trailing blank lines removed.
type Section struct {
	Label string
	Date  string
	Body  string
}

// Header renders the section's `## [...]` header line.
func (s Section) Header() string {
	if s.Date == "" {
		return fmt.Sprintf("## [%s]", s.Label)
	}
	return fmt.Sprintf("## [%s] - %s", s.Label, s.Date)
}

// IsUnreleased reports whether this is the mutable working section.
func (s Section) IsUnreleased() bool {
	return s.Label == UnreleasedLabel
}

// Link is one reference-style link `[<label>]: <url>` from the trailing
// table, mapping a version label (or "Unreleased") to a comparison URL.
type Link struct {
	Label string
	URL   string
}

// Section returns the first section with the given label, or nil.
func (d *Document) Section(label string) *Section {
	for i := range d.Sections {
		if d.Sections[i].Label == label {
			return &d.Sections[i]
		}
	}
	return nil
}

// Labels returns the section labels in document order.
func (d *Document) Labels() []string {
	labels := make([]string, len(d.Sections))
	for i, s := range d.Sections {
		labels[i] = s.Label
	}
	return labels
}
