package changelog

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	// sectionHeaderPattern matches `## [<label>]` with an optional ` - <date>`.
	sectionHeaderPattern = regexp.MustCompile(`^## \[([^\]]+)\](?:\s*-\s*(\S.*?))?\s*$`)

	// linkPattern matches a reference-style link line `[<label>]: <url>`.
	linkPattern = regexp.MustCompile(`^\[([^\]]+)\]:\s*(\S+)\s*$`)
)

// Load reads and parses a changelog file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading changelog: %w", err)
	}
	return Parse(string(data))
}

// Save serializes the document and overwrites the file at path. The whole
// content is replaced in one write; there is no partial persistence.
func Save(path string, doc *Document) error {
	if err := os.WriteFile(path, []byte(doc.String()), 0o644); err != nil {
		return fmt.Errorf("writing changelog: %w", err)
	}
	return nil
}

// Parse splits raw Markdown into preamble, sections, and the trailing link
// table. Everything before the first `## [` header is preamble; the link
// table is the contiguous run of `[label]: url` lines (and blanks) at the
// end of the document.
func Parse(content string) (*Document, error) {
	lines := strings.Split(content, "\n")

	bodyEnd, links := splitLinkTable(lines)
	doc := &Document{Links: links}

	var (
		current  *Section
		buf      []string
		preamble []string
	)

	flush := func() {
		if current == nil {
			preamble = buf
		} else {
			current.Body = trimBlankEdges(buf)
			doc.Sections = append(doc.Sections, *current)
		}
		buf = nil
	}

	for _, line := range lines[:bodyEnd] {
		if m := sectionHeaderPattern.FindStringSubmatch(line); m != nil {
			flush()
			current = &Section{Label: m[1], Date: strings.TrimSpace(m[2])}
			continue
		}
		buf = append(buf, line)
	}
	flush()

	doc.Preamble = trimBlankEdges(preamble)
	return doc, nil
}

// splitLinkTable finds where the trailing link table begins. It returns the
// index of the first link-table line and the parsed links in document order.
func splitLinkTable(lines []string) (int, []Link) {
	start := len(lines)
	for start > 0 {
		line := lines[start-1]
		if strings.TrimSpace(line) == "" || linkPattern.MatchString(line) {
			start--
			continue
		}
		break
	}

	var links []Link
	for _, line := range lines[start:] {
		if m := linkPattern.FindStringSubmatch(line); m != nil {
			links = append(links, Link{Label: m[1], URL: m[2]})
		}
	}
	return start, links
}

// trimBlankEdges joins lines and strips leading/trailing blank lines while
// preserving interior structure.
func trimBlankEdges(lines []string) string {
	return strings.Trim(strings.Join(lines, "\n"), "\n \t")
}

// String serializes the document back to Markdown in canonical form: one
// blank line between regions, link table last, trailing newline.
func (d *Document) String() string {
	var b strings.Builder

	if d.Preamble != "" {
		b.WriteString(d.Preamble)
		b.WriteString("\n")
	}

	for _, s := range d.Sections {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(s.Header())
		b.WriteString("\n")
		if s.Body != "" {
			b.WriteString("\n")
			b.WriteString(s.Body)
			b.WriteString("\n")
		}
	}

	if len(d.Links) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		for _, l := range d.Links {
			fmt.Fprintf(&b, "[%s]: %s\n", l.Label, l.URL)
		}
	}

	return b.String()
}
