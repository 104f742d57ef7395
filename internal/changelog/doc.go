// Package changelog parses, transforms, and serializes a Keep a Changelog
// style CHANGELOG.md. The document is parsed into a typed, ordered list of
// sections plus a trailing table of comparison links; all edits (promoting
// the Unreleased section, inserting link entries) are structural operations
// on the parsed form, which is then serialized back to Markdown and written
// out as a whole.
package changelog
