package vault

import (
	"regexp"
	"strings"
)

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// Slugify lowercases name and collapses every run of characters outside
// [a-z0-9] into a single hyphen. The result may be empty.
func Slugify(name string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	return strings.Trim(slug, "-")
}

// TagNameSlug is the slug given to tags created while resolving a prompt's
// tag names: lowercased, with each whitespace run replaced by a hyphen.
// Other characters are kept, so "C++", "C#" and "日本語" stay distinct.
func TagNameSlug(name string) string {
	return whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}
