// Package textclean normalizes raw text extracted from manuscript files.
package textclean

import (
	"regexp"
	"strings"
)

var (
	// Control characters other than tab, LF, and CR. Those three are
	// whitespace and are folded by the run collapse below; stripping them
	// here instead would glue adjacent words together.
	controlChars   = regexp.MustCompile("[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]")
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// Clean normalizes extracted document text. Control characters are stripped,
// every run of whitespace (spaces, tabs, CR/LF line breaks) collapses to a
// single space, and the result is trimmed. The output never contains control
// characters or consecutive newlines, and Clean(Clean(x)) == Clean(x).
func Clean(text string) string {
	text = controlChars.ReplaceAllString(text, "")
	text = whitespaceRuns.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
