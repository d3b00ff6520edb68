package display

import (
	"strings"

	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const DefaultWidth = 80

// Wrap word-wraps text to DefaultWidth, preserving ANSI escape sequences.
func Wrap(text string) string {
	return WrapTo(text, DefaultWidth)
}

// WrapTo word-wraps text to width. A width below 1 leaves text unchanged.
func WrapTo(text string, width int) string {
	if width < 1 {
		return text
	}
	return wordwrap.String(text, width)
}

// Label turns a wire name such as "under_attack" into "Under Attack".
func Label(s string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(s, "_", " "))
}

// Banner marks a line the user should not miss.
func Banner(msg string) string {
	return "! " + msg
}
