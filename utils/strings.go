package utils

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TitleCase normalizes a section name to title case ("club events" -> "Club Events").
// A Caser carries state between calls, so each call gets its own.
func TitleCase(s string) string {
	return cases.Title(language.English).String(strings.TrimSpace(s))
}
