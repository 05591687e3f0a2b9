package utils

import (
	"regexp"
	"strings"
)

var (
	// Characters invalid in filenames on most filesystems
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	// Whitespace runs to turn into a single separator
	whitespaceRuns = regexp.MustCompile(`\s+`)
	// Repeated separators left over after stripping
	hyphenRuns = regexp.MustCompile(`-+`)
)

// Slugify turns a display title into a filename stem: lowercased, with
// whitespace runs replaced by single hyphens and filesystem-invalid
// characters removed. An input with nothing usable yields "".
func Slugify(s string) string {
	s = invalidFilenameChars.ReplaceAllString(s, "")
	s = strings.ToLower(strings.TrimSpace(s))
	s = whitespaceRuns.ReplaceAllString(s, "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	// Leave room for a date suffix and extension.
	if len(s) > 200 {
		s = strings.Trim(s[:200], "-")
	}
	return s
}
