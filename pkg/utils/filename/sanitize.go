// Package filename provides utilities for turning arbitrary strings into
// names that are safe on disk and inside archives.
package filename

import (
	"regexp"
	"strings"
)

// unsafeRe matches path separators, whitespace, and characters rejected by a
// filesystem on at least one major platform.
var unsafeRe = regexp.MustCompile(`[<>:"/\\|?*\s\x00-\x1f]`)

// runsRe collapses the dash runs left behind by the replacements.
var runsRe = regexp.MustCompile(`[-_]{2,}`)

// maxLen bounds sanitized names so a long tweet title cannot produce a path
// over the filesystem limit once a directory prefix is added.
const maxLen = 120

// Sanitize converts an arbitrary string into a single safe path element. The
// result contains only alphanumerics, dashes, underscores, and interior dots;
// it never starts with a dot, so it cannot address a directory or hide itself
// on extraction. Unsalvageable input yields the empty string.
func Sanitize(name string) string {
	s := strings.TrimSpace(name)
	if s == "" {
		return ""
	}

	s = unsafeRe.ReplaceAllString(s, "-")
	s = runsRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-.")

	if len(s) > maxLen {
		s = strings.TrimRight(s[:maxLen], "-.")
	}

	return s
}
