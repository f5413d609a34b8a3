// Package validation checks user-supplied URLs and shortcodes.
package validation

import (
	"net/url"
	"regexp"
	"strings"
)

// MaxShortcodeLength is the longest shortcode accepted from clients or produced by the generator.
const MaxShortcodeLength = 20

var (
	shortcodePattern  = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	disallowedPattern = regexp.MustCompile(`[^A-Za-z0-9_-]`)
)

// IsValidURL reports whether s is an absolute URL with both scheme and host.
func IsValidURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// IsValidShortcode reports whether s is 1..MaxShortcodeLength characters of [A-Za-z0-9_-].
func IsValidShortcode(s string) bool {
	if s == "" || len(s) > MaxShortcodeLength {
		return false
	}
	return shortcodePattern.MatchString(s)
}

// SanitizeShortcode trims whitespace and drops every character outside the shortcode alphabet.
// Only custom codes go through it.
func SanitizeShortcode(s string) string {
	return disallowedPattern.ReplaceAllString(strings.TrimSpace(s), "")
}
