// Package extract contains the identifier extraction helpers used by the
// scan engine: activity IDs from post URNs and handles from profile links.
package extract

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	postIDRe   = regexp.MustCompile(`activity[:-](\d+)`)
	usernameRe = regexp.MustCompile(`/(?:in|company)/([^/?]+)`)
	spaceRe    = regexp.MustCompile(`\s+`)
)

// PostID extracts the numeric activity ID from a post URN or permalink.
// Both "urn:li:activity:123" and ".../activity-123/" forms are accepted.
// Returns the ID and true, or "" and false when the value carries none.
func PostID(s string) (string, bool) {
	m := postIDRe.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Username extracts the handle from a profile or company page link,
// stopping at the next path segment or query string.
func Username(link string) (string, bool) {
	m := usernameRe.FindStringSubmatch(link)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// NormalizeHandle lowercases a handle, percent-decodes it and collapses
// whitespace runs into single hyphens so display names compare equal to
// their URL slugs.
func NormalizeHandle(handle string) string {
	if decoded, err := url.QueryUnescape(handle); err == nil {
		handle = decoded
	}
	handle = strings.TrimSpace(strings.ToLower(handle))
	return spaceRe.ReplaceAllString(handle, "-")
}

// SlugToName converts a handle slug back into a comparable display form,
// replacing hyphens with spaces.
func SlugToName(slug string) string {
	return strings.ReplaceAll(strings.ToLower(slug), "-", " ")
}

// TextContains reports whether the element text mentions the handle.
// The comparison is case sensitive on the text side, matching how the
// fallback text scan has always behaved.
func TextContains(text, handle string) bool {
	return strings.Contains(text, handle)
}
