package extract

import "testing"

func TestPostID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"colon separator", "urn:li:activity:7123456789", "7123456789", true},
		{"hyphen separator", "https://example.com/feed/update/urn:li:activity-7123456789/", "7123456789", true},
		{"embedded in data attribute", "urn:li:aggregate:(urn:li:activity:999888777)", "999888777", true},
		{"no activity present", "no-match-here", "", false},
		{"activity without digits", "urn:li:activity:", "", false},
		{"empty string", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PostID(tt.input)
			if got != tt.want || ok != tt.ok {
				t.Errorf("PostID(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestUsername(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"profile link", "https://example.com/in/jane-doe/", "jane-doe", true},
		{"profile link with query", "https://example.com/in/jane-doe?trk=feed", "jane-doe", true},
		{"company link", "https://example.com/company/acme", "acme", true},
		{"relative link", "/in/jane-doe/recent-activity/", "jane-doe", true},
		{"not a profile link", "https://example.com/feed/update/urn:li:activity:1", "", false},
		{"empty string", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Username(tt.input)
			if got != tt.want || ok != tt.ok {
				t.Errorf("Username(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestNormalizeHandle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "jane-doe", "jane-doe"},
		{"uppercase", "Jane-Doe", "jane-doe"},
		{"spaces to hyphens", "Jane Doe", "jane-doe"},
		{"percent encoded", "jane%20doe", "jane-doe"},
		{"surrounding whitespace", "  jane doe  ", "jane-doe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeHandle(tt.input); got != tt.want {
				t.Errorf("NormalizeHandle(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSlugToName(t *testing.T) {
	if got := SlugToName("Jane-Doe"); got != "jane doe" {
		t.Errorf("SlugToName(\"Jane-Doe\") = %q, want %q", got, "jane doe")
	}
}

func TestTextContains(t *testing.T) {
	if !TextContains("Shared by jane-doe yesterday", "jane-doe") {
		t.Error("TextContains should match an exact substring")
	}
	// The fallback scan is case sensitive on the text side.
	if TextContains("Shared by Jane-Doe yesterday", "jane-doe") {
		t.Error("TextContains should not match across case differences")
	}
}
