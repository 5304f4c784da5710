package mqtt

import "testing"

func TestTopicMatch(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		topic   string
		want    bool
	}{
		{"exact match", "vigia/events/abc", "vigia/events/abc", true},
		{"exact mismatch", "vigia/events/abc", "vigia/events/def", false},
		{"single level wildcard", "vigia/events/+", "vigia/events/abc", true},
		{"single level wildcard wrong depth", "vigia/events/+", "vigia/events/abc/extra", false},
		{"multi level wildcard", "vigia/#", "vigia/events/abc/extra", true},
		{"multi level wildcard zero levels", "vigia/#", "vigia", true},
		{"wildcard in the middle", "vigia/+/abc", "vigia/events/abc", true},
		{"pattern longer than topic", "vigia/events/abc", "vigia/events", false},
		{"topic longer than pattern", "vigia/events", "vigia/events/abc", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := topicMatch(tt.pattern, tt.topic); got != tt.want {
				t.Errorf("topicMatch(%q, %q) = %v, want %v", tt.pattern, tt.topic, got, tt.want)
			}
		})
	}
}
