package models

import (
	"testing"
)

func TestAddBlockedUserRejectsDuplicates(t *testing.T) {
	id := NewIdentity("uuid-1", "agent", "1.2.3.4")

	if err := id.AddBlockedUser("jane-doe", BlockTypeSuspicious); err != nil {
		t.Fatalf("AddBlockedUser() returned error: %v", err)
	}

	if err := id.AddBlockedUser("jane-doe", BlockTypeSuspicious); err != ErrAlreadyBlocked {
		t.Errorf("AddBlockedUser() duplicate = %v, want ErrAlreadyBlocked", err)
	}

	if len(id.SuspiciousUsers) != 1 {
		t.Errorf("SuspiciousUsers len = %d, want 1", len(id.SuspiciousUsers))
	}

	// The same handle in the other list is allowed
	if err := id.AddBlockedUser("jane-doe", BlockTypeSpam); err != nil {
		t.Errorf("AddBlockedUser() other list returned error: %v", err)
	}
}

func TestRemoveBlockedUser(t *testing.T) {
	id := NewIdentity("uuid-1", "agent", "1.2.3.4")
	_ = id.AddBlockedUser("jane-doe", BlockTypeSpam)

	if err := id.RemoveBlockedUser("jane-doe", BlockTypeSuspicious); err != ErrNotBlocked {
		t.Errorf("RemoveBlockedUser() wrong list = %v, want ErrNotBlocked", err)
	}

	if err := id.RemoveBlockedUser("jane-doe", BlockTypeSpam); err != nil {
		t.Errorf("RemoveBlockedUser() = %v, want nil", err)
	}

	if len(id.SpamUsers) != 0 {
		t.Errorf("SpamUsers len = %d, want 0", len(id.SpamUsers))
	}
}

func TestAddBlockedPostIgnoresExisting(t *testing.T) {
	id := NewIdentity("uuid-1", "agent", "1.2.3.4")
	post := BlockedPost{PostID: "123", UserName: "jane-doe", PostURL: "https://example.com/posts/123"}

	if added := id.AddBlockedPost(post, ReportTypeSpam); !added {
		t.Error("AddBlockedPost() first add should return true")
	}
	if added := id.AddBlockedPost(post, ReportTypeSpam); added {
		t.Error("AddBlockedPost() repeated add should return false")
	}
	if len(id.SuspiciousPosts) != 1 {
		t.Errorf("SuspiciousPosts len = %d, want 1", len(id.SuspiciousPosts))
	}
}

func TestBlockedPostsQuery(t *testing.T) {
	id := NewIdentity("uuid-1", "agent", "1.2.3.4")
	id.AddBlockedPost(BlockedPost{PostID: "1"}, ReportTypeSpam)
	id.AddBlockedPost(BlockedPost{PostID: "2"}, ReportTypeNotUseful)

	tests := []struct {
		reportType ReportType
		want       int
	}{
		{ReportTypeSpam, 1},
		{ReportTypeNotUseful, 1},
		{ReportTypeAll, 2},
	}

	for _, tt := range tests {
		t.Run(string(tt.reportType), func(t *testing.T) {
			if got := len(id.BlockedPosts(tt.reportType)); got != tt.want {
				t.Errorf("BlockedPosts(%s) len = %d, want %d", tt.reportType, got, tt.want)
			}
		})
	}
}

func TestReportTallyDedupe(t *testing.T) {
	tally := NewReportTally("123", "https://example.com/posts/123")

	if err := tally.AddReporter("uuid-1", ReportTypeSpam); err != nil {
		t.Fatalf("AddReporter() returned error: %v", err)
	}

	if err := tally.AddReporter("uuid-1", ReportTypeSpam); err != ErrAlreadyReported {
		t.Errorf("AddReporter() duplicate = %v, want ErrAlreadyReported", err)
	}

	if len(tally.ReportedAsSpamBy) != 1 {
		t.Errorf("ReportedAsSpamBy len = %d, want 1", len(tally.ReportedAsSpamBy))
	}

	// Same identity, other reason, is a distinct report
	if err := tally.AddReporter("uuid-1", ReportTypeNotUseful); err != nil {
		t.Errorf("AddReporter() other reason returned error: %v", err)
	}

	if !tally.HasReporter("uuid-1", ReportTypeNotUseful) {
		t.Error("HasReporter() should be true after AddReporter")
	}
}

func TestBlockTypeValidation(t *testing.T) {
	tests := []struct {
		value      BlockType
		valid      bool
		validQuery bool
	}{
		{BlockTypeSuspicious, true, true},
		{BlockTypeSpam, true, true},
		{BlockTypeAll, false, true},
		{BlockType("bogus"), false, false},
		{BlockType(""), false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.value), func(t *testing.T) {
			if got := tt.value.Valid(); got != tt.valid {
				t.Errorf("Valid() = %v, want %v", got, tt.valid)
			}
			if got := tt.value.ValidQuery(); got != tt.validQuery {
				t.Errorf("ValidQuery() = %v, want %v", got, tt.validQuery)
			}
		})
	}
}

func TestReportTypeValidation(t *testing.T) {
	tests := []struct {
		value      ReportType
		valid      bool
		validQuery bool
	}{
		{ReportTypeSpam, true, true},
		{ReportTypeNotUseful, true, true},
		{ReportTypeAll, false, true},
		{ReportType("bogus"), false, false},
		{ReportType(""), false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.value), func(t *testing.T) {
			if got := tt.value.Valid(); got != tt.valid {
				t.Errorf("Valid() = %v, want %v", got, tt.valid)
			}
			if got := tt.value.ValidQuery(); got != tt.validQuery {
				t.Errorf("ValidQuery() = %v, want %v", got, tt.validQuery)
			}
		})
	}
}
