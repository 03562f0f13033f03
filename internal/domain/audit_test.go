package domain

import "testing"

func TestNextAuditStatus(t *testing.T) {
	cases := []struct {
		from AuditStatus
		next AuditStatus
		ok   bool
	}{
		{AuditStatusDraft, AuditStatusInProgress, true},
		{AuditStatusInProgress, AuditStatusInReview, true},
		{AuditStatusInReview, AuditStatusClosed, true},
		{AuditStatusClosed, "", false},
		{"BOGUS", "", false},
	}
	for _, tc := range cases {
		next, ok := NextAuditStatus(tc.from)
		if ok != tc.ok || next != tc.next {
			t.Errorf("NextAuditStatus(%s) = (%s, %v), want (%s, %v)", tc.from, next, ok, tc.next, tc.ok)
		}
	}
}

func TestMatchServiceContext(t *testing.T) {
	categories := []ServiceCategory{
		{Label: "Daily Living Support"},
		{Label: "Community Participation"},
	}
	if !MatchServiceContext("daily living support", categories) {
		t.Error("case-insensitive match should succeed")
	}
	if !MatchServiceContext("  Community Participation  ", categories) {
		t.Error("surrounding whitespace should be ignored")
	}
	if MatchServiceContext("Plumbing", categories) {
		t.Error("unknown label should not match")
	}
	if MatchServiceContext("Daily Living Support", nil) {
		t.Error("empty catalogue should never match")
	}
}
