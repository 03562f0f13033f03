package db

import (
	"context"
	"testing"
)

func TestAssignmentSetLoad(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewAssignmentRepository(gdb)
	ctx := context.Background()

	rows := []any{
		&SiteAssignmentModel{ID: "sa-1", CompanyID: "co-1", UserID: "user-1", SiteID: "site-1", CreatedAt: dbTestNow},
		&SiteAssignmentModel{ID: "sa-2", CompanyID: "co-1", UserID: "user-1", SiteID: "site-2", CreatedAt: dbTestNow},
		&SiteAssignmentModel{ID: "sa-3", CompanyID: "co-1", UserID: "user-2", SiteID: "site-3", CreatedAt: dbTestNow},
		&ParticipantAssignmentModel{ID: "pa-1", CompanyID: "co-1", UserID: "user-1", ParticipantID: "part-1", CreatedAt: dbTestNow},
	}
	for _, row := range rows {
		if err := gdb.Create(row).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	set, err := repo.Get(ctx, "co-1", "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(set.SiteIDs) != 2 || len(set.ParticipantIDs) != 1 {
		t.Errorf("set = %+v, want 2 sites and 1 participant", set)
	}
}

func TestAssignmentSetEmptyIsNotAnError(t *testing.T) {
	repo := NewAssignmentRepository(newTestDB(t))

	set, err := repo.Get(context.Background(), "co-1", "user-none")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(set.SiteIDs) != 0 || len(set.ParticipantIDs) != 0 {
		t.Errorf("set = %+v, want empty", set)
	}
}
