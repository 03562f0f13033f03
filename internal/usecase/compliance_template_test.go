package usecase

import (
	"context"
	"testing"

	"complyd/internal/domain"
)

func newTemplateFixture() (*ComplianceTemplates, *fakeComplianceTemplateRepo) {
	repo := newFakeComplianceTemplateRepo()
	return &ComplianceTemplates{Repo: repo, Clock: fixedClock(testNow)}, repo
}

func TestComplianceTemplateCreate(t *testing.T) {
	uc, _ := newTemplateFixture()
	tpl, err := uc.Create(context.Background(), testActor, CreateComplianceTemplateRequest{
		Name: "  Daily Site Safety Checklist  ", ScopeType: domain.ScopeSite, Frequency: domain.FrequencyDaily,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if tpl.Name != "Daily Site Safety Checklist" {
		t.Errorf("name = %q, want trimmed", tpl.Name)
	}
	if !tpl.Active {
		t.Error("new templates must start active")
	}
}

func TestComplianceTemplateCreateValidation(t *testing.T) {
	uc, _ := newTemplateFixture()
	cases := []struct {
		name string
		req  CreateComplianceTemplateRequest
	}{
		{"empty name", CreateComplianceTemplateRequest{ScopeType: domain.ScopeSite, Frequency: domain.FrequencyDaily}},
		{"bad scope", CreateComplianceTemplateRequest{Name: "x", ScopeType: "REGION", Frequency: domain.FrequencyDaily}},
		{"bad frequency", CreateComplianceTemplateRequest{Name: "x", ScopeType: domain.ScopeSite, Frequency: "HOURLY"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := uc.Create(context.Background(), testActor, tc.req); domain.CategoryOf(err) != domain.CategoryValidation {
				t.Fatalf("got %v, want VALIDATION", err)
			}
		})
	}
}

func TestComplianceTemplateAddItem(t *testing.T) {
	uc, repo := newTemplateFixture()
	repo.templates["ctpl-1"] = domain.ComplianceTemplate{ID: "ctpl-1", CompanyID: "co-1", Name: "Checklist"}

	item, err := uc.AddItem(context.Background(), testActor, AddItemRequest{
		TemplateID: "ctpl-1", Title: "Medication storage locked", Type: domain.ItemYesNoNA, Critical: true, SortOrder: 3,
	})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if !item.Critical || item.SortOrder != 3 {
		t.Errorf("item = %+v", item)
	}

	if _, err := uc.AddItem(context.Background(), testActor, AddItemRequest{
		TemplateID: "ctpl-missing", Title: "x", Type: domain.ItemText,
	}); domain.CategoryOf(err) != domain.CategoryNotFound {
		t.Fatalf("unknown template: got %v, want NOT_FOUND", err)
	}
	if _, err := uc.AddItem(context.Background(), testActor, AddItemRequest{
		TemplateID: "ctpl-1", Title: "x", Type: "SLIDER",
	}); domain.CategoryOf(err) != domain.CategoryValidation {
		t.Fatalf("unknown item type: got %v, want VALIDATION", err)
	}
}

func TestComplianceTemplateDeactivate(t *testing.T) {
	uc, repo := newTemplateFixture()
	repo.templates["ctpl-1"] = domain.ComplianceTemplate{ID: "ctpl-1", CompanyID: "co-1", Name: "Checklist", Active: true}

	active := false
	if err := uc.Update(context.Background(), testActor, "ctpl-1", ComplianceTemplateUpdate{Active: &active}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if repo.templates["ctpl-1"].Active {
		t.Error("template still active after deactivation")
	}
	if repo.templates["ctpl-1"].Name != "Checklist" {
		t.Error("name changed by an active-only update")
	}
}
