package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"complyd/internal/domain"
)

type reportFixture struct {
	uc        *WeeklyReports
	reports   *fakeReportRepo
	runs      *fakeComplianceRunRepo
	templates *fakeComplianceTemplateRepo
	responses *fakeComplianceResponseRepo
	actions   *fakeActionRepo
	scopes    *fakeScopeEntityRepo
	generator *fakeGenerator
	limiter   *fakeLimiter
	changes   *fakeChangeRepo
}

func newReportFixture() *reportFixture {
	f := &reportFixture{
		reports:   &fakeReportRepo{},
		runs:      newFakeComplianceRunRepo(),
		templates: newFakeComplianceTemplateRepo(),
		responses: newFakeComplianceResponseRepo(),
		actions:   newFakeActionRepo(),
		scopes:    newFakeScopeEntityRepo(),
		generator: &fakeGenerator{text: "Alex had a steady week with all checks passing.", model: "gpt-4o-mini-2026-07"},
		limiter:   &fakeLimiter{allowed: true},
		changes:   &fakeChangeRepo{},
	}
	f.uc = &WeeklyReports{
		Reports:         f.reports,
		Runs:            f.runs,
		Templates:       f.templates,
		Responses:       f.responses,
		Actions:         f.actions,
		Scopes:          f.scopes,
		Generator:       f.generator,
		Limiter:         f.limiter,
		Changes:         NewChangeEmitter(f.changes, fixedClock(testNow)),
		Clock:           fixedClock(testNow),
		Model:           "gpt-4o-mini",
		PromptVersion:   "v1",
		RateLimit:       10,
		RateLimitWindow: time.Minute,
	}
	f.scopes.participants["part-1"] = domain.Participant{ID: "part-1", CompanyID: "co-1", Name: "Alex"}
	return f
}

func weekRequest() GenerateReportRequest {
	start := time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC)
	return GenerateReportRequest{ParticipantID: "part-1", PeriodStart: start, PeriodEnd: start.AddDate(0, 0, 7)}
}

func TestGenerateReport(t *testing.T) {
	f := newReportFixture()
	report, err := f.uc.Generate(context.Background(), testActor, weekRequest())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if report.Status != domain.ReportDraft {
		t.Errorf("status = %s, want DRAFT", report.Status)
	}
	if report.Content != "Alex had a steady week with all checks passing." {
		t.Errorf("content = %q", report.Content)
	}
	if report.Model != "gpt-4o-mini-2026-07" {
		t.Errorf("model = %q, want the provider-reported model", report.Model)
	}
	if report.InputHash == "" || report.PromptVersion != "v1" {
		t.Errorf("provenance missing: %+v", report)
	}
	if len(f.reports.logs) != 1 || !f.reports.logs[0].Success {
		t.Fatalf("logs = %+v, want one success entry", f.reports.logs)
	}
	if f.reports.logs[0].InputHash != report.InputHash {
		t.Error("log and report input hashes must match")
	}
	if f.limiter.lastKey != "reports:generate:co-1" {
		t.Errorf("rate limit key = %q", f.limiter.lastKey)
	}
}

func TestGenerateReportSameInputSameHash(t *testing.T) {
	f := newReportFixture()
	first, err := f.uc.Generate(context.Background(), testActor, weekRequest())
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := f.uc.Generate(context.Background(), testActor, weekRequest())
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if first.InputHash != second.InputHash {
		t.Error("identical inputs must hash identically")
	}

	f.actions.Create(context.Background(), domain.ComplianceAction{
		ID: "act-1", CompanyID: "co-1", ScopeType: domain.ScopeParticipant, ScopeID: "part-1",
		Severity: domain.SeverityMedium, Status: domain.ActionOpen,
	})
	third, err := f.uc.Generate(context.Background(), testActor, weekRequest())
	if err != nil {
		t.Fatalf("third: %v", err)
	}
	if third.InputHash == first.InputHash {
		t.Error("changed facts must change the input hash")
	}
}

func TestGenerateReportProviderFailure(t *testing.T) {
	f := newReportFixture()
	f.generator.err = errBoom

	_, err := f.uc.Generate(context.Background(), testActor, weekRequest())
	if domain.CategoryOf(err) != domain.CategoryExternal {
		t.Fatalf("got %v, want EXTERNAL", err)
	}
	if !strings.Contains(err.Error(), "report generation is currently unavailable") {
		t.Errorf("error %q must not leak the provider message", err.Error())
	}
	if strings.Contains(err.Error(), "boom") {
		t.Errorf("provider error leaked: %q", err.Error())
	}
	if f.generator.calls != 1 {
		t.Errorf("generator calls = %d, failures must not retry", f.generator.calls)
	}
	if len(f.reports.logs) != 1 || f.reports.logs[0].Success {
		t.Fatalf("logs = %+v, want one failure entry", f.reports.logs)
	}
	if f.reports.logs[0].ErrorMessage == "" {
		t.Error("failure log must record the underlying error")
	}
	if len(f.reports.reports) != 0 {
		t.Error("no report row may exist after a failed generation")
	}
}

func TestGenerateReportRateLimited(t *testing.T) {
	f := newReportFixture()
	f.limiter.allowed = false
	_, err := f.uc.Generate(context.Background(), testActor, weekRequest())
	if domain.CategoryOf(err) != domain.CategoryConflict {
		t.Fatalf("got %v, want CONFLICT", err)
	}
	if f.generator.calls != 0 {
		t.Error("rate-limited requests must not reach the provider")
	}
}

func TestGenerateReportLimiterOutageFailsOpen(t *testing.T) {
	f := newReportFixture()
	f.limiter.err = errBoom
	f.limiter.allowed = false

	report, err := f.uc.Generate(context.Background(), testActor, weekRequest())
	if err != nil {
		t.Fatalf("generate during limiter outage: %v", err)
	}
	if f.generator.calls != 1 {
		t.Errorf("generator calls = %d, want 1", f.generator.calls)
	}
	if len(f.reports.reports) != 1 || report.Status != domain.ReportDraft {
		t.Errorf("report not created: %+v", f.reports.reports)
	}
}

func TestGenerateReportValidation(t *testing.T) {
	f := newReportFixture()
	req := weekRequest()
	req.PeriodEnd = req.PeriodStart
	if _, err := f.uc.Generate(context.Background(), testActor, req); domain.CategoryOf(err) != domain.CategoryValidation {
		t.Fatalf("empty period: got %v, want VALIDATION", err)
	}

	req = weekRequest()
	req.ParticipantID = "part-missing"
	if _, err := f.uc.Generate(context.Background(), testActor, req); domain.CategoryOf(err) != domain.CategoryNotFound {
		t.Fatalf("unknown participant: got %v, want NOT_FOUND", err)
	}
}

func TestGenerateReportInputSummarizesRuns(t *testing.T) {
	f := newReportFixture()
	f.templates.templates["ctpl-1"] = domain.ComplianceTemplate{ID: "ctpl-1", CompanyID: "co-1", Name: "Weekly Participant Checklist"}
	f.templates.items["ctpl-1"] = []domain.ComplianceTemplateItem{
		{ID: "item-crit", CompanyID: "co-1", TemplateID: "ctpl-1", Type: domain.ItemYesNoNA, Critical: true},
	}
	runDate := time.Date(2026, 8, 18, 0, 0, 0, 0, time.UTC)
	if err := f.runs.Create(context.Background(), domain.ComplianceRun{
		ID: "run-1", CompanyID: "co-1", TemplateID: "ctpl-1",
		ScopeType: domain.ScopeParticipant, ScopeID: "part-1",
		PeriodStart: runDate, Status: domain.RunSubmitted,
	}); err != nil {
		t.Fatalf("seed run: %v", err)
	}
	if err := f.responses.Upsert(context.Background(), domain.ComplianceResponse{
		ID: "resp-1", CompanyID: "co-1", RunID: "run-1", ItemID: "item-crit", Value: "NO",
	}); err != nil {
		t.Fatalf("seed response: %v", err)
	}

	input, err := f.uc.buildInput(context.Background(), testActor, domain.Participant{ID: "part-1", CompanyID: "co-1", Name: "Alex"}, weekRequest())
	if err != nil {
		t.Fatalf("build input: %v", err)
	}
	if len(input.Runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(input.Runs))
	}
	summary := input.Runs[0]
	if summary.TemplateName != "Weekly Participant Checklist" || summary.Date != "2026-08-18" {
		t.Errorf("summary = %+v", summary)
	}
	if summary.StatusColor != domain.ColorRed || summary.CriticalFails != 1 {
		t.Errorf("summary = %+v, want red with 1 critical fail", summary)
	}
}

func TestReportUpdate(t *testing.T) {
	f := newReportFixture()
	report, err := f.uc.Generate(context.Background(), testActor, weekRequest())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	content := "Edited by the coordinator before publishing."
	status := domain.ReportPublished
	if err := f.uc.Update(context.Background(), testActor, report.ID, ReportUpdate{Content: &content, Status: &status}); err != nil {
		t.Fatalf("update: %v", err)
	}
	stored, _ := f.reports.List(context.Background(), "co-1", "part-1")
	if stored[0].Content != content || stored[0].Status != domain.ReportPublished {
		t.Errorf("stored report = %+v", stored[0])
	}
}
