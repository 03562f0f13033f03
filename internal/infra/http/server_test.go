package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"complyd/internal/domain"
	"complyd/internal/infra/db"
	"complyd/internal/infra/ratelimit"
	"complyd/internal/infra/textgen"
	"complyd/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type allowAllCapability struct{}

func (allowAllCapability) Check(context.Context, domain.CapabilityInput) (domain.CapabilityDecision, error) {
	return domain.CapabilityDecision{Allow: true}, nil
}

type testEnv struct {
	router *gin.Engine
	gdb    *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Seed(context.Background(), gdb, "co-1", "Brightside Care"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	changes := usecase.NewChangeEmitter(db.NewChangeRecordRepository(gdb), time.Now)
	capability := allowAllCapability{}

	audits := &usecase.AuditLifecycle{
		Audits:     db.NewAuditRepository(gdb),
		Scope:      db.NewScopeRepository(gdb),
		Categories: db.NewCategoryRepository(gdb),
		Runs:       db.NewAuditRunRepository(gdb),
		Templates:  db.NewAuditTemplateRepository(gdb),
		Responses:  db.NewResponseRepository(gdb),
		Findings:   db.NewFindingRepository(gdb),
		Changes:    changes,
		Clock:      time.Now,
	}
	responses := &usecase.IndicatorResponses{
		Audits:    db.NewAuditRepository(gdb),
		Templates: db.NewAuditTemplateRepository(gdb),
		Responses: db.NewResponseRepository(gdb),
		Findings:  db.NewFindingRepository(gdb),
		Changes:   changes,
		Clock:     time.Now,
	}
	findings := &usecase.FindingWorkflow{
		Findings:   db.NewFindingRepository(gdb),
		Evidence:   db.NewEvidenceRepository(gdb),
		Capability: capability,
		Changes:    changes,
		Clock:      time.Now,
	}
	templates := &usecase.ComplianceTemplates{
		Repo:  db.NewComplianceTemplateRepository(gdb),
		Clock: time.Now,
	}
	runs := &usecase.ComplianceRuns{
		Templates:   db.NewComplianceTemplateRepository(gdb),
		Runs:        db.NewComplianceRunRepository(gdb),
		Responses:   db.NewComplianceResponseRepository(gdb),
		Actions:     db.NewComplianceActionRepository(gdb),
		Scopes:      db.NewScopeEntityRepository(gdb),
		Assignments: db.NewAssignmentRepository(gdb),
		Capability:  capability,
		Changes:     changes,
		Clock:       time.Now,
	}
	rollup := &usecase.Rollup{
		Runs:      db.NewComplianceRunRepository(gdb),
		Templates: db.NewComplianceTemplateRepository(gdb),
		Responses: db.NewComplianceResponseRepository(gdb),
		Actions:   db.NewComplianceActionRepository(gdb),
	}
	reports := &usecase.WeeklyReports{
		Reports:         db.NewReportRepository(gdb),
		Runs:            db.NewComplianceRunRepository(gdb),
		Templates:       db.NewComplianceTemplateRepository(gdb),
		Responses:       db.NewComplianceResponseRepository(gdb),
		Actions:         db.NewComplianceActionRepository(gdb),
		Scopes:          db.NewScopeEntityRepository(gdb),
		Generator:       textgen.DisabledGenerator{},
		Limiter:         ratelimit.NewMemoryLimiter(nil),
		Changes:         changes,
		Clock:           time.Now,
		Model:           "gpt-4o-mini",
		PromptVersion:   "v1",
		RateLimit:       10,
		RateLimitWindow: time.Minute,
	}

	server := NewServer(audits, responses, findings, templates, runs, rollup, reports, changes)
	return &testEnv{router: server.Router(), gdb: gdb}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func adminHeaders() map[string]string {
	return map[string]string{
		"X-User-ID":    "user-1",
		"X-Company-ID": "co-1",
		"X-Role":       string(domain.RoleCompanyAdmin),
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/healthz", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestIdentityHeadersRequired(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/audits", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no headers: status = %d, want 401", rec.Code)
	}

	headers := adminHeaders()
	headers["X-Role"] = "SuperUser"
	rec = env.do(t, http.MethodGet, "/v1/audits", nil, headers)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unknown role: status = %d, want 401", rec.Code)
	}
}

func TestAuditEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/v1/audits", map[string]any{
		"type":           "INTERNAL",
		"serviceContext": "Daily Living Support",
	}, adminHeaders())
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	created := decodeBody(t, rec)
	auditID, _ := created["ID"].(string)
	if auditID == "" || created["Status"] != "DRAFT" {
		t.Fatalf("created = %v", created)
	}

	rec = env.do(t, http.MethodGet, "/v1/audits/"+auditID, nil, adminHeaders())
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status = %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/v1/audits/"+auditID+"/changes", nil, adminHeaders())
	if rec.Code != http.StatusOK {
		t.Fatalf("changes: status = %d", rec.Code)
	}
	if changes, _ := decodeBody(t, rec)["changes"].([]any); len(changes) != 1 {
		t.Errorf("changes = %v, want the creation record", changes)
	}
}

func TestErrorTaxonomyOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/v1/audits", map[string]any{
		"type":           "INTERNAL",
		"serviceContext": "Underwater Basket Weaving",
	}, adminHeaders())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad service context: status = %d, want 400", rec.Code)
	}
	body := decodeBody(t, rec)
	errObj, _ := body["error"].(map[string]any)
	if errObj["category"] != "VALIDATION" {
		t.Errorf("category = %v, want VALIDATION", errObj["category"])
	}

	rec = env.do(t, http.MethodGet, "/v1/audits/audit-missing", nil, adminHeaders())
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing audit: status = %d, want 404", rec.Code)
	}
}

func TestComplianceRunEndpoints(t *testing.T) {
	env := newTestEnv(t)

	site := db.SiteModel{ID: "site-1", CompanyID: "co-1", Name: "Maple St House", CreatedAt: time.Now().UTC()}
	if err := env.gdb.Create(&site).Error; err != nil {
		t.Fatalf("seed site: %v", err)
	}

	rec := env.do(t, http.MethodGet, "/v1/compliance/templates", nil, adminHeaders())
	if rec.Code != http.StatusOK {
		t.Fatalf("list templates: status = %d", rec.Code)
	}
	templates, _ := decodeBody(t, rec)["templates"].([]any)
	if len(templates) != 1 {
		t.Fatalf("templates = %v, want the seeded checklist", templates)
	}
	tplID, _ := templates[0].(map[string]any)["ID"].(string)

	rec = env.do(t, http.MethodPost, "/v1/compliance/runs", map[string]any{
		"templateId": tplID,
		"scopeId":    "site-1",
	}, adminHeaders())
	if rec.Code != http.StatusCreated {
		t.Fatalf("create run: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	runID, _ := decodeBody(t, rec)["ID"].(string)

	rec = env.do(t, http.MethodGet, "/v1/compliance/templates/"+tplID+"/items", nil, adminHeaders())
	if rec.Code != http.StatusOK {
		t.Fatalf("list items: status = %d", rec.Code)
	}
	items, _ := decodeBody(t, rec)["items"].([]any)
	if len(items) != 6 {
		t.Fatalf("items = %d, want the seeded checklist items", len(items))
	}
	for _, raw := range items {
		item, _ := raw.(map[string]any)
		value := "YES"
		if item["Type"] == "NUMBER" {
			value = "4"
		} else if item["Type"] == "TEXT" {
			value = "None noted"
		}
		rec = env.do(t, http.MethodPut, "/v1/compliance/runs/"+runID+"/responses", map[string]any{
			"itemId": item["ID"],
			"value":  value,
		}, adminHeaders())
		if rec.Code != http.StatusOK {
			t.Fatalf("respond: status = %d, body = %s", rec.Code, rec.Body.String())
		}
	}

	rec = env.do(t, http.MethodPost, "/v1/compliance/runs/"+runID+"/submit", nil, adminHeaders())
	if rec.Code != http.StatusOK {
		t.Fatalf("submit: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	result := decodeBody(t, rec)
	if result["StatusColor"] != string(domain.ColorGreen) {
		t.Errorf("status color = %v, want green for an all-clear run", result["StatusColor"])
	}
	if result["ActionsCreated"] != float64(0) {
		t.Errorf("actions created = %v, want 0", result["ActionsCreated"])
	}

	rec = env.do(t, http.MethodGet, "/v1/compliance/rollup", nil, adminHeaders())
	if rec.Code != http.StatusOK {
		t.Fatalf("rollup: status = %d", rec.Code)
	}
}
