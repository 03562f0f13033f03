package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"complyd/internal/domain"
)

// In-memory fakes backing the workflow tests. Each mirrors the repository
// contract: tenant-filtered reads, domain.ErrNotFound for absence and
// domain.ErrDuplicate for unique-index violations.

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

var testNow = time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)

type fakeAuditRepo struct {
	audits map[string]domain.Audit
}

func newFakeAuditRepo() *fakeAuditRepo {
	return &fakeAuditRepo{audits: make(map[string]domain.Audit)}
}

func (r *fakeAuditRepo) Create(_ context.Context, audit domain.Audit) error {
	r.audits[audit.ID] = audit
	return nil
}

func (r *fakeAuditRepo) Get(_ context.Context, companyID, id string) (*domain.Audit, error) {
	audit, ok := r.audits[id]
	if !ok || audit.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	copied := audit
	return &copied, nil
}

func (r *fakeAuditRepo) List(_ context.Context, companyID string, filter AuditFilter) ([]domain.Audit, error) {
	var out []domain.Audit
	for _, audit := range r.audits {
		if audit.CompanyID != companyID {
			continue
		}
		if filter.Status != "" && audit.Status != filter.Status {
			continue
		}
		if filter.Type != "" && audit.Type != filter.Type {
			continue
		}
		out = append(out, audit)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeAuditRepo) Update(_ context.Context, companyID, id string, update AuditUpdate) error {
	audit, ok := r.audits[id]
	if !ok || audit.CompanyID != companyID {
		return domain.ErrNotFound
	}
	if update.Status != nil {
		audit.Status = *update.Status
	}
	if update.ScopeLocked != nil {
		audit.ScopeLocked = *update.ScopeLocked
	}
	if update.CloseReason != nil {
		audit.CloseReason = *update.CloseReason
	}
	if update.ClosedAt != nil {
		audit.ClosedAt = update.ClosedAt
	}
	if update.ClosedBy != nil {
		audit.ClosedBy = *update.ClosedBy
	}
	r.audits[id] = audit
	return nil
}

type fakeScopeRepo struct {
	byAudit map[string][]domain.ScopeLineItem
}

func newFakeScopeRepo() *fakeScopeRepo {
	return &fakeScopeRepo{byAudit: make(map[string][]domain.ScopeLineItem)}
}

func (r *fakeScopeRepo) Replace(_ context.Context, _, auditID string, items []domain.ScopeLineItem) error {
	r.byAudit[auditID] = items
	return nil
}

func (r *fakeScopeRepo) ListByAudit(_ context.Context, _, auditID string) ([]domain.ScopeLineItem, error) {
	return r.byAudit[auditID], nil
}

type fakeCategoryRepo struct {
	categories []domain.ServiceCategory
}

func (r *fakeCategoryRepo) ListByCompany(context.Context, string) ([]domain.ServiceCategory, error) {
	return r.categories, nil
}

type fakeAuditRunRepo struct {
	byAudit map[string]domain.AuditRun
}

func newFakeAuditRunRepo() *fakeAuditRunRepo {
	return &fakeAuditRunRepo{byAudit: make(map[string]domain.AuditRun)}
}

func (r *fakeAuditRunRepo) Upsert(_ context.Context, run domain.AuditRun) error {
	existing, ok := r.byAudit[run.AuditID]
	if ok {
		existing.TemplateID = run.TemplateID
		r.byAudit[run.AuditID] = existing
		return nil
	}
	r.byAudit[run.AuditID] = run
	return nil
}

func (r *fakeAuditRunRepo) GetByAudit(_ context.Context, companyID, auditID string) (*domain.AuditRun, error) {
	run, ok := r.byAudit[auditID]
	if !ok || run.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	copied := run
	return &copied, nil
}

func (r *fakeAuditRunRepo) SetStarted(_ context.Context, companyID, auditID string, at time.Time) error {
	run, ok := r.byAudit[auditID]
	if !ok || run.CompanyID != companyID {
		return domain.ErrNotFound
	}
	run.StartedAt = &at
	r.byAudit[auditID] = run
	return nil
}

type fakeAuditTemplateRepo struct {
	templates  map[string]domain.AuditTemplate
	indicators map[string][]domain.AuditTemplateIndicator
}

func newFakeAuditTemplateRepo() *fakeAuditTemplateRepo {
	return &fakeAuditTemplateRepo{
		templates:  make(map[string]domain.AuditTemplate),
		indicators: make(map[string][]domain.AuditTemplateIndicator),
	}
}

func (r *fakeAuditTemplateRepo) Get(_ context.Context, companyID, id string) (*domain.AuditTemplate, error) {
	tpl, ok := r.templates[id]
	if !ok || tpl.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	copied := tpl
	return &copied, nil
}

func (r *fakeAuditTemplateRepo) List(_ context.Context, companyID string) ([]domain.AuditTemplate, error) {
	var out []domain.AuditTemplate
	for _, tpl := range r.templates {
		if tpl.CompanyID == companyID {
			out = append(out, tpl)
		}
	}
	return out, nil
}

func (r *fakeAuditTemplateRepo) ListIndicators(_ context.Context, _, templateID string) ([]domain.AuditTemplateIndicator, error) {
	return r.indicators[templateID], nil
}

func (r *fakeAuditTemplateRepo) GetIndicator(_ context.Context, companyID, indicatorID string) (*domain.AuditTemplateIndicator, error) {
	for _, list := range r.indicators {
		for _, ind := range list {
			if ind.ID == indicatorID && ind.CompanyID == companyID {
				copied := ind
				return &copied, nil
			}
		}
	}
	return nil, domain.ErrNotFound
}

type fakeResponseRepo struct {
	byKey map[string]domain.IndicatorResponse
}

func newFakeResponseRepo() *fakeResponseRepo {
	return &fakeResponseRepo{byKey: make(map[string]domain.IndicatorResponse)}
}

func (r *fakeResponseRepo) Upsert(_ context.Context, resp domain.IndicatorResponse) error {
	r.byKey[resp.AuditID+"/"+resp.IndicatorID] = resp
	return nil
}

func (r *fakeResponseRepo) CountByAudit(_ context.Context, _, auditID string) (int64, error) {
	var n int64
	for _, resp := range r.byKey {
		if resp.AuditID == auditID {
			n++
		}
	}
	return n, nil
}

func (r *fakeResponseRepo) ListByAudit(_ context.Context, _, auditID string) ([]domain.IndicatorResponse, error) {
	var out []domain.IndicatorResponse
	for _, resp := range r.byKey {
		if resp.AuditID == auditID {
			out = append(out, resp)
		}
	}
	return out, nil
}

type fakeFindingRepo struct {
	findings map[string]domain.Finding
	byPair   map[string]string
}

func newFakeFindingRepo() *fakeFindingRepo {
	return &fakeFindingRepo{
		findings: make(map[string]domain.Finding),
		byPair:   make(map[string]string),
	}
}

func (r *fakeFindingRepo) Create(_ context.Context, finding domain.Finding) error {
	pair := finding.AuditID + "/" + finding.IndicatorID
	if _, exists := r.byPair[pair]; exists {
		return domain.ErrDuplicate
	}
	r.byPair[pair] = finding.ID
	r.findings[finding.ID] = finding
	return nil
}

func (r *fakeFindingRepo) Get(_ context.Context, companyID, id string) (*domain.Finding, error) {
	finding, ok := r.findings[id]
	if !ok || finding.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	copied := finding
	return &copied, nil
}

func (r *fakeFindingRepo) ListByAudit(_ context.Context, _, auditID string) ([]domain.Finding, error) {
	var out []domain.Finding
	for _, finding := range r.findings {
		if finding.AuditID == auditID {
			out = append(out, finding)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeFindingRepo) CountOpenMajor(_ context.Context, _, auditID string) (int64, error) {
	var n int64
	for _, finding := range r.findings {
		if finding.AuditID == auditID && finding.Severity == domain.RatingMajorNC && finding.Status != domain.FindingClosed {
			n++
		}
	}
	return n, nil
}

func (r *fakeFindingRepo) Update(_ context.Context, companyID, id string, update FindingUpdate) error {
	finding, ok := r.findings[id]
	if !ok || finding.CompanyID != companyID {
		return domain.ErrNotFound
	}
	if update.Status != nil {
		finding.Status = *update.Status
	}
	if update.OwnerID != nil {
		finding.OwnerID = *update.OwnerID
	}
	if update.DueDate != nil {
		finding.DueDate = update.DueDate
	}
	if update.ClosureNote != nil {
		finding.ClosureNote = *update.ClosureNote
	}
	if update.ClosedAt != nil {
		finding.ClosedAt = update.ClosedAt
	}
	if update.ClosedBy != nil {
		finding.ClosedBy = *update.ClosedBy
	}
	r.findings[id] = finding
	return nil
}

type fakeEvidenceRepo struct {
	requests  map[string]domain.EvidenceRequest
	byFinding map[string]string
	items     []domain.EvidenceItem
}

func newFakeEvidenceRepo() *fakeEvidenceRepo {
	return &fakeEvidenceRepo{
		requests:  make(map[string]domain.EvidenceRequest),
		byFinding: make(map[string]string),
	}
}

func (r *fakeEvidenceRepo) CreateRequest(_ context.Context, req domain.EvidenceRequest) error {
	if _, exists := r.byFinding[req.FindingID]; exists {
		return domain.ErrDuplicate
	}
	r.byFinding[req.FindingID] = req.ID
	r.requests[req.ID] = req
	return nil
}

func (r *fakeEvidenceRepo) GetRequest(_ context.Context, companyID, id string) (*domain.EvidenceRequest, error) {
	req, ok := r.requests[id]
	if !ok || req.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	copied := req
	return &copied, nil
}

func (r *fakeEvidenceRepo) GetRequestByFinding(_ context.Context, companyID, findingID string) (*domain.EvidenceRequest, error) {
	id, ok := r.byFinding[findingID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.GetRequest(context.Background(), companyID, id)
}

func (r *fakeEvidenceRepo) UpdateRequest(_ context.Context, companyID, id string, update EvidenceRequestUpdate) error {
	req, ok := r.requests[id]
	if !ok || req.CompanyID != companyID {
		return domain.ErrNotFound
	}
	if update.Status != nil {
		req.Status = *update.Status
	}
	if update.ReviewNote != nil {
		req.ReviewNote = *update.ReviewNote
	}
	if update.ReviewedAt != nil {
		req.ReviewedAt = update.ReviewedAt
	}
	if update.ReviewedBy != nil {
		req.ReviewedBy = *update.ReviewedBy
	}
	r.requests[id] = req
	return nil
}

func (r *fakeEvidenceRepo) AddItem(_ context.Context, item domain.EvidenceItem) error {
	r.items = append(r.items, item)
	return nil
}

func (r *fakeEvidenceRepo) ListItems(_ context.Context, _, requestID string) ([]domain.EvidenceItem, error) {
	var out []domain.EvidenceItem
	for _, item := range r.items {
		if item.RequestID == requestID {
			out = append(out, item)
		}
	}
	return out, nil
}

type fakeComplianceTemplateRepo struct {
	templates map[string]domain.ComplianceTemplate
	items     map[string][]domain.ComplianceTemplateItem
}

func newFakeComplianceTemplateRepo() *fakeComplianceTemplateRepo {
	return &fakeComplianceTemplateRepo{
		templates: make(map[string]domain.ComplianceTemplate),
		items:     make(map[string][]domain.ComplianceTemplateItem),
	}
}

func (r *fakeComplianceTemplateRepo) Create(_ context.Context, tpl domain.ComplianceTemplate) error {
	r.templates[tpl.ID] = tpl
	return nil
}

func (r *fakeComplianceTemplateRepo) Get(_ context.Context, companyID, id string) (*domain.ComplianceTemplate, error) {
	tpl, ok := r.templates[id]
	if !ok || tpl.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	copied := tpl
	return &copied, nil
}

func (r *fakeComplianceTemplateRepo) List(_ context.Context, companyID string) ([]domain.ComplianceTemplate, error) {
	var out []domain.ComplianceTemplate
	for _, tpl := range r.templates {
		if tpl.CompanyID == companyID {
			out = append(out, tpl)
		}
	}
	return out, nil
}

func (r *fakeComplianceTemplateRepo) Update(_ context.Context, companyID, id string, update ComplianceTemplateUpdate) error {
	tpl, ok := r.templates[id]
	if !ok || tpl.CompanyID != companyID {
		return domain.ErrNotFound
	}
	if update.Name != nil {
		tpl.Name = *update.Name
	}
	if update.Active != nil {
		tpl.Active = *update.Active
	}
	r.templates[id] = tpl
	return nil
}

func (r *fakeComplianceTemplateRepo) CreateItem(_ context.Context, item domain.ComplianceTemplateItem) error {
	r.items[item.TemplateID] = append(r.items[item.TemplateID], item)
	return nil
}

func (r *fakeComplianceTemplateRepo) ListItems(_ context.Context, _, templateID string) ([]domain.ComplianceTemplateItem, error) {
	items := r.items[templateID]
	sorted := append([]domain.ComplianceTemplateItem(nil), items...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].SortOrder < sorted[j].SortOrder })
	return sorted, nil
}

func (r *fakeComplianceTemplateRepo) DeleteItem(_ context.Context, companyID, itemID string) error {
	for templateID, items := range r.items {
		for i, item := range items {
			if item.ID == itemID && item.CompanyID == companyID {
				r.items[templateID] = append(items[:i], items[i+1:]...)
				return nil
			}
		}
	}
	return domain.ErrNotFound
}

type fakeComplianceRunRepo struct {
	runs map[string]domain.ComplianceRun
}

func newFakeComplianceRunRepo() *fakeComplianceRunRepo {
	return &fakeComplianceRunRepo{runs: make(map[string]domain.ComplianceRun)}
}

func (r *fakeComplianceRunRepo) Create(_ context.Context, run domain.ComplianceRun) error {
	day := domain.TruncateDay(run.PeriodStart)
	for _, existing := range r.runs {
		if existing.CompanyID == run.CompanyID &&
			existing.TemplateID == run.TemplateID &&
			existing.ScopeType == run.ScopeType &&
			existing.ScopeID == run.ScopeID &&
			domain.TruncateDay(existing.PeriodStart).Equal(day) {
			return domain.ErrDuplicate
		}
	}
	r.runs[run.ID] = run
	return nil
}

func (r *fakeComplianceRunRepo) Get(_ context.Context, companyID, id string) (*domain.ComplianceRun, error) {
	run, ok := r.runs[id]
	if !ok || run.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	copied := run
	return &copied, nil
}

func (r *fakeComplianceRunRepo) List(_ context.Context, companyID string, filter RunFilter) ([]domain.ComplianceRun, error) {
	var out []domain.ComplianceRun
	for _, run := range r.runs {
		if run.CompanyID != companyID {
			continue
		}
		if filter.TemplateID != "" && run.TemplateID != filter.TemplateID {
			continue
		}
		if filter.ScopeType != "" && run.ScopeType != filter.ScopeType {
			continue
		}
		if filter.ScopeID != "" && run.ScopeID != filter.ScopeID {
			continue
		}
		if len(filter.Statuses) > 0 {
			matched := false
			for _, status := range filter.Statuses {
				if run.Status == status {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		if filter.From != nil && run.PeriodStart.Before(*filter.From) {
			continue
		}
		if filter.To != nil && run.PeriodStart.After(*filter.To) {
			continue
		}
		out = append(out, run)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeComplianceRunRepo) SetSubmitted(_ context.Context, companyID, id string, sub RunSubmission) error {
	run, ok := r.runs[id]
	if !ok || run.CompanyID != companyID || run.Status != domain.RunOpen {
		return domain.ErrNotFound
	}
	run.Status = domain.RunSubmitted
	run.StatusColor = sub.StatusColor
	run.SubmittedAt = &sub.SubmittedAt
	run.SubmittedBy = sub.SubmittedBy
	r.runs[id] = run
	return nil
}

type fakeComplianceResponseRepo struct {
	byKey map[string]domain.ComplianceResponse
}

func newFakeComplianceResponseRepo() *fakeComplianceResponseRepo {
	return &fakeComplianceResponseRepo{byKey: make(map[string]domain.ComplianceResponse)}
}

func (r *fakeComplianceResponseRepo) Upsert(_ context.Context, resp domain.ComplianceResponse) error {
	r.byKey[resp.RunID+"/"+resp.ItemID] = resp
	return nil
}

func (r *fakeComplianceResponseRepo) ListByRun(_ context.Context, _, runID string) ([]domain.ComplianceResponse, error) {
	var out []domain.ComplianceResponse
	for _, resp := range r.byKey {
		if resp.RunID == runID {
			out = append(out, resp)
		}
	}
	return out, nil
}

type fakeActionRepo struct {
	actions map[string]domain.ComplianceAction
}

func newFakeActionRepo() *fakeActionRepo {
	return &fakeActionRepo{actions: make(map[string]domain.ComplianceAction)}
}

func (r *fakeActionRepo) Create(_ context.Context, action domain.ComplianceAction) error {
	r.actions[action.ID] = action
	return nil
}

func (r *fakeActionRepo) Get(_ context.Context, companyID, id string) (*domain.ComplianceAction, error) {
	action, ok := r.actions[id]
	if !ok || action.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	copied := action
	return &copied, nil
}

func (r *fakeActionRepo) List(_ context.Context, companyID string, filter ActionFilter) ([]domain.ComplianceAction, error) {
	var out []domain.ComplianceAction
	for _, action := range r.actions {
		if action.CompanyID != companyID {
			continue
		}
		if filter.Status != "" && action.Status != filter.Status {
			continue
		}
		if filter.ScopeType != "" && action.ScopeType != filter.ScopeType {
			continue
		}
		if filter.ScopeID != "" && action.ScopeID != filter.ScopeID {
			continue
		}
		out = append(out, action)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeActionRepo) Close(_ context.Context, companyID, id string, closure ActionClosure) error {
	action, ok := r.actions[id]
	if !ok || action.CompanyID != companyID || action.Status == domain.ActionClosed {
		return domain.ErrNotFound
	}
	action.Status = domain.ActionClosed
	action.ClosureNote = closure.ClosureNote
	action.ClosureAttachment = closure.AttachmentPath
	action.ClosedAt = &closure.ClosedAt
	action.ClosedBy = closure.ClosedBy
	r.actions[id] = action
	return nil
}

type fakeScopeEntityRepo struct {
	sites        map[string]domain.Site
	participants map[string]domain.Participant
}

func newFakeScopeEntityRepo() *fakeScopeEntityRepo {
	return &fakeScopeEntityRepo{
		sites:        make(map[string]domain.Site),
		participants: make(map[string]domain.Participant),
	}
}

func (r *fakeScopeEntityRepo) GetSite(_ context.Context, companyID, id string) (*domain.Site, error) {
	site, ok := r.sites[id]
	if !ok || site.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	copied := site
	return &copied, nil
}

func (r *fakeScopeEntityRepo) GetParticipant(_ context.Context, companyID, id string) (*domain.Participant, error) {
	participant, ok := r.participants[id]
	if !ok || participant.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	copied := participant
	return &copied, nil
}

type fakeAssignmentRepo struct {
	byUser map[string]domain.AssignmentSet
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{byUser: make(map[string]domain.AssignmentSet)}
}

func (r *fakeAssignmentRepo) Get(_ context.Context, _, userID string) (domain.AssignmentSet, error) {
	return r.byUser[userID], nil
}

type fakeChangeRepo struct {
	records []domain.ChangeRecord
}

func (r *fakeChangeRepo) Append(_ context.Context, rec domain.ChangeRecord) error {
	r.records = append(r.records, rec)
	return nil
}

func (r *fakeChangeRepo) ListByEntity(_ context.Context, companyID string, entity domain.EntityType, entityID string) ([]domain.ChangeRecord, error) {
	var out []domain.ChangeRecord
	for _, rec := range r.records {
		if rec.CompanyID == companyID && rec.EntityType == entity && rec.EntityID == entityID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeChangeRepo) actions() []domain.ChangeAction {
	out := make([]domain.ChangeAction, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec.Action)
	}
	return out
}

type fakeReportRepo struct {
	reports []domain.WeeklyReport
	logs    []domain.GenerationLog
}

func (r *fakeReportRepo) Create(_ context.Context, report domain.WeeklyReport) error {
	r.reports = append(r.reports, report)
	return nil
}

func (r *fakeReportRepo) List(_ context.Context, companyID, participantID string) ([]domain.WeeklyReport, error) {
	var out []domain.WeeklyReport
	for _, report := range r.reports {
		if report.CompanyID != companyID {
			continue
		}
		if participantID != "" && report.ParticipantID != participantID {
			continue
		}
		out = append(out, report)
	}
	return out, nil
}

func (r *fakeReportRepo) Update(_ context.Context, companyID, id string, update ReportUpdate) error {
	for i, report := range r.reports {
		if report.ID != id || report.CompanyID != companyID {
			continue
		}
		if update.Content != nil {
			r.reports[i].Content = *update.Content
		}
		if update.Status != nil {
			r.reports[i].Status = *update.Status
		}
		return nil
	}
	return domain.ErrNotFound
}

func (r *fakeReportRepo) AppendLog(_ context.Context, log domain.GenerationLog) error {
	r.logs = append(r.logs, log)
	return nil
}

type fakeCapability struct {
	allow  bool
	denies []string
	inputs []domain.CapabilityInput
}

func (c *fakeCapability) Check(_ context.Context, input domain.CapabilityInput) (domain.CapabilityDecision, error) {
	c.inputs = append(c.inputs, input)
	return domain.CapabilityDecision{Allow: c.allow, Denies: c.denies}, nil
}

type fakeGenerator struct {
	text  string
	model string
	err   error
	calls int
}

func (g *fakeGenerator) Generate(context.Context, TextGenRequest) (TextGenResult, error) {
	g.calls++
	if g.err != nil {
		return TextGenResult{}, g.err
	}
	return TextGenResult{Text: g.text, Model: g.model}, nil
}

type fakeLimiter struct {
	allowed bool
	err     error
	calls   int
	lastKey string
}

func (l *fakeLimiter) Allow(_ context.Context, key string, limit int, _ time.Duration) (domain.RateLimitDecision, error) {
	l.calls++
	l.lastKey = key
	if l.err != nil {
		return domain.RateLimitDecision{}, l.err
	}
	return domain.RateLimitDecision{Allowed: l.allowed, Limit: limit}, nil
}

var errBoom = errors.New("boom")
