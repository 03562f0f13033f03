package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"complyd/internal/domain"
)

// AuditLifecycle governs audit progression DRAFT -> IN_PROGRESS ->
// IN_REVIEW -> CLOSED, delegating scope and template concerns to the
// repositories and emitting a change record per transition.
type AuditLifecycle struct {
	Audits     AuditRepository
	Scope      ScopeRepository
	Categories CategoryRepository
	Runs       AuditRunRepository
	Templates  AuditTemplateRepository
	Responses  ResponseRepository
	Findings   FindingRepository
	Changes    *ChangeEmitter
	Clock      Clock

	// AllowCloseFromDraft permits abandoning an unstarted audit. The upstream
	// behavior is ambiguous here, so it is policy rather than hard-coded.
	AllowCloseFromDraft bool
}

type ScopeItemInput struct {
	LineItemID string
	Label      string
}

type CreateAuditRequest struct {
	Type           domain.AuditType
	ServiceContext string
	StartDate      *time.Time
	EndDate        *time.Time
	AuditorName    string
	AuditorOrg     string
	AuditorEmail   string
	ScopeItems     []ScopeItemInput
}

func (uc *AuditLifecycle) Create(ctx context.Context, actor domain.Actor, req CreateAuditRequest) (*domain.Audit, error) {
	if req.Type != domain.AuditTypeInternal && req.Type != domain.AuditTypeExternal {
		return nil, domain.Validationf("audit type must be INTERNAL or EXTERNAL")
	}
	if len(req.ScopeItems) == 0 {
		return nil, domain.Validationf("audit requires at least one scope line item")
	}
	if strings.TrimSpace(req.ServiceContext) == "" {
		return nil, domain.Validationf("service context is required")
	}
	if req.Type == domain.AuditTypeExternal {
		if strings.TrimSpace(req.AuditorName) == "" || strings.TrimSpace(req.AuditorOrg) == "" || strings.TrimSpace(req.AuditorEmail) == "" {
			return nil, domain.Validationf("external audits require auditor name, organisation and email")
		}
	}

	categories, err := uc.Categories.ListByCompany(ctx, actor.CompanyID)
	if err != nil {
		return nil, err
	}
	if !domain.MatchServiceContext(req.ServiceContext, categories) {
		return nil, domain.Validationf("unknown service context %q", req.ServiceContext)
	}

	now := uc.now()
	audit := domain.Audit{
		ID:             uuid.NewString(),
		CompanyID:      actor.CompanyID,
		Type:           req.Type,
		Status:         domain.AuditStatusDraft,
		ServiceContext: strings.TrimSpace(req.ServiceContext),
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		AuditorName:    req.AuditorName,
		AuditorOrg:     req.AuditorOrg,
		AuditorEmail:   req.AuditorEmail,
		CreatedBy:      actor.UserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.Audits.Create(ctx, audit); err != nil {
		return nil, err
	}
	if err := uc.Scope.Replace(ctx, actor.CompanyID, audit.ID, uc.scopeRows(actor.CompanyID, audit.ID, req.ScopeItems, now)); err != nil {
		return nil, err
	}
	if err := uc.Changes.Emit(ctx, actor, domain.ChangeAuditCreated, domain.EntityAudit, audit.ID, nil, audit); err != nil {
		return nil, err
	}
	return &audit, nil
}

// UpdateScope fully replaces the audit's scope selection. Locked scope
// cannot mutate.
func (uc *AuditLifecycle) UpdateScope(ctx context.Context, actor domain.Actor, auditID string, items []ScopeItemInput) error {
	audit, err := uc.getAudit(ctx, actor, auditID)
	if err != nil {
		return err
	}
	if audit.ScopeLocked {
		return domain.Preconditionf("audit scope is locked")
	}
	if len(items) == 0 {
		return domain.Validationf("audit requires at least one scope line item")
	}
	before, err := uc.Scope.ListByAudit(ctx, actor.CompanyID, auditID)
	if err != nil {
		return err
	}
	after := uc.scopeRows(actor.CompanyID, auditID, items, uc.now())
	if err := uc.Scope.Replace(ctx, actor.CompanyID, auditID, after); err != nil {
		return err
	}
	return uc.Changes.Emit(ctx, actor, domain.ChangeAuditScopeUpdated, domain.EntityAudit, auditID, before, after)
}

// SelectTemplate binds the audit to a template via run upsert, idempotent on
// audit id. Only DRAFT audits may change template: responses already
// recorded against another template would be orphaned otherwise.
func (uc *AuditLifecycle) SelectTemplate(ctx context.Context, actor domain.Actor, auditID, templateID string) (*domain.AuditRun, error) {
	audit, err := uc.getAudit(ctx, actor, auditID)
	if err != nil {
		return nil, err
	}
	if audit.Status != domain.AuditStatusDraft {
		return nil, domain.Preconditionf("template can only be selected while the audit is in DRAFT")
	}
	if _, err := uc.Templates.Get(ctx, actor.CompanyID, templateID); err != nil {
		return nil, uc.notFound(err, "template %s", templateID)
	}
	run := domain.AuditRun{
		ID:         uuid.NewString(),
		CompanyID:  actor.CompanyID,
		AuditID:    auditID,
		TemplateID: templateID,
		CreatedAt:  uc.now(),
	}
	if err := uc.Runs.Upsert(ctx, run); err != nil {
		return nil, err
	}
	return &run, nil
}

// Start moves DRAFT -> IN_PROGRESS. External audits lock their scope here.
func (uc *AuditLifecycle) Start(ctx context.Context, actor domain.Actor, auditID string) (*domain.Audit, error) {
	audit, err := uc.getAudit(ctx, actor, auditID)
	if err != nil {
		return nil, err
	}
	if audit.Status != domain.AuditStatusDraft {
		return nil, domain.Preconditionf("audit cannot start from status %s", audit.Status)
	}
	scope, err := uc.Scope.ListByAudit(ctx, actor.CompanyID, auditID)
	if err != nil {
		return nil, err
	}
	if len(scope) == 0 {
		return nil, domain.Preconditionf("audit cannot start with an empty scope")
	}
	run, err := uc.Runs.GetByAudit(ctx, actor.CompanyID, auditID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Preconditionf("audit cannot start without a selected template")
		}
		return nil, err
	}

	before := *audit
	now := uc.now()
	status := domain.AuditStatusInProgress
	update := AuditUpdate{Status: &status}
	if audit.Type == domain.AuditTypeExternal {
		locked := true
		update.ScopeLocked = &locked
		audit.ScopeLocked = true
	}
	if err := uc.Audits.Update(ctx, actor.CompanyID, auditID, update); err != nil {
		return nil, err
	}
	if err := uc.Runs.SetStarted(ctx, actor.CompanyID, auditID, now); err != nil {
		return nil, err
	}
	audit.Status = status
	audit.UpdatedAt = now
	run.StartedAt = &now
	if err := uc.Changes.Emit(ctx, actor, domain.ChangeAuditStarted, domain.EntityAudit, auditID, before, *audit); err != nil {
		return nil, err
	}
	return audit, nil
}

// SubmitForReview moves IN_PROGRESS -> IN_REVIEW once every template
// indicator has a recorded response. Only the count is checked, not the
// response content.
func (uc *AuditLifecycle) SubmitForReview(ctx context.Context, actor domain.Actor, auditID string) (*domain.Audit, error) {
	audit, err := uc.getAudit(ctx, actor, auditID)
	if err != nil {
		return nil, err
	}
	if audit.Status != domain.AuditStatusInProgress {
		return nil, domain.Preconditionf("audit cannot be submitted from status %s", audit.Status)
	}
	run, err := uc.Runs.GetByAudit(ctx, actor.CompanyID, auditID)
	if err != nil {
		return nil, uc.notFound(err, "audit run for audit %s", auditID)
	}
	indicators, err := uc.Templates.ListIndicators(ctx, actor.CompanyID, run.TemplateID)
	if err != nil {
		return nil, err
	}
	responses, err := uc.Responses.CountByAudit(ctx, actor.CompanyID, auditID)
	if err != nil {
		return nil, err
	}
	if responses < int64(len(indicators)) {
		return nil, domain.Preconditionf("%d indicator(s) still need a response", int64(len(indicators))-responses)
	}

	before := *audit
	status := domain.AuditStatusInReview
	if err := uc.Audits.Update(ctx, actor.CompanyID, auditID, AuditUpdate{Status: &status}); err != nil {
		return nil, err
	}
	audit.Status = status
	audit.UpdatedAt = uc.now()
	if err := uc.Changes.Emit(ctx, actor, domain.ChangeAuditSubmitted, domain.EntityAudit, auditID, before, *audit); err != nil {
		return nil, err
	}
	return audit, nil
}

// Close ends the audit from any non-CLOSED state. When open MAJOR_NC
// findings remain, a close reason is mandatory.
func (uc *AuditLifecycle) Close(ctx context.Context, actor domain.Actor, auditID, reason string) (*domain.Audit, error) {
	audit, err := uc.getAudit(ctx, actor, auditID)
	if err != nil {
		return nil, err
	}
	if audit.Status == domain.AuditStatusClosed {
		return nil, domain.Preconditionf("audit is already closed")
	}
	if audit.Status == domain.AuditStatusDraft && !uc.AllowCloseFromDraft {
		return nil, domain.Preconditionf("closing a DRAFT audit is disabled")
	}
	openMajor, err := uc.Findings.CountOpenMajor(ctx, actor.CompanyID, auditID)
	if err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if openMajor > 0 && reason == "" {
		return nil, domain.Preconditionf("%d open MAJOR_NC finding(s) require a close reason", openMajor)
	}

	before := *audit
	now := uc.now()
	status := domain.AuditStatusClosed
	update := AuditUpdate{
		Status:      &status,
		CloseReason: &reason,
		ClosedAt:    &now,
		ClosedBy:    &actor.UserID,
	}
	if err := uc.Audits.Update(ctx, actor.CompanyID, auditID, update); err != nil {
		return nil, err
	}
	audit.Status = status
	audit.CloseReason = reason
	audit.ClosedAt = &now
	audit.ClosedBy = actor.UserID
	audit.UpdatedAt = now
	if err := uc.Changes.Emit(ctx, actor, domain.ChangeAuditClosed, domain.EntityAudit, auditID, before, *audit); err != nil {
		return nil, err
	}
	return audit, nil
}

// AuditDetail is the joined read model: audit plus scope, recorded
// responses, run and template.
type AuditDetail struct {
	Audit     domain.Audit
	Scope     []domain.ScopeLineItem
	Responses []domain.IndicatorResponse
	Run       *domain.AuditRun
	Template  *domain.AuditTemplate
}

func (uc *AuditLifecycle) Get(ctx context.Context, actor domain.Actor, auditID string) (*AuditDetail, error) {
	audit, err := uc.getAudit(ctx, actor, auditID)
	if err != nil {
		return nil, err
	}
	scope, err := uc.Scope.ListByAudit(ctx, actor.CompanyID, auditID)
	if err != nil {
		return nil, err
	}
	responses, err := uc.Responses.ListByAudit(ctx, actor.CompanyID, auditID)
	if err != nil {
		return nil, err
	}
	detail := &AuditDetail{Audit: *audit, Scope: scope, Responses: responses}
	run, err := uc.Runs.GetByAudit(ctx, actor.CompanyID, auditID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return detail, nil
		}
		return nil, err
	}
	detail.Run = run
	tpl, err := uc.Templates.Get(ctx, actor.CompanyID, run.TemplateID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	detail.Template = tpl
	return detail, nil
}

func (uc *AuditLifecycle) List(ctx context.Context, actor domain.Actor, filter AuditFilter) ([]domain.Audit, error) {
	return uc.Audits.List(ctx, actor.CompanyID, filter)
}

func (uc *AuditLifecycle) getAudit(ctx context.Context, actor domain.Actor, auditID string) (*domain.Audit, error) {
	audit, err := uc.Audits.Get(ctx, actor.CompanyID, auditID)
	if err != nil {
		return nil, uc.notFound(err, "audit %s", auditID)
	}
	return audit, nil
}

func (uc *AuditLifecycle) notFound(err error, format string, args ...any) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NotFoundf(format+" not found", args...)
	}
	return err
}

func (uc *AuditLifecycle) scopeRows(companyID, auditID string, items []ScopeItemInput, now time.Time) []domain.ScopeLineItem {
	rows := make([]domain.ScopeLineItem, 0, len(items))
	for _, item := range items {
		rows = append(rows, domain.ScopeLineItem{
			ID:         uuid.NewString(),
			CompanyID:  companyID,
			AuditID:    auditID,
			LineItemID: item.LineItemID,
			Label:      item.Label,
			CreatedAt:  now,
		})
	}
	return rows
}

func (uc *AuditLifecycle) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock().UTC()
	}
	return time.Now().UTC()
}
