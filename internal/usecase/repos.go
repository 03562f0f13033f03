package usecase

import (
	"context"
	"time"

	"complyd/internal/domain"
)

type Clock func() time.Time

// Repository interfaces are the persistence gateway contract. Every method
// is tenant-scoped: implementations must filter by company id on reads and
// writes. Absence is domain.ErrNotFound; unique-index violations surface as
// domain.ErrDuplicate.

type AuditFilter struct {
	Status domain.AuditStatus
	Type   domain.AuditType
}

// AuditUpdate is the explicit field-enumerated update command; nil pointer
// fields are left untouched.
type AuditUpdate struct {
	Status      *domain.AuditStatus
	ScopeLocked *bool
	CloseReason *string
	ClosedAt    *time.Time
	ClosedBy    *string
}

type AuditRepository interface {
	Create(ctx context.Context, audit domain.Audit) error
	Get(ctx context.Context, companyID, id string) (*domain.Audit, error)
	List(ctx context.Context, companyID string, filter AuditFilter) ([]domain.Audit, error)
	Update(ctx context.Context, companyID, id string, update AuditUpdate) error
}

type ScopeRepository interface {
	// Replace removes the audit's current scope rows and inserts items.
	Replace(ctx context.Context, companyID, auditID string, items []domain.ScopeLineItem) error
	ListByAudit(ctx context.Context, companyID, auditID string) ([]domain.ScopeLineItem, error)
}

type CategoryRepository interface {
	ListByCompany(ctx context.Context, companyID string) ([]domain.ServiceCategory, error)
}

type AuditRunRepository interface {
	// Upsert is idempotent on audit id: reselecting a template replaces the
	// previous binding.
	Upsert(ctx context.Context, run domain.AuditRun) error
	GetByAudit(ctx context.Context, companyID, auditID string) (*domain.AuditRun, error)
	SetStarted(ctx context.Context, companyID, auditID string, at time.Time) error
}

type AuditTemplateRepository interface {
	Get(ctx context.Context, companyID, id string) (*domain.AuditTemplate, error)
	List(ctx context.Context, companyID string) ([]domain.AuditTemplate, error)
	ListIndicators(ctx context.Context, companyID, templateID string) ([]domain.AuditTemplateIndicator, error)
	GetIndicator(ctx context.Context, companyID, indicatorID string) (*domain.AuditTemplateIndicator, error)
}

type ResponseRepository interface {
	Upsert(ctx context.Context, resp domain.IndicatorResponse) error
	CountByAudit(ctx context.Context, companyID, auditID string) (int64, error)
	ListByAudit(ctx context.Context, companyID, auditID string) ([]domain.IndicatorResponse, error)
}

type FindingUpdate struct {
	Status      *domain.FindingStatus
	OwnerID     *string
	DueDate     *time.Time
	ClosureNote *string
	ClosedAt    *time.Time
	ClosedBy    *string
}

type FindingRepository interface {
	// Create returns domain.ErrDuplicate when a finding already exists for
	// the (audit, indicator) pair.
	Create(ctx context.Context, finding domain.Finding) error
	Get(ctx context.Context, companyID, id string) (*domain.Finding, error)
	ListByAudit(ctx context.Context, companyID, auditID string) ([]domain.Finding, error)
	CountOpenMajor(ctx context.Context, companyID, auditID string) (int64, error)
	Update(ctx context.Context, companyID, id string, update FindingUpdate) error
}

type EvidenceRequestUpdate struct {
	Status     *domain.EvidenceRequestStatus
	ReviewNote *string
	ReviewedAt *time.Time
	ReviewedBy *string
}

type EvidenceRepository interface {
	// CreateRequest returns domain.ErrDuplicate when the finding already has
	// a request.
	CreateRequest(ctx context.Context, req domain.EvidenceRequest) error
	GetRequest(ctx context.Context, companyID, id string) (*domain.EvidenceRequest, error)
	GetRequestByFinding(ctx context.Context, companyID, findingID string) (*domain.EvidenceRequest, error)
	UpdateRequest(ctx context.Context, companyID, id string, update EvidenceRequestUpdate) error
	AddItem(ctx context.Context, item domain.EvidenceItem) error
	ListItems(ctx context.Context, companyID, requestID string) ([]domain.EvidenceItem, error)
}

type ComplianceTemplateUpdate struct {
	Name   *string
	Active *bool
}

type ComplianceTemplateRepository interface {
	Create(ctx context.Context, tpl domain.ComplianceTemplate) error
	Get(ctx context.Context, companyID, id string) (*domain.ComplianceTemplate, error)
	List(ctx context.Context, companyID string) ([]domain.ComplianceTemplate, error)
	Update(ctx context.Context, companyID, id string, update ComplianceTemplateUpdate) error
	CreateItem(ctx context.Context, item domain.ComplianceTemplateItem) error
	ListItems(ctx context.Context, companyID, templateID string) ([]domain.ComplianceTemplateItem, error)
	DeleteItem(ctx context.Context, companyID, itemID string) error
}

type RunFilter struct {
	TemplateID string
	ScopeType  domain.ScopeType
	ScopeID    string
	Statuses   []domain.RunStatus
	From       *time.Time
	To         *time.Time
}

type RunSubmission struct {
	StatusColor domain.StatusColor
	SubmittedAt time.Time
	SubmittedBy string
}

type ComplianceRunRepository interface {
	// Create returns domain.ErrDuplicate when a run already exists for the
	// same (template, scope, truncated period-start day).
	Create(ctx context.Context, run domain.ComplianceRun) error
	Get(ctx context.Context, companyID, id string) (*domain.ComplianceRun, error)
	List(ctx context.Context, companyID string, filter RunFilter) ([]domain.ComplianceRun, error)
	SetSubmitted(ctx context.Context, companyID, id string, sub RunSubmission) error
}

type ComplianceResponseRepository interface {
	Upsert(ctx context.Context, resp domain.ComplianceResponse) error
	ListByRun(ctx context.Context, companyID, runID string) ([]domain.ComplianceResponse, error)
}

type ActionFilter struct {
	Status    domain.ActionStatus
	ScopeType domain.ScopeType
	ScopeID   string
	From      *time.Time
	To        *time.Time
}

type ActionClosure struct {
	ClosureNote    string
	AttachmentPath string
	ClosedAt       time.Time
	ClosedBy       string
}

type ComplianceActionRepository interface {
	Create(ctx context.Context, action domain.ComplianceAction) error
	Get(ctx context.Context, companyID, id string) (*domain.ComplianceAction, error)
	List(ctx context.Context, companyID string, filter ActionFilter) ([]domain.ComplianceAction, error)
	Close(ctx context.Context, companyID, id string, closure ActionClosure) error
}

type ScopeEntityRepository interface {
	GetSite(ctx context.Context, companyID, id string) (*domain.Site, error)
	GetParticipant(ctx context.Context, companyID, id string) (*domain.Participant, error)
}

type AssignmentRepository interface {
	Get(ctx context.Context, companyID, userID string) (domain.AssignmentSet, error)
}

type ChangeRecordRepository interface {
	Append(ctx context.Context, rec domain.ChangeRecord) error
	ListByEntity(ctx context.Context, companyID string, entity domain.EntityType, entityID string) ([]domain.ChangeRecord, error)
}

type ReportUpdate struct {
	Content *string
	Status  *domain.ReportStatus
}

type ReportRepository interface {
	Create(ctx context.Context, report domain.WeeklyReport) error
	List(ctx context.Context, companyID, participantID string) ([]domain.WeeklyReport, error)
	Update(ctx context.Context, companyID, id string, update ReportUpdate) error
	AppendLog(ctx context.Context, log domain.GenerationLog) error
}

// TextGenerator is the external narrative-synthesis collaborator.
type TextGenRequest struct {
	System string
	Prompt string
}

type TextGenResult struct {
	Text  string
	Model string
}

type TextGenerator interface {
	Generate(ctx context.Context, req TextGenRequest) (TextGenResult, error)
}
