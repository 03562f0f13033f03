package db

import "time"

type CompanyModel struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (CompanyModel) TableName() string {
	return "companies"
}

type ServiceCategoryModel struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	CompanyID string    `gorm:"type:uuid;index;not null"`
	Label     string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (ServiceCategoryModel) TableName() string {
	return "service_categories"
}

type AuditModel struct {
	ID             string `gorm:"type:uuid;primaryKey"`
	CompanyID      string `gorm:"type:uuid;index;not null"`
	Type           string `gorm:"not null"`
	Status         string `gorm:"index;not null"`
	ServiceContext string `gorm:"not null"`
	ScopeLocked    bool   `gorm:"not null"`
	StartDate      *time.Time
	EndDate        *time.Time
	AuditorName    string
	AuditorOrg     string
	AuditorEmail   string
	CloseReason    string
	ClosedAt       *time.Time
	ClosedBy       string
	CreatedBy      string    `gorm:"not null"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

func (AuditModel) TableName() string {
	return "audits"
}

type ScopeLineItemModel struct {
	ID         string    `gorm:"type:uuid;primaryKey"`
	CompanyID  string    `gorm:"type:uuid;index;not null"`
	AuditID    string    `gorm:"type:uuid;index;not null"`
	LineItemID string    `gorm:"not null"`
	Label      string    `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
}

func (ScopeLineItemModel) TableName() string {
	return "audit_scope_line_items"
}

type AuditTemplateModel struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	CompanyID   string    `gorm:"type:uuid;index;not null"`
	Name        string    `gorm:"not null"`
	Description string
	CreatedAt   time.Time `gorm:"not null"`
}

func (AuditTemplateModel) TableName() string {
	return "audit_templates"
}

type AuditTemplateIndicatorModel struct {
	ID         string    `gorm:"type:uuid;primaryKey"`
	CompanyID  string    `gorm:"type:uuid;index;not null"`
	TemplateID string    `gorm:"type:uuid;index;not null"`
	Text       string    `gorm:"not null"`
	RiskLevel  string    `gorm:"not null"`
	Critical   bool      `gorm:"not null"`
	SortOrder  int       `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
}

func (AuditTemplateIndicatorModel) TableName() string {
	return "audit_template_indicators"
}

type AuditRunModel struct {
	ID         string `gorm:"type:uuid;primaryKey"`
	CompanyID  string `gorm:"type:uuid;index;not null"`
	AuditID    string `gorm:"type:uuid;uniqueIndex;not null"`
	TemplateID string `gorm:"type:uuid;not null"`
	StartedAt  *time.Time
	CreatedAt  time.Time `gorm:"not null"`
}

func (AuditRunModel) TableName() string {
	return "audit_runs"
}

type IndicatorResponseModel struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	CompanyID   string    `gorm:"type:uuid;index;not null"`
	AuditID     string    `gorm:"type:uuid;uniqueIndex:ux_responses_audit_indicator;not null"`
	IndicatorID string    `gorm:"type:uuid;uniqueIndex:ux_responses_audit_indicator;not null"`
	Rating      string    `gorm:"not null"`
	Comment     string
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (IndicatorResponseModel) TableName() string {
	return "audit_indicator_responses"
}

// The unique index over (audit_id, indicator_id) is what makes finding
// auto-creation race-free: concurrent identical responses collide here
// instead of inserting twice.
type FindingModel struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	CompanyID   string `gorm:"type:uuid;index;not null"`
	AuditID     string `gorm:"type:uuid;uniqueIndex:ux_findings_audit_indicator;not null"`
	IndicatorID string `gorm:"type:uuid;uniqueIndex:ux_findings_audit_indicator;not null"`
	Severity    string `gorm:"not null"`
	Status      string `gorm:"index;not null"`
	Text        string `gorm:"not null"`
	OwnerID     string
	DueDate     *time.Time
	ClosureNote string
	ClosedAt    *time.Time
	ClosedBy    string
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (FindingModel) TableName() string {
	return "findings"
}

type EvidenceRequestModel struct {
	ID         string `gorm:"type:uuid;primaryKey"`
	CompanyID  string `gorm:"type:uuid;index;not null"`
	FindingID  string `gorm:"type:uuid;uniqueIndex;not null"`
	Type       string
	Note       string
	DueDate    *time.Time
	Status     string `gorm:"not null"`
	ReviewNote string
	ReviewedAt *time.Time
	ReviewedBy string
	CreatedBy  string    `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

func (EvidenceRequestModel) TableName() string {
	return "evidence_requests"
}

type EvidenceItemModel struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	CompanyID   string    `gorm:"type:uuid;index;not null"`
	RequestID   string    `gorm:"type:uuid;index;not null"`
	Kind        string    `gorm:"not null"`
	FilePath    string
	MimeType    string
	ExternalURL string
	SubmittedBy string    `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (EvidenceItemModel) TableName() string {
	return "evidence_items"
}

type SiteModel struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	CompanyID string    `gorm:"type:uuid;index;not null"`
	Name      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (SiteModel) TableName() string {
	return "sites"
}

type ParticipantModel struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	CompanyID string    `gorm:"type:uuid;index;not null"`
	Name      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (ParticipantModel) TableName() string {
	return "participants"
}

type SiteAssignmentModel struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	CompanyID string    `gorm:"type:uuid;index;not null"`
	UserID    string    `gorm:"index;not null"`
	SiteID    string    `gorm:"type:uuid;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (SiteAssignmentModel) TableName() string {
	return "site_assignments"
}

type ParticipantAssignmentModel struct {
	ID            string    `gorm:"type:uuid;primaryKey"`
	CompanyID     string    `gorm:"type:uuid;index;not null"`
	UserID        string    `gorm:"index;not null"`
	ParticipantID string    `gorm:"type:uuid;not null"`
	CreatedAt     time.Time `gorm:"not null"`
}

func (ParticipantAssignmentModel) TableName() string {
	return "participant_assignments"
}

type ComplianceTemplateModel struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	CompanyID string    `gorm:"type:uuid;index;not null"`
	Name      string    `gorm:"not null"`
	ScopeType string    `gorm:"not null"`
	Frequency string    `gorm:"not null"`
	Active    bool      `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (ComplianceTemplateModel) TableName() string {
	return "compliance_templates"
}

type ComplianceTemplateItemModel struct {
	ID         string    `gorm:"type:uuid;primaryKey"`
	CompanyID  string    `gorm:"type:uuid;index;not null"`
	TemplateID string    `gorm:"type:uuid;index;not null"`
	Title      string    `gorm:"not null"`
	Type       string    `gorm:"not null"`
	Critical   bool      `gorm:"not null"`
	SortOrder  int       `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
}

func (ComplianceTemplateItemModel) TableName() string {
	return "compliance_template_items"
}

// PeriodDay is the date-truncated period start backing the duplicate-run
// unique index. Weekly periods that overlap without sharing a start day
// still coexist.
type ComplianceRunModel struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	CompanyID   string    `gorm:"type:uuid;uniqueIndex:ux_runs_period;not null"`
	TemplateID  string    `gorm:"type:uuid;uniqueIndex:ux_runs_period;not null"`
	ScopeType   string    `gorm:"uniqueIndex:ux_runs_period;not null"`
	ScopeID     string    `gorm:"type:uuid;uniqueIndex:ux_runs_period;not null"`
	PeriodDay   time.Time `gorm:"uniqueIndex:ux_runs_period;not null"`
	PeriodStart time.Time `gorm:"not null"`
	PeriodEnd   time.Time `gorm:"not null"`
	Status      string    `gorm:"index;not null"`
	StatusColor string
	SubmittedAt *time.Time
	SubmittedBy string
	CreatedBy   string    `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (ComplianceRunModel) TableName() string {
	return "compliance_runs"
}

type ComplianceResponseModel struct {
	ID             string    `gorm:"type:uuid;primaryKey"`
	CompanyID      string    `gorm:"type:uuid;index;not null"`
	RunID          string    `gorm:"type:uuid;uniqueIndex:ux_responses_run_item;not null"`
	ItemID         string    `gorm:"type:uuid;uniqueIndex:ux_responses_run_item;not null"`
	Value          string
	Notes          string
	AttachmentPath string
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

func (ComplianceResponseModel) TableName() string {
	return "compliance_responses"
}

type ComplianceActionModel struct {
	ID                string `gorm:"type:uuid;primaryKey"`
	CompanyID         string `gorm:"type:uuid;index;not null"`
	RunID             string `gorm:"type:uuid;index;not null"`
	ItemID            string `gorm:"type:uuid;not null"`
	ScopeType         string `gorm:"not null"`
	ScopeID           string `gorm:"type:uuid;index;not null"`
	Severity          string `gorm:"not null"`
	Status            string `gorm:"index;not null"`
	Description       string `gorm:"not null"`
	AssigneeID        string
	ClosureNote       string
	ClosureAttachment string
	ClosedAt          *time.Time
	ClosedBy          string
	CreatedAt         time.Time `gorm:"not null"`
	UpdatedAt         time.Time `gorm:"not null"`
}

func (ComplianceActionModel) TableName() string {
	return "compliance_actions"
}

type ChangeRecordModel struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	CompanyID   string `gorm:"type:uuid;index;not null"`
	ActorID     string
	ActorRole   string
	Action      string `gorm:"not null"`
	EntityType  string `gorm:"index:ix_changes_entity;not null"`
	EntityID    string `gorm:"index:ix_changes_entity"`
	BeforeJSON  []byte `gorm:"type:jsonb"`
	AfterJSON   []byte `gorm:"type:jsonb"`
	PayloadHash string
	CreatedAt   time.Time `gorm:"not null"`
}

func (ChangeRecordModel) TableName() string {
	return "change_records"
}

type WeeklyReportModel struct {
	ID            string    `gorm:"type:uuid;primaryKey"`
	CompanyID     string    `gorm:"type:uuid;index;not null"`
	ParticipantID string    `gorm:"type:uuid;index;not null"`
	PeriodStart   time.Time `gorm:"not null"`
	PeriodEnd     time.Time `gorm:"not null"`
	Content       string
	Status        string `gorm:"not null"`
	Model         string
	PromptVersion string
	InputHash     string
	CreatedBy     string
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

func (WeeklyReportModel) TableName() string {
	return "weekly_reports"
}

type GenerationLogModel struct {
	ID            string    `gorm:"type:uuid;primaryKey"`
	CompanyID     string    `gorm:"type:uuid;index;not null"`
	FeatureKey    string    `gorm:"not null"`
	ParticipantID string    `gorm:"type:uuid;index"`
	PeriodStart   time.Time
	Model         string
	PromptVersion string
	InputHash     string
	Success       bool `gorm:"not null"`
	ErrorMessage  string
	CreatedAt     time.Time `gorm:"not null"`
}

func (GenerationLogModel) TableName() string {
	return "generation_logs"
}
