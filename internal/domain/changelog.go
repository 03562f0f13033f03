package domain

import "time"

type ChangeAction string

const (
	ChangeAuditCreated      ChangeAction = "audit_created"
	ChangeAuditScopeUpdated ChangeAction = "audit_scope_updated"
	ChangeAuditStarted      ChangeAction = "audit_started"
	ChangeAuditSubmitted    ChangeAction = "audit_submitted"
	ChangeAuditClosed       ChangeAction = "audit_closed"
	ChangeResponseSaved     ChangeAction = "indicator_response_saved"
	ChangeFindingCreated    ChangeAction = "finding_created"
	ChangeFindingUpdated    ChangeAction = "finding_updated"
	ChangeEvidenceRequested ChangeAction = "evidence_requested"
	ChangeEvidenceSubmitted ChangeAction = "evidence_submitted"
	ChangeEvidenceReviewed  ChangeAction = "evidence_reviewed"
	ChangeRunCreated        ChangeAction = "compliance_run_created"
	ChangeRunSubmitted      ChangeAction = "compliance_run_submitted"
	ChangeActionClosed      ChangeAction = "compliance_action_closed"
	ChangeReportGenerated   ChangeAction = "report_generated"
)

type EntityType string

const (
	EntityAudit            EntityType = "audit"
	EntityFinding          EntityType = "finding"
	EntityEvidenceRequest  EntityType = "evidence_request"
	EntityComplianceRun    EntityType = "compliance_run"
	EntityComplianceAction EntityType = "compliance_action"
	EntityWeeklyReport     EntityType = "weekly_report"
)

// ChangeRecord is the append-only audit-log entry every workflow mutation
// emits: who did what to which entity, with before/after JSON snapshots.
type ChangeRecord struct {
	ID          string
	CompanyID   string
	ActorID     string
	ActorRole   Role
	Action      ChangeAction
	EntityType  EntityType
	EntityID    string
	Before      any
	After       any
	PayloadHash string
	CreatedAt   time.Time
}
