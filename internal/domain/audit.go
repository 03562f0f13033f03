package domain

import (
	"strings"
	"time"
)

type AuditType string

const (
	AuditTypeInternal AuditType = "INTERNAL"
	AuditTypeExternal AuditType = "EXTERNAL"
)

type AuditStatus string

const (
	AuditStatusDraft      AuditStatus = "DRAFT"
	AuditStatusInProgress AuditStatus = "IN_PROGRESS"
	AuditStatusInReview   AuditStatus = "IN_REVIEW"
	AuditStatusClosed     AuditStatus = "CLOSED"
)

// Audit is one formal compliance review, scoped to a tenant company, a
// service context and a date range. Audits are never hard-deleted.
type Audit struct {
	ID             string
	CompanyID      string
	Type           AuditType
	Status         AuditStatus
	ServiceContext string
	ScopeLocked    bool
	StartDate      *time.Time
	EndDate        *time.Time
	AuditorName    string
	AuditorOrg     string
	AuditorEmail   string
	CloseReason    string
	ClosedAt       *time.Time
	ClosedBy       string
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ScopeLineItem joins an audit to one selected service-catalogue line item.
// Scope updates replace the whole set, they are not diffed.
type ScopeLineItem struct {
	ID         string
	CompanyID  string
	AuditID    string
	LineItemID string
	Label      string
	CreatedAt  time.Time
}

// AuditRun binds an audit to its chosen template, 1:1 on audit id.
type AuditRun struct {
	ID         string
	CompanyID  string
	AuditID    string
	TemplateID string
	StartedAt  *time.Time
	CreatedAt  time.Time
}

// NextAuditStatus reports whether an audit may move from its current status
// to the target in the forward direction. Closing is handled separately
// because it is reachable from any non-CLOSED state.
func NextAuditStatus(from AuditStatus) (AuditStatus, bool) {
	switch from {
	case AuditStatusDraft:
		return AuditStatusInProgress, true
	case AuditStatusInProgress:
		return AuditStatusInReview, true
	case AuditStatusInReview:
		return AuditStatusClosed, true
	default:
		return "", false
	}
}

// ServiceCategory is one entry of the tenant's service catalogue; audit
// service-context labels must match one case-insensitively.
type ServiceCategory struct {
	ID        string
	CompanyID string
	Label     string
	CreatedAt time.Time
}

func MatchServiceContext(label string, categories []ServiceCategory) bool {
	want := strings.TrimSpace(label)
	for _, c := range categories {
		if strings.EqualFold(c.Label, want) {
			return true
		}
	}
	return false
}
