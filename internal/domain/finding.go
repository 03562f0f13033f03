package domain

import "time"

type FindingStatus string

const (
	FindingOpen        FindingStatus = "OPEN"
	FindingUnderReview FindingStatus = "UNDER_REVIEW"
	FindingClosed      FindingStatus = "CLOSED"
)

type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// Finding is a recorded non-conformance requiring remediation, derived from
// an indicator response. Exactly one finding exists per (audit, indicator),
// backed by a unique index.
type Finding struct {
	ID          string
	CompanyID   string
	AuditID     string
	IndicatorID string
	Severity    Rating
	Status      FindingStatus
	Text        string
	OwnerID     string
	DueDate     *time.Time
	ClosureNote string
	ClosedAt    *time.Time
	ClosedBy    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CanFindingTransition reports legal manual finding moves.
func CanFindingTransition(from, to FindingStatus) bool {
	switch from {
	case FindingOpen:
		return to == FindingUnderReview || to == FindingClosed
	case FindingUnderReview:
		return to == FindingClosed || to == FindingOpen
	default:
		return false
	}
}

type EvidenceRequestStatus string

const (
	EvidenceRequested EvidenceRequestStatus = "REQUESTED"
	EvidenceSubmitted EvidenceRequestStatus = "SUBMITTED"
	EvidenceAccepted  EvidenceRequestStatus = "ACCEPTED"
	EvidenceRejected  EvidenceRequestStatus = "REJECTED"
)

type EvidenceKind string

const (
	EvidenceKindUpload EvidenceKind = "UPLOAD"
	EvidenceKindLink   EvidenceKind = "LINK"
)

// EvidenceRequest tracks the chain-of-custody for one finding's remediation
// evidence. One request per finding (unique index); REJECTED loops back to
// SUBMITTED on resubmission.
type EvidenceRequest struct {
	ID         string
	CompanyID  string
	FindingID  string
	Type       string
	Note       string
	DueDate    *time.Time
	Status     EvidenceRequestStatus
	ReviewNote string
	ReviewedAt *time.Time
	ReviewedBy string
	CreatedBy  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// EvidenceItem is an append-only record of one uploaded file or external
// link; never mutated after creation.
type EvidenceItem struct {
	ID          string
	CompanyID   string
	RequestID   string
	Kind        EvidenceKind
	FilePath    string
	MimeType    string
	ExternalURL string
	SubmittedBy string
	CreatedAt   time.Time
}

type ReviewDecision string

const (
	ReviewAccepted ReviewDecision = "ACCEPTED"
	ReviewRejected ReviewDecision = "REJECTED"
)
