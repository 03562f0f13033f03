package domain

import "time"

type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// AuditTemplate is a reusable checklist definition a tenant runs audits
// against.
type AuditTemplate struct {
	ID          string
	CompanyID   string
	Name        string
	Description string
	CreatedAt   time.Time
}

type AuditTemplateIndicator struct {
	ID         string
	CompanyID  string
	TemplateID string
	Text       string
	RiskLevel  RiskLevel
	Critical   bool
	SortOrder  int
	CreatedAt  time.Time
}

type Rating string

const (
	RatingConformance   Rating = "CONFORMANCE"
	RatingMinorNC       Rating = "MINOR_NC"
	RatingMajorNC       Rating = "MAJOR_NC"
	RatingNotApplicable Rating = "NOT_APPLICABLE"
)

func (r Rating) Valid() bool {
	switch r {
	case RatingConformance, RatingMinorNC, RatingMajorNC, RatingNotApplicable:
		return true
	}
	return false
}

// NonConformance reports whether the rating must raise a finding.
func (r Rating) NonConformance() bool {
	return r == RatingMinorNC || r == RatingMajorNC
}

// IndicatorResponse is the single rating per (audit, indicator). Upsert
// semantics: the latest write wins, no history is retained.
type IndicatorResponse struct {
	ID          string
	CompanyID   string
	AuditID     string
	IndicatorID string
	Rating      Rating
	Comment     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
