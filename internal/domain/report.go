package domain

import "time"

type ReportStatus string

const (
	ReportDraft     ReportStatus = "DRAFT"
	ReportPublished ReportStatus = "PUBLISHED"
)

// WeeklyReport is the stored narrative summary for one participant and
// period, synthesized by the external text-generation collaborator.
type WeeklyReport struct {
	ID            string
	CompanyID     string
	ParticipantID string
	PeriodStart   time.Time
	PeriodEnd     time.Time
	Content       string
	Status        ReportStatus
	Model         string
	PromptVersion string
	InputHash     string
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ReportInput is the structured object handed to the generator; its JSON
// encoding is also what the idempotency hash covers.
type ReportInput struct {
	ParticipantName string             `json:"participant_name"`
	PeriodStart     string             `json:"period_start"`
	PeriodEnd       string             `json:"period_end"`
	Runs            []ReportRunSummary `json:"runs"`
	OpenActions     int                `json:"open_actions"`
}

type ReportRunSummary struct {
	TemplateName  string      `json:"template_name"`
	Date          string      `json:"date"`
	StatusColor   StatusColor `json:"status_color"`
	CriticalFails int         `json:"critical_fails"`
	TotalItems    int         `json:"total_items"`
}

// GenerationLog records every call to the text generator, success or
// failure, with identical structured fields.
type GenerationLog struct {
	ID            string
	CompanyID     string
	FeatureKey    string
	ParticipantID string
	PeriodStart   time.Time
	Model         string
	PromptVersion string
	InputHash     string
	Success       bool
	ErrorMessage  string
	CreatedAt     time.Time
}
