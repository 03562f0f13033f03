package domain

import (
	"strconv"
	"strings"
	"time"
)

type ScopeType string

const (
	ScopeSite        ScopeType = "SITE"
	ScopeParticipant ScopeType = "PARTICIPANT"
)

type Frequency string

const (
	FrequencyDaily  Frequency = "DAILY"
	FrequencyWeekly Frequency = "WEEKLY"
)

type ItemType string

const (
	ItemYesNoNA       ItemType = "YES_NO_NA"
	ItemNumber        ItemType = "NUMBER"
	ItemText          ItemType = "TEXT"
	ItemPhotoRequired ItemType = "PHOTO_REQUIRED"
)

// ComplianceTemplate defines a periodic site- or participant-scoped
// checklist.
type ComplianceTemplate struct {
	ID        string
	CompanyID string
	Name      string
	ScopeType ScopeType
	Frequency Frequency
	Active    bool
	CreatedAt time.Time
}

type ComplianceTemplateItem struct {
	ID         string
	CompanyID  string
	TemplateID string
	Title      string
	Type       ItemType
	Critical   bool
	SortOrder  int
	CreatedAt  time.Time
}

type RunStatus string

const (
	RunOpen      RunStatus = "OPEN"
	RunSubmitted RunStatus = "SUBMITTED"
	RunLocked    RunStatus = "LOCKED"
)

// ComplianceRun is one instance of a periodic checklist for a scope entity
// and period. Uniqueness is backed by an index over (company, template,
// scope, date-truncated period start); overlapping weekly periods with
// different start days still coexist.
type ComplianceRun struct {
	ID          string
	CompanyID   string
	TemplateID  string
	ScopeType   ScopeType
	ScopeID     string
	PeriodStart time.Time
	PeriodEnd   time.Time
	Status      RunStatus
	StatusColor StatusColor
	SubmittedAt *time.Time
	SubmittedBy string
	CreatedBy   string
	CreatedAt   time.Time
}

type ComplianceResponse struct {
	ID             string
	CompanyID      string
	RunID          string
	ItemID         string
	Value          string
	Notes          string
	AttachmentPath string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type ActionStatus string

const (
	ActionOpen       ActionStatus = "OPEN"
	ActionInProgress ActionStatus = "IN_PROGRESS"
	ActionClosed     ActionStatus = "CLOSED"
)

// ComplianceAction is a corrective action raised from a "NO" response on a
// submitted run.
type ComplianceAction struct {
	ID                string
	CompanyID         string
	RunID             string
	ItemID            string
	ScopeType         ScopeType
	ScopeID           string
	Severity          Severity
	Status            ActionStatus
	Description       string
	AssigneeID        string
	ClosureNote       string
	ClosureAttachment string
	ClosedAt          *time.Time
	ClosedBy          string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type StatusColor string

const (
	ColorRed   StatusColor = "red"
	ColorAmber StatusColor = "amber"
	ColorGreen StatusColor = "green"
)

// DeriveStatusColor folds item responses into the run's aggregate color.
// Priority: any critical NO is red, any other NO is amber, otherwise green.
func DeriveStatusColor(items []ComplianceTemplateItem, valueByItem map[string]string) StatusColor {
	color := ColorGreen
	for _, item := range items {
		if !strings.EqualFold(valueByItem[item.ID], "NO") {
			continue
		}
		if item.Critical {
			return ColorRed
		}
		color = ColorAmber
	}
	return color
}

// ValidateResponseValue applies per-type response rules.
func ValidateResponseValue(item ComplianceTemplateItem, value, attachmentPath string) error {
	switch item.Type {
	case ItemYesNoNA:
		switch strings.ToUpper(strings.TrimSpace(value)) {
		case "YES", "NO", "NA":
			return nil
		}
		return Validationf("item %q expects YES, NO or NA", item.Title)
	case ItemNumber:
		if _, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err != nil {
			return Validationf("item %q expects a numeric value", item.Title)
		}
		return nil
	case ItemPhotoRequired:
		if strings.TrimSpace(attachmentPath) == "" {
			return Validationf("item %q requires a photo attachment", item.Title)
		}
		return nil
	case ItemText:
		return nil
	default:
		return Validationf("unknown item type %q", item.Type)
	}
}

// DayBounds returns start-of-day and end-of-day for t in UTC, the DAILY run
// period window.
func DayBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24*time.Hour - time.Nanosecond)
}

// TruncateDay is the duplicate-run comparison key: date granularity only.
func TruncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Site and Participant are the scope entities periodic checklists attach to.
type Site struct {
	ID        string
	CompanyID string
	Name      string
	CreatedAt time.Time
}

type Participant struct {
	ID        string
	CompanyID string
	Name      string
	CreatedAt time.Time
}
