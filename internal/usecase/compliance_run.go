package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"complyd/internal/domain"
)

// ComplianceRuns drives the periodic checklist engine: run creation with a
// duplicate-period guard, per-item responses, submission with status-color
// derivation and corrective-action fan-out, and action closure.
type ComplianceRuns struct {
	Templates   ComplianceTemplateRepository
	Runs        ComplianceRunRepository
	Responses   ComplianceResponseRepository
	Actions     ComplianceActionRepository
	Scopes      ScopeEntityRepository
	Assignments AssignmentRepository
	Capability  domain.CapabilityChecker
	Changes     *ChangeEmitter
	Clock       Clock
}

type CreateRunRequest struct {
	TemplateID  string
	ScopeID     string
	Date        *time.Time // DAILY: defaults to now
	PeriodStart *time.Time // WEEKLY: required
	PeriodEnd   *time.Time // WEEKLY: required
}

func (uc *ComplianceRuns) CreateRun(ctx context.Context, actor domain.Actor, req CreateRunRequest) (*domain.ComplianceRun, error) {
	tpl, err := uc.Templates.Get(ctx, actor.CompanyID, req.TemplateID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFoundf("compliance template %s not found", req.TemplateID)
		}
		return nil, err
	}
	if err := uc.resolveScope(ctx, actor.CompanyID, tpl.ScopeType, req.ScopeID); err != nil {
		return nil, err
	}
	if err := uc.checkScopeAccess(ctx, actor, domain.CapComplianceRunCreate, tpl.ScopeType, req.ScopeID); err != nil {
		return nil, err
	}

	var periodStart, periodEnd time.Time
	switch tpl.Frequency {
	case domain.FrequencyDaily:
		day := uc.now()
		if req.Date != nil {
			day = *req.Date
		}
		periodStart, periodEnd = domain.DayBounds(day)
	case domain.FrequencyWeekly:
		if req.PeriodStart == nil || req.PeriodEnd == nil {
			return nil, domain.Validationf("weekly templates require periodStart and periodEnd")
		}
		if !req.PeriodEnd.After(*req.PeriodStart) {
			return nil, domain.Validationf("periodEnd must be after periodStart")
		}
		periodStart = req.PeriodStart.UTC()
		periodEnd = req.PeriodEnd.UTC()
	default:
		return nil, domain.Validationf("unknown template frequency %q", tpl.Frequency)
	}

	run := domain.ComplianceRun{
		ID:          uuid.NewString(),
		CompanyID:   actor.CompanyID,
		TemplateID:  tpl.ID,
		ScopeType:   tpl.ScopeType,
		ScopeID:     req.ScopeID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Status:      domain.RunOpen,
		CreatedBy:   actor.UserID,
		CreatedAt:   uc.now(),
	}
	if err := uc.Runs.Create(ctx, run); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.Conflictf("a run already exists for this template, scope and period")
		}
		return nil, err
	}
	if err := uc.Changes.Emit(ctx, actor, domain.ChangeRunCreated, domain.EntityComplianceRun, run.ID, nil, run); err != nil {
		return nil, err
	}
	return &run, nil
}

type RespondRequest struct {
	RunID          string
	ItemID         string
	Value          string
	Notes          string
	AttachmentPath string
}

func (uc *ComplianceRuns) Respond(ctx context.Context, actor domain.Actor, req RespondRequest) (*domain.ComplianceResponse, error) {
	run, err := uc.getRun(ctx, actor, req.RunID)
	if err != nil {
		return nil, err
	}
	if run.Status != domain.RunOpen {
		return nil, domain.Preconditionf("run is %s, responses are closed", run.Status)
	}
	item, err := uc.findItem(ctx, actor.CompanyID, run.TemplateID, req.ItemID)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateResponseValue(*item, req.Value, req.AttachmentPath); err != nil {
		return nil, err
	}

	now := uc.now()
	resp := domain.ComplianceResponse{
		ID:             uuid.NewString(),
		CompanyID:      actor.CompanyID,
		RunID:          run.ID,
		ItemID:         item.ID,
		Value:          strings.TrimSpace(req.Value),
		Notes:          req.Notes,
		AttachmentPath: req.AttachmentPath,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.Responses.Upsert(ctx, resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type SubmitRunResult struct {
	Run            domain.ComplianceRun
	StatusColor    domain.StatusColor
	ActionsCreated int
}

// Submit finalizes an open run: every critical item must be answered, the
// aggregate color is derived, and one corrective action is raised per NO
// response.
func (uc *ComplianceRuns) Submit(ctx context.Context, actor domain.Actor, runID string) (*SubmitRunResult, error) {
	run, err := uc.getRun(ctx, actor, runID)
	if err != nil {
		return nil, err
	}
	if run.Status != domain.RunOpen {
		return nil, domain.Preconditionf("run is %s, it cannot be submitted", run.Status)
	}
	items, err := uc.Templates.ListItems(ctx, actor.CompanyID, run.TemplateID)
	if err != nil {
		return nil, err
	}
	responses, err := uc.Responses.ListByRun(ctx, actor.CompanyID, run.ID)
	if err != nil {
		return nil, err
	}

	valueByItem := make(map[string]string, len(responses))
	notesByItem := make(map[string]string, len(responses))
	for _, resp := range responses {
		valueByItem[resp.ItemID] = resp.Value
		notesByItem[resp.ItemID] = resp.Notes
	}
	var missing []string
	for _, item := range items {
		if item.Critical && strings.TrimSpace(valueByItem[item.ID]) == "" {
			missing = append(missing, item.Title)
		}
	}
	if len(missing) > 0 {
		return nil, domain.Preconditionf("critical item(s) missing a response: %s", strings.Join(missing, ", "))
	}

	color := domain.DeriveStatusColor(items, valueByItem)
	now := uc.now()

	// The conditional status flip is the gate: only the caller that wins it
	// fans out corrective actions. A concurrent submit loses here before any
	// action row exists.
	before := *run
	sub := RunSubmission{StatusColor: color, SubmittedAt: now, SubmittedBy: actor.UserID}
	if err := uc.Runs.SetSubmitted(ctx, actor.CompanyID, run.ID, sub); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Preconditionf("run was already submitted")
		}
		return nil, err
	}

	created := 0
	for _, item := range items {
		if !strings.EqualFold(valueByItem[item.ID], "NO") {
			continue
		}
		severity := domain.SeverityMedium
		if item.Critical {
			severity = domain.SeverityHigh
		}
		description := strings.TrimSpace(notesByItem[item.ID])
		if description == "" {
			description = fmt.Sprintf("Failed checklist item: %s", item.Title)
		}
		action := domain.ComplianceAction{
			ID:          uuid.NewString(),
			CompanyID:   actor.CompanyID,
			RunID:       run.ID,
			ItemID:      item.ID,
			ScopeType:   run.ScopeType,
			ScopeID:     run.ScopeID,
			Severity:    severity,
			Status:      domain.ActionOpen,
			Description: description,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := uc.Actions.Create(ctx, action); err != nil {
			return nil, err
		}
		created++
	}

	run.Status = domain.RunSubmitted
	run.StatusColor = color
	run.SubmittedAt = &now
	run.SubmittedBy = actor.UserID
	if err := uc.Changes.Emit(ctx, actor, domain.ChangeRunSubmitted, domain.EntityComplianceRun, run.ID, before, *run); err != nil {
		return nil, err
	}
	return &SubmitRunResult{Run: *run, StatusColor: color, ActionsCreated: created}, nil
}

type CloseActionRequest struct {
	ActionID       string
	Notes          string
	AttachmentPath string
}

func (uc *ComplianceRuns) CloseAction(ctx context.Context, actor domain.Actor, req CloseActionRequest) (*domain.ComplianceAction, error) {
	if strings.TrimSpace(req.Notes) == "" {
		return nil, domain.Validationf("closure notes are required")
	}
	action, err := uc.Actions.Get(ctx, actor.CompanyID, req.ActionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFoundf("compliance action %s not found", req.ActionID)
		}
		return nil, err
	}
	if action.Status == domain.ActionClosed {
		return nil, domain.Preconditionf("action is already closed")
	}
	if actor.Role == domain.RoleStaffReadOnly && action.AssigneeID != actor.UserID {
		if err := uc.checkScopeAccess(ctx, actor, domain.CapComplianceActClose, action.ScopeType, action.ScopeID); err != nil {
			return nil, err
		}
	}

	before := *action
	now := uc.now()
	closure := ActionClosure{
		ClosureNote:    req.Notes,
		AttachmentPath: req.AttachmentPath,
		ClosedAt:       now,
		ClosedBy:       actor.UserID,
	}
	if err := uc.Actions.Close(ctx, actor.CompanyID, action.ID, closure); err != nil {
		return nil, err
	}
	action.Status = domain.ActionClosed
	action.ClosureNote = req.Notes
	action.ClosedAt = &now
	action.ClosedBy = actor.UserID
	action.UpdatedAt = now
	if err := uc.Changes.Emit(ctx, actor, domain.ChangeActionClosed, domain.EntityComplianceAction, action.ID, before, *action); err != nil {
		return nil, err
	}
	return action, nil
}

// ListActions narrows results to the caller's assignments for StaffReadOnly.
func (uc *ComplianceRuns) ListActions(ctx context.Context, actor domain.Actor, filter ActionFilter) ([]domain.ComplianceAction, error) {
	actions, err := uc.Actions.List(ctx, actor.CompanyID, filter)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleStaffReadOnly {
		return actions, nil
	}
	assignments, err := uc.Assignments.Get(ctx, actor.CompanyID, actor.UserID)
	if err != nil {
		return nil, err
	}
	visible := actions[:0]
	for _, action := range actions {
		if action.AssigneeID == actor.UserID || uc.inAssignments(assignments, action.ScopeType, action.ScopeID) {
			visible = append(visible, action)
		}
	}
	return visible, nil
}

func (uc *ComplianceRuns) GetRun(ctx context.Context, actor domain.Actor, runID string) (*domain.ComplianceRun, error) {
	return uc.getRun(ctx, actor, runID)
}

func (uc *ComplianceRuns) ListRuns(ctx context.Context, actor domain.Actor, filter RunFilter) ([]domain.ComplianceRun, error) {
	return uc.Runs.List(ctx, actor.CompanyID, filter)
}

func (uc *ComplianceRuns) resolveScope(ctx context.Context, companyID string, scopeType domain.ScopeType, scopeID string) error {
	var err error
	switch scopeType {
	case domain.ScopeSite:
		_, err = uc.Scopes.GetSite(ctx, companyID, scopeID)
	case domain.ScopeParticipant:
		_, err = uc.Scopes.GetParticipant(ctx, companyID, scopeID)
	default:
		return domain.Validationf("unknown scope type %q", scopeType)
	}
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NotFoundf("%s %s not found", strings.ToLower(string(scopeType)), scopeID)
	}
	return err
}

func (uc *ComplianceRuns) checkScopeAccess(ctx context.Context, actor domain.Actor, action domain.CapabilityAction, scopeType domain.ScopeType, scopeID string) error {
	assignments, err := uc.Assignments.Get(ctx, actor.CompanyID, actor.UserID)
	if err != nil {
		return err
	}
	input := domain.CapabilityInput{
		Role:          actor.Role,
		Action:        action,
		ScopeType:     scopeType,
		ScopeID:       scopeID,
		ActorID:       actor.UserID,
		AssignedScope: uc.assignedScope(assignments, scopeType),
	}
	decision, err := uc.Capability.Check(ctx, input)
	if err != nil {
		return err
	}
	if !decision.Allow {
		return domain.Forbiddenf("role %s is not assigned to %s %s", actor.Role, strings.ToLower(string(scopeType)), scopeID)
	}
	return nil
}

func (uc *ComplianceRuns) assignedScope(assignments domain.AssignmentSet, scopeType domain.ScopeType) []string {
	if scopeType == domain.ScopeSite {
		return assignments.SiteIDs
	}
	return assignments.ParticipantIDs
}

func (uc *ComplianceRuns) inAssignments(assignments domain.AssignmentSet, scopeType domain.ScopeType, scopeID string) bool {
	if scopeType == domain.ScopeSite {
		return assignments.HasSite(scopeID)
	}
	return assignments.HasParticipant(scopeID)
}

func (uc *ComplianceRuns) findItem(ctx context.Context, companyID, templateID, itemID string) (*domain.ComplianceTemplateItem, error) {
	items, err := uc.Templates.ListItems(ctx, companyID, templateID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == itemID {
			return &items[i], nil
		}
	}
	return nil, domain.NotFoundf("checklist item %s not found", itemID)
}

func (uc *ComplianceRuns) getRun(ctx context.Context, actor domain.Actor, runID string) (*domain.ComplianceRun, error) {
	run, err := uc.Runs.Get(ctx, actor.CompanyID, runID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFoundf("compliance run %s not found", runID)
		}
		return nil, err
	}
	return run, nil
}

func (uc *ComplianceRuns) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock().UTC()
	}
	return time.Now().UTC()
}
