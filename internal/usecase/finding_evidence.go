package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"complyd/internal/domain"
)

// FindingWorkflow manages finding status, the evidence request lifecycle and
// evidence-driven auto-closure.
type FindingWorkflow struct {
	Findings   FindingRepository
	Evidence   EvidenceRepository
	Capability domain.CapabilityChecker
	Changes    *ChangeEmitter
	Clock      Clock
}

type UpdateFindingRequest struct {
	FindingID   string
	Status      *domain.FindingStatus
	OwnerID     *string
	DueDate     *time.Time
	ClosureNote string
}

// Update applies owner, due date and status changes. A manual move to CLOSED
// is gated on the finding:close capability; evidence-driven closure goes
// through ReviewEvidence instead and bypasses the gate.
func (uc *FindingWorkflow) Update(ctx context.Context, actor domain.Actor, req UpdateFindingRequest) (*domain.Finding, error) {
	finding, err := uc.getFinding(ctx, actor, req.FindingID)
	if err != nil {
		return nil, err
	}

	before := *finding
	update := FindingUpdate{OwnerID: req.OwnerID, DueDate: req.DueDate}
	now := uc.now()

	if req.Status != nil {
		target := *req.Status
		if !domain.CanFindingTransition(finding.Status, target) {
			return nil, domain.Preconditionf("finding cannot move from %s to %s", finding.Status, target)
		}
		if target == domain.FindingClosed {
			decision, err := uc.Capability.Check(ctx, domain.CapabilityInput{
				Role:    actor.Role,
				Action:  domain.CapFindingClose,
				ActorID: actor.UserID,
			})
			if err != nil {
				return nil, err
			}
			if !decision.Allow {
				return nil, domain.Forbiddenf("role %s cannot close findings", actor.Role)
			}
			note := strings.TrimSpace(req.ClosureNote)
			if note == "" {
				note = "Closed manually"
			}
			update.ClosureNote = &note
			update.ClosedAt = &now
			update.ClosedBy = &actor.UserID
			finding.ClosureNote = note
			finding.ClosedAt = &now
			finding.ClosedBy = actor.UserID
		}
		update.Status = req.Status
		finding.Status = target
	}
	if req.OwnerID != nil {
		finding.OwnerID = *req.OwnerID
	}
	if req.DueDate != nil {
		finding.DueDate = req.DueDate
	}

	if err := uc.Findings.Update(ctx, actor.CompanyID, finding.ID, update); err != nil {
		return nil, err
	}
	finding.UpdatedAt = now
	if err := uc.Changes.Emit(ctx, actor, domain.ChangeFindingUpdated, domain.EntityFinding, finding.ID, before, *finding); err != nil {
		return nil, err
	}
	return finding, nil
}

type RequestEvidenceRequest struct {
	FindingID string
	Type      string
	Note      string
	DueDate   *time.Time
}

// RequestEvidence opens the finding's evidence request. The unique index on
// finding_id makes a second request a CONFLICT.
func (uc *FindingWorkflow) RequestEvidence(ctx context.Context, actor domain.Actor, req RequestEvidenceRequest) (*domain.EvidenceRequest, error) {
	finding, err := uc.getFinding(ctx, actor, req.FindingID)
	if err != nil {
		return nil, err
	}
	if finding.Status == domain.FindingClosed {
		return nil, domain.Preconditionf("finding is already closed")
	}

	now := uc.now()
	request := domain.EvidenceRequest{
		ID:        uuid.NewString(),
		CompanyID: actor.CompanyID,
		FindingID: finding.ID,
		Type:      req.Type,
		Note:      req.Note,
		DueDate:   req.DueDate,
		Status:    domain.EvidenceRequested,
		CreatedBy: actor.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.Evidence.CreateRequest(ctx, request); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.Conflictf("finding %s already has an evidence request", finding.ID)
		}
		return nil, err
	}
	if err := uc.Changes.Emit(ctx, actor, domain.ChangeEvidenceRequested, domain.EntityEvidenceRequest, request.ID, nil, request); err != nil {
		return nil, err
	}
	return &request, nil
}

type SubmitEvidenceRequest struct {
	RequestID   string
	Kind        domain.EvidenceKind
	FilePath    string
	MimeType    string
	ExternalURL string
}

// SubmitEvidence attaches an immutable evidence item and flips the request
// to SUBMITTED. Allowed from REQUESTED and, after a rejection, from
// REJECTED.
func (uc *FindingWorkflow) SubmitEvidence(ctx context.Context, actor domain.Actor, req SubmitEvidenceRequest) (*domain.EvidenceRequest, error) {
	switch req.Kind {
	case domain.EvidenceKindUpload:
		if strings.TrimSpace(req.FilePath) == "" || strings.TrimSpace(req.MimeType) == "" {
			return nil, domain.Validationf("UPLOAD evidence requires filePath and mimeType")
		}
	case domain.EvidenceKindLink:
		if strings.TrimSpace(req.ExternalURL) == "" {
			return nil, domain.Validationf("LINK evidence requires externalUrl")
		}
	default:
		return nil, domain.Validationf("unknown evidence kind %q", req.Kind)
	}

	request, err := uc.getRequest(ctx, actor, req.RequestID)
	if err != nil {
		return nil, err
	}
	if request.Status != domain.EvidenceRequested && request.Status != domain.EvidenceRejected {
		return nil, domain.Preconditionf("evidence cannot be submitted while the request is %s", request.Status)
	}

	now := uc.now()
	item := domain.EvidenceItem{
		ID:          uuid.NewString(),
		CompanyID:   actor.CompanyID,
		RequestID:   request.ID,
		Kind:        req.Kind,
		FilePath:    req.FilePath,
		MimeType:    req.MimeType,
		ExternalURL: req.ExternalURL,
		SubmittedBy: actor.UserID,
		CreatedAt:   now,
	}
	if err := uc.Evidence.AddItem(ctx, item); err != nil {
		return nil, err
	}

	before := *request
	status := domain.EvidenceSubmitted
	if err := uc.Evidence.UpdateRequest(ctx, actor.CompanyID, request.ID, EvidenceRequestUpdate{Status: &status}); err != nil {
		return nil, err
	}
	request.Status = status
	request.UpdatedAt = now
	if err := uc.Changes.Emit(ctx, actor, domain.ChangeEvidenceSubmitted, domain.EntityEvidenceRequest, request.ID, before, *request); err != nil {
		return nil, err
	}
	return request, nil
}

type ReviewEvidenceRequest struct {
	RequestID string
	Decision  domain.ReviewDecision
	Note      string
}

// ReviewEvidence decides a SUBMITTED request. ACCEPTED cascades: the parent
// finding closes with the review note. REJECTED leaves the finding open and
// the request ready for resubmission.
func (uc *FindingWorkflow) ReviewEvidence(ctx context.Context, actor domain.Actor, req ReviewEvidenceRequest) (*domain.EvidenceRequest, error) {
	if req.Decision != domain.ReviewAccepted && req.Decision != domain.ReviewRejected {
		return nil, domain.Validationf("decision must be ACCEPTED or REJECTED")
	}
	request, err := uc.getRequest(ctx, actor, req.RequestID)
	if err != nil {
		return nil, err
	}
	if request.Status != domain.EvidenceSubmitted {
		return nil, domain.Preconditionf("only SUBMITTED evidence can be reviewed, request is %s", request.Status)
	}

	before := *request
	now := uc.now()
	status := domain.EvidenceAccepted
	if req.Decision == domain.ReviewRejected {
		status = domain.EvidenceRejected
	}
	update := EvidenceRequestUpdate{
		Status:     &status,
		ReviewNote: &req.Note,
		ReviewedAt: &now,
		ReviewedBy: &actor.UserID,
	}
	if err := uc.Evidence.UpdateRequest(ctx, actor.CompanyID, request.ID, update); err != nil {
		return nil, err
	}
	request.Status = status
	request.ReviewNote = req.Note
	request.ReviewedAt = &now
	request.ReviewedBy = actor.UserID
	request.UpdatedAt = now
	if err := uc.Changes.Emit(ctx, actor, domain.ChangeEvidenceReviewed, domain.EntityEvidenceRequest, request.ID, before, *request); err != nil {
		return nil, err
	}

	if req.Decision == domain.ReviewAccepted {
		if err := uc.closeFindingFromReview(ctx, actor, request.FindingID, req.Note, now); err != nil {
			return nil, err
		}
	}
	return request, nil
}

func (uc *FindingWorkflow) closeFindingFromReview(ctx context.Context, actor domain.Actor, findingID, note string, now time.Time) error {
	finding, err := uc.getFinding(ctx, actor, findingID)
	if err != nil {
		return err
	}
	before := *finding
	closureNote := strings.TrimSpace(note)
	if closureNote == "" {
		closureNote = "Closed on evidence acceptance"
	}
	status := domain.FindingClosed
	update := FindingUpdate{
		Status:      &status,
		ClosureNote: &closureNote,
		ClosedAt:    &now,
		ClosedBy:    &actor.UserID,
	}
	if err := uc.Findings.Update(ctx, actor.CompanyID, findingID, update); err != nil {
		return err
	}
	finding.Status = status
	finding.ClosureNote = closureNote
	finding.ClosedAt = &now
	finding.ClosedBy = actor.UserID
	return uc.Changes.Emit(ctx, actor, domain.ChangeFindingUpdated, domain.EntityFinding, findingID, before, *finding)
}

// FindingDetail joins the finding with its evidence request, when one exists.
type FindingDetail struct {
	Finding         domain.Finding
	EvidenceRequest *domain.EvidenceRequest
}

func (uc *FindingWorkflow) Get(ctx context.Context, actor domain.Actor, findingID string) (*FindingDetail, error) {
	finding, err := uc.getFinding(ctx, actor, findingID)
	if err != nil {
		return nil, err
	}
	detail := &FindingDetail{Finding: *finding}
	request, err := uc.Evidence.GetRequestByFinding(ctx, actor.CompanyID, finding.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return detail, nil
		}
		return nil, err
	}
	detail.EvidenceRequest = request
	return detail, nil
}

func (uc *FindingWorkflow) ListByAudit(ctx context.Context, actor domain.Actor, auditID string) ([]domain.Finding, error) {
	return uc.Findings.ListByAudit(ctx, actor.CompanyID, auditID)
}

func (uc *FindingWorkflow) ListEvidenceItems(ctx context.Context, actor domain.Actor, requestID string) ([]domain.EvidenceItem, error) {
	if _, err := uc.getRequest(ctx, actor, requestID); err != nil {
		return nil, err
	}
	return uc.Evidence.ListItems(ctx, actor.CompanyID, requestID)
}

func (uc *FindingWorkflow) getFinding(ctx context.Context, actor domain.Actor, id string) (*domain.Finding, error) {
	finding, err := uc.Findings.Get(ctx, actor.CompanyID, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFoundf("finding %s not found", id)
		}
		return nil, err
	}
	return finding, nil
}

func (uc *FindingWorkflow) getRequest(ctx context.Context, actor domain.Actor, id string) (*domain.EvidenceRequest, error) {
	request, err := uc.Evidence.GetRequest(ctx, actor.CompanyID, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFoundf("evidence request %s not found", id)
		}
		return nil, err
	}
	return request, nil
}

func (uc *FindingWorkflow) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock().UTC()
	}
	return time.Now().UTC()
}
