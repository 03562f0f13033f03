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

// IndicatorResponses records auditor ratings against template indicators and
// raises findings for non-conformances.
type IndicatorResponses struct {
	Audits    AuditRepository
	Templates AuditTemplateRepository
	Responses ResponseRepository
	Findings  FindingRepository
	Changes   *ChangeEmitter
	Clock     Clock
}

type SaveResponseRequest struct {
	AuditID     string
	IndicatorID string
	Rating      domain.Rating
	Comment     string
}

type SaveResponseResult struct {
	Response       domain.IndicatorResponse
	CreatedFinding *domain.Finding
}

// Save upserts the single response per (audit, indicator). A MINOR_NC or
// MAJOR_NC rating creates the pair's finding exactly once; the unique index
// on (audit_id, indicator_id) makes repeated saves idempotent.
func (uc *IndicatorResponses) Save(ctx context.Context, actor domain.Actor, req SaveResponseRequest) (*SaveResponseResult, error) {
	if !req.Rating.Valid() {
		return nil, domain.Validationf("unknown rating %q", req.Rating)
	}
	if req.Rating != domain.RatingConformance && strings.TrimSpace(req.Comment) == "" {
		return nil, domain.Validationf("a comment is required for %s ratings", req.Rating)
	}

	audit, err := uc.Audits.Get(ctx, actor.CompanyID, req.AuditID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFoundf("audit %s not found", req.AuditID)
		}
		return nil, err
	}
	if audit.Status != domain.AuditStatusInProgress {
		return nil, domain.Preconditionf("responses can only be recorded while the audit is IN_PROGRESS")
	}
	indicator, err := uc.Templates.GetIndicator(ctx, actor.CompanyID, req.IndicatorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFoundf("indicator %s not found", req.IndicatorID)
		}
		return nil, err
	}

	now := uc.now()
	resp := domain.IndicatorResponse{
		ID:          uuid.NewString(),
		CompanyID:   actor.CompanyID,
		AuditID:     req.AuditID,
		IndicatorID: req.IndicatorID,
		Rating:      req.Rating,
		Comment:     req.Comment,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.Responses.Upsert(ctx, resp); err != nil {
		return nil, err
	}
	if err := uc.Changes.Emit(ctx, actor, domain.ChangeResponseSaved, domain.EntityAudit, req.AuditID, nil, resp); err != nil {
		return nil, err
	}

	result := &SaveResponseResult{Response: resp}
	if !req.Rating.NonConformance() {
		return result, nil
	}

	finding := domain.Finding{
		ID:          uuid.NewString(),
		CompanyID:   actor.CompanyID,
		AuditID:     req.AuditID,
		IndicatorID: req.IndicatorID,
		Severity:    req.Rating,
		Status:      domain.FindingOpen,
		Text:        findingText(indicator.Text, req.Comment),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err = uc.Findings.Create(ctx, finding)
	if errors.Is(err, domain.ErrDuplicate) {
		// A finding already exists for this (audit, indicator); the rating
		// update alone stands.
		return result, nil
	}
	if err != nil {
		return nil, err
	}
	if err := uc.Changes.Emit(ctx, actor, domain.ChangeFindingCreated, domain.EntityFinding, finding.ID, nil, finding); err != nil {
		return nil, err
	}
	result.CreatedFinding = &finding
	return result, nil
}

func (uc *IndicatorResponses) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock().UTC()
	}
	return time.Now().UTC()
}

func findingText(indicatorText, comment string) string {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return fmt.Sprintf("Non-conformance against indicator: %s", indicatorText)
	}
	return fmt.Sprintf("Non-conformance against indicator: %s (auditor comment: %s)", indicatorText, comment)
}
