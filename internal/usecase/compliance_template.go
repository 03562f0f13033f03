package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"complyd/internal/domain"
)

// ComplianceTemplates is the CRUD surface for periodic checklist
// definitions.
type ComplianceTemplates struct {
	Repo  ComplianceTemplateRepository
	Clock Clock
}

type CreateComplianceTemplateRequest struct {
	Name      string
	ScopeType domain.ScopeType
	Frequency domain.Frequency
}

func (uc *ComplianceTemplates) Create(ctx context.Context, actor domain.Actor, req CreateComplianceTemplateRequest) (*domain.ComplianceTemplate, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, domain.Validationf("template name is required")
	}
	if req.ScopeType != domain.ScopeSite && req.ScopeType != domain.ScopeParticipant {
		return nil, domain.Validationf("scope type must be SITE or PARTICIPANT")
	}
	if req.Frequency != domain.FrequencyDaily && req.Frequency != domain.FrequencyWeekly {
		return nil, domain.Validationf("frequency must be DAILY or WEEKLY")
	}
	tpl := domain.ComplianceTemplate{
		ID:        uuid.NewString(),
		CompanyID: actor.CompanyID,
		Name:      strings.TrimSpace(req.Name),
		ScopeType: req.ScopeType,
		Frequency: req.Frequency,
		Active:    true,
		CreatedAt: uc.now(),
	}
	if err := uc.Repo.Create(ctx, tpl); err != nil {
		return nil, err
	}
	return &tpl, nil
}

type AddItemRequest struct {
	TemplateID string
	Title      string
	Type       domain.ItemType
	Critical   bool
	SortOrder  int
}

func (uc *ComplianceTemplates) AddItem(ctx context.Context, actor domain.Actor, req AddItemRequest) (*domain.ComplianceTemplateItem, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, domain.Validationf("item title is required")
	}
	switch req.Type {
	case domain.ItemYesNoNA, domain.ItemNumber, domain.ItemText, domain.ItemPhotoRequired:
	default:
		return nil, domain.Validationf("unknown item type %q", req.Type)
	}
	if _, err := uc.Repo.Get(ctx, actor.CompanyID, req.TemplateID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFoundf("compliance template %s not found", req.TemplateID)
		}
		return nil, err
	}
	item := domain.ComplianceTemplateItem{
		ID:         uuid.NewString(),
		CompanyID:  actor.CompanyID,
		TemplateID: req.TemplateID,
		Title:      strings.TrimSpace(req.Title),
		Type:       req.Type,
		Critical:   req.Critical,
		SortOrder:  req.SortOrder,
		CreatedAt:  uc.now(),
	}
	if err := uc.Repo.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (uc *ComplianceTemplates) Update(ctx context.Context, actor domain.Actor, templateID string, update ComplianceTemplateUpdate) error {
	if _, err := uc.Repo.Get(ctx, actor.CompanyID, templateID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NotFoundf("compliance template %s not found", templateID)
		}
		return err
	}
	return uc.Repo.Update(ctx, actor.CompanyID, templateID, update)
}

func (uc *ComplianceTemplates) List(ctx context.Context, actor domain.Actor) ([]domain.ComplianceTemplate, error) {
	return uc.Repo.List(ctx, actor.CompanyID)
}

func (uc *ComplianceTemplates) ListItems(ctx context.Context, actor domain.Actor, templateID string) ([]domain.ComplianceTemplateItem, error) {
	return uc.Repo.ListItems(ctx, actor.CompanyID, templateID)
}

func (uc *ComplianceTemplates) RemoveItem(ctx context.Context, actor domain.Actor, itemID string) error {
	return uc.Repo.DeleteItem(ctx, actor.CompanyID, itemID)
}

func (uc *ComplianceTemplates) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock().UTC()
	}
	return time.Now().UTC()
}
