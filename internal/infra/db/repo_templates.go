package db

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"complyd/internal/domain"
)

type AuditTemplateRepository struct {
	db *gorm.DB
}

func NewAuditTemplateRepository(gdb *gorm.DB) *AuditTemplateRepository {
	return &AuditTemplateRepository{db: gdb}
}

func (r *AuditTemplateRepository) Get(ctx context.Context, companyID, id string) (*domain.AuditTemplate, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model AuditTemplateModel
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&model).Error
	if err != nil {
		return nil, translate(err)
	}
	return &domain.AuditTemplate{
		ID:          model.ID,
		CompanyID:   model.CompanyID,
		Name:        model.Name,
		Description: model.Description,
		CreatedAt:   model.CreatedAt,
	}, nil
}

func (r *AuditTemplateRepository) List(ctx context.Context, companyID string) ([]domain.AuditTemplate, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var rows []AuditTemplateModel
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	templates := make([]domain.AuditTemplate, 0, len(rows))
	for _, row := range rows {
		templates = append(templates, domain.AuditTemplate{
			ID:          row.ID,
			CompanyID:   row.CompanyID,
			Name:        row.Name,
			Description: row.Description,
			CreatedAt:   row.CreatedAt,
		})
	}
	return templates, nil
}

func (r *AuditTemplateRepository) ListIndicators(ctx context.Context, companyID, templateID string) ([]domain.AuditTemplateIndicator, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var rows []AuditTemplateIndicatorModel
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND template_id = ?", companyID, templateID).
		Order("sort_order ASC").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	indicators := make([]domain.AuditTemplateIndicator, 0, len(rows))
	for _, row := range rows {
		indicators = append(indicators, indicatorFromModel(row))
	}
	return indicators, nil
}

func (r *AuditTemplateRepository) GetIndicator(ctx context.Context, companyID, indicatorID string) (*domain.AuditTemplateIndicator, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model AuditTemplateIndicatorModel
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, indicatorID).
		First(&model).Error
	if err != nil {
		return nil, translate(err)
	}
	indicator := indicatorFromModel(model)
	return &indicator, nil
}

func indicatorFromModel(m AuditTemplateIndicatorModel) domain.AuditTemplateIndicator {
	return domain.AuditTemplateIndicator{
		ID:         m.ID,
		CompanyID:  m.CompanyID,
		TemplateID: m.TemplateID,
		Text:       m.Text,
		RiskLevel:  domain.RiskLevel(m.RiskLevel),
		Critical:   m.Critical,
		SortOrder:  m.SortOrder,
		CreatedAt:  m.CreatedAt,
	}
}

type AuditRunRepository struct {
	db *gorm.DB
}

func NewAuditRunRepository(gdb *gorm.DB) *AuditRunRepository {
	return &AuditRunRepository{db: gdb}
}

// Upsert keeps one run per audit: reselecting a template overwrites the
// previous binding in place.
func (r *AuditRunRepository) Upsert(ctx context.Context, run domain.AuditRun) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := AuditRunModel{
		ID:         run.ID,
		CompanyID:  run.CompanyID,
		AuditID:    run.AuditID,
		TemplateID: run.TemplateID,
		StartedAt:  run.StartedAt,
		CreatedAt:  run.CreatedAt,
	}
	return translate(r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "audit_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"template_id"}),
		}).
		Create(&model).Error)
}

func (r *AuditRunRepository) GetByAudit(ctx context.Context, companyID, auditID string) (*domain.AuditRun, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model AuditRunModel
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND audit_id = ?", companyID, auditID).
		First(&model).Error
	if err != nil {
		return nil, translate(err)
	}
	return &domain.AuditRun{
		ID:         model.ID,
		CompanyID:  model.CompanyID,
		AuditID:    model.AuditID,
		TemplateID: model.TemplateID,
		StartedAt:  model.StartedAt,
		CreatedAt:  model.CreatedAt,
	}, nil
}

func (r *AuditRunRepository) SetStarted(ctx context.Context, companyID, auditID string, at time.Time) error {
	if r.db == nil {
		return errDBUnavailable
	}
	res := r.db.WithContext(ctx).
		Model(&AuditRunModel{}).
		Where("company_id = ? AND audit_id = ?", companyID, auditID).
		Update("started_at", at)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type ResponseRepository struct {
	db *gorm.DB
}

func NewResponseRepository(gdb *gorm.DB) *ResponseRepository {
	return &ResponseRepository{db: gdb}
}

// Upsert keeps the single response per (audit, indicator); the latest write
// wins, no history is retained.
func (r *ResponseRepository) Upsert(ctx context.Context, resp domain.IndicatorResponse) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := IndicatorResponseModel{
		ID:          resp.ID,
		CompanyID:   resp.CompanyID,
		AuditID:     resp.AuditID,
		IndicatorID: resp.IndicatorID,
		Rating:      string(resp.Rating),
		Comment:     resp.Comment,
		CreatedAt:   resp.CreatedAt,
		UpdatedAt:   resp.UpdatedAt,
	}
	return translate(r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "audit_id"}, {Name: "indicator_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rating", "comment", "updated_at"}),
		}).
		Create(&model).Error)
}

func (r *ResponseRepository) CountByAudit(ctx context.Context, companyID, auditID string) (int64, error) {
	if r.db == nil {
		return 0, errDBUnavailable
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&IndicatorResponseModel{}).
		Where("company_id = ? AND audit_id = ?", companyID, auditID).
		Count(&count).Error
	return count, translate(err)
}

func (r *ResponseRepository) ListByAudit(ctx context.Context, companyID, auditID string) ([]domain.IndicatorResponse, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var rows []IndicatorResponseModel
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND audit_id = ?", companyID, auditID).
		Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	responses := make([]domain.IndicatorResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, domain.IndicatorResponse{
			ID:          row.ID,
			CompanyID:   row.CompanyID,
			AuditID:     row.AuditID,
			IndicatorID: row.IndicatorID,
			Rating:      domain.Rating(row.Rating),
			Comment:     row.Comment,
			CreatedAt:   row.CreatedAt,
			UpdatedAt:   row.UpdatedAt,
		})
	}
	return responses, nil
}
