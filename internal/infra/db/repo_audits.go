package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"complyd/internal/domain"
	"complyd/internal/usecase"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(gdb *gorm.DB) *AuditRepository {
	return &AuditRepository{db: gdb}
}

func (r *AuditRepository) Create(ctx context.Context, audit domain.Audit) error {
	if r.db == nil {
		return errDBUnavailable
	}
	if audit.CompanyID == "" {
		return errors.New("company_id is required")
	}
	model := auditToModel(audit)
	return translate(r.db.WithContext(ctx).Create(&model).Error)
}

func (r *AuditRepository) Get(ctx context.Context, companyID, id string) (*domain.Audit, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model AuditModel
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&model).Error
	if err != nil {
		return nil, translate(err)
	}
	audit := auditFromModel(model)
	return &audit, nil
}

func (r *AuditRepository) List(ctx context.Context, companyID string, filter usecase.AuditFilter) ([]domain.Audit, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	query := r.db.WithContext(ctx).Where("company_id = ?", companyID)
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.Type != "" {
		query = query.Where("type = ?", string(filter.Type))
	}
	var rows []AuditModel
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	audits := make([]domain.Audit, 0, len(rows))
	for _, row := range rows {
		audits = append(audits, auditFromModel(row))
	}
	return audits, nil
}

// Update applies only the fields the command enumerates.
func (r *AuditRepository) Update(ctx context.Context, companyID, id string, update usecase.AuditUpdate) error {
	if r.db == nil {
		return errDBUnavailable
	}
	fields := map[string]any{}
	if update.Status != nil {
		fields["status"] = string(*update.Status)
	}
	if update.ScopeLocked != nil {
		fields["scope_locked"] = *update.ScopeLocked
	}
	if update.CloseReason != nil {
		fields["close_reason"] = *update.CloseReason
	}
	if update.ClosedAt != nil {
		fields["closed_at"] = *update.ClosedAt
	}
	if update.ClosedBy != nil {
		fields["closed_by"] = *update.ClosedBy
	}
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).
		Model(&AuditModel{}).
		Where("company_id = ? AND id = ?", companyID, id).
		Updates(fields)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func auditToModel(a domain.Audit) AuditModel {
	return AuditModel{
		ID:             a.ID,
		CompanyID:      a.CompanyID,
		Type:           string(a.Type),
		Status:         string(a.Status),
		ServiceContext: a.ServiceContext,
		ScopeLocked:    a.ScopeLocked,
		StartDate:      a.StartDate,
		EndDate:        a.EndDate,
		AuditorName:    a.AuditorName,
		AuditorOrg:     a.AuditorOrg,
		AuditorEmail:   a.AuditorEmail,
		CloseReason:    a.CloseReason,
		ClosedAt:       a.ClosedAt,
		ClosedBy:       a.ClosedBy,
		CreatedBy:      a.CreatedBy,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func auditFromModel(m AuditModel) domain.Audit {
	return domain.Audit{
		ID:             m.ID,
		CompanyID:      m.CompanyID,
		Type:           domain.AuditType(m.Type),
		Status:         domain.AuditStatus(m.Status),
		ServiceContext: m.ServiceContext,
		ScopeLocked:    m.ScopeLocked,
		StartDate:      m.StartDate,
		EndDate:        m.EndDate,
		AuditorName:    m.AuditorName,
		AuditorOrg:     m.AuditorOrg,
		AuditorEmail:   m.AuditorEmail,
		CloseReason:    m.CloseReason,
		ClosedAt:       m.ClosedAt,
		ClosedBy:       m.ClosedBy,
		CreatedBy:      m.CreatedBy,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

type ScopeRepository struct {
	db *gorm.DB
}

func NewScopeRepository(gdb *gorm.DB) *ScopeRepository {
	return &ScopeRepository{db: gdb}
}

// Replace swaps the audit's whole scope set inside one transaction.
func (r *ScopeRepository) Replace(ctx context.Context, companyID, auditID string, items []domain.ScopeLineItem) error {
	if r.db == nil {
		return errDBUnavailable
	}
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("company_id = ? AND audit_id = ?", companyID, auditID).
			Delete(&ScopeLineItemModel{}).Error; err != nil {
			return err
		}
		for _, item := range items {
			model := ScopeLineItemModel{
				ID:         item.ID,
				CompanyID:  companyID,
				AuditID:    auditID,
				LineItemID: item.LineItemID,
				Label:      item.Label,
				CreatedAt:  item.CreatedAt,
			}
			if err := tx.Create(&model).Error; err != nil {
				return err
			}
		}
		return nil
	}))
}

func (r *ScopeRepository) ListByAudit(ctx context.Context, companyID, auditID string) ([]domain.ScopeLineItem, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var rows []ScopeLineItemModel
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND audit_id = ?", companyID, auditID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	items := make([]domain.ScopeLineItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, domain.ScopeLineItem{
			ID:         row.ID,
			CompanyID:  row.CompanyID,
			AuditID:    row.AuditID,
			LineItemID: row.LineItemID,
			Label:      row.Label,
			CreatedAt:  row.CreatedAt,
		})
	}
	return items, nil
}

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(gdb *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: gdb}
}

func (r *CategoryRepository) ListByCompany(ctx context.Context, companyID string) ([]domain.ServiceCategory, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var rows []ServiceCategoryModel
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("label ASC").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	categories := make([]domain.ServiceCategory, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, domain.ServiceCategory{
			ID:        row.ID,
			CompanyID: row.CompanyID,
			Label:     row.Label,
			CreatedAt: row.CreatedAt,
		})
	}
	return categories, nil
}
