package db

import (
	"context"

	"gorm.io/gorm"

	"complyd/internal/domain"
	"complyd/internal/usecase"
)

type FindingRepository struct {
	db *gorm.DB
}

func NewFindingRepository(gdb *gorm.DB) *FindingRepository {
	return &FindingRepository{db: gdb}
}

// Create relies on the (audit_id, indicator_id) unique index: a concurrent
// duplicate surfaces as domain.ErrDuplicate, never a second row.
func (r *FindingRepository) Create(ctx context.Context, finding domain.Finding) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := findingToModel(finding)
	return translate(r.db.WithContext(ctx).Create(&model).Error)
}

func (r *FindingRepository) Get(ctx context.Context, companyID, id string) (*domain.Finding, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model FindingModel
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&model).Error
	if err != nil {
		return nil, translate(err)
	}
	finding := findingFromModel(model)
	return &finding, nil
}

func (r *FindingRepository) ListByAudit(ctx context.Context, companyID, auditID string) ([]domain.Finding, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var rows []FindingModel
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND audit_id = ?", companyID, auditID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	findings := make([]domain.Finding, 0, len(rows))
	for _, row := range rows {
		findings = append(findings, findingFromModel(row))
	}
	return findings, nil
}

func (r *FindingRepository) CountOpenMajor(ctx context.Context, companyID, auditID string) (int64, error) {
	if r.db == nil {
		return 0, errDBUnavailable
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&FindingModel{}).
		Where("company_id = ? AND audit_id = ? AND severity = ? AND status <> ?",
			companyID, auditID, string(domain.RatingMajorNC), string(domain.FindingClosed)).
		Count(&count).Error
	return count, translate(err)
}

func (r *FindingRepository) Update(ctx context.Context, companyID, id string, update usecase.FindingUpdate) error {
	if r.db == nil {
		return errDBUnavailable
	}
	fields := map[string]any{}
	if update.Status != nil {
		fields["status"] = string(*update.Status)
	}
	if update.OwnerID != nil {
		fields["owner_id"] = *update.OwnerID
	}
	if update.DueDate != nil {
		fields["due_date"] = *update.DueDate
	}
	if update.ClosureNote != nil {
		fields["closure_note"] = *update.ClosureNote
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
		Model(&FindingModel{}).
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

func findingToModel(f domain.Finding) FindingModel {
	return FindingModel{
		ID:          f.ID,
		CompanyID:   f.CompanyID,
		AuditID:     f.AuditID,
		IndicatorID: f.IndicatorID,
		Severity:    string(f.Severity),
		Status:      string(f.Status),
		Text:        f.Text,
		OwnerID:     f.OwnerID,
		DueDate:     f.DueDate,
		ClosureNote: f.ClosureNote,
		ClosedAt:    f.ClosedAt,
		ClosedBy:    f.ClosedBy,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

func findingFromModel(m FindingModel) domain.Finding {
	return domain.Finding{
		ID:          m.ID,
		CompanyID:   m.CompanyID,
		AuditID:     m.AuditID,
		IndicatorID: m.IndicatorID,
		Severity:    domain.Rating(m.Severity),
		Status:      domain.FindingStatus(m.Status),
		Text:        m.Text,
		OwnerID:     m.OwnerID,
		DueDate:     m.DueDate,
		ClosureNote: m.ClosureNote,
		ClosedAt:    m.ClosedAt,
		ClosedBy:    m.ClosedBy,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

type EvidenceRepository struct {
	db *gorm.DB
}

func NewEvidenceRepository(gdb *gorm.DB) *EvidenceRepository {
	return &EvidenceRepository{db: gdb}
}

// CreateRequest relies on the finding_id unique index: a second request for
// the same finding collides and comes back as domain.ErrDuplicate.
func (r *EvidenceRepository) CreateRequest(ctx context.Context, req domain.EvidenceRequest) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := evidenceRequestToModel(req)
	return translate(r.db.WithContext(ctx).Create(&model).Error)
}

func (r *EvidenceRepository) GetRequest(ctx context.Context, companyID, id string) (*domain.EvidenceRequest, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model EvidenceRequestModel
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&model).Error
	if err != nil {
		return nil, translate(err)
	}
	req := evidenceRequestFromModel(model)
	return &req, nil
}

func (r *EvidenceRepository) GetRequestByFinding(ctx context.Context, companyID, findingID string) (*domain.EvidenceRequest, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model EvidenceRequestModel
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND finding_id = ?", companyID, findingID).
		First(&model).Error
	if err != nil {
		return nil, translate(err)
	}
	req := evidenceRequestFromModel(model)
	return &req, nil
}

func (r *EvidenceRepository) UpdateRequest(ctx context.Context, companyID, id string, update usecase.EvidenceRequestUpdate) error {
	if r.db == nil {
		return errDBUnavailable
	}
	fields := map[string]any{}
	if update.Status != nil {
		fields["status"] = string(*update.Status)
	}
	if update.ReviewNote != nil {
		fields["review_note"] = *update.ReviewNote
	}
	if update.ReviewedAt != nil {
		fields["reviewed_at"] = *update.ReviewedAt
	}
	if update.ReviewedBy != nil {
		fields["reviewed_by"] = *update.ReviewedBy
	}
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).
		Model(&EvidenceRequestModel{}).
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

func (r *EvidenceRepository) AddItem(ctx context.Context, item domain.EvidenceItem) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := EvidenceItemModel{
		ID:          item.ID,
		CompanyID:   item.CompanyID,
		RequestID:   item.RequestID,
		Kind:        string(item.Kind),
		FilePath:    item.FilePath,
		MimeType:    item.MimeType,
		ExternalURL: item.ExternalURL,
		SubmittedBy: item.SubmittedBy,
		CreatedAt:   item.CreatedAt,
	}
	return translate(r.db.WithContext(ctx).Create(&model).Error)
}

func (r *EvidenceRepository) ListItems(ctx context.Context, companyID, requestID string) ([]domain.EvidenceItem, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var rows []EvidenceItemModel
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND request_id = ?", companyID, requestID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	items := make([]domain.EvidenceItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, domain.EvidenceItem{
			ID:          row.ID,
			CompanyID:   row.CompanyID,
			RequestID:   row.RequestID,
			Kind:        domain.EvidenceKind(row.Kind),
			FilePath:    row.FilePath,
			MimeType:    row.MimeType,
			ExternalURL: row.ExternalURL,
			SubmittedBy: row.SubmittedBy,
			CreatedAt:   row.CreatedAt,
		})
	}
	return items, nil
}

func evidenceRequestToModel(req domain.EvidenceRequest) EvidenceRequestModel {
	return EvidenceRequestModel{
		ID:         req.ID,
		CompanyID:  req.CompanyID,
		FindingID:  req.FindingID,
		Type:       req.Type,
		Note:       req.Note,
		DueDate:    req.DueDate,
		Status:     string(req.Status),
		ReviewNote: req.ReviewNote,
		ReviewedAt: req.ReviewedAt,
		ReviewedBy: req.ReviewedBy,
		CreatedBy:  req.CreatedBy,
		CreatedAt:  req.CreatedAt,
		UpdatedAt:  req.UpdatedAt,
	}
}

func evidenceRequestFromModel(m EvidenceRequestModel) domain.EvidenceRequest {
	return domain.EvidenceRequest{
		ID:         m.ID,
		CompanyID:  m.CompanyID,
		FindingID:  m.FindingID,
		Type:       m.Type,
		Note:       m.Note,
		DueDate:    m.DueDate,
		Status:     domain.EvidenceRequestStatus(m.Status),
		ReviewNote: m.ReviewNote,
		ReviewedAt: m.ReviewedAt,
		ReviewedBy: m.ReviewedBy,
		CreatedBy:  m.CreatedBy,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
