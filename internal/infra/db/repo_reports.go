package db

import (
	"context"

	"gorm.io/gorm"

	"complyd/internal/domain"
	"complyd/internal/usecase"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(gdb *gorm.DB) *ReportRepository {
	return &ReportRepository{db: gdb}
}

func (r *ReportRepository) Create(ctx context.Context, report domain.WeeklyReport) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := WeeklyReportModel{
		ID:            report.ID,
		CompanyID:     report.CompanyID,
		ParticipantID: report.ParticipantID,
		PeriodStart:   report.PeriodStart,
		PeriodEnd:     report.PeriodEnd,
		Content:       report.Content,
		Status:        string(report.Status),
		Model:         report.Model,
		PromptVersion: report.PromptVersion,
		InputHash:     report.InputHash,
		CreatedBy:     report.CreatedBy,
		CreatedAt:     report.CreatedAt,
		UpdatedAt:     report.UpdatedAt,
	}
	return translate(r.db.WithContext(ctx).Create(&model).Error)
}

func (r *ReportRepository) List(ctx context.Context, companyID, participantID string) ([]domain.WeeklyReport, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	query := r.db.WithContext(ctx).Where("company_id = ?", companyID)
	if participantID != "" {
		query = query.Where("participant_id = ?", participantID)
	}
	var rows []WeeklyReportModel
	if err := query.Order("period_start DESC").Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	reports := make([]domain.WeeklyReport, 0, len(rows))
	for _, row := range rows {
		reports = append(reports, domain.WeeklyReport{
			ID:            row.ID,
			CompanyID:     row.CompanyID,
			ParticipantID: row.ParticipantID,
			PeriodStart:   row.PeriodStart,
			PeriodEnd:     row.PeriodEnd,
			Content:       row.Content,
			Status:        domain.ReportStatus(row.Status),
			Model:         row.Model,
			PromptVersion: row.PromptVersion,
			InputHash:     row.InputHash,
			CreatedBy:     row.CreatedBy,
			CreatedAt:     row.CreatedAt,
			UpdatedAt:     row.UpdatedAt,
		})
	}
	return reports, nil
}

func (r *ReportRepository) Update(ctx context.Context, companyID, id string, update usecase.ReportUpdate) error {
	if r.db == nil {
		return errDBUnavailable
	}
	fields := map[string]any{}
	if update.Content != nil {
		fields["content"] = *update.Content
	}
	if update.Status != nil {
		fields["status"] = string(*update.Status)
	}
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).
		Model(&WeeklyReportModel{}).
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

// AppendLog records a generation attempt; it is written for failures as well
// as successes, with the same field shape.
func (r *ReportRepository) AppendLog(ctx context.Context, log domain.GenerationLog) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := GenerationLogModel{
		ID:            log.ID,
		CompanyID:     log.CompanyID,
		FeatureKey:    log.FeatureKey,
		ParticipantID: log.ParticipantID,
		PeriodStart:   log.PeriodStart,
		Model:         log.Model,
		PromptVersion: log.PromptVersion,
		InputHash:     log.InputHash,
		Success:       log.Success,
		ErrorMessage:  log.ErrorMessage,
		CreatedAt:     log.CreatedAt,
	}
	return translate(r.db.WithContext(ctx).Create(&model).Error)
}
