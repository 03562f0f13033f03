package db

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"complyd/internal/domain"
	"complyd/internal/usecase"
)

type ComplianceTemplateRepository struct {
	db *gorm.DB
}

func NewComplianceTemplateRepository(gdb *gorm.DB) *ComplianceTemplateRepository {
	return &ComplianceTemplateRepository{db: gdb}
}

func (r *ComplianceTemplateRepository) Create(ctx context.Context, tpl domain.ComplianceTemplate) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := ComplianceTemplateModel{
		ID:        tpl.ID,
		CompanyID: tpl.CompanyID,
		Name:      tpl.Name,
		ScopeType: string(tpl.ScopeType),
		Frequency: string(tpl.Frequency),
		Active:    tpl.Active,
		CreatedAt: tpl.CreatedAt,
	}
	return translate(r.db.WithContext(ctx).Create(&model).Error)
}

func (r *ComplianceTemplateRepository) Get(ctx context.Context, companyID, id string) (*domain.ComplianceTemplate, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model ComplianceTemplateModel
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&model).Error
	if err != nil {
		return nil, translate(err)
	}
	tpl := complianceTemplateFromModel(model)
	return &tpl, nil
}

func (r *ComplianceTemplateRepository) List(ctx context.Context, companyID string) ([]domain.ComplianceTemplate, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var rows []ComplianceTemplateModel
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	templates := make([]domain.ComplianceTemplate, 0, len(rows))
	for _, row := range rows {
		templates = append(templates, complianceTemplateFromModel(row))
	}
	return templates, nil
}

func (r *ComplianceTemplateRepository) Update(ctx context.Context, companyID, id string, update usecase.ComplianceTemplateUpdate) error {
	if r.db == nil {
		return errDBUnavailable
	}
	fields := map[string]any{}
	if update.Name != nil {
		fields["name"] = *update.Name
	}
	if update.Active != nil {
		fields["active"] = *update.Active
	}
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).
		Model(&ComplianceTemplateModel{}).
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

func (r *ComplianceTemplateRepository) CreateItem(ctx context.Context, item domain.ComplianceTemplateItem) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := ComplianceTemplateItemModel{
		ID:         item.ID,
		CompanyID:  item.CompanyID,
		TemplateID: item.TemplateID,
		Title:      item.Title,
		Type:       string(item.Type),
		Critical:   item.Critical,
		SortOrder:  item.SortOrder,
		CreatedAt:  item.CreatedAt,
	}
	return translate(r.db.WithContext(ctx).Create(&model).Error)
}

func (r *ComplianceTemplateRepository) ListItems(ctx context.Context, companyID, templateID string) ([]domain.ComplianceTemplateItem, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var rows []ComplianceTemplateItemModel
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND template_id = ?", companyID, templateID).
		Order("sort_order ASC").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	items := make([]domain.ComplianceTemplateItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, domain.ComplianceTemplateItem{
			ID:         row.ID,
			CompanyID:  row.CompanyID,
			TemplateID: row.TemplateID,
			Title:      row.Title,
			Type:       domain.ItemType(row.Type),
			Critical:   row.Critical,
			SortOrder:  row.SortOrder,
			CreatedAt:  row.CreatedAt,
		})
	}
	return items, nil
}

func (r *ComplianceTemplateRepository) DeleteItem(ctx context.Context, companyID, itemID string) error {
	if r.db == nil {
		return errDBUnavailable
	}
	res := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, itemID).
		Delete(&ComplianceTemplateItemModel{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func complianceTemplateFromModel(m ComplianceTemplateModel) domain.ComplianceTemplate {
	return domain.ComplianceTemplate{
		ID:        m.ID,
		CompanyID: m.CompanyID,
		Name:      m.Name,
		ScopeType: domain.ScopeType(m.ScopeType),
		Frequency: domain.Frequency(m.Frequency),
		Active:    m.Active,
		CreatedAt: m.CreatedAt,
	}
}

type ComplianceRunRepository struct {
	db *gorm.DB
}

func NewComplianceRunRepository(gdb *gorm.DB) *ComplianceRunRepository {
	return &ComplianceRunRepository{db: gdb}
}

// Create stores the run with its period start truncated to the day, which is
// the column ux_runs_period covers. A duplicate for the same template, scope
// and day surfaces as domain.ErrDuplicate.
func (r *ComplianceRunRepository) Create(ctx context.Context, run domain.ComplianceRun) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := ComplianceRunModel{
		ID:          run.ID,
		CompanyID:   run.CompanyID,
		TemplateID:  run.TemplateID,
		ScopeType:   string(run.ScopeType),
		ScopeID:     run.ScopeID,
		PeriodDay:   domain.TruncateDay(run.PeriodStart),
		PeriodStart: run.PeriodStart,
		PeriodEnd:   run.PeriodEnd,
		Status:      string(run.Status),
		StatusColor: string(run.StatusColor),
		SubmittedAt: run.SubmittedAt,
		SubmittedBy: run.SubmittedBy,
		CreatedBy:   run.CreatedBy,
		CreatedAt:   run.CreatedAt,
	}
	return translate(r.db.WithContext(ctx).Create(&model).Error)
}

func (r *ComplianceRunRepository) Get(ctx context.Context, companyID, id string) (*domain.ComplianceRun, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model ComplianceRunModel
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&model).Error
	if err != nil {
		return nil, translate(err)
	}
	run := complianceRunFromModel(model)
	return &run, nil
}

func (r *ComplianceRunRepository) List(ctx context.Context, companyID string, filter usecase.RunFilter) ([]domain.ComplianceRun, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	query := r.db.WithContext(ctx).Where("company_id = ?", companyID)
	if filter.TemplateID != "" {
		query = query.Where("template_id = ?", filter.TemplateID)
	}
	if filter.ScopeType != "" {
		query = query.Where("scope_type = ?", string(filter.ScopeType))
	}
	if filter.ScopeID != "" {
		query = query.Where("scope_id = ?", filter.ScopeID)
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		query = query.Where("status IN ?", statuses)
	}
	if filter.From != nil {
		query = query.Where("period_start >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("period_start <= ?", *filter.To)
	}
	var rows []ComplianceRunModel
	if err := query.Order("period_start DESC").Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	runs := make([]domain.ComplianceRun, 0, len(rows))
	for _, row := range rows {
		runs = append(runs, complianceRunFromModel(row))
	}
	return runs, nil
}

func (r *ComplianceRunRepository) SetSubmitted(ctx context.Context, companyID, id string, sub usecase.RunSubmission) error {
	if r.db == nil {
		return errDBUnavailable
	}
	res := r.db.WithContext(ctx).
		Model(&ComplianceRunModel{}).
		Where("company_id = ? AND id = ? AND status = ?", companyID, id, string(domain.RunOpen)).
		Updates(map[string]any{
			"status":       string(domain.RunSubmitted),
			"status_color": string(sub.StatusColor),
			"submitted_at": sub.SubmittedAt,
			"submitted_by": sub.SubmittedBy,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func complianceRunFromModel(m ComplianceRunModel) domain.ComplianceRun {
	return domain.ComplianceRun{
		ID:          m.ID,
		CompanyID:   m.CompanyID,
		TemplateID:  m.TemplateID,
		ScopeType:   domain.ScopeType(m.ScopeType),
		ScopeID:     m.ScopeID,
		PeriodStart: m.PeriodStart,
		PeriodEnd:   m.PeriodEnd,
		Status:      domain.RunStatus(m.Status),
		StatusColor: domain.StatusColor(m.StatusColor),
		SubmittedAt: m.SubmittedAt,
		SubmittedBy: m.SubmittedBy,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
	}
}

type ComplianceResponseRepository struct {
	db *gorm.DB
}

func NewComplianceResponseRepository(gdb *gorm.DB) *ComplianceResponseRepository {
	return &ComplianceResponseRepository{db: gdb}
}

// Upsert keeps one response per (run, item); re-answering before submission
// overwrites in place.
func (r *ComplianceResponseRepository) Upsert(ctx context.Context, resp domain.ComplianceResponse) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := ComplianceResponseModel{
		ID:             resp.ID,
		CompanyID:      resp.CompanyID,
		RunID:          resp.RunID,
		ItemID:         resp.ItemID,
		Value:          resp.Value,
		Notes:          resp.Notes,
		AttachmentPath: resp.AttachmentPath,
		CreatedAt:      resp.CreatedAt,
		UpdatedAt:      resp.UpdatedAt,
	}
	return translate(r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "run_id"}, {Name: "item_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "notes", "attachment_path", "updated_at"}),
		}).
		Create(&model).Error)
}

func (r *ComplianceResponseRepository) ListByRun(ctx context.Context, companyID, runID string) ([]domain.ComplianceResponse, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var rows []ComplianceResponseModel
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND run_id = ?", companyID, runID).
		Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	responses := make([]domain.ComplianceResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, domain.ComplianceResponse{
			ID:             row.ID,
			CompanyID:      row.CompanyID,
			RunID:          row.RunID,
			ItemID:         row.ItemID,
			Value:          row.Value,
			Notes:          row.Notes,
			AttachmentPath: row.AttachmentPath,
			CreatedAt:      row.CreatedAt,
			UpdatedAt:      row.UpdatedAt,
		})
	}
	return responses, nil
}

type ComplianceActionRepository struct {
	db *gorm.DB
}

func NewComplianceActionRepository(gdb *gorm.DB) *ComplianceActionRepository {
	return &ComplianceActionRepository{db: gdb}
}

func (r *ComplianceActionRepository) Create(ctx context.Context, action domain.ComplianceAction) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := actionToModel(action)
	return translate(r.db.WithContext(ctx).Create(&model).Error)
}

func (r *ComplianceActionRepository) Get(ctx context.Context, companyID, id string) (*domain.ComplianceAction, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model ComplianceActionModel
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&model).Error
	if err != nil {
		return nil, translate(err)
	}
	action := actionFromModel(model)
	return &action, nil
}

func (r *ComplianceActionRepository) List(ctx context.Context, companyID string, filter usecase.ActionFilter) ([]domain.ComplianceAction, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	query := r.db.WithContext(ctx).Where("company_id = ?", companyID)
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.ScopeType != "" {
		query = query.Where("scope_type = ?", string(filter.ScopeType))
	}
	if filter.ScopeID != "" {
		query = query.Where("scope_id = ?", filter.ScopeID)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}
	var rows []ComplianceActionModel
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	actions := make([]domain.ComplianceAction, 0, len(rows))
	for _, row := range rows {
		actions = append(actions, actionFromModel(row))
	}
	return actions, nil
}

func (r *ComplianceActionRepository) Close(ctx context.Context, companyID, id string, closure usecase.ActionClosure) error {
	if r.db == nil {
		return errDBUnavailable
	}
	res := r.db.WithContext(ctx).
		Model(&ComplianceActionModel{}).
		Where("company_id = ? AND id = ? AND status <> ?", companyID, id, string(domain.ActionClosed)).
		Updates(map[string]any{
			"status":             string(domain.ActionClosed),
			"closure_note":       closure.ClosureNote,
			"closure_attachment": closure.AttachmentPath,
			"closed_at":          closure.ClosedAt,
			"closed_by":          closure.ClosedBy,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func actionToModel(a domain.ComplianceAction) ComplianceActionModel {
	return ComplianceActionModel{
		ID:                a.ID,
		CompanyID:         a.CompanyID,
		RunID:             a.RunID,
		ItemID:            a.ItemID,
		ScopeType:         string(a.ScopeType),
		ScopeID:           a.ScopeID,
		Severity:          string(a.Severity),
		Status:            string(a.Status),
		Description:       a.Description,
		AssigneeID:        a.AssigneeID,
		ClosureNote:       a.ClosureNote,
		ClosureAttachment: a.ClosureAttachment,
		ClosedAt:          a.ClosedAt,
		ClosedBy:          a.ClosedBy,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

func actionFromModel(m ComplianceActionModel) domain.ComplianceAction {
	return domain.ComplianceAction{
		ID:                m.ID,
		CompanyID:         m.CompanyID,
		RunID:             m.RunID,
		ItemID:            m.ItemID,
		ScopeType:         domain.ScopeType(m.ScopeType),
		ScopeID:           m.ScopeID,
		Severity:          domain.Severity(m.Severity),
		Status:            domain.ActionStatus(m.Status),
		Description:       m.Description,
		AssigneeID:        m.AssigneeID,
		ClosureNote:       m.ClosureNote,
		ClosureAttachment: m.ClosureAttachment,
		ClosedAt:          m.ClosedAt,
		ClosedBy:          m.ClosedBy,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}
