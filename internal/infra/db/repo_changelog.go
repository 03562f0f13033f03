package db

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"complyd/internal/domain"
)

type ChangeRecordRepository struct {
	db *gorm.DB
}

func NewChangeRecordRepository(gdb *gorm.DB) *ChangeRecordRepository {
	return &ChangeRecordRepository{db: gdb}
}

// Append writes one immutable change-log row. Snapshots are stored as JSON;
// a nil snapshot stays NULL rather than the string "null".
func (r *ChangeRecordRepository) Append(ctx context.Context, rec domain.ChangeRecord) error {
	if r.db == nil {
		return errDBUnavailable
	}
	before, err := marshalSnapshot(rec.Before)
	if err != nil {
		return err
	}
	after, err := marshalSnapshot(rec.After)
	if err != nil {
		return err
	}
	model := ChangeRecordModel{
		ID:          rec.ID,
		CompanyID:   rec.CompanyID,
		ActorID:     rec.ActorID,
		ActorRole:   string(rec.ActorRole),
		Action:      string(rec.Action),
		EntityType:  string(rec.EntityType),
		EntityID:    rec.EntityID,
		BeforeJSON:  before,
		AfterJSON:   after,
		PayloadHash: rec.PayloadHash,
		CreatedAt:   rec.CreatedAt,
	}
	return translate(r.db.WithContext(ctx).Create(&model).Error)
}

func (r *ChangeRecordRepository) ListByEntity(ctx context.Context, companyID string, entity domain.EntityType, entityID string) ([]domain.ChangeRecord, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var rows []ChangeRecordModel
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND entity_type = ? AND entity_id = ?", companyID, string(entity), entityID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	records := make([]domain.ChangeRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, domain.ChangeRecord{
			ID:          row.ID,
			CompanyID:   row.CompanyID,
			ActorID:     row.ActorID,
			ActorRole:   domain.Role(row.ActorRole),
			Action:      domain.ChangeAction(row.Action),
			EntityType:  domain.EntityType(row.EntityType),
			EntityID:    row.EntityID,
			Before:      unmarshalSnapshot(row.BeforeJSON),
			After:       unmarshalSnapshot(row.AfterJSON),
			PayloadHash: row.PayloadHash,
			CreatedAt:   row.CreatedAt,
		})
	}
	return records, nil
}

func marshalSnapshot(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func unmarshalSnapshot(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}
