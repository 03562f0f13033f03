package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"complyd/internal/domain"
)

// ChangeEmitter appends audit-log records for workflow mutations. Emission
// failures are returned to the caller: a mutation without its change record
// is treated as a failed operation.
type ChangeEmitter struct {
	Repo  ChangeRecordRepository
	Clock Clock
}

func NewChangeEmitter(repo ChangeRecordRepository, clock Clock) *ChangeEmitter {
	return &ChangeEmitter{Repo: repo, Clock: clock}
}

func (e *ChangeEmitter) Emit(ctx context.Context, actor domain.Actor, action domain.ChangeAction, entity domain.EntityType, entityID string, before, after any) error {
	if e == nil || e.Repo == nil {
		return errors.New("change record repository required")
	}
	if actor.CompanyID == "" || action == "" || entity == "" {
		return errors.New("change record missing required fields")
	}
	rec := domain.ChangeRecord{
		ID:          uuid.NewString(),
		CompanyID:   actor.CompanyID,
		ActorID:     actor.UserID,
		ActorRole:   actor.Role,
		Action:      action,
		EntityType:  entity,
		EntityID:    entityID,
		Before:      before,
		After:       after,
		PayloadHash: snapshotHash(before, after),
		CreatedAt:   e.now(),
	}
	return e.Repo.Append(ctx, rec)
}

// History returns the entity's change records in append order.
func (e *ChangeEmitter) History(ctx context.Context, actor domain.Actor, entity domain.EntityType, entityID string) ([]domain.ChangeRecord, error) {
	if e == nil || e.Repo == nil {
		return nil, errors.New("change record repository required")
	}
	return e.Repo.ListByEntity(ctx, actor.CompanyID, entity, entityID)
}

func (e *ChangeEmitter) now() time.Time {
	if e != nil && e.Clock != nil {
		return e.Clock().UTC()
	}
	return time.Now().UTC()
}

func snapshotHash(before, after any) string {
	payload, err := json.Marshal([2]any{before, after})
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
