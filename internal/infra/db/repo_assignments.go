package db

import (
	"context"

	"gorm.io/gorm"

	"complyd/internal/domain"
)

type ScopeEntityRepository struct {
	db *gorm.DB
}

func NewScopeEntityRepository(gdb *gorm.DB) *ScopeEntityRepository {
	return &ScopeEntityRepository{db: gdb}
}

func (r *ScopeEntityRepository) GetSite(ctx context.Context, companyID, id string) (*domain.Site, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model SiteModel
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&model).Error
	if err != nil {
		return nil, translate(err)
	}
	return &domain.Site{
		ID:        model.ID,
		CompanyID: model.CompanyID,
		Name:      model.Name,
		CreatedAt: model.CreatedAt,
	}, nil
}

func (r *ScopeEntityRepository) GetParticipant(ctx context.Context, companyID, id string) (*domain.Participant, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model ParticipantModel
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&model).Error
	if err != nil {
		return nil, translate(err)
	}
	return &domain.Participant{
		ID:        model.ID,
		CompanyID: model.CompanyID,
		Name:      model.Name,
		CreatedAt: model.CreatedAt,
	}, nil
}

type AssignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(gdb *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: gdb}
}

// Get loads the user's full assignment set. A user with no rows gets an
// empty set, not an error.
func (r *AssignmentRepository) Get(ctx context.Context, companyID, userID string) (domain.AssignmentSet, error) {
	if r.db == nil {
		return domain.AssignmentSet{}, errDBUnavailable
	}
	var siteRows []SiteAssignmentModel
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND user_id = ?", companyID, userID).
		Find(&siteRows).Error
	if err != nil {
		return domain.AssignmentSet{}, translate(err)
	}
	var participantRows []ParticipantAssignmentModel
	err = r.db.WithContext(ctx).
		Where("company_id = ? AND user_id = ?", companyID, userID).
		Find(&participantRows).Error
	if err != nil {
		return domain.AssignmentSet{}, translate(err)
	}
	set := domain.AssignmentSet{
		SiteIDs:        make([]string, 0, len(siteRows)),
		ParticipantIDs: make([]string, 0, len(participantRows)),
	}
	for _, row := range siteRows {
		set.SiteIDs = append(set.SiteIDs, row.SiteID)
	}
	for _, row := range participantRows {
		set.ParticipantIDs = append(set.ParticipantIDs, row.ParticipantID)
	}
	return set, nil
}
