package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"complyd/internal/domain"
)

var defaultServiceCategories = []string{
	"Daily Living Support",
	"Community Participation",
	"Supported Independent Living",
	"Therapeutic Supports",
	"Support Coordination",
}

type seedChecklistItem struct {
	title    string
	itemType domain.ItemType
	critical bool
}

var defaultSiteChecklist = []seedChecklistItem{
	{title: "Fire exits clear and unobstructed", itemType: domain.ItemYesNoNA, critical: true},
	{title: "First aid kit stocked and in date", itemType: domain.ItemYesNoNA, critical: true},
	{title: "Medication storage locked", itemType: domain.ItemYesNoNA, critical: true},
	{title: "Kitchen and bathroom areas clean", itemType: domain.ItemYesNoNA, critical: false},
	{title: "Fridge temperature reading", itemType: domain.ItemNumber, critical: false},
	{title: "Hazards or maintenance issues noted", itemType: domain.ItemText, critical: false},
}

// Seed bootstraps a company with its baseline reference data: the standard
// service categories and a default daily site checklist. Already-seeded
// companies are left untouched.
func Seed(ctx context.Context, gdb *gorm.DB, companyID, companyName string) error {
	if gdb == nil {
		return errDBUnavailable
	}
	return gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		var company CompanyModel
		err := tx.Where("id = ?", companyID).First(&company).Error
		switch {
		case err == nil:
		case errors.Is(err, gorm.ErrRecordNotFound):
			company = CompanyModel{ID: companyID, Name: companyName, CreatedAt: now}
			if err := tx.Create(&company).Error; err != nil {
				return err
			}
		default:
			return err
		}

		var categories int64
		if err := tx.Model(&ServiceCategoryModel{}).
			Where("company_id = ?", companyID).
			Count(&categories).Error; err != nil {
			return err
		}
		if categories == 0 {
			for _, label := range defaultServiceCategories {
				row := ServiceCategoryModel{
					ID:        uuid.NewString(),
					CompanyID: companyID,
					Label:     label,
					CreatedAt: now,
				}
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
			}
		}

		var templates int64
		if err := tx.Model(&ComplianceTemplateModel{}).
			Where("company_id = ?", companyID).
			Count(&templates).Error; err != nil {
			return err
		}
		if templates > 0 {
			return nil
		}
		tpl := ComplianceTemplateModel{
			ID:        uuid.NewString(),
			CompanyID: companyID,
			Name:      "Daily Site Safety Checklist",
			ScopeType: string(domain.ScopeSite),
			Frequency: string(domain.FrequencyDaily),
			Active:    true,
			CreatedAt: now,
		}
		if err := tx.Create(&tpl).Error; err != nil {
			return err
		}
		for i, item := range defaultSiteChecklist {
			row := ComplianceTemplateItemModel{
				ID:         uuid.NewString(),
				CompanyID:  companyID,
				TemplateID: tpl.ID,
				Title:      item.title,
				Type:       string(item.itemType),
				Critical:   item.critical,
				SortOrder:  i + 1,
				CreatedAt:  now,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
