package db

import (
	"errors"

	"gorm.io/gorm"

	"complyd/internal/domain"
)

var errDBUnavailable = errors.New("database unavailable")

// translate maps gorm sentinels onto the domain's repository sentinels.
// Requires gorm.Config{TranslateError: true} so unique violations arrive as
// ErrDuplicatedKey on every driver.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.ErrDuplicate
	default:
		return err
	}
}

// Migrate creates or updates the schema for every workflow table.
func Migrate(gdb *gorm.DB) error {
	if gdb == nil {
		return errDBUnavailable
	}
	return gdb.AutoMigrate(
		&CompanyModel{},
		&ServiceCategoryModel{},
		&AuditModel{},
		&ScopeLineItemModel{},
		&AuditTemplateModel{},
		&AuditTemplateIndicatorModel{},
		&AuditRunModel{},
		&IndicatorResponseModel{},
		&FindingModel{},
		&EvidenceRequestModel{},
		&EvidenceItemModel{},
		&SiteModel{},
		&ParticipantModel{},
		&SiteAssignmentModel{},
		&ParticipantAssignmentModel{},
		&ComplianceTemplateModel{},
		&ComplianceTemplateItemModel{},
		&ComplianceRunModel{},
		&ComplianceResponseModel{},
		&ComplianceActionModel{},
		&ChangeRecordModel{},
		&WeeklyReportModel{},
		&GenerationLogModel{},
	)
}
