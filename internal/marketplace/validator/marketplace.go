package validator

import (
	"clubhouse/pkg/logger"
	"clubhouse/pkg/model"
	"clubhouse/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type MarketplaceValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewMarketplaceValidator(log *logger.Logger) *MarketplaceValidator {
	v := validation.New(log)
	log.Info("Marketplace validator initialized successfully")

	return &MarketplaceValidator{
		validate: v,
		logger:   log,
	}
}

func (v *MarketplaceValidator) ValidateItem(item *model.MarketplaceItem) error {
	return validation.Struct(v.validate, item)
}

func (v *MarketplaceValidator) ValidateFlagReport(report *model.FlagReport) error {
	return validation.Struct(v.validate, report)
}

func (v *MarketplaceValidator) ValidateStatusChange(change *model.StatusChange) error {
	return validation.Struct(v.validate, change)
}

func (v *MarketplaceValidator) ValidateFlagResolution(res *model.FlagResolution) error {
	return validation.Struct(v.validate, res)
}

func (v *MarketplaceValidator) ValidateBulkStatusChange(req *model.BulkStatusChange) error {
	return validation.Struct(v.validate, req)
}

func (v *MarketplaceValidator) ValidateBulkDelete(req *model.BulkDelete) error {
	return validation.Struct(v.validate, req)
}
