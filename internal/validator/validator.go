// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"finhelp/internal/analytics"
	"finhelp/internal/category"
	"finhelp/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("transaction_type", validateTransactionType)
		_ = v.RegisterValidation("category", validateCategory)
		_ = v.RegisterValidation("txdate", validateDate)
		_ = v.RegisterValidation("sort_key", validateSortKey)
		_ = v.RegisterValidation("theme", validateTheme)
		_ = v.RegisterValidation("type_filter", validateTypeFilter)
		_ = v.RegisterValidation("category_filter", validateCategoryFilter)
	}
}

func validateTransactionType(fl validator.FieldLevel) bool {
	return models.TransactionType(fl.Field().String()).Valid()
}

func validateCategory(fl validator.FieldLevel) bool {
	return category.Valid(fl.Field().String())
}

func validateDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(models.DateLayout, fl.Field().String())
	return err == nil
}

func validateSortKey(fl validator.FieldLevel) bool {
	return analytics.SortKey(fl.Field().String()).Valid()
}

func validateTheme(fl validator.FieldLevel) bool {
	return models.Theme(fl.Field().String()).Valid()
}

func validateTypeFilter(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == analytics.FilterAll || models.TransactionType(s).Valid()
}

func validateCategoryFilter(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == analytics.FilterAll || category.Valid(s)
}
