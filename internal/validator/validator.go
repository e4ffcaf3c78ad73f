// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"spendwise/internal/models"
	"spendwise/internal/money"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn registers the custom tags on v.
func RegisterOn(v *validator.Validate) {
	_ = v.RegisterValidation("iso_date", validateISODate)
	_ = v.RegisterValidation("decimal_amount", validateDecimalAmount)
}

// validateISODate accepts calendar dates in YYYY-MM-DD form.
func validateISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(models.DateLayout, fl.Field().String())
	return err == nil
}

// validateDecimalAmount accepts decimal number strings of bounded length and
// scale; range checks are left to expense validation so every violation is
// reported together.
func validateDecimalAmount(fl validator.FieldLevel) bool {
	_, err := money.ParseDecimal(fl.Field().String())
	return err == nil
}
