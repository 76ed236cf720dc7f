// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"reflect"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"budgetbot/internal/models"
	"budgetbot/internal/money"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn adds the custom tags to v. Money fields are validated through
// their two-decimal string form.
func RegisterOn(v *validator.Validate) {
	v.RegisterCustomTypeFunc(moneyString, money.Money{})
	_ = v.RegisterValidation("money", validateMoney)
	_ = v.RegisterValidation("positive_money", validatePositiveMoney)
	_ = v.RegisterValidation("transaction_kind", validateTransactionKind)
	_ = v.RegisterValidation("iso_date", validateISODate)
}

func moneyString(field reflect.Value) interface{} {
	if m, ok := field.Interface().(money.Money); ok {
		return m.String()
	}
	return nil
}

// validateMoney accepts non-negative amounts with at most two fractional digits.
func validateMoney(fl validator.FieldLevel) bool {
	m, err := money.Parse(fl.Field().String())
	return err == nil && !m.IsNegative()
}

func validatePositiveMoney(fl validator.FieldLevel) bool {
	m, err := money.Parse(fl.Field().String())
	return err == nil && m.IsPositive()
}

func validateTransactionKind(fl validator.FieldLevel) bool {
	return models.TransactionKind(fl.Field().String()).Valid()
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(time.DateOnly, fl.Field().String())
	return err == nil
}
