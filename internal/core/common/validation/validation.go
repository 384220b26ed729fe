package validation

import (
	"fmt"
	"net/mail"

	errors "github.com/eygar/payment-service/internal"
	"github.com/shopspring/decimal"
)

type ValidatorFunc func(interface{}) *errors.AppError

type FieldValidator struct {
	FieldName  string
	Value      interface{}
	Validators []ValidatorFunc
}

type ValidationBuilder struct {
	fields []FieldValidator
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{
		fields: make([]FieldValidator, 0),
	}
}

func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	fv := FieldValidator{
		FieldName:  name,
		Value:      value,
		Validators: make([]ValidatorFunc, 0),
	}
	v.fields = append(v.fields, fv)
	return &v.fields[len(v.fields)-1]
}

func (fv *FieldValidator) Required() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		switch v := value.(type) {
		case string:
			if v == "" {
				return errors.NewValidationError(fmt.Sprintf("%s is required", fv.FieldName), errors.ErrCodeValidationFailed)
			}
		case *string:
			if v == nil || *v == "" {
				return errors.NewValidationError(fmt.Sprintf("%s is required", fv.FieldName), errors.ErrCodeValidationFailed)
			}
		case decimal.Decimal:
			if v.IsZero() {
				return errors.NewValidationError(fmt.Sprintf("%s is required", fv.FieldName), errors.ErrCodeValidationFailed)
			}
		}
		return nil
	})
	return fv
}

// MaxLen bounds string length; nil pointers pass.
func (fv *FieldValidator) MaxLen(max int) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		s, ok := stringValue(value)
		if !ok {
			return nil
		}
		if len(s) > max {
			return errors.NewValidationError(
				fmt.Sprintf("%s must be at most %d characters", fv.FieldName, max),
				errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

// ExactLen requires an exact string length, used for ISO-4217 currency codes.
func (fv *FieldValidator) ExactLen(n int, code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		s, ok := stringValue(value)
		if !ok {
			return nil
		}
		if len(s) != n {
			return errors.NewValidationError(
				fmt.Sprintf("%s must be exactly %d characters", fv.FieldName, n), code)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Email(code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		s, ok := stringValue(value)
		if !ok {
			return nil
		}
		if _, err := mail.ParseAddress(s); err != nil {
			return errors.NewValidationError(
				fmt.Sprintf("%s is not a valid email address", fv.FieldName), code)
		}
		return nil
	})
	return fv
}

// PositiveDecimal requires a strictly positive amount.
func (fv *FieldValidator) PositiveDecimal(code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		var d decimal.Decimal
		switch v := value.(type) {
		case decimal.Decimal:
			d = v
		case *decimal.Decimal:
			if v == nil {
				return nil
			}
			d = *v
		default:
			return nil
		}
		if !d.IsPositive() {
			return errors.NewValidationError(
				fmt.Sprintf("%s must be greater than 0", fv.FieldName), code)
		}
		return nil
	})
	return fv
}

// OneOf restricts a string to a fixed set of values.
func (fv *FieldValidator) OneOf(allowed []string, code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		s, ok := stringValue(value)
		if !ok {
			return nil
		}
		for _, a := range allowed {
			if s == a {
				return nil
			}
		}
		return errors.NewValidationError(
			fmt.Sprintf("%s must be one of %v", fv.FieldName, allowed), code)
	})
	return fv
}

// Validate runs all registered checks and returns the first failure.
func (v *ValidationBuilder) Validate() *errors.AppError {
	for i := range v.fields {
		fv := &v.fields[i]
		for _, check := range fv.Validators {
			if appErr := check(fv.Value); appErr != nil {
				return appErr
			}
		}
	}
	return nil
}

func stringValue(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		if v == "" {
			return "", false
		}
		return v, true
	case *string:
		if v == nil || *v == "" {
			return "", false
		}
		return *v, true
	}
	return "", false
}
