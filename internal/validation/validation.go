// Package validation turns tagged input structs into field-level errors.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/andriinero/inkspace-backend/internal/models"

	"github.com/go-playground/validator/v10"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if !usernamePattern.MatchString(s) {
			return false
		}
		first, last := s[0], s[len(s)-1]
		return first != '_' && first != '-' && last != '_' && last != '-'
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	v.RegisterAlias("pwd", "min=8,max=128")
	return v
}

// Struct validates s and returns a validation AppError listing every failing
// field, or nil.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return models.NewInternalError(err)
	}

	fields := make([]models.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, models.FieldError{
			Field:   fe.Field(),
			Message: formatFieldError(fe),
		})
	}
	return models.NewFieldValidationError(fields...)
}

// Merge folds several validation results into one, keeping every field error.
func Merge(errs ...error) error {
	var fields []models.FieldError
	for _, err := range errs {
		if err == nil {
			continue
		}
		var appErr *models.AppError
		if !errors.As(err, &appErr) || appErr.Code != models.CodeValidation {
			return err
		}
		if len(appErr.Fields) == 0 {
			fields = append(fields, models.FieldError{Field: "payload", Message: appErr.Message})
			continue
		}
		fields = append(fields, appErr.Fields...)
	}
	if len(fields) == 0 {
		return nil
	}
	return models.NewFieldValidationError(fields...)
}

func formatFieldError(fe validator.FieldError) string {
	param := fe.Param()
	isString := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "min":
		if isString {
			return "must be at least " + param + " characters long"
		}
		return "must be at least " + param
	case "max":
		if isString {
			return "must not exceed " + param + " characters"
		}
		return "must not exceed " + param
	case "gte":
		return "must be greater than or equal to " + param
	case "lte":
		return "must be less than or equal to " + param
	case "email":
		return "must be a valid email"
	case "eqfield":
		return "must match " + strings.ToLower(param)
	case "oneof":
		return "must be one of " + param
	case "username":
		return "can only contain letters, numbers, underscores and hyphens, and cannot start or end with underscore or hyphen"
	case "numeric", "number":
		return "must be a number"
	}
	return "is invalid"
}
