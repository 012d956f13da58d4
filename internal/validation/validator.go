package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"shareit/internal/apperrors"
	"shareit/internal/models"

	"github.com/go-playground/validator/v10"
)

// Validator checks request payloads against their struct tags.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("notblank", notBlank); err != nil {
		panic(fmt.Sprintf("register notblank validator: %v", err))
	}

	return &Validator{validate: v}
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// Struct validates a tagged payload and returns an apperrors validation error on failure.
func (v *Validator) Struct(payload any) error {
	err := v.validate.Struct(payload)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return apperrors.Validation("invalid payload: %v", err)
	}
	return translateValidationErrors(validationErrs)
}

func translateValidationErrors(errs validator.ValidationErrors) error {
	fields := make(map[string]any, len(errs))
	messages := make([]string, 0, len(errs))
	for _, fe := range errs {
		msg := fieldMessage(fe)
		fields[fe.Field()] = msg
		messages = append(messages, fe.Field()+" "+msg)
	}

	return apperrors.Validation("validation failed: %s", strings.Join(messages, "; ")).
		WithDetails(map[string]any{"fields": fields})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	case "email":
		return "must be a valid email"
	case "gt":
		return "must be greater than " + fe.Param()
	default:
		return "failed on " + fe.Tag()
	}
}

// BookingDates rejects an interval that is empty, inverted or not entirely in the future.
func BookingDates(dto models.BookingCreate, now time.Time) error {
	start, end := dto.Start.Time, dto.End.Time
	switch {
	case end.Before(start):
		return apperrors.Validation("booking end must not be before start")
	case start.Equal(end):
		return apperrors.Validation("booking start and end must differ")
	case start.Before(now):
		return apperrors.Validation("booking start must not be in the past")
	case end.Before(now):
		return apperrors.Validation("booking end must not be in the past")
	}
	return nil
}

// Booking runs the struct checks and then the date rules.
func (v *Validator) Booking(dto models.BookingCreate, now time.Time) error {
	if err := v.Struct(dto); err != nil {
		return err
	}
	return BookingDates(dto, now)
}
