package internal

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0] // e.g. `json:"processInstanceId,omitempty"` -> processInstanceId
	})

	validate.RegisterValidation("value_type", func(fl validator.FieldLevel) bool {
		return history.ValueType(fl.Field().String()).IsValid()
	})

	return validate
}

// validateCmd validates a command, before it is recorded.
func validateCmd(title string, cmd any) error {
	err := validate.Struct(cmd)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("failed to validate command: %v", err)
	}

	details := make([]string, len(validationErrors))
	for i, fieldError := range validationErrors {
		var detail string
		switch fieldError.Tag() {
		case "excluded_with":
			detail = fmt.Sprintf("cannot be combined with %s", fieldError.Param())
		case "gte":
			detail = fmt.Sprintf("must be greater than or equal to %s", fieldError.Param())
		case "required":
			detail = "is required"
		case "value_type":
			detail = fmt.Sprintf("value type %v is not supported", fieldError.Value())
		default:
			detail = "is invalid"
		}

		field := strings.SplitN(fieldError.Namespace(), ".", 2)
		details[i] = fmt.Sprintf("%s %s", field[len(field)-1], detail)
	}

	return history.Error{
		Type:   history.ErrorValidation,
		Title:  title,
		Detail: strings.Join(details, "; "),
	}
}

// newId generates the ID of a historic row.
func newId() string {
	return uuid.NewString()
}

func durationInMillis(start time.Time, end time.Time) pgtype.Int8 {
	return pgtype.Int8{Int64: end.Sub(start).Milliseconds(), Valid: true}
}

func int8OrNil(v pgtype.Int8) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func text(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func timestamp(t time.Time) pgtype.Timestamp {
	return pgtype.Timestamp{Time: t, Valid: true}
}

// timestampOrNull must be UTC and truncated to millis, like the time of a context.
func timestampOrNull(t *time.Time) pgtype.Timestamp {
	if t == nil {
		return pgtype.Timestamp{}
	}
	return pgtype.Timestamp{Time: t.UTC().Truncate(time.Millisecond), Valid: true}
}

func timeOrNil(v pgtype.Timestamp) *time.Time {
	if !v.Valid {
		return nil
	}
	return &v.Time
}
