package surveyimport

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var surveyCodePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

var metadataValidator = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("surveycode", func(fl validator.FieldLevel) bool {
		return surveyCodePattern.MatchString(fl.Field().String())
	})
	return v
})

// Validate checks the metadata after trimming whitespace from its fields.
func (m *SurveyMetadata) Validate() error {
	m.Code = strings.TrimSpace(m.Code)
	m.Name = strings.TrimSpace(m.Name)
	m.Date = strings.TrimSpace(m.Date)
	m.Description = strings.TrimSpace(m.Description)

	err := metadataValidator().Struct(m)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return &ValidationError{Fields: msgs}
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "datetime":
		return field + " must be a date in YYYY-MM-DD format"
	case "surveycode":
		return field + " may only contain letters, digits, '.', '_' and '-'"
	}
	return field + " is invalid"
}

// ValidationError lists the metadata fields that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid survey metadata: " + strings.Join(e.Fields, "; ")
}
