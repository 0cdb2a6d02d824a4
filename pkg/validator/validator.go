package validator

import (
	"github.com/go-playground/validator/v10"

	"github.com/careerquest-team/careerquest-backend/internal/domain/entities"
)

// CustomValidator implements echo.Validator using go-playground/validator
type CustomValidator struct {
	v *validator.Validate
}

// New creates a new CustomValidator instance
func New() *CustomValidator {
	v := validator.New()
	v.RegisterValidation("meeting_kind", validateMeetingKind)
	v.RegisterValidation("archetype", validateArchetype)
	return &CustomValidator{v: v}
}

// Validate performs struct validation
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}

func validateMeetingKind(fl validator.FieldLevel) bool {
	return entities.MeetingKind(fl.Field().String()).IsValid()
}

func validateArchetype(fl validator.FieldLevel) bool {
	return entities.PersonalityArchetype(fl.Field().String()).IsValid()
}
