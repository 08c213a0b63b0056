package interview

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/abhisek/dataready/internal/catalog"
)

// Mode selects how the interview branches after each answer.
type Mode string

const (
	// ModeStructured asks core questions only.
	ModeStructured Mode = "structured"
	// ModeStructuredFollowup may probe weak answers with follow-ups.
	ModeStructuredFollowup Mode = "structured_followup"
	// ModeStress is reserved for a pressure interview style and currently
	// behaves like ModeStructured.
	ModeStress Mode = "stress"
)

// AllModes returns every mode.
func AllModes() []Mode {
	return []Mode{ModeStructured, ModeStructuredFollowup, ModeStress}
}

const (
	DefaultMaxQuestions = 10
	MinMaxQuestions     = 5
	MaxMaxQuestions     = 15
)

// Setup is the candidate's interview configuration. It is fixed once a
// session is created.
type Setup struct {
	YearsOfExperience int                     `json:"years_of_experience" validate:"gte=0,lte=30"`
	TargetRole        catalog.Role            `json:"target_role" validate:"required,oneof=junior_data_engineer mid_data_engineer senior_data_engineer staff_data_engineer principal_data_engineer"`
	CloudPreference   catalog.CloudPreference `json:"cloud_preference" validate:"oneof=aws gcp azure multi_cloud cloud_agnostic"`
	IncludeSkills     []string                `json:"include_skills,omitempty" validate:"dive,known_skill"`
	ExcludeSkills     []string                `json:"exclude_skills,omitempty" validate:"dive,known_skill"`
	Mode              Mode                    `json:"mode" validate:"oneof=structured structured_followup stress"`
	MaxQuestions      int                     `json:"max_questions" validate:"gte=5,lte=15"`
}

// WithDefaults fills unset optional fields.
func (s Setup) WithDefaults() Setup {
	if s.CloudPreference == "" {
		s.CloudPreference = catalog.CloudAgnostic
	}
	if s.Mode == "" {
		s.Mode = ModeStructuredFollowup
	}
	if s.MaxQuestions == 0 {
		s.MaxQuestions = DefaultMaxQuestions
	}
	return s
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func setupValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = validate.RegisterValidation("known_skill", func(fl validator.FieldLevel) bool {
			return catalog.HasSkill(fl.Field().String())
		})
	})
	return validate
}

// Validate checks the setup and returns a *SetupError describing the first
// violation.
func (s Setup) Validate() error {
	err := setupValidator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &SetupError{Field: fe.Field(), Message: describeViolation(fe)}
	}
	return &SetupError{Field: "setup", Message: err.Error()}
}

func describeViolation(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "known_skill":
		return fmt.Sprintf("unknown skill %q", fe.Value())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
