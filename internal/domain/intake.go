package domain

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Vibe is the brand direction picked in the intake quiz.
type Vibe string

const (
	VibeProfessional Vibe = "professional"
	VibeCreative     Vibe = "creative"
	VibeMinimal      Vibe = "minimal"
	VibeBold         Vibe = "bold"
	VibePersonal     Vibe = "personal"
)

// ErrMissingIntake indicates a search state without intake answers attached.
var ErrMissingIntake = errors.New("search state has no intake answers")

// validate is the package-level validator instance used for struct validation.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Intake holds the client's answers from the initial quiz. It is the
// only user input the orchestrator consumes to start a search.
type Intake struct {
	// BusinessName is the business or project name. Required.
	BusinessName string `json:"business_name" validate:"required,min=1"`

	// DomainIdea is an optional domain the client already has in mind.
	DomainIdea string `json:"domain_idea,omitempty"`

	// TLDPreferences lists preferred endings; "any" is a wildcard.
	TLDPreferences []string `json:"tld_preferences" validate:"required,min=1"`

	// Vibe is the brand direction used to steer generation and scoring.
	Vibe Vibe `json:"vibe" validate:"required,oneof=professional creative minimal bold personal"`

	// Keywords are optional free-text themes, e.g. "nature, artisan".
	Keywords string `json:"keywords,omitempty"`
}

// NewIntake builds a validated intake with the quiz's defaults applied:
// TLD preferences default to ["com","any"], vibe to professional.
func NewIntake(businessName string, tlds []string, vibe Vibe) (Intake, error) {
	if len(tlds) == 0 {
		tlds = []string{"com", "any"}
	}
	if vibe == "" {
		vibe = VibeProfessional
	}
	in := Intake{BusinessName: businessName, TLDPreferences: tlds, Vibe: vibe}
	if err := in.Validate(); err != nil {
		return Intake{}, err
	}
	return in, nil
}

// Validate checks the intake against its field constraints.
func (i *Intake) Validate() error {
	if err := validate.Struct(i); err != nil {
		return fmt.Errorf("invalid intake: %w", err)
	}
	return nil
}
