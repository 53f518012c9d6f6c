// Package trip defines the planning request and its result.
package trip

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Strob0t/VoyageMind/internal/domain"
	"github.com/Strob0t/VoyageMind/internal/domain/recommendation"
)

// sessionPrefix marks generated session identifiers.
const sessionPrefix = "voyage-"

// maxCountryLen bounds the country name that reaches a prompt.
const maxCountryLen = 128

// Request asks for a plan for one country. SessionID is optional on input
// and always set before the planner runs.
type Request struct {
	Country   string `json:"country"`
	SessionID string `json:"session_id,omitempty"`
}

// Validate trims the country and checks it is present and reasonably sized.
func (r *Request) Validate() error {
	r.Country = strings.TrimSpace(r.Country)
	if r.Country == "" {
		return fmt.Errorf("%w: country is required", domain.ErrValidation)
	}
	if len(r.Country) > maxCountryLen {
		return fmt.Errorf("%w: country too long (max %d chars)", domain.ErrValidation, maxCountryLen)
	}
	return nil
}

// EnsureSession fills SessionID with a generated one when absent and
// returns the identifier in use.
func (r *Request) EnsureSession() string {
	if r.SessionID == "" {
		r.SessionID = NewSessionID()
	}
	return r.SessionID
}

// NewSessionID returns "voyage-" followed by 12 random hex characters.
func NewSessionID() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return sessionPrefix + id[:12]
}

// PerPersona holds the three specialist sets, kept for debugging.
type PerPersona struct {
	HistoryCulture recommendation.SpecialistSet `json:"history_culture"`
	FoodCuisine    recommendation.SpecialistSet `json:"food_cuisine"`
	Transportation recommendation.SpecialistSet `json:"transportation"`
}

// Result is a completed plan.
type Result struct {
	Country              string                  `json:"country"`
	FinalRecommendations recommendation.FinalSet `json:"recommendations"`
	PerPersona           PerPersona              `json:"agent_details"`
	SessionID            string                  `json:"session_id"`
}
