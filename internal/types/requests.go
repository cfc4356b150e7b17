package types

import (
	"errors"
	"strings"
)

// RequestKind identifies a GenerationRequest variant
type RequestKind string

const (
	KindIngredients RequestKind = "ingredients"
	KindMood        RequestKind = "mood"
)

const (
	DefaultDrinkPreference  = "any"
	DefaultFlavorPreference = "balanced"
	DefaultMood             = "happy"
)

// ErrNoIngredients is returned when an ingredient request has nothing usable
var ErrNoIngredients = errors.New("please provide at least one ingredient")

// GenerationRequest is either an IngredientRequest or a MoodRequest
type GenerationRequest interface {
	Kind() RequestKind
	// Normalize fills defaults and checks invariants
	Normalize() error
}

// IngredientRequest asks for a cocktail built from the listed ingredients
type IngredientRequest struct {
	Ingredients      []string `json:"ingredients"`
	DrinkPreference  string   `json:"drink_preference"`
	FlavorPreference string   `json:"flavor_preference"`
}

func (r *IngredientRequest) Kind() RequestKind { return KindIngredients }

// Normalize drops blank ingredient entries and applies preference defaults.
// Non-blank entries are kept verbatim.
func (r *IngredientRequest) Normalize() error {
	kept := r.Ingredients[:0:0]
	for _, ing := range r.Ingredients {
		if strings.TrimSpace(ing) != "" {
			kept = append(kept, ing)
		}
	}
	r.Ingredients = kept
	if len(r.Ingredients) == 0 {
		return ErrNoIngredients
	}
	if r.DrinkPreference == "" {
		r.DrinkPreference = DefaultDrinkPreference
	}
	if r.FlavorPreference == "" {
		r.FlavorPreference = DefaultFlavorPreference
	}
	return nil
}

// MoodRequest asks for a cocktail matching a mood
type MoodRequest struct {
	Mood string `json:"mood" form:"mood"`
}

func (r *MoodRequest) Kind() RequestKind { return KindMood }

func (r *MoodRequest) Normalize() error {
	if strings.TrimSpace(r.Mood) == "" {
		r.Mood = DefaultMood
	}
	return nil
}

// GenerateResponse is the success envelope for both endpoints
type GenerateResponse struct {
	Message string `json:"message"`
	File    string `json:"file"`
	Recipe  Recipe `json:"recipe"`
}

// ErrorResponse is the failure envelope
type ErrorResponse struct {
	Error string `json:"error"`
}
