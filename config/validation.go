package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pageza/alchemorsel-cocktails/backend/internal/types"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in a Config
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, v := range e {
		msgs = append(msgs, v.Error())
	}
	return strings.Join(msgs, "\n")
}

// ValidateConfig checks that the configuration can drive the pipeline
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors

	if cfg.OpenAIAPIKey == "" {
		errs = append(errs, ValidationError{"OPENAI_API_KEY", "an API key is required (env, OPENAI_API_KEY_FILE or openai_api_key secret)"})
	}
	if cfg.Model == "" {
		errs = append(errs, ValidationError{"OPENAI_MODEL", "must not be empty"})
	}
	if cfg.MaxTokens <= 0 {
		errs = append(errs, ValidationError{"OPENAI_MAX_TOKENS", "must be positive"})
	}
	if cfg.GenerationTimeout < 0 {
		errs = append(errs, ValidationError{"GENERATION_TIMEOUT", "must not be negative"})
	}
	if cfg.ThrottleLimit <= 0 {
		errs = append(errs, ValidationError{"THROTTLE_LIMIT", "must be positive"})
	}
	if cfg.ThrottleWindow <= 0 {
		errs = append(errs, ValidationError{"THROTTLE_WINDOW", "must be positive"})
	}
	switch cfg.ThrottleBackend {
	case ThrottleBackendMemory, ThrottleBackendRedis:
	default:
		errs = append(errs, ValidationError{"THROTTLE_BACKEND", fmt.Sprintf("unknown backend %q", cfg.ThrottleBackend)})
	}
	if cfg.OutputDir == "" {
		errs = append(errs, ValidationError{"OUTPUT_DIR", "must not be empty"})
	}
	errs = append(errs, validateRequiredFields("REQUIRED_FIELDS_INGREDIENTS", cfg.RequiredFieldsIngredients)...)
	errs = append(errs, validateRequiredFields("REQUIRED_FIELDS_MOOD", cfg.RequiredFieldsMood)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// validateRequiredFields accepts only recipe fields and insists on the name,
// which the stored filename is built from
func validateRequiredFields(key string, fields []string) []ValidationError {
	var errs []ValidationError
	if !slices.Contains(fields, types.FieldName) {
		errs = append(errs, ValidationError{key, fmt.Sprintf("must include %q", types.FieldName)})
	}
	for _, f := range fields {
		if !slices.Contains(types.RecipeFieldOrder, f) {
			errs = append(errs, ValidationError{key, fmt.Sprintf("unknown field %q, expected one of %s", f, strings.Join(types.RecipeFieldOrder, ", "))})
		}
	}
	return errs
}
