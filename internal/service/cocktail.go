package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/pageza/alchemorsel-cocktails/backend/internal/types"
)

// CocktailServiceInterface is what the API layer depends on
type CocktailServiceInterface interface {
	Generate(ctx context.Context, req types.GenerationRequest) (*types.StoredRecipe, error)
}

// CocktailService runs the generation pipeline:
// prompt -> generate -> extract -> parse -> validate -> store.
// It holds no per-request state.
type CocktailService struct {
	generator Generator
	validator *Validator
	store     RecipeStore
	required  RequiredFields
	logger    *slog.Logger
}

// NewCocktailService creates a new CocktailService instance
func NewCocktailService(generator Generator, validator *Validator, store RecipeStore, required RequiredFields, logger *slog.Logger) *CocktailService {
	if required == nil {
		required = DefaultRequiredFields()
	}
	return &CocktailService{
		generator: generator,
		validator: validator,
		store:     store,
		required:  required,
		logger:    logger,
	}
}

// Generate runs one request through the pipeline. Every failure is
// returned as a *PipelineError; nothing is retried.
func (s *CocktailService) Generate(ctx context.Context, req types.GenerationRequest) (*types.StoredRecipe, error) {
	kind := string(req.Kind())

	stored, err := s.run(ctx, req)
	if err != nil {
		perr, _ := AsPipelineError(err)
		generationsTotal.WithLabelValues(kind, string(perr.Kind)).Inc()
		if perr.IsClientError() {
			s.logger.Info("rejected generation request", "kind", kind, "error", err)
		} else {
			s.logger.Error("cocktail generation failed", "kind", kind, "error", err)
		}
		return nil, err
	}

	generationsTotal.WithLabelValues(kind, "completed").Inc()
	return stored, nil
}

func (s *CocktailService) run(ctx context.Context, req types.GenerationRequest) (*types.StoredRecipe, error) {
	if err := req.Normalize(); err != nil {
		return nil, &PipelineError{Kind: KindInvalidInput, Err: err}
	}

	prompt, err := BuildPrompt(req, s.required[req.Kind()])
	if err != nil {
		return nil, &PipelineError{Kind: KindInvalidInput, Err: err}
	}

	raw, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, generationPipelineError(err)
	}

	candidate, err := ExtractJSON(raw)
	if err != nil {
		s.logger.Debug("no JSON object in reply", "reply", raw)
		return nil, &PipelineError{Kind: KindExtractionNotFound, Err: err}
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(candidate), &data); err != nil {
		return nil, &PipelineError{Kind: KindParseInvalidJSON, Err: err}
	}

	recipe, err := s.validator.Validate(data, s.required[req.Kind()])
	if err != nil {
		var ferr *FieldError
		if errors.As(err, &ferr) {
			if ferr.Missing {
				return nil, &PipelineError{Kind: KindMissingField, Field: ferr.Field}
			}
			return nil, &PipelineError{Kind: KindInvalidField, Field: ferr.Field, Err: err}
		}
		return nil, &PipelineError{Kind: KindParseInvalidJSON, Err: err}
	}

	stored, err := s.store.Save(ctx, recipe)
	if err != nil {
		return nil, &PipelineError{Kind: KindStoreWriteFailed, Err: err}
	}
	return stored, nil
}

func generationPipelineError(err error) *PipelineError {
	var gerr *GenerationError
	if !errors.As(err, &gerr) {
		return &PipelineError{Kind: KindGenerationUnreachable, Err: err}
	}
	switch gerr.Failure {
	case FailureRateLimited:
		return &PipelineError{Kind: KindGenerationRateLimited, Message: gerr.Message, Err: err}
	case FailureServiceError:
		return &PipelineError{Kind: KindGenerationService, Message: gerr.Message, Err: err}
	default:
		return &PipelineError{Kind: KindGenerationUnreachable, Err: err}
	}
}
