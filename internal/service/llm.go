package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Generator sends a prompt to the generation service and returns the raw reply
type Generator interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
}

// GenerationFailure classifies why a generation call failed
type GenerationFailure string

const (
	FailureRateLimited  GenerationFailure = "rate_limited"
	FailureServiceError GenerationFailure = "service_error"
	FailureUnreachable  GenerationFailure = "unreachable"
)

// GenerationError is returned by Generator implementations
type GenerationError struct {
	Failure GenerationFailure
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("generation %s: %s", e.Failure, e.Message)
	}
	return fmt.Sprintf("generation %s: %v", e.Failure, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// LLMConfig configures the OpenAI chat completions client
type LLMConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	// Timeout bounds a single request; zero leaves the transport default
	Timeout time.Duration
}

// LLMService talks to an OpenAI-compatible chat completions API
type LLMService struct {
	client    openai.Client
	model     string
	maxTokens int
	logger    *slog.Logger
}

// NewLLMService creates a new LLMService instance
func NewLLMService(cfg LLMConfig, logger *slog.Logger) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key missing")
	}
	if cfg.Model == "" {
		return nil, errors.New("llm model is required")
	}
	if cfg.MaxTokens <= 0 {
		return nil, errors.New("max tokens must be positive")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// Retry policy belongs to the caller
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	return &LLMService{
		client:    openai.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    logger,
	}, nil
}

// Generate performs exactly one chat completion call
func (s *LLMService) Generate(ctx context.Context, prompt Prompt) (string, error) {
	start := time.Now()
	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.System),
			openai.UserMessage(prompt.User),
		},
		MaxTokens: openai.Int(int64(s.maxTokens)),
	})
	generationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		gerr := classifyGenerationError(err)
		s.logger.Warn("generation request failed", "model", s.model, "failure", gerr.Failure, "error", err)
		return "", gerr
	}

	if len(resp.Choices) == 0 {
		return "", &GenerationError{Failure: FailureServiceError, Message: "empty choices"}
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	s.logger.Debug("generation completed", "model", s.model, "chars", len(content), "finish_reason", resp.Choices[0].FinishReason)
	return content, nil
}

func classifyGenerationError(err error) *GenerationError {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Error()
		}
		if apiErr.StatusCode == http.StatusTooManyRequests {
			return &GenerationError{Failure: FailureRateLimited, Message: msg, Err: err}
		}
		return &GenerationError{Failure: FailureServiceError, Message: msg, Err: err}
	}
	return &GenerationError{Failure: FailureUnreachable, Err: err}
}
