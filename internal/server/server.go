package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/pageza/alchemorsel-cocktails/backend/config"
	"github.com/pageza/alchemorsel-cocktails/backend/internal/api"
	"github.com/pageza/alchemorsel-cocktails/backend/internal/database"
	"github.com/pageza/alchemorsel-cocktails/backend/internal/middleware"
	"github.com/pageza/alchemorsel-cocktails/backend/internal/service"
	"github.com/pageza/alchemorsel-cocktails/backend/internal/types"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	redis  *redis.Client
	logger *slog.Logger
}

// New wires the generation pipeline, the throttler and the router from cfg
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	cocktails, err := NewCocktailService(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	throttler, redisClient, err := newThrottler(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	router := api.NewRouter(cocktails, throttler, cfg.CORSOrigins, logger)

	// zero GenerationTimeout means no client deadline, so no write deadline either
	var writeTimeout time.Duration
	if cfg.GenerationTimeout > 0 {
		writeTimeout = cfg.GenerationTimeout + 15*time.Second
	}

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       2 * time.Minute,
		},
		redis:  redisClient,
		logger: logger,
	}, nil
}

// NewCocktailService builds the pipeline used by both the server and the CLI
func NewCocktailService(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*service.CocktailService, error) {
	generator, err := service.NewLLMService(service.LLMConfig{
		APIKey:    cfg.OpenAIAPIKey,
		BaseURL:   cfg.OpenAIBaseURL,
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
		Timeout:   cfg.GenerationTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation client: %w", err)
	}

	validator, err := service.NewValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create validator: %w", err)
	}

	var opts []service.FileStoreOption
	s3Cfg, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if s3Cfg != nil {
		logger.Info("mirroring recipes to S3", "bucket", s3Cfg.BucketName, "prefix", s3Cfg.Prefix)
		opts = append(opts, service.WithMirror(service.NewS3Mirror(s3Cfg)))
	}
	store := service.NewFileStore(cfg.OutputDir, logger, opts...)

	required := service.RequiredFields{
		types.KindIngredients: cfg.RequiredFieldsIngredients,
		types.KindMood:        cfg.RequiredFieldsMood,
	}

	return service.NewCocktailService(generator, validator, store, required, logger), nil
}

func newThrottler(ctx context.Context, cfg *config.Config, logger *slog.Logger) (middleware.Throttler, *redis.Client, error) {
	rl := middleware.DefaultRateLimitConfig()
	rl.Limit = cfg.ThrottleLimit
	rl.Window = cfg.ThrottleWindow

	switch cfg.ThrottleBackend {
	case config.ThrottleBackendRedis:
		client, err := database.NewRedisClient(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return middleware.NewRedisThrottler(client, rl), client, nil
	default:
		return middleware.NewMemoryThrottler(rl, nil), nil, nil
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("starting server", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server and releases the Redis client
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	if s.redis != nil {
		if cerr := s.redis.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	s.logger.Info("server stopped")
	return err
}
