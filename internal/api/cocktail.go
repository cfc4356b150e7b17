package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/alchemorsel-cocktails/backend/internal/middleware"
	"github.com/pageza/alchemorsel-cocktails/backend/internal/service"
	"github.com/pageza/alchemorsel-cocktails/backend/internal/types"
)

const savedMessage = "Cocktail saved successfully!"

// CocktailHandler handles cocktail generation requests
type CocktailHandler struct {
	cocktailService service.CocktailServiceInterface
	logger          *slog.Logger
}

// NewCocktailHandler creates a new CocktailHandler instance
func NewCocktailHandler(cocktailService service.CocktailServiceInterface, logger *slog.Logger) *CocktailHandler {
	return &CocktailHandler{
		cocktailService: cocktailService,
		logger:          logger,
	}
}

// RegisterRoutes registers the cocktail routes behind the throttler
func (h *CocktailHandler) RegisterRoutes(router gin.IRoutes, throttle gin.HandlerFunc) {
	router.POST("/generate-cocktail", throttle, h.GenerateCocktail)
	router.GET("/recommend-cocktail-by-mood", throttle, h.RecommendByMood)
}

// GenerateCocktail creates a recipe from the posted ingredients
func (h *CocktailHandler) GenerateCocktail(c *gin.Context) {
	var req types.IngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("invalid request body", "request_id", middleware.GetRequestID(c), "error", err)
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid request body: expected {\"ingredients\": [string, ...]}"})
		return
	}
	h.generate(c, &req)
}

// RecommendByMood creates a recipe for the mood query parameter
func (h *CocktailHandler) RecommendByMood(c *gin.Context) {
	req := types.MoodRequest{Mood: c.DefaultQuery("mood", types.DefaultMood)}
	h.generate(c, &req)
}

func (h *CocktailHandler) generate(c *gin.Context, req types.GenerationRequest) {
	stored, err := h.cocktailService.Generate(c.Request.Context(), req)
	if err != nil {
		perr, ok := service.AsPipelineError(err)
		if !ok {
			h.logger.Error("unexpected pipeline error", "request_id", middleware.GetRequestID(c), "error", err)
			c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Internal Server Error"})
			return
		}
		status := http.StatusInternalServerError
		if perr.IsClientError() {
			status = http.StatusBadRequest
		}
		c.JSON(status, types.ErrorResponse{Error: perr.UserMessage()})
		return
	}

	c.JSON(http.StatusOK, types.GenerateResponse{
		Message: savedMessage,
		File:    stored.Filename,
		Recipe:  stored.Recipe,
	})
}
