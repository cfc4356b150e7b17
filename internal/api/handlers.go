package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pageza/alchemorsel-cocktails/backend/internal/middleware"
	"github.com/pageza/alchemorsel-cocktails/backend/internal/service"
)

// HealthCheck returns the health status of the API
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Cocktail API is running",
	})
}

// NewRouter builds the gin engine with the middleware chain and all routes
func NewRouter(cocktailService service.CocktailServiceInterface, throttler middleware.Throttler, corsOrigins []string, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.Metrics(),
		middleware.CORS(corsOrigins),
	)
	router.NoRoute(middleware.NotFound)

	// Unthrottled operational endpoints
	router.GET("/health", HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	cocktailHandler := NewCocktailHandler(cocktailService, logger)
	cocktailHandler.RegisterRoutes(router, middleware.ThrottleMiddleware(throttler, logger))

	return router
}
