package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
)

// Deps holds everything the HTTP layer is built from
type Deps struct {
	Config      *config.Config
	DB          *gorm.DB
	Auth        service.IAuthService
	Users       service.IUserService
	Follows     service.IFollowService
	Tags        service.ITagService
	Ingredients service.IIngredientService
	Viewer      service.IViewerService
	Recipes     api.RecipeServices
	// CreateLimiter rate limits recipe creation; nil disables it
	CreateLimiter middleware.Limiter
}

// SetupRouter configures the application routes
func SetupRouter(deps Deps) *gin.Engine {
	api.RegisterValidators()

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.Metrics(),
		middleware.CORS(deps.Config.CORSOrigins),
	)

	router.GET("/health", healthCheck(deps.DB))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if deps.Config.S3Bucket == "" {
		router.Static(deps.Config.MediaURL, deps.Config.MediaDir)
	}

	var createLimit gin.HandlerFunc
	if deps.CreateLimiter != nil {
		createLimit = middleware.RateLimit("recipe_creation", deps.CreateLimiter, deps.Config.RecipeCreateLimit)
	}

	presenter := api.NewPresenter(deps.Viewer)
	pageSize := deps.Config.PageSize

	apiGroup := router.Group("/api")
	apiGroup.Use(middleware.OptionalAuth(deps.Auth))

	api.NewAuthHandler(deps.Auth).RegisterRoutes(apiGroup)
	api.NewUserHandler(deps.Auth, deps.Users, deps.Follows, presenter, pageSize).RegisterRoutes(apiGroup)
	api.NewTagHandler(deps.Tags).RegisterRoutes(apiGroup)
	api.NewIngredientHandler(deps.Ingredients).RegisterRoutes(apiGroup)
	api.NewRecipeHandler(deps.Recipes, presenter, pageSize, createLimit).RegisterRoutes(apiGroup)

	return router
}

// healthCheck returns the health status of the API
func healthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := database.HealthCheck(c.Request.Context(), db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	}
}
