package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/router"
	"github.com/pageza/foodgram/backend/internal/server"
	"github.com/pageza/foodgram/backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := database.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := migrate(cfg, db); err != nil {
		logging.Fatal().Err(err).Msg("failed to migrate database")
	}

	// Redis is optional: without it tokens are revoked and requests are
	// limited in process.
	var redisClient *redis.Client
	if cfg.UsesRedis() {
		redisClient, err = database.NewRedisClient(cfg)
		if err != nil {
			logging.Warn().Err(err).Msg("redis unavailable, falling back to in-process denylist and rate limiter")
			redisClient = nil
		}
	}

	var denylist service.TokenDenylist = service.NewMemoryDenylist()
	if redisClient != nil {
		denylist = service.NewRedisDenylist(redisClient)
	}

	imageStore, err := newImageStore(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to set up image storage")
	}

	access, err := service.NewAccessControl()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to build access control")
	}

	// Initialize services
	handler := router.SetupRouter(router.Deps{
		Config:      cfg,
		DB:          db,
		Auth:        service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL, denylist),
		Users:       service.NewUserService(db),
		Follows:     service.NewFollowService(db),
		Tags:        service.NewTagService(db),
		Ingredients: service.NewIngredientService(db),
		Viewer:      service.NewViewerService(db),
		Recipes: api.RecipeServices{
			Recipes:      service.NewRecipeService(db, access),
			Favorites:    service.NewToggleService(db, service.NewFavoriteStore(db)),
			ShoppingCart: service.NewToggleService(db, service.NewShoppingCartStore(db)),
			ShoppingList: service.NewShoppingListService(db),
			Images:       service.NewImageService(imageStore),
		},
		CreateLimiter: middleware.NewRecipeCreationLimiter(redisClient, cfg.RecipeCreateLimit, cfg.RecipeCreateWindow),
	})

	srv := server.New(cfg, handler)

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	// Channel to listen for an interrupt or terminate signal from the OS
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Block until we receive a signal or error
	select {
	case err := <-errChan:
		if err != nil {
			logging.Fatal().Err(err).Msg("server error")
		}
	case sig := <-quit:
		logging.Info().Str("signal", sig.String()).Msg("received signal")
	}

	// Gracefully shutdown the server
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Error().Err(err).Msg("server shutdown error")
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logging.Info().Msg("server stopped")
}

// migrate applies the versioned SQL migrations on PostgreSQL and
// auto-migrates the models on SQLite
func migrate(cfg *config.Config, db *gorm.DB) error {
	if cfg.DBDriver != "postgres" {
		return database.AutoMigrate(db)
	}

	sqlDB, err := database.OpenSQL(cfg)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	return database.RunMigrations(ctx, sqlDB)
}

func newImageStore(cfg *config.Config) (service.ImageStore, error) {
	if cfg.S3Bucket == "" {
		logging.Info().Str("dir", cfg.MediaDir).Msg("storing images on local disk")
		return service.NewLocalStore(cfg.MediaDir, cfg.MediaURL), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s3Config, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logging.Info().Str("bucket", s3Config.BucketName).Msg("storing images in s3")
	return service.NewS3Store(s3Config), nil
}
