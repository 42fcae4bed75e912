package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/yungbote/bmc-backend/internal/clients/redis"
	"github.com/yungbote/bmc-backend/internal/db"
	"github.com/yungbote/bmc-backend/internal/handlers"
	"github.com/yungbote/bmc-backend/internal/logger"
	"github.com/yungbote/bmc-backend/internal/middleware"
	"github.com/yungbote/bmc-backend/internal/observability"
	"github.com/yungbote/bmc-backend/internal/repos"
	"github.com/yungbote/bmc-backend/internal/server"
	"github.com/yungbote/bmc-backend/internal/services"
	"github.com/yungbote/bmc-backend/internal/templates"
	"github.com/yungbote/bmc-backend/internal/tools"
	"github.com/yungbote/bmc-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Block templates
	if err := templates.Load(); err != nil {
		log.Error("Failed to load block templates", "error", err)
		os.Exit(1)
	}

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	serviceName := utils.GetEnv("SERVICE_NAME", "bmc-backend", log)

	// Tracing
	shutdownOtel := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: serviceName,
		Environment: utils.GetEnv("ENVIRONMENT", "development", log),
		Version:     utils.GetEnv("SERVICE_VERSION", "dev", log),
	})
	if shutdownOtel != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownOtel(ctx)
		}()
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Redis (optional; calculation cache degrades to recompute)
	calcCache, err := redis.NewCalcCache(log)
	if err != nil {
		log.Warn("Redis calc cache unavailable, recomputing every time", "error", err)
		calcCache = redis.NewNopCalcCache()
	}

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	canvasRepo := repos.NewCanvasRepo(thePG, log)
	blockRepo := repos.NewBuildingBlockRepo(thePG, log)
	entryRepo := repos.NewEntryRepo(thePG, log)
	snapshotRepo := repos.NewSnapshotRepo(thePG, log)
	activityLogRepo := repos.NewActivityLogRepo(thePG, log)

	// Services
	log.Info("Setting up Services from main...")
	authService := services.NewAuthService(thePG, log, userRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second)
	activityService := services.NewActivityService(thePG, log, activityLogRepo)
	canvasService := services.NewCanvasService(thePG, log, canvasRepo, blockRepo, authService, activityService, calcCache)
	entryService := services.NewEntryService(thePG, log, entryRepo, blockRepo, canvasRepo, authService, activityService, calcCache)
	snapshotService := services.NewSnapshotService(thePG, log, snapshotRepo, canvasRepo, authService, activityService)
	calcService := services.NewCalculationService(thePG, log, canvasRepo, authService, calcCache)

	// Tools
	log.Info("Setting up tool registry from main...")
	toolRegistry := tools.NewRegistry(log)
	tools.RegisterAll(toolRegistry, canvasService, entryService, snapshotService, calcService)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	canvasHandler := handlers.NewCanvasHandler(canvasService, calcService)
	entryHandler := handlers.NewEntryHandler(entryService)
	snapshotHandler := handlers.NewSnapshotHandler(snapshotService)
	toolsHandler := handlers.NewToolsHandler(toolRegistry)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		ServiceName:     serviceName,
		TracingEnabled:  observability.Enabled(),
		AuthHandler:     authHandler,
		AuthMiddleware:  authMiddleware,
		CanvasHandler:   canvasHandler,
		EntryHandler:    entryHandler,
		SnapshotHandler: snapshotHandler,
		ToolsHandler:    toolsHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}
