package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/bmc-backend/internal/handlers"
	"github.com/yungbote/bmc-backend/internal/middleware"
)

type RouterConfig struct {
	ServiceName     string
	TracingEnabled  bool
	AuthHandler     *handlers.AuthHandler
	AuthMiddleware  *middleware.AuthMiddleware
	CanvasHandler   *handlers.CanvasHandler
	EntryHandler    *handlers.EntryHandler
	SnapshotHandler *handlers.SnapshotHandler
	ToolsHandler    *handlers.ToolsHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	if cfg.TracingEnabled {
		router.Use(otelgin.Middleware(cfg.ServiceName))
	}

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/api/login", cfg.AuthHandler.Login)

	// ===============
	// || Protected ||
	// ===============
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())

	// Canvases
	bmc := api.Group("/bmc")
	bmc.GET("/canvases", cfg.CanvasHandler.List)
	bmc.POST("/canvases", cfg.CanvasHandler.Create)
	bmc.GET("/canvases/:id", cfg.CanvasHandler.Get)
	bmc.PUT("/canvases/:id", cfg.CanvasHandler.Update)
	bmc.DELETE("/canvases/:id", cfg.CanvasHandler.Delete)
	bmc.GET("/canvases/:id/export", cfg.CanvasHandler.Export)
	bmc.GET("/canvases/:id/calculate", cfg.CanvasHandler.Calculate)
	// Snapshots
	bmc.GET("/canvases/:id/snapshots", cfg.SnapshotHandler.List)
	bmc.POST("/canvases/:id/snapshots", cfg.SnapshotHandler.Create)
	bmc.GET("/snapshots/compare", cfg.SnapshotHandler.Compare)
	bmc.GET("/snapshots/:id", cfg.SnapshotHandler.Get)
	// Entries
	bmc.GET("/entries", cfg.EntryHandler.List)
	bmc.POST("/entries", cfg.EntryHandler.Create)
	bmc.POST("/entries/bulk", cfg.EntryHandler.BulkCreate)
	bmc.PUT("/entries/reorder", cfg.EntryHandler.Reorder)
	bmc.PUT("/entries/:id", cfg.EntryHandler.Update)
	bmc.DELETE("/entries/:id", cfg.EntryHandler.Delete)

	// Tools
	api.GET("/tools", cfg.ToolsHandler.List)
	api.POST("/tools/:name", cfg.ToolsHandler.Execute)

	return router
}
