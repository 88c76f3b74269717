package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/questforge/questforge-backend/internal/handlers"
	"github.com/questforge/questforge-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler    *handlers.AuthHandler
	AuthMiddleware *middleware.AuthMiddleware
	ClassHandler   *handlers.ClassHandler
	NodeHandler    *handlers.NodeHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

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

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/register", cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)

	// Protected
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Auth
	protected.POST("/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/logout", cfg.AuthHandler.Logout)
	// Classes
	protected.POST("/classes", cfg.ClassHandler.CreateClass)
	protected.GET("/classes", cfg.ClassHandler.ListUserClasses)
	// Curriculum outline
	protected.GET("/classes/:classId/tree", cfg.NodeHandler.GetTree)
	protected.POST("/classes/:classId/nodes", cfg.NodeHandler.CreateNode)
	protected.POST("/classes/:classId/nodes/reorder", cfg.NodeHandler.ReorderNodes)
	protected.DELETE("/classes/:classId/nodes/:nodeId", cfg.NodeHandler.SoftDeleteNode)
	protected.POST("/classes/:classId/nodes/:nodeId/lock", cfg.NodeHandler.ToggleLock)

	return router
}
