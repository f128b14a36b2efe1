package app

import (
	"emohub_backend/docs"
	"emohub_backend/internal/config"
	"emohub_backend/internal/middleware"

	"emohub_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		// 挑战与完成事件
		authGroup.POST("/challenges", c.challenge.CreateChallenge)
		authGroup.GET("/challenges", c.challenge.ListChallenges)
		authGroup.GET("/challenges/:id", c.challenge.GetChallenge)
		authGroup.POST("/challenges/:id/elements", c.challenge.AddElement)
		authGroup.POST("/elements/:id/toggle", c.challenge.ToggleElement)

		// 进度快照
		authGroup.GET("/progress", c.progress.GetProgress)
		authGroup.POST("/progress/recompute", c.progress.Recompute)
	}
}
