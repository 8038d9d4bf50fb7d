package app

import (
	"nutriquiz_backend/internal/config"
	"nutriquiz_backend/internal/middleware"
	"nutriquiz_backend/internal/model"
	"nutriquiz_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, ctrl *controllers, cfg *config.Config) {
	// Swagger文档
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Prometheus指标
	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	{
		api.GET("/health", ctrl.health.HealthCheck)
	}

	// 测评接口：匿名和登录用户均可访问，登录态用于会话归属
	quiz := api.Group("/quiz")
	quiz.Use(middleware.TryAuthMiddleware(cfg))
	{
		quiz.GET("/session/:id", ctrl.quiz.GetSession)
		quiz.DELETE("/session/:id", ctrl.quiz.DeleteSession)
		quiz.GET("/user/session", ctrl.quiz.GetUserSession)
		quiz.GET("/questions", ctrl.quiz.GetQuestions)
		quiz.POST("/sync", ctrl.quiz.SyncProgress)
		quiz.GET("/report/:id", ctrl.report.GetReport)
	}

	// 管理后台
	admin := api.Group("/quiz/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.RoleManager))
	{
		admin.GET("/reports", ctrl.quiz.ListCompletedSessions)
	}

	charts := api.Group("/charts")
	charts.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.RoleManager))
	{
		charts.POST("", ctrl.chart.AddChart)
		charts.GET("", ctrl.chart.ListCharts)
		charts.PATCH("/:id", ctrl.chart.UpdateChart)
		charts.DELETE("/:id", ctrl.chart.DeleteChart)
	}
}
