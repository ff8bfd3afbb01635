package router

import (
	"myArtMarket/internal/middleware"
	"myArtMarket/internal/rest"
	"myArtMarket/pkg/metrics"

	"github.com/labstack/echo/v4"
)

func SetRecommendationRoutes(api *echo.Group, handler *rest.RecommendationHandler) {
	reco := api.Group("/recommendations", middleware.AuthMiddleware())
	reco.GET("", handler.Recommend)
	reco.GET("/debug", handler.DebugRecommend)
	reco.POST("/feedback", handler.Feedback)
}

func SetBanditAdminRoutes(api *echo.Group, handler *rest.BanditAdminHandler) {
	admin := api.Group("/admin/bandit", middleware.AuthMiddleware())

	admin.GET("/models/:user_id", handler.GetModel, middleware.SelfOrAdmin())
	admin.DELETE("/models/:user_id", handler.ResetModel, middleware.SelfOrAdmin())
	admin.POST("/flush", handler.Flush, middleware.AdminOnly())
}

func SetMetricsRoute(e *echo.Echo) {
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
}
