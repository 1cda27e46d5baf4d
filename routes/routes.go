package routes

import (
	"github.com/ecoreport/api-go/auth"
	"github.com/ecoreport/api-go/controllers"
	"github.com/ecoreport/api-go/middleware"
	"github.com/ecoreport/api-go/services"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps bundles everything the HTTP layer needs.
type Deps struct {
	Tokens     *auth.TokenService
	Users      *services.UserService
	Reports    *services.ReportService
	Images     *services.ImageService
	Statistics *services.StatisticsService

	// Metrics and Gatherer are optional; /metrics is only mounted when both are set.
	Metrics  *middleware.Metrics
	Gatherer prometheus.Gatherer
}

func SetupRoutes(r *gin.Engine, deps Deps) {
	// Initialize controllers
	authController := controllers.NewAuthController(deps.Users)
	userController := controllers.NewUserController(deps.Users)
	reportController := controllers.NewReportController(deps.Reports)
	imageController := controllers.NewImageController(deps.Images)
	statisticsController := controllers.NewStatisticsController(deps.Statistics)

	r.GET("/", controllers.Index)
	if deps.Metrics != nil && deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	// Public routes
	public := r.Group("/api")
	{
		public.POST("/auth/register", authController.Register)
		public.POST("/auth/login", authController.Login)
	}

	// Protected routes
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware(deps.Tokens))
	{
		protected.GET("/auth/me", authController.Me)

		SetupUserRoutes(protected, userController)
		SetupReportRoutes(protected, reportController, imageController)
		SetupImageRoutes(protected, imageController)
		SetupStatisticsRoutes(protected, statisticsController)
	}
}
