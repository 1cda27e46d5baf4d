package routes

import (
	"github.com/ecoreport/api-go/controllers"
	"github.com/gin-gonic/gin"
)

func SetupStatisticsRoutes(protected *gin.RouterGroup, statisticsController *controllers.StatisticsController) {
	protected.GET("/statistics", statisticsController.GetStatistics)
}
