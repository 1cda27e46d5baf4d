package routes

import (
	"github.com/ecoreport/api-go/controllers"
	"github.com/gin-gonic/gin"
)

func SetupReportRoutes(protected *gin.RouterGroup, reportController *controllers.ReportController, imageController *controllers.ImageController) {
	reports := protected.Group("/reports")
	{
		reports.GET("", reportController.ListReports)
		reports.POST("", reportController.CreateReport)
		reports.GET("/:id", reportController.GetReport)
		reports.PUT("/:id", reportController.UpdateReport)
		reports.DELETE("/:id", reportController.DeleteReport)

		// Attach an image to a report (multipart, field "image")
		reports.POST("/:id/images", imageController.UploadImage)
	}
}
