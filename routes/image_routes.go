package routes

import (
	"github.com/ecoreport/api-go/controllers"
	"github.com/gin-gonic/gin"
)

func SetupImageRoutes(protected *gin.RouterGroup, imageController *controllers.ImageController) {
	images := protected.Group("/images")
	{
		// Stream the stored file
		images.GET("/:id", imageController.GetImage)

		images.DELETE("/:id", imageController.DeleteImage)
	}
}
