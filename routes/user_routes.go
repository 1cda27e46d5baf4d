package routes

import (
	"github.com/ecoreport/api-go/controllers"
	"github.com/gin-gonic/gin"
)

func SetupUserRoutes(protected *gin.RouterGroup, userController *controllers.UserController) {
	users := protected.Group("/users")
	{
		// Admin only
		users.GET("", userController.ListUsers)
		users.DELETE("/:id", userController.DeleteUser)

		// Self or admin
		users.GET("/:id", userController.GetUser)
		users.PUT("/:id", userController.UpdateUser)
	}
}
