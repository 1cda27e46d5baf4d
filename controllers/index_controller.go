package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const APIVersion = "1.0.0"

func Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Environmental Complaints API",
		"version": APIVersion,
		"status":  "online",
	})
}
