package controllers

import (
	"net/http"

	"github.com/ecoreport/api-go/services"
	"github.com/ecoreport/api-go/utils"
	"github.com/gin-gonic/gin"
)

type UserController struct {
	Users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{Users: users}
}

func (uc *UserController) ListUsers(c *gin.Context) {
	identity, ok := utils.GetIdentity(c)
	if !ok {
		respondNoIdentity(c)
		return
	}

	users, err := uc.Users.List(c.Request.Context(), identity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

func (uc *UserController) GetUser(c *gin.Context) {
	identity, ok := utils.GetIdentity(c)
	if !ok {
		respondNoIdentity(c)
		return
	}
	userID, ok := utils.ParamID(c, "id")
	if !ok {
		respondBadID(c, "user")
		return
	}

	user, err := uc.Users.Get(c.Request.Context(), identity, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (uc *UserController) UpdateUser(c *gin.Context) {
	identity, ok := utils.GetIdentity(c)
	if !ok {
		respondNoIdentity(c)
		return
	}
	userID, ok := utils.ParamID(c, "id")
	if !ok {
		respondBadID(c, "user")
		return
	}

	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := uc.Users.Update(c.Request.Context(), identity, userID, fields)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (uc *UserController) DeleteUser(c *gin.Context) {
	identity, ok := utils.GetIdentity(c)
	if !ok {
		respondNoIdentity(c)
		return
	}
	userID, ok := utils.ParamID(c, "id")
	if !ok {
		respondBadID(c, "user")
		return
	}

	if err := uc.Users.Delete(c.Request.Context(), identity, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "User deleted successfully"})
}
