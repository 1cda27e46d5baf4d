package controllers

import (
	"net/http"

	"github.com/ecoreport/api-go/services"
	"github.com/ecoreport/api-go/types"
	"github.com/ecoreport/api-go/utils"
	"github.com/gin-gonic/gin"
)

type AuthController struct {
	Users *services.UserService
}

func NewAuthController(users *services.UserService) *AuthController {
	return &AuthController{Users: users}
}

func (ac *AuthController) Register(c *gin.Context) {
	var input types.RegisterRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := ac.Users.Register(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    user,
	})
}

func (ac *AuthController) Login(c *gin.Context) {
	var input types.LoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	token, user, err := ac.Users.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(ac.Users.Tokens.TTL().Seconds()),
		User:      user,
	})
}

// Me returns the caller's own user record.
func (ac *AuthController) Me(c *gin.Context) {
	identity, ok := utils.GetIdentity(c)
	if !ok {
		respondNoIdentity(c)
		return
	}

	user, err := ac.Users.Get(c.Request.Context(), identity, identity.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
