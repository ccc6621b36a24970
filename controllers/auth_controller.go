package controllers

import (
	"net/http"

	"github.com/comandapp/comandas-api/config"
	"github.com/comandapp/comandas-api/middleware"
	"github.com/comandapp/comandas-api/models"
	"github.com/comandapp/comandas-api/services"
	"github.com/gin-gonic/gin"
)

// RegisterRestaurantRequest represents the request body for registering a
// new restaurant together with its administrator account
type RegisterRestaurantRequest struct {
	RestaurantName string  `json:"restaurant_name" binding:"required"`
	Address        *string `json:"address"`
	Phone          *string `json:"phone"`
	AdminName      string  `json:"admin_name" binding:"required"`
	Email          string  `json:"email" binding:"required,email"`
	Password       string  `json:"password" binding:"required,min=8"`
}

// LoginRequest represents the request body for logging in
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// CreateUserRequest represents the request body for adding a staff member
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required"`
}

// RegisterRestaurant handles POST /api/v1/auth/register - onboards a new
// restaurant and its first administrator
func RegisterRestaurant(c *gin.Context) {
	var req RegisterRestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	authService := services.NewAuthService(config.GetDB(), config.GetConfig().JWTSecret)
	restaurant, admin, err := authService.RegisterRestaurant(services.RegisterRestaurantInput{
		RestaurantName: req.RestaurantName,
		Address:        req.Address,
		Phone:          req.Phone,
		AdminName:      req.AdminName,
		Email:          req.Email,
		Password:       req.Password,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"restaurant": restaurant,
			"admin":      admin,
		},
	})
}

// Login handles POST /api/v1/auth/login - verifies credentials and returns a JWT
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	authService := services.NewAuthService(config.GetDB(), config.GetConfig().JWTSecret)
	token, user, err := authService.Login(req.Email, req.Password)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"token": token,
			"user":  user,
		},
	})
}

// CreateUser handles POST /api/v1/users - adds a waiter or cook to the
// acting administrator's restaurant
func CreateUser(c *gin.Context) {
	identity, err := middleware.GetIdentity(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	role, err := models.ParseRole(req.Role)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	authService := services.NewAuthService(config.GetDB(), config.GetConfig().JWTSecret)
	user, err := authService.CreateUser(identity.RestaurantID, req.Name, req.Email, req.Password, role)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    user,
	})
}

func respondValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "Invalid request data",
			"details": err.Error(),
		},
	})
}
