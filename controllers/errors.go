package controllers

import (
	"errors"
	"net/http"

	"github.com/comandapp/comandas-api/models"
	"github.com/comandapp/comandas-api/services"
	"github.com/gin-gonic/gin"
)

// handleServiceError maps the service error taxonomy onto HTTP responses
// with stable error codes, so clients can distinguish "that transition
// never exists" (ILLEGAL_TRANSITION) from "you lack permission for it"
// (FORBIDDEN) and so on.
func handleServiceError(c *gin.Context, err error) {
	var (
		productNotFound *services.ProductNotFoundError
		invalidQuantity *services.InvalidQuantityError
		invalidState    *services.InvalidStateError
		illegal         *models.IllegalTransitionError
		unauthorized    *models.UnauthorizedRoleError
	)

	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		respondError(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found")
	case errors.Is(err, services.ErrItemNotFound):
		respondError(c, http.StatusNotFound, "ITEM_NOT_FOUND", "Order item not found")
	case errors.As(err, &productNotFound):
		respondError(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", productNotFound.Error())
	case errors.As(err, &invalidQuantity):
		respondError(c, http.StatusBadRequest, "INVALID_QUANTITY", invalidQuantity.Error())
	case errors.As(err, &invalidState):
		respondError(c, http.StatusBadRequest, "INVALID_STATE", invalidState.Error())
	case errors.As(err, &illegal):
		respondError(c, http.StatusBadRequest, "ILLEGAL_TRANSITION", illegal.Error())
	case errors.As(err, &unauthorized):
		respondError(c, http.StatusForbidden, "FORBIDDEN", unauthorized.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	default:
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Unexpected database error")
	}
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
