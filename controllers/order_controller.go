package controllers

import (
	"net/http"
	"strconv"

	"github.com/comandapp/comandas-api/config"
	"github.com/comandapp/comandas-api/middleware"
	"github.com/comandapp/comandas-api/models"
	"github.com/comandapp/comandas-api/services"
	"github.com/gin-gonic/gin"
)

// CreateOrderRequest represents the request body for opening an order
type CreateOrderRequest struct {
	TableLabel string `json:"table_label" binding:"required"`
}

// TransitionRequest represents the request body for a status change
type TransitionRequest struct {
	Status     string  `json:"status" binding:"required"`
	PaymentRef *string `json:"payment_ref"`
}

func orderService() *services.OrderService {
	return services.NewOrderService(config.GetDB(), services.GetDispatcher())
}

// CreateOrder handles POST /api/v1/orders - opens a new order (waiters and admins)
func CreateOrder(c *gin.Context) {
	identity, err := middleware.GetIdentity(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	order, err := orderService().Create(identity.RestaurantID, req.TableLabel, identity.Name)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// ListOrders handles GET /api/v1/orders - lists the restaurant's orders.
// ?board=kitchen and ?board=waiter return the role dashboards.
func ListOrders(c *gin.Context) {
	identity, err := middleware.GetIdentity(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	svc := orderService()
	var orders []models.Order
	switch c.Query("board") {
	case "kitchen":
		orders, err = svc.KitchenBoard(identity.RestaurantID)
	case "waiter":
		orders, err = svc.WaiterBoard(identity.RestaurantID)
	default:
		orders, err = svc.List(identity.RestaurantID)
	}
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// GetOrder handles GET /api/v1/orders/:id - returns one order with its items
func GetOrder(c *gin.Context) {
	identity, err := middleware.GetIdentity(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := orderService().Get(orderID, identity.RestaurantID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// TransitionOrder handles PATCH /api/v1/orders/:id/status - requests a
// lifecycle transition on behalf of the acting role
func TransitionOrder(c *gin.Context) {
	identity, err := middleware.GetIdentity(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	target, err := models.ParseOrderStatus(req.Status)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	order, err := orderService().TransitionStatus(orderID, identity.RestaurantID, identity.Role, target, req.PaymentRef)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// CancelOrder handles DELETE /api/v1/orders/:id - soft-cancels an order
// (administrators only, enforced at the route)
func CancelOrder(c *gin.Context) {
	identity, err := middleware.GetIdentity(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := orderService().SoftCancel(orderID, identity.RestaurantID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// DeleteOrder handles DELETE /api/v1/orders/:id/permanent - hard-deletes
// an order and, by cascade, its items (administrators only)
func DeleteOrder(c *gin.Context) {
	identity, err := middleware.GetIdentity(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := orderService().Delete(orderID, identity.RestaurantID); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order deleted",
	})
}

// parseIDParam parses a numeric path parameter, responding 400 on garbage.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid "+name+" parameter")
		return 0, false
	}
	return uint(id), true
}
