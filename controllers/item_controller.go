package controllers

import (
	"net/http"

	"github.com/comandapp/comandas-api/config"
	"github.com/comandapp/comandas-api/middleware"
	"github.com/comandapp/comandas-api/services"
	"github.com/gin-gonic/gin"
)

// AddItemsRequest represents the request body for a batch item add. The
// batch is applied all-or-nothing.
type AddItemsRequest struct {
	Items []struct {
		ProductID uint    `json:"product_id" binding:"required"`
		Quantity  int     `json:"quantity" binding:"required"`
		Note      *string `json:"note" binding:"omitempty,max=255"`
	} `json:"items" binding:"required,min=1,dive"`
}

// UpdateItemRequest represents the request body for editing a single line item
type UpdateItemRequest struct {
	Quantity     *int    `json:"quantity"`
	Note         *string `json:"note" binding:"omitempty,max=255"`
	NewProductID *uint   `json:"new_product_id"`
}

// AddItems handles POST /api/v1/orders/:id/items - appends line items to an order
func AddItems(c *gin.Context) {
	identity, err := middleware.GetIdentity(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AddItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	entries := make([]services.ItemEntry, 0, len(req.Items))
	for _, item := range req.Items {
		entries = append(entries, services.ItemEntry{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Note:      item.Note,
		})
	}

	itemService := services.NewItemService(config.GetDB())
	items, err := itemService.AddItems(orderID, identity.RestaurantID, entries)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	// Ping the kitchen when lines land on a ticket that is already being
	// prepared. Loaded after the add so the status is current.
	svc := orderService()
	if order, err := svc.Get(orderID, identity.RestaurantID); err == nil {
		svc.NotifyItemsAdded(order, len(items))
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    items,
	})
}

// UpdateItem handles PATCH /api/v1/orders/:id/items/:itemId - edits one line item
func UpdateItem(c *gin.Context) {
	identity, err := middleware.GetIdentity(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		return
	}

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	itemService := services.NewItemService(config.GetDB())
	item, err := itemService.UpdateItem(orderID, identity.RestaurantID, itemID, services.ItemPatch{
		Quantity:     req.Quantity,
		Note:         req.Note,
		NewProductID: req.NewProductID,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    item,
	})
}

// RemoveItem handles DELETE /api/v1/orders/:id/items/:itemId - removes one
// line item and re-derives the order total
func RemoveItem(c *gin.Context) {
	identity, err := middleware.GetIdentity(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		return
	}

	itemService := services.NewItemService(config.GetDB())
	if err := itemService.RemoveItem(orderID, identity.RestaurantID, itemID); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Item removed",
	})
}
