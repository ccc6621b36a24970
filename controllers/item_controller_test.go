package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/comandapp/comandas-api/config"
	"github.com/comandapp/comandas-api/middleware"
	"github.com/comandapp/comandas-api/models"
	"github.com/comandapp/comandas-api/services"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func seedTestProduct(t *testing.T, db *gorm.DB, restaurantID uint, name string, price float64) models.Product {
	t.Helper()
	product := models.Product{RestaurantID: restaurantID, Name: name, Price: price, Available: true}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("Failed to seed product: %v", err)
	}
	return product
}

func TestAddItemsEndpoint(t *testing.T) {
	db := setupOrderTestDB(t)
	config.SetDB(db)
	services.NewMockDispatcher().SetAsMockForTesting()
	restaurant := seedTestRestaurant(t, db, "La Esquina")
	coffee := seedTestProduct(t, db, restaurant.ID, "Coffee", 3.00)
	cake := seedTestProduct(t, db, restaurant.ID, "Cake", 5.50)

	waiter := middleware.Identity{UserID: 1, Name: "Ana", Role: models.RoleWaiter, RestaurantID: restaurant.ID}

	tests := []struct {
		name           string
		requestBody    map[string]interface{}
		expectedStatus int
		expectedError  string
		expectedTotal  float64
	}{
		{
			name: "Successfully add a batch of items",
			requestBody: map[string]interface{}{
				"items": []map[string]interface{}{
					{"product_id": coffee.ID, "quantity": 2},
					{"product_id": cake.ID, "quantity": 1, "note": "no frosting"},
				},
			},
			expectedStatus: http.StatusCreated,
			expectedTotal:  11.50,
		},
		{
			name: "Reject whole batch when one product is unknown",
			requestBody: map[string]interface{}{
				"items": []map[string]interface{}{
					{"product_id": coffee.ID, "quantity": 1},
					{"product_id": 9999, "quantity": 1},
				},
			},
			expectedStatus: http.StatusNotFound,
			expectedError:  "PRODUCT_NOT_FOUND",
			expectedTotal:  0,
		},
		{
			name: "Reject negative quantity",
			requestBody: map[string]interface{}{
				"items": []map[string]interface{}{
					{"product_id": coffee.ID, "quantity": -1},
				},
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "INVALID_QUANTITY",
			expectedTotal:  0,
		},
		{
			name:           "Reject empty batch",
			requestBody:    map[string]interface{}{"items": []map[string]interface{}{}},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
			expectedTotal:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := seedTestOrder(t, db, restaurant.ID, models.StatusOpen)

			router := setupTestRouter()
			router.POST("/orders/:id/items",
				mockAuthMiddleware(waiter),
				middleware.RequireRoles(models.RoleWaiter, models.RoleAdministrator),
				AddItems,
			)

			body, _ := json.Marshal(tt.requestBody)
			req, _ := http.NewRequest(http.MethodPost, "/orders/"+itoa(order.ID)+"/items", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedError != "" {
				assertErrorCode(t, decodeResponse(t, w), tt.expectedError)
			}

			// The stored total always reflects the surviving items.
			var reloaded models.Order
			assert.NoError(t, db.First(&reloaded, order.ID).Error)
			assert.Equal(t, tt.expectedTotal, reloaded.Total)
		})
	}
}

func TestUpdateAndRemoveItemEndpoints(t *testing.T) {
	db := setupOrderTestDB(t)
	config.SetDB(db)
	services.NewMockDispatcher().SetAsMockForTesting()
	restaurant := seedTestRestaurant(t, db, "La Esquina")
	coffee := seedTestProduct(t, db, restaurant.ID, "Coffee", 3.00)
	order := seedTestOrder(t, db, restaurant.ID, models.StatusOpen)

	waiter := middleware.Identity{UserID: 1, Name: "Ana", Role: models.RoleWaiter, RestaurantID: restaurant.ID}

	itemService := services.NewItemService(db)
	items, err := itemService.AddItems(order.ID, restaurant.ID, []services.ItemEntry{
		{ProductID: coffee.ID, Quantity: 2},
	})
	assert.NoError(t, err)

	router := setupTestRouter()
	router.PATCH("/orders/:id/items/:itemId", mockAuthMiddleware(waiter), UpdateItem)
	router.DELETE("/orders/:id/items/:itemId", mockAuthMiddleware(waiter), RemoveItem)

	itemPath := "/orders/" + itoa(order.ID) + "/items/" + itoa(items[0].ID)

	// Bump the quantity.
	body, _ := json.Marshal(map[string]interface{}{"quantity": 3})
	req, _ := http.NewRequest(http.MethodPatch, itemPath, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var reloaded models.Order
	assert.NoError(t, db.First(&reloaded, order.ID).Error)
	assert.Equal(t, 9.00, reloaded.Total)

	// Remove the line; the total drops to zero, not below.
	req, _ = http.NewRequest(http.MethodDelete, itemPath, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	assert.NoError(t, db.First(&reloaded, order.ID).Error)
	assert.Equal(t, 0.0, reloaded.Total)

	// The line is gone now.
	req, _ = http.NewRequest(http.MethodDelete, itemPath, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assertErrorCode(t, decodeResponse(t, w), "ITEM_NOT_FOUND")
}

func TestAddItemsNotifiesKitchenWhenPreparing(t *testing.T) {
	db := setupOrderTestDB(t)
	config.SetDB(db)
	mock := services.NewMockDispatcher()
	mock.SetAsMockForTesting()
	restaurant := seedTestRestaurant(t, db, "La Esquina")
	coffee := seedTestProduct(t, db, restaurant.ID, "Coffee", 3.00)
	order := seedTestOrder(t, db, restaurant.ID, models.StatusPreparing)

	waiter := middleware.Identity{UserID: 1, Name: "Ana", Role: models.RoleWaiter, RestaurantID: restaurant.ID}

	router := setupTestRouter()
	router.POST("/orders/:id/items", mockAuthMiddleware(waiter), AddItems)

	body, _ := json.Marshal(map[string]interface{}{
		"items": []map[string]interface{}{{"product_id": coffee.ID, "quantity": 1}},
	})
	req, _ := http.NewRequest(http.MethodPost, "/orders/"+itoa(order.ID)+"/items", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	kitchen := mock.EventsOn(services.ChannelKitchen)
	if assert.Len(t, kitchen, 1) {
		assert.Equal(t, order.ID, kitchen[0].OrderID)
		assert.Contains(t, kitchen[0].Message, "added")
	}
}
