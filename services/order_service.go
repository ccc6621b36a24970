package services

import (
	"errors"
	"fmt"

	"github.com/comandapp/comandas-api/models"
	"gorm.io/gorm"
)

// OrderService is the aggregate root for orders: every status change goes
// through it, and it is the only component that talks to the dispatcher.
// Operations mutate, persist, then notify, in that order, so listeners
// never hear about a state that was not committed first.
type OrderService struct {
	db         *gorm.DB
	dispatcher Dispatcher
}

// NewOrderService creates an order service. The dispatcher is injected so
// tests can observe notifications with a mock; pass nil to use the
// globally installed one.
func NewOrderService(db *gorm.DB, dispatcher Dispatcher) *OrderService {
	if dispatcher == nil {
		dispatcher = GetDispatcher()
	}
	return &OrderService{db: db, dispatcher: dispatcher}
}

// Create opens a new order for a table: status OPEN, total zero, no items.
// The kitchen is notified that a ticket is waiting.
func (s *OrderService) Create(restaurantID uint, tableLabel, serverName string) (*models.Order, error) {
	order := models.Order{
		RestaurantID: restaurantID,
		TableLabel:   tableLabel,
		ServerName:   serverName,
		Status:       models.StatusOpen,
		Total:        0,
	}
	if err := s.db.Create(&order).Error; err != nil {
		return nil, err
	}

	s.dispatcher.Publish(ChannelKitchen, Event{
		RestaurantID: restaurantID,
		OrderID:      order.ID,
		Status:       order.Status,
		Message:      fmt.Sprintf("New order #%d: awaiting preparation.", order.ID),
	})

	return &order, nil
}

// Get returns one order with its items and their products, tenant-scoped.
func (s *OrderService) Get(orderID, restaurantID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.Where("id = ? AND restaurant_id = ?", orderID, restaurantID).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_items.id ASC")
		}).
		Preload("Items.Product").
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// List returns every order of the restaurant, newest first.
func (s *OrderService) List(restaurantID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.Where("restaurant_id = ?", restaurantID).
		Preload("Items").
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

// KitchenBoard returns the orders a cook cares about: open tickets,
// tickets being prepared, and fresh cancellations, oldest first so the
// queue reads top-down.
func (s *OrderService) KitchenBoard(restaurantID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.Where("restaurant_id = ? AND status IN ?", restaurantID,
		[]models.OrderStatus{models.StatusOpen, models.StatusPreparing, models.StatusCancelled}).
		Preload("Items").
		Preload("Items.Product").
		Order("id ASC").
		Find(&orders).Error
	return orders, err
}

// WaiterBoard returns the orders a waiter cares about: everything not yet
// closed out, newest first.
func (s *OrderService) WaiterBoard(restaurantID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.Where("restaurant_id = ? AND status IN ?", restaurantID,
		[]models.OrderStatus{models.StatusOpen, models.StatusPreparing, models.StatusReady}).
		Preload("Items").
		Preload("Items.Product").
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

// TransitionStatus moves an order along the lifecycle graph. The edge and
// the acting role are checked against the transition table; a missing edge
// fails with *models.IllegalTransitionError and a forbidden role on an
// existing edge with *models.UnauthorizedRoleError. paymentRef is stored
// opaquely and only on transitions to CLOSED.
func (s *OrderService) TransitionStatus(orderID, restaurantID uint, role models.Role, target models.OrderStatus, paymentRef *string) (*models.Order, error) {
	var order models.Order
	err := s.db.Where("id = ? AND restaurant_id = ?", orderID, restaurantID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if err := models.CheckTransition(order.Status, target, role); err != nil {
		return nil, err
	}

	order.Status = target
	if target == models.StatusClosed && paymentRef != nil {
		order.PaymentRef = paymentRef
	}
	if err := s.db.Save(&order).Error; err != nil {
		return nil, err
	}

	// Only notify once the new status is on disk.
	switch target {
	case models.StatusReady:
		s.dispatcher.Publish(ChannelWaiter, Event{
			RestaurantID: restaurantID,
			OrderID:      order.ID,
			Status:       target,
			Message:      fmt.Sprintf("Order #%d is ready to deliver.", order.ID),
		})
	case models.StatusCancelled:
		s.dispatcher.Publish(ChannelKitchen, Event{
			RestaurantID: restaurantID,
			OrderID:      order.ID,
			Status:       target,
			Message:      fmt.Sprintf("ALERT: order #%d has been CANCELLED.", order.ID),
		})
	case models.StatusOpen:
		// Administrator reopened a cancelled ticket; the kitchen has to
		// pick it up again.
		s.dispatcher.Publish(ChannelKitchen, Event{
			RestaurantID: restaurantID,
			OrderID:      order.ID,
			Status:       target,
			Message:      fmt.Sprintf("Order #%d reopened: awaiting preparation.", order.ID),
		})
	case models.StatusPreparing, models.StatusClosed:
		// The cook who took the ticket already knows; a closed order is
		// informational only.
	}
	s.publishUpdate(&order)

	return &order, nil
}

// SoftCancel voids an order without deleting it. Orders already in a
// terminal state are not re-cancellable and fail with *InvalidStateError.
// Both the kitchen and the waiters are told.
func (s *OrderService) SoftCancel(orderID, restaurantID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.Where("id = ? AND restaurant_id = ?", orderID, restaurantID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if order.Status.Terminal() {
		return nil, &InvalidStateError{OrderID: order.ID, Status: order.Status}
	}

	order.Status = models.StatusCancelled
	if err := s.db.Save(&order).Error; err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Order #%d has been CANCELLED.", order.ID)
	event := Event{
		RestaurantID: restaurantID,
		OrderID:      order.ID,
		Status:       order.Status,
		Message:      message,
	}
	s.dispatcher.Publish(ChannelKitchen, event)
	s.dispatcher.Publish(ChannelWaiter, event)
	s.publishUpdate(&order)

	return &order, nil
}

// Delete removes an order permanently; the database cascades to its items.
func (s *OrderService) Delete(orderID, restaurantID uint) error {
	var order models.Order
	err := s.db.Where("id = ? AND restaurant_id = ?", orderID, restaurantID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&order).Error
	})
}

// NotifyItemsAdded pings the kitchen after a batch add, but only when the
// ticket is already being prepared: a cook working the order needs to see
// lines appended to it, while additions to a still-open ticket arrive with
// the ticket itself. Item edits are otherwise silent to avoid notification
// storms on multi-line adds.
func (s *OrderService) NotifyItemsAdded(order *models.Order, added int) {
	if order.Status != models.StatusPreparing {
		return
	}
	s.dispatcher.Publish(ChannelKitchen, Event{
		RestaurantID: order.RestaurantID,
		OrderID:      order.ID,
		Status:       order.Status,
		Message:      fmt.Sprintf("Order #%d: %d item(s) added while preparing.", order.ID, added),
	})
}

// publishUpdate emits the tenant-wide generic update event, always after
// any channel-specific notification.
func (s *OrderService) publishUpdate(order *models.Order) {
	s.dispatcher.Publish(ChannelBroadcast, Event{
		RestaurantID: order.RestaurantID,
		OrderID:      order.ID,
		Status:       order.Status,
		Message:      fmt.Sprintf("Order #%d updated to %s.", order.ID, order.Status),
	})
}
