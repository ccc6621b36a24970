package services

import (
	"errors"
	"fmt"

	"github.com/comandapp/comandas-api/models"
)

// Sentinel errors for absent entities. Lookups are always tenant-scoped,
// so "wrong restaurant" and "does not exist" are deliberately the same error.
var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrItemNotFound       = errors.New("order item not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ProductNotFoundError reports catalog lookups that failed to resolve.
// For a batch add it carries every missing ID so the client can fix the
// whole request at once.
type ProductNotFoundError struct {
	IDs []uint
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("products not found: %v", e.IDs)
}

// InvalidQuantityError reports a non-positive quantity on a line item.
type InvalidQuantityError struct {
	ProductID uint
	Quantity  int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity %d for product %d must be positive", e.Quantity, e.ProductID)
}

// InvalidStateError reports an operation attempted against an order whose
// current status does not permit it (e.g. editing items on a closed order,
// cancelling an already-cancelled one).
type InvalidStateError struct {
	OrderID uint
	Status  models.OrderStatus
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("order %d is %s and cannot be modified", e.OrderID, e.Status)
}
