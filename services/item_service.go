package services

import (
	"errors"

	"github.com/comandapp/comandas-api/models"
	"gorm.io/gorm"
)

// ItemEntry is one requested line in a batch add.
type ItemEntry struct {
	ProductID uint
	Quantity  int
	Note      *string
}

// ItemPatch carries the optional fields of a line-item update. Nil fields
// are left untouched.
type ItemPatch struct {
	Quantity     *int
	Note         *string
	NewProductID *uint
}

// ItemService owns the line items of an order: it creates, edits and
// removes them, snapshots catalog prices at write time, and keeps the
// parent order's total equal to the sum of its items' subtotals. The total
// is always re-derived from the surviving rows, never adjusted
// incrementally, so a missed update cannot make it drift.
type ItemService struct {
	db      *gorm.DB
	catalog CatalogService
}

// NewItemService creates an item service backed by the given database
func NewItemService(db *gorm.DB) *ItemService {
	return &ItemService{db: db, catalog: NewCatalogService(db)}
}

// loadMutableOrder fetches the order tenant-scoped and rejects item
// mutations once the order is in a terminal state.
func (s *ItemService) loadMutableOrder(orderID, restaurantID uint) (*models.Order, error) {
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
	return &order, nil
}

// AddItems appends a batch of line items to an order. The batch is
// all-or-nothing: any unresolvable product or non-positive quantity rejects
// the whole request before anything is persisted, so a half-applied order
// can never exist. Prices are snapshotted from the catalog at this moment.
func (s *ItemService) AddItems(orderID, restaurantID uint, entries []ItemEntry) ([]models.OrderItem, error) {
	order, err := s.loadMutableOrder(orderID, restaurantID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return []models.OrderItem{}, nil
	}

	productIDs := make([]uint, 0, len(entries))
	for _, e := range entries {
		if e.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: e.ProductID, Quantity: e.Quantity}
		}
		productIDs = append(productIDs, e.ProductID)
	}

	products, err := s.catalog.GetProducts(productIDs, restaurantID)
	if err != nil {
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(entries))
	for _, e := range entries {
		product := products[e.ProductID]
		items = append(items, models.OrderItem{
			OrderID:      order.ID,
			RestaurantID: restaurantID,
			ProductID:    product.ID,
			Quantity:     e.Quantity,
			UnitPrice:    product.Price,
			Subtotal:     float64(e.Quantity) * product.Price,
			Note:         e.Note,
		})
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		_, err := recomputeTotal(tx, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return items, nil
}

// UpdateItem edits one line item. Supplying a new product re-resolves the
// price from the catalog; otherwise the current catalog price of the
// existing product is re-read and the snapshot refreshed if the menu price
// changed since the line was written. Reads never touch the snapshot,
// only edits do.
func (s *ItemService) UpdateItem(orderID, restaurantID, itemID uint, patch ItemPatch) (*models.OrderItem, error) {
	order, err := s.loadMutableOrder(orderID, restaurantID)
	if err != nil {
		return nil, err
	}

	var item models.OrderItem
	err = s.db.Where("id = ? AND order_id = ? AND restaurant_id = ?", itemID, order.ID, restaurantID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	if patch.NewProductID != nil && *patch.NewProductID != item.ProductID {
		product, err := s.catalog.GetProduct(*patch.NewProductID, restaurantID)
		if err != nil {
			return nil, err
		}
		item.ProductID = product.ID
		item.UnitPrice = product.Price
	} else {
		// Same product: sync the snapshot with the live menu price.
		product, err := s.catalog.GetProduct(item.ProductID, restaurantID)
		if err != nil {
			return nil, err
		}
		if product.Price != item.UnitPrice {
			item.UnitPrice = product.Price
		}
	}

	if patch.Quantity != nil {
		if *patch.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: item.ProductID, Quantity: *patch.Quantity}
		}
		item.Quantity = *patch.Quantity
	}
	if patch.Note != nil {
		item.Note = patch.Note
	}

	item.Subtotal = float64(item.Quantity) * item.UnitPrice

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&item).Error; err != nil {
			return err
		}
		_, err := recomputeTotal(tx, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &item, nil
}

// RemoveItem deletes one line item and re-derives the order total from the
// remaining rows.
func (s *ItemService) RemoveItem(orderID, restaurantID, itemID uint) error {
	order, err := s.loadMutableOrder(orderID, restaurantID)
	if err != nil {
		return err
	}

	var item models.OrderItem
	err = s.db.Where("id = ? AND order_id = ? AND restaurant_id = ?", itemID, order.ID, restaurantID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrItemNotFound
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&item).Error; err != nil {
			return err
		}
		_, err := recomputeTotal(tx, order.ID)
		return err
	})
}

// RecomputeTotal re-derives and persists the order total. Exposed for
// callers that need to repair a total outside an item mutation.
func (s *ItemService) RecomputeTotal(orderID, restaurantID uint) (float64, error) {
	var order models.Order
	err := s.db.Where("id = ? AND restaurant_id = ?", orderID, restaurantID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrOrderNotFound
		}
		return 0, err
	}

	var total float64
	err = s.db.Transaction(func(tx *gorm.DB) error {
		total, err = recomputeTotal(tx, order.ID)
		return err
	})
	return total, err
}

// recomputeTotal sums the subtotals of every surviving item and writes the
// result onto the order, inside the caller's transaction.
func recomputeTotal(tx *gorm.DB, orderID uint) (float64, error) {
	var total float64
	err := tx.Model(&models.OrderItem{}).
		Where("order_id = ?", orderID).
		Select("COALESCE(SUM(subtotal), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}

	err = tx.Model(&models.Order{}).Where("id = ?", orderID).Update("total", total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
