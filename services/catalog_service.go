package services

import (
	"errors"

	"github.com/comandapp/comandas-api/models"
	"gorm.io/gorm"
)

// CatalogService is the read-only price lookup against the product catalog.
// Every lookup is scoped to a restaurant; a product belonging to another
// tenant resolves exactly like a missing one.
type CatalogService interface {
	// GetProduct resolves a single product for the given restaurant.
	GetProduct(productID, restaurantID uint) (*models.Product, error)
	// GetProducts resolves a batch of product IDs at once. If any ID does
	// not resolve it fails with *ProductNotFoundError carrying every
	// missing ID, so callers get all-or-nothing semantics for free.
	GetProducts(productIDs []uint, restaurantID uint) (map[uint]models.Product, error)
}

type catalogService struct {
	db *gorm.DB
}

// NewCatalogService creates a catalog service backed by the given database
func NewCatalogService(db *gorm.DB) CatalogService {
	return &catalogService{db: db}
}

func (s *catalogService) GetProduct(productID, restaurantID uint) (*models.Product, error) {
	var product models.Product
	err := s.db.Where("id = ? AND restaurant_id = ?", productID, restaurantID).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ProductNotFoundError{IDs: []uint{productID}}
		}
		return nil, err
	}
	return &product, nil
}

func (s *catalogService) GetProducts(productIDs []uint, restaurantID uint) (map[uint]models.Product, error) {
	var products []models.Product
	err := s.db.Where("id IN ? AND restaurant_id = ?", productIDs, restaurantID).Find(&products).Error
	if err != nil {
		return nil, err
	}

	found := make(map[uint]models.Product, len(products))
	for _, p := range products {
		found[p.ID] = p
	}

	var missing []uint
	for _, id := range productIDs {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, &ProductNotFoundError{IDs: missing}
	}

	return found, nil
}
