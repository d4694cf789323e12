package repositories

import (
	"errors"

	"github.com/vsinha/restock/pkg/domain/entities"
)

// ErrNotFound is returned when a repository has no entry for a SKU
var ErrNotFound = errors.New("not found")

// ProductRepository provides access to product master data
type ProductRepository interface {
	GetProduct(sku entities.SKU) (*entities.Product, error)
	GetAllProducts() ([]*entities.Product, error)
	LoadProducts(products []*entities.Product) error
}
