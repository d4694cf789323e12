package memory

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vsinha/restock/pkg/domain/entities"
	"github.com/vsinha/restock/pkg/domain/repositories"
)

// ProductRepository provides in-memory product storage
type ProductRepository struct {
	products    []entities.Product
	productsMap map[entities.SKU]int
}

// NewProductRepository creates a new in-memory product repository
func NewProductRepository(expectedProducts int) *ProductRepository {
	return &ProductRepository{
		products:    make([]entities.Product, 0, expectedProducts),
		productsMap: make(map[entities.SKU]int, expectedProducts),
	}
}

// Verify interface compliance
var _ repositories.ProductRepository = (*ProductRepository)(nil)

// LoadProducts loads products into the repository. The whole batch is
// rejected when it repeats a SKU or collides with a stored one.
func (r *ProductRepository) LoadProducts(products []*entities.Product) error {
	seen := make(map[entities.SKU]bool, len(products))
	var duplicates []string
	for _, p := range products {
		_, stored := r.productsMap[p.SKU]
		if seen[p.SKU] || stored {
			duplicates = append(duplicates, string(p.SKU))
		}
		seen[p.SKU] = true
	}
	if len(duplicates) > 0 {
		sort.Strings(duplicates)
		return fmt.Errorf("duplicate SKUs found: %s", strings.Join(duplicates, ", "))
	}

	for _, p := range products {
		r.add(*p)
	}
	return nil
}

// SaveProduct stores a single product
func (r *ProductRepository) SaveProduct(product *entities.Product) error {
	if _, exists := r.productsMap[product.SKU]; exists {
		return fmt.Errorf("duplicate SKU: %s", product.SKU)
	}
	r.add(*product)
	return nil
}

func (r *ProductRepository) add(product entities.Product) {
	r.productsMap[product.SKU] = len(r.products)
	r.products = append(r.products, product)
}

// GetProduct returns the product for a SKU
func (r *ProductRepository) GetProduct(sku entities.SKU) (*entities.Product, error) {
	index, exists := r.productsMap[sku]
	if !exists {
		return nil, fmt.Errorf("product %s: %w", sku, repositories.ErrNotFound)
	}
	product := r.products[index]
	return &product, nil
}

// GetAllProducts returns all products in load order
func (r *ProductRepository) GetAllProducts() ([]*entities.Product, error) {
	products := make([]*entities.Product, 0, len(r.products))
	for i := range r.products {
		product := r.products[i]
		products = append(products, &product)
	}
	return products, nil
}
