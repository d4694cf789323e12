package repositories

import "github.com/vsinha/restock/pkg/domain/entities"

// SalesRepository provides access to sales history
type SalesRepository interface {
	// GetSalesHistory returns one point per day with sales, oldest first
	GetSalesHistory(sku entities.SKU) ([]entities.TimeSeriesPoint, error)
	GetSKUs() []entities.SKU
	LoadSales(records []*entities.SalesRecord) error
}
