package memory

import (
	"fmt"
	"sort"

	"github.com/vsinha/restock/pkg/domain/calendar"
	"github.com/vsinha/restock/pkg/domain/entities"
	"github.com/vsinha/restock/pkg/domain/repositories"
)

// SalesRepository keeps daily sales totals per SKU in memory
type SalesRepository struct {
	daily map[entities.SKU]map[calendar.Date]float64
}

// NewSalesRepository creates a new in-memory sales repository
func NewSalesRepository() *SalesRepository {
	return &SalesRepository{
		daily: make(map[entities.SKU]map[calendar.Date]float64),
	}
}

// Verify interface compliance
var _ repositories.SalesRepository = (*SalesRepository)(nil)

// LoadSales adds records to the repository, summing records of the same
// SKU and date
func (r *SalesRepository) LoadSales(records []*entities.SalesRecord) error {
	for i, rec := range records {
		if rec.SKU == "" {
			return fmt.Errorf("sales record %d: sku cannot be empty", i)
		}
		if rec.Date.IsZero() {
			return fmt.Errorf("sales record %d: date cannot be empty", i)
		}
		days, ok := r.daily[rec.SKU]
		if !ok {
			days = make(map[calendar.Date]float64)
			r.daily[rec.SKU] = days
		}
		days[rec.Date] += rec.Quantity
	}
	return nil
}

// GetSalesHistory returns the daily totals for sku, oldest first
func (r *SalesRepository) GetSalesHistory(sku entities.SKU) ([]entities.TimeSeriesPoint, error) {
	days, ok := r.daily[sku]
	if !ok {
		return nil, fmt.Errorf("sales history for %s: %w", sku, repositories.ErrNotFound)
	}

	history := make([]entities.TimeSeriesPoint, 0, len(days))
	for date, qty := range days {
		history = append(history, entities.TimeSeriesPoint{Date: date, Quantity: qty})
	}
	sort.Slice(history, func(i, j int) bool {
		return history[i].Date.Before(history[j].Date)
	})
	return history, nil
}

// GetSKUs returns every SKU with recorded sales, sorted
func (r *SalesRepository) GetSKUs() []entities.SKU {
	skus := make([]entities.SKU, 0, len(r.daily))
	for sku := range r.daily {
		skus = append(skus, sku)
	}
	sort.Slice(skus, func(i, j int) bool { return skus[i] < skus[j] })
	return skus
}
