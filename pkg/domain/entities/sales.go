package entities

import (
	"fmt"

	"github.com/vsinha/restock/pkg/domain/calendar"
)

// SalesRecord is one recorded sale of a SKU. Several records may share a
// date; they are summed into a single daily observation.
type SalesRecord struct {
	SKU      SKU
	Date     calendar.Date
	Quantity float64
}

// NewSalesRecord creates a validated SalesRecord
func NewSalesRecord(sku SKU, date calendar.Date, quantity float64) (*SalesRecord, error) {
	if sku == "" {
		return nil, NewValidationError("sku", "sku cannot be empty")
	}
	point, err := NewTimeSeriesPoint(date, quantity)
	if err != nil {
		return nil, fmt.Errorf("sku %s: %w", sku, err)
	}
	return &SalesRecord{SKU: sku, Date: point.Date, Quantity: point.Quantity}, nil
}
