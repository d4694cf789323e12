package entities

import "fmt"

// SKU is a seller's stock keeping unit identifier
type SKU string

// Product carries the inventory parameters the restock planner needs for one SKU
type Product struct {
	SKU          SKU
	Description  string
	CurrentStock int64
	LeadTimeDays int64
	SafetyStock  int64
}

// NewProduct creates a validated Product
func NewProduct(sku SKU, description string, currentStock, leadTimeDays, safetyStock int64) (*Product, error) {
	if string(sku) == "" {
		return nil, NewValidationError("sku", "sku cannot be empty")
	}
	if currentStock < 0 {
		return nil, NewValidationError("current_stock", fmt.Sprintf("current stock cannot be negative, got %d", currentStock))
	}
	if leadTimeDays < 0 {
		return nil, NewValidationError("lead_time_days", fmt.Sprintf("lead time cannot be negative, got %d", leadTimeDays))
	}
	if safetyStock < 0 {
		return nil, NewValidationError("safety_stock", fmt.Sprintf("safety stock cannot be negative, got %d", safetyStock))
	}

	return &Product{
		SKU:          sku,
		Description:  description,
		CurrentStock: currentStock,
		LeadTimeDays: leadTimeDays,
		SafetyStock:  safetyStock,
	}, nil
}
