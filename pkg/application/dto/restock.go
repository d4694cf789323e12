package dto

import (
	"github.com/vsinha/restock/pkg/domain/entities"
	"github.com/vsinha/restock/pkg/domain/services/restock"
	"github.com/vsinha/restock/pkg/domain/services/stats"
)

// RestockRequest carries a stock position and the daily forecast it is
// checked against. ProductID is echoed back and otherwise unused.
type RestockRequest struct {
	ProductID    string    `json:"product_id,omitempty"`
	CurrentStock int64     `json:"current_stock" binding:"min=0"`
	LeadTimeDays int64     `json:"lead_time_days" binding:"min=0"`
	SafetyStock  int64     `json:"safety_stock" binding:"min=0"`
	Forecast     []float64 `json:"forecast"`
}

// PlanInput converts the request into planner input
func (r *RestockRequest) PlanInput() restock.PlanInput {
	return restock.PlanInput{
		CurrentStock: r.CurrentStock,
		LeadTimeDays: r.LeadTimeDays,
		SafetyStock:  r.SafetyStock,
		Forecast:     r.Forecast,
	}
}

// RestockResponse is the wire form of a restock decision
type RestockResponse struct {
	ProductID          string  `json:"product_id,omitempty"`
	ShouldRestock      bool    `json:"should_restock"`
	SuggestedQuantity  int64   `json:"suggested_quantity"`
	SuggestedOrderDate string  `json:"suggested_order_date"`
	Urgency            string  `json:"urgency"`
	Reasoning          string  `json:"reasoning"`
	LeadTimeDemand     float64 `json:"lead_time_demand"`
	ReorderPoint       float64 `json:"reorder_point"`
	DaysUntilStockout  int64   `json:"days_until_stockout"`
	ForecastShortfall  bool    `json:"forecast_shortfall"`
}

// NewRestockResponse converts a decision into its wire form
func NewRestockResponse(productID string, d *entities.RestockDecision) *RestockResponse {
	return &RestockResponse{
		ProductID:          productID,
		ShouldRestock:      d.ShouldRestock,
		SuggestedQuantity:  d.SuggestedQuantity,
		SuggestedOrderDate: d.SuggestedOrderDate.String(),
		Urgency:            d.Urgency.String(),
		Reasoning:          d.Reasoning,
		LeadTimeDemand:     stats.Round2(d.LeadTimeDemand),
		ReorderPoint:       stats.Round2(d.ReorderPoint),
		DaysUntilStockout:  d.DaysUntilStockout,
		ForecastShortfall:  d.ForecastShortfall,
	}
}
