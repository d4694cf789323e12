package entities

import (
	"fmt"

	"github.com/vsinha/restock/pkg/domain/calendar"
)

// Urgency ranks how soon a reorder must be placed
type Urgency int

const (
	Low Urgency = iota
	Medium
	High
	Critical
)

// String method for Urgency enum
func (u Urgency) String() string {
	switch u {
	case Low:
		return "LOW"
	case Medium:
		return "MEDIUM"
	case High:
		return "HIGH"
	case Critical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// MarshalText implements encoding.TextMarshaler
func (u Urgency) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// ParseUrgency converts the textual form back into an Urgency
func ParseUrgency(s string) (Urgency, error) {
	switch s {
	case "LOW":
		return Low, nil
	case "MEDIUM":
		return Medium, nil
	case "HIGH":
		return High, nil
	case "CRITICAL":
		return Critical, nil
	default:
		return Low, fmt.Errorf("unknown urgency %q", s)
	}
}

// RestockDecision is the planner's answer to whether, how much and when to reorder
type RestockDecision struct {
	ShouldRestock      bool          `json:"should_restock"`
	SuggestedQuantity  int64         `json:"suggested_quantity"`
	SuggestedOrderDate calendar.Date `json:"suggested_order_date"`
	Urgency            Urgency       `json:"urgency"`
	Reasoning          string        `json:"reasoning"`

	LeadTimeDemand    float64 `json:"lead_time_demand"`
	ReorderPoint      float64 `json:"reorder_point"`
	AvgDemand         float64 `json:"avg_demand"`
	DaysUntilStockout int64   `json:"days_until_stockout"`
	// ForecastShortfall is set when the forecast covered fewer days than the
	// lead time, so LeadTimeDemand only sums what was available.
	ForecastShortfall bool `json:"forecast_shortfall"`
}
