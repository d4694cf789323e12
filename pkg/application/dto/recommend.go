package dto

// RecommendRequest runs forecast, demand analysis and restock planning for
// one SKU over a single sales history
type RecommendRequest struct {
	SKU          string       `json:"sku" binding:"required"`
	SalesHistory []SalesEntry `json:"sales_history" binding:"required,dive"`
	CurrentStock int64        `json:"current_stock" binding:"min=0"`
	LeadTimeDays int64        `json:"lead_time_days" binding:"min=0"`
	SafetyStock  int64        `json:"safety_stock" binding:"min=0"`
	Periods      *int         `json:"periods,omitempty" binding:"omitempty,min=1"`
}

// Horizon returns the requested horizon, or defaultDays when none was given
func (r *RecommendRequest) Horizon(defaultDays int) int {
	if r.Periods == nil {
		return defaultDays
	}
	return *r.Periods
}

// RecommendResponse bundles the three results of a recommendation
type RecommendResponse struct {
	Forecast *ForecastResponse       `json:"forecast"`
	Demand   *DemandAnalysisResponse `json:"demand"`
	Restock  *RestockResponse        `json:"restock"`
}
