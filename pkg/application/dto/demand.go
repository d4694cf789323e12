package dto

import (
	"github.com/vsinha/restock/pkg/domain/entities"
	"github.com/vsinha/restock/pkg/domain/services/stats"
)

// SalesEntry is one day of sales as sent by callers
type SalesEntry struct {
	Date string  `json:"date" binding:"required,calendar_date"`
	Qty  float64 `json:"qty"`
}

// SalesHistory converts wire sales entries into a time series. Entries keep
// their order; quantities are validated by the consuming component.
func SalesHistory(entries []SalesEntry) ([]entities.TimeSeriesPoint, error) {
	dates := make([]string, len(entries))
	quantities := make([]float64, len(entries))
	for i, e := range entries {
		dates[i] = e.Date
		quantities[i] = e.Qty
	}
	return entities.ParseSeries(dates, quantities)
}

// DemandAnalysisRequest asks for the demand profile of one SKU
type DemandAnalysisRequest struct {
	SKU          string       `json:"sku" binding:"required"`
	SalesHistory []SalesEntry `json:"sales_history" binding:"required,dive"`
}

// DemandAnalysisResponse is the wire form of a demand profile
type DemandAnalysisResponse struct {
	SKU                    string   `json:"sku"`
	AvgDailySales          float64  `json:"avg_daily_sales"`
	StdDeviation           float64  `json:"std_deviation"`
	CoefficientOfVariation float64  `json:"coefficient_of_variation"`
	SeasonalityDetected    bool     `json:"seasonality_detected"`
	PeakDays               []string `json:"peak_days"`
	Recommendation         string   `json:"recommendation"`
}

// NewDemandAnalysisResponse converts a profile into its wire form, rounding
// the statistics to two decimal places
func NewDemandAnalysisResponse(p *entities.DemandProfile) *DemandAnalysisResponse {
	return &DemandAnalysisResponse{
		SKU:                    string(p.SKU),
		AvgDailySales:          stats.Round2(p.AvgDaily),
		StdDeviation:           stats.Round2(p.StdDeviation),
		CoefficientOfVariation: stats.Round2(p.CoefficientOfVariation),
		SeasonalityDetected:    p.SeasonalityDetected,
		PeakDays:               p.PeakWeekdayNames(),
		Recommendation:         p.Recommendation,
	}
}
