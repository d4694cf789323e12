package dto

import (
	"github.com/vsinha/restock/pkg/domain/entities"
)

// ForecastRequest is the wire form of a forecast call: parallel date and
// quantity columns plus an optional horizon
type ForecastRequest struct {
	DS      []string  `json:"ds" binding:"required"`
	Y       []float64 `json:"y" binding:"required"`
	Periods *int      `json:"periods,omitempty" binding:"omitempty,min=1"`
}

// Horizon returns the requested horizon, or defaultDays when none was given
func (r *ForecastRequest) Horizon(defaultDays int) int {
	if r.Periods == nil {
		return defaultDays
	}
	return *r.Periods
}

// Series pairs the date and quantity columns into a time series
func (r *ForecastRequest) Series() ([]entities.TimeSeriesPoint, error) {
	return entities.ParseSeries(r.DS, r.Y)
}

// ForecastPrediction is one predicted day
type ForecastPrediction struct {
	DS        string  `json:"ds"`
	YHat      float64 `json:"yhat"`
	YHatLower float64 `json:"yhat_lower"`
	YHatUpper float64 `json:"yhat_upper"`
	Trend     string  `json:"trend"`
}

// ForecastResponse is the wire form of a forecast
type ForecastResponse struct {
	Predictions []ForecastPrediction     `json:"predictions"`
	Metrics     entities.ForecastMetrics `json:"metrics"`
	ModelUsed   string                   `json:"model_used"`
}

// NewForecastResponse converts a forecast into its wire form
func NewForecastResponse(f *entities.Forecast) *ForecastResponse {
	predictions := make([]ForecastPrediction, len(f.Predictions))
	for i, p := range f.Predictions {
		predictions[i] = ForecastPrediction{
			DS:        p.Date.String(),
			YHat:      p.PointEstimate,
			YHatLower: p.LowerBound,
			YHatUpper: p.UpperBound,
			Trend:     p.Trend.String(),
		}
	}

	return &ForecastResponse{
		Predictions: predictions,
		Metrics:     f.Metrics,
		ModelUsed:   string(f.Model),
	}
}

// PointEstimates returns yhat for every prediction in date order
func (r *ForecastResponse) PointEstimates() []float64 {
	values := make([]float64, len(r.Predictions))
	for i, p := range r.Predictions {
		values[i] = p.YHat
	}
	return values
}
