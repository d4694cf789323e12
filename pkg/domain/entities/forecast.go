package entities

import (
	"fmt"

	"github.com/vsinha/restock/pkg/domain/calendar"
)

// TrendLabel describes the direction of a prediction relative to the previous one
type TrendLabel int

const (
	Stable TrendLabel = iota
	Increasing
	Decreasing
)

// String method for TrendLabel enum
func (t TrendLabel) String() string {
	switch t {
	case Stable:
		return "STABLE"
	case Increasing:
		return "INCREASING"
	case Decreasing:
		return "DECREASING"
	default:
		return "UNKNOWN"
	}
}

// MarshalText implements encoding.TextMarshaler
func (t TrendLabel) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// CompareTrend labels current against the estimate that preceded it
func CompareTrend(previous, current float64) TrendLabel {
	switch {
	case current > previous:
		return Increasing
	case current < previous:
		return Decreasing
	default:
		return Stable
	}
}

// ModelName identifies the forecasting strategy that produced a result
type ModelName string

const (
	ModelAdvanced ModelName = "ADVANCED"
	ModelFallback ModelName = "FALLBACK_MOVING_AVERAGE"
)

// ForecastPoint is a single predicted day with its uncertainty band
type ForecastPoint struct {
	Date          calendar.Date `json:"date"`
	PointEstimate float64       `json:"point_estimate"`
	LowerBound    float64       `json:"lower_bound"`
	UpperBound    float64       `json:"upper_bound"`
	Trend         TrendLabel    `json:"trend"`
}

// NewForecastPoint creates a validated ForecastPoint
func NewForecastPoint(date calendar.Date, estimate, lower, upper float64, trend TrendLabel) (*ForecastPoint, error) {
	if lower < 0 {
		return nil, fmt.Errorf("lower bound cannot be negative, got %g", lower)
	}
	if lower > estimate || estimate > upper {
		return nil, fmt.Errorf("bounds out of order: %g <= %g <= %g does not hold", lower, estimate, upper)
	}

	return &ForecastPoint{
		Date:          date,
		PointEstimate: estimate,
		LowerBound:    lower,
		UpperBound:    upper,
		Trend:         trend,
	}, nil
}

// ForecastMetrics summarises how a forecast was produced
type ForecastMetrics struct {
	MethodName          string   `json:"method"`
	DataPointCount      int      `json:"data_points"`
	ForecastHorizonDays int      `json:"forecast_days"`
	ErrorRate           *float64 `json:"mape,omitempty"`           // advanced model only
	RecentAverage       *float64 `json:"recent_average,omitempty"` // fallback model only
}

// Forecast is the complete output of a forecasting run
type Forecast struct {
	Predictions []ForecastPoint `json:"predictions"`
	Metrics     ForecastMetrics `json:"metrics"`
	Model       ModelName       `json:"model_used"`
}

// PointEstimates returns the predicted quantities in date order
func (f *Forecast) PointEstimates() []float64 {
	values := make([]float64, len(f.Predictions))
	for i, p := range f.Predictions {
		values[i] = p.PointEstimate
	}
	return values
}
