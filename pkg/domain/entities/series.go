package entities

import (
	"fmt"
	"math"

	"github.com/vsinha/restock/pkg/domain/calendar"
)

// TimeSeriesPoint is one day of observed sales for a product
type TimeSeriesPoint struct {
	Date     calendar.Date `json:"date"`
	Quantity float64       `json:"quantity"`
}

// NewTimeSeriesPoint creates a validated TimeSeriesPoint
func NewTimeSeriesPoint(date calendar.Date, quantity float64) (*TimeSeriesPoint, error) {
	if date.IsZero() {
		return nil, NewValidationError("date", "date cannot be empty")
	}
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		return nil, NewValidationError("quantity", "quantity must be a finite number")
	}
	if quantity < 0 {
		return nil, NewValidationError("quantity", fmt.Sprintf("quantity cannot be negative, got %g", quantity))
	}

	return &TimeSeriesPoint{Date: date, Quantity: quantity}, nil
}

// Quantities extracts the quantity column of a series
func Quantities(series []TimeSeriesPoint) []float64 {
	values := make([]float64, len(series))
	for i, p := range series {
		values[i] = p.Quantity
	}
	return values
}

// ValidateQuantities checks that every quantity is finite and non-negative
func ValidateQuantities(series []TimeSeriesPoint) error {
	for i, p := range series {
		if math.IsNaN(p.Quantity) || math.IsInf(p.Quantity, 0) {
			return NewValidationError("quantity", fmt.Sprintf("point %d: quantity must be a finite number", i))
		}
		if p.Quantity < 0 {
			return NewValidationError("quantity", fmt.Sprintf("point %d: quantity cannot be negative, got %g", i, p.Quantity))
		}
	}
	return nil
}

// ValidateChronological checks that dates are set and strictly increasing
func ValidateChronological(series []TimeSeriesPoint) error {
	for i, p := range series {
		if p.Date.IsZero() {
			return NewValidationError("date", fmt.Sprintf("point %d: date cannot be empty", i))
		}
		if i > 0 && !p.Date.After(series[i-1].Date) {
			return NewValidationError("date", fmt.Sprintf("point %d: date %s is not after %s", i, p.Date, series[i-1].Date))
		}
	}
	return nil
}

// ParseSeries pairs caller-supplied date strings with quantities. It fails
// before any computation when the columns differ in length or a date does
// not parse. Quantities are checked separately by ValidateQuantities.
func ParseSeries(dates []string, quantities []float64) ([]TimeSeriesPoint, error) {
	if len(dates) != len(quantities) {
		return nil, NewValidationError("ds", fmt.Sprintf("dates and quantities must have the same length, got %d and %d", len(dates), len(quantities)))
	}

	series := make([]TimeSeriesPoint, len(dates))
	for i, raw := range dates {
		date, err := calendar.Parse(raw)
		if err != nil {
			return nil, NewValidationError("ds", fmt.Sprintf("point %d: %v", i, err))
		}
		series[i] = TimeSeriesPoint{Date: date, Quantity: quantities[i]}
	}
	return series, nil
}
