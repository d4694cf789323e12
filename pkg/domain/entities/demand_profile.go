package entities

import (
	"strings"
	"time"
)

// DemandProfile characterises the volatility and weekday seasonality of a SKU
type DemandProfile struct {
	SKU                    SKU            `json:"sku"`
	AvgDaily               float64        `json:"avg_daily"`
	StdDeviation           float64        `json:"std_deviation"`
	CoefficientOfVariation float64        `json:"coefficient_of_variation"`
	SeasonalityDetected    bool           `json:"seasonality_detected"`
	PeakWeekdays           []time.Weekday `json:"peak_weekdays"`
	Recommendation         string         `json:"recommendation"`
}

// PeakWeekdayNames returns the English names of the peak weekdays, Monday first
func (p *DemandProfile) PeakWeekdayNames() []string {
	names := make([]string, len(p.PeakWeekdays))
	for i, d := range p.PeakWeekdays {
		names[i] = d.String()
	}
	return names
}

// HasPeak reports whether day is one of the peak weekdays
func (p *DemandProfile) HasPeak(day time.Weekday) bool {
	for _, d := range p.PeakWeekdays {
		if d == day {
			return true
		}
	}
	return false
}

// WeekOrder lists weekdays Monday through Sunday, the order peaks are reported in
var WeekOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// JoinWeekdays renders weekdays as a comma separated list of names
func JoinWeekdays(days []time.Weekday) string {
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = d.String()
	}
	return strings.Join(names, ", ")
}
