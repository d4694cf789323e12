// Package demand characterises the volatility and weekday seasonality of a
// sales history.
package demand

import (
	"fmt"
	"time"

	"github.com/vsinha/restock/pkg/domain/entities"
	"github.com/vsinha/restock/pkg/domain/services/stats"
	"github.com/vsinha/restock/pkg/domain/events"
)

const (
	// MinHistoryDays is the shortest history an analysis accepts
	MinHistoryDays = 14

	seasonalCVThreshold     = 0.3
	weekdaySpreadRatio      = 0.2
	peakRatio               = 1.3
	highVariabilityCVCutoff = 0.5
)

const (
	RecommendHighVariability = "高変動商品：安全在庫を増やし、頻繁な発注を推奨"
	recommendSeasonalFormat  = "季節性あり：%sに向けて在庫を増強"
	RecommendStable          = "安定需要：定期的な発注サイクルで対応可能"
)

// RecommendSeasonal renders the seasonal recommendation for the given peaks
func RecommendSeasonal(peaks []time.Weekday) string {
	return fmt.Sprintf(recommendSeasonalFormat, entities.JoinWeekdays(peaks))
}

// Analyzer computes demand profiles. It is stateless apart from its observer.
type Analyzer struct {
	observer events.Observer
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithObserver sets the observer that receives demand.analyzed events
func WithObserver(o events.Observer) Option {
	return func(a *Analyzer) {
		a.observer = o
	}
}

// NewAnalyzer creates a new Analyzer
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{}
	for _, opt := range opts {
		opt(a)
	}
	a.observer = events.OrNop(a.observer)
	return a
}

// Analyze profiles history. Dates are only used to group by weekday, so the
// history does not need to be ordered.
func (a *Analyzer) Analyze(sku entities.SKU, history []entities.TimeSeriesPoint) (*entities.DemandProfile, error) {
	if len(history) < MinHistoryDays {
		return nil, entities.NewValidationError("sales_history", fmt.Sprintf("minimum %d days of data required for demand analysis, got %d", MinHistoryDays, len(history)))
	}
	if err := entities.ValidateQuantities(history); err != nil {
		return nil, err
	}
	for i, p := range history {
		if p.Date.IsZero() {
			return nil, entities.NewValidationError("date", fmt.Sprintf("point %d: date cannot be empty", i))
		}
	}

	values := entities.Quantities(history)
	avg := stats.Mean(values)
	std := stats.SampleStdDev(values)

	cv := 0.0
	if avg > 0 {
		cv = std / avg
	}

	weekdayMeans := meansByWeekday(history)
	present := make([]float64, 0, len(weekdayMeans))
	var peaks []time.Weekday
	for _, wd := range entities.WeekOrder {
		m, ok := weekdayMeans[wd]
		if !ok {
			continue
		}
		present = append(present, m)
		if m > avg*peakRatio {
			peaks = append(peaks, wd)
		}
	}

	seasonal := cv > seasonalCVThreshold && stats.SampleStdDev(present) > avg*weekdaySpreadRatio

	var recommendation string
	switch {
	case cv > highVariabilityCVCutoff:
		recommendation = RecommendHighVariability
	case seasonal:
		recommendation = RecommendSeasonal(peaks)
	default:
		recommendation = RecommendStable
	}

	profile := &entities.DemandProfile{
		SKU:                    sku,
		AvgDaily:               avg,
		StdDeviation:           std,
		CoefficientOfVariation: cv,
		SeasonalityDetected:    seasonal,
		PeakWeekdays:           peaks,
		Recommendation:         recommendation,
	}

	a.observer.Observe(events.NewDemandAnalyzedEvent(events.NewStreamID("demand"), *profile))
	return profile, nil
}

func meansByWeekday(history []entities.TimeSeriesPoint) map[time.Weekday]float64 {
	grouped := make(map[time.Weekday][]float64, 7)
	for _, p := range history {
		wd := p.Date.Weekday()
		grouped[wd] = append(grouped[wd], p.Quantity)
	}

	means := make(map[time.Weekday]float64, len(grouped))
	for wd, values := range grouped {
		means[wd] = stats.Mean(values)
	}
	return means
}
