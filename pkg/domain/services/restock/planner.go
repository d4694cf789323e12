// Package restock decides whether, how much and when to reorder a product
// given its stock position and a demand forecast.
package restock

import (
	"fmt"
	"math"
	"time"

	"github.com/vsinha/restock/pkg/domain/calendar"
	"github.com/vsinha/restock/pkg/domain/entities"
	"github.com/vsinha/restock/pkg/domain/services/stats"
	"github.com/vsinha/restock/pkg/domain/events"
)

const (
	// NoStockoutDays is reported when average demand is zero
	NoStockoutDays = 999

	// MaxOrderOffsetDays caps how far past today an order date is placed
	MaxOrderOffsetDays = 3650

	quantityBuffer = 1.5
	safetyMultiple = 2

	ReasonCritical = "在庫が安全在庫を下回る見込み。即時発注が必要。"
	reasoningHigh  = "リードタイム(%d日)以内に欠品の恐れ。"
	ReasonMedium   = "発注点に達しました。計画的な発注を推奨。"
	ReasonLow      = "在庫は十分です。次回発注まで余裕があります。"
)

// ReasonHigh renders the HIGH urgency reasoning for a lead time
func ReasonHigh(leadTimeDays int64) string {
	return fmt.Sprintf(reasoningHigh, leadTimeDays)
}

// PlanInput is the stock position and forecast a decision is made from
type PlanInput struct {
	CurrentStock int64
	LeadTimeDays int64
	SafetyStock  int64
	// Forecast holds daily demand starting tomorrow
	Forecast []float64
}

// Validate checks that counts are non-negative and forecasts finite and non-negative
func (in PlanInput) Validate() error {
	if in.CurrentStock < 0 {
		return entities.NewValidationError("current_stock", fmt.Sprintf("current stock cannot be negative, got %d", in.CurrentStock))
	}
	if in.LeadTimeDays < 0 {
		return entities.NewValidationError("lead_time_days", fmt.Sprintf("lead time cannot be negative, got %d", in.LeadTimeDays))
	}
	if in.SafetyStock < 0 {
		return entities.NewValidationError("safety_stock", fmt.Sprintf("safety stock cannot be negative, got %d", in.SafetyStock))
	}
	for i, v := range in.Forecast {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return entities.NewValidationError("forecast", fmt.Sprintf("day %d: demand must be a finite number", i+1))
		}
		if v < 0 {
			return entities.NewValidationError("forecast", fmt.Sprintf("day %d: demand cannot be negative, got %g", i+1, v))
		}
	}
	return nil
}

// Planner applies the reorder-point policy. The clock only supplies today's
// date for SuggestedOrderDate.
type Planner struct {
	clock    func() time.Time
	observer events.Observer
}

// Option configures a Planner
type Option func(*Planner)

// WithClock replaces the system clock
func WithClock(clock func() time.Time) Option {
	return func(p *Planner) {
		p.clock = clock
	}
}

// WithObserver sets the observer that receives restock events
func WithObserver(o events.Observer) Option {
	return func(p *Planner) {
		p.observer = o
	}
}

// NewPlanner creates a new Planner
func NewPlanner(opts ...Option) *Planner {
	p := &Planner{clock: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	p.observer = events.OrNop(p.observer)
	return p
}

// Plan computes a restock decision. When the forecast is shorter than the
// lead time, lead-time demand covers only the forecast days and the decision
// is flagged with ForecastShortfall.
func (p *Planner) Plan(in PlanInput) (*entities.RestockDecision, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	streamID := events.NewStreamID("restock")
	today := calendar.FromTime(p.clock().UTC())

	covered := in.LeadTimeDays
	shortfall := false
	if covered > int64(len(in.Forecast)) {
		covered = int64(len(in.Forecast))
		shortfall = true
	}
	if shortfall {
		p.observer.Observe(events.NewForecastShortfallEvent(streamID, in.LeadTimeDays, len(in.Forecast)))
	}

	leadTimeDemand := stats.Sum(in.Forecast[:covered])
	reorderPoint := leadTimeDemand + float64(in.SafetyStock)
	shouldRestock := float64(in.CurrentStock) <= reorderPoint

	avgDemand := stats.Mean(in.Forecast)

	suggested := floorInt64(avgDemand * float64(in.LeadTimeDays) * quantityBuffer)
	if floor := saturatingMul(in.SafetyStock, safetyMultiple); floor > suggested {
		suggested = floor
	}

	daysUntilStockout := int64(NoStockoutDays)
	if avgDemand > 0 {
		daysUntilStockout = floorInt64(float64(in.CurrentStock) / avgDemand)
	}

	orderInDays := min(max(daysUntilStockout-in.LeadTimeDays, 0), MaxOrderOffsetDays)

	urgency, reasoning := classify(daysUntilStockout, shouldRestock, in)

	decision := &entities.RestockDecision{
		ShouldRestock:      shouldRestock,
		SuggestedQuantity:  suggested,
		SuggestedOrderDate: today.AddDays(int(orderInDays)),
		Urgency:            urgency,
		Reasoning:          reasoning,
		LeadTimeDemand:     leadTimeDemand,
		ReorderPoint:       reorderPoint,
		AvgDemand:          avgDemand,
		DaysUntilStockout:  daysUntilStockout,
		ForecastShortfall:  shortfall,
	}

	p.observer.Observe(events.NewRestockPlannedEvent(streamID, *decision))
	return decision, nil
}

// classify compares days of cover against safety stock and lead time.
// Safety stock is a unit count but is compared as days, first match wins.
func classify(daysUntilStockout int64, shouldRestock bool, in PlanInput) (entities.Urgency, string) {
	switch {
	case daysUntilStockout <= in.SafetyStock:
		return entities.Critical, ReasonCritical
	case daysUntilStockout <= in.LeadTimeDays:
		return entities.High, ReasonHigh(in.LeadTimeDays)
	case shouldRestock:
		return entities.Medium, ReasonMedium
	default:
		return entities.Low, ReasonLow
	}
}

// floorInt64 floors a non-negative x, saturating at math.MaxInt64
func floorInt64(x float64) int64 {
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold
	if x >= float64(math.MaxInt64) {
		return math.MaxInt64
	}
	return int64(math.Floor(x))
}

func saturatingMul(a, b int64) int64 {
	if a > math.MaxInt64/b {
		return math.MaxInt64
	}
	return a * b
}
