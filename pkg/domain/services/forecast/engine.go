// Package forecast turns a daily sales history into a bounded demand forecast.
//
// Two strategies exist. The advanced model fits a piecewise-linear trend with
// multiplicative Fourier seasonality; the fallback model scales a 7-day
// moving average by weekday factors. Which one an Engine uses is fixed when
// the Engine is built, from the Capabilities handed to NewEngine.
package forecast

import (
	"errors"
	"fmt"
	"math"

	"github.com/vsinha/restock/pkg/domain/entities"
	"github.com/vsinha/restock/pkg/domain/services/stats"
	"github.com/vsinha/restock/pkg/domain/events"
)

const (
	// MinHistoryPoints is the shortest history a forecast accepts
	MinHistoryPoints = 10
	// MaxHorizonDays bounds the forecast horizon
	MaxHorizonDays = 3650
	// DefaultHorizonDays is used by callers that omit a horizon
	DefaultHorizonDays = 30

	// z-score of a two-sided 95% normal interval
	intervalZ = 1.96
)

// Capabilities describes what the process can run. It is decided once at
// startup and passed to NewEngine; an Engine never changes strategy.
type Capabilities struct {
	Advanced bool
}

// prediction is a strategy's raw, unrounded output for one horizon day
type prediction struct {
	estimate float64
	lower    float64
	upper    float64
}

type strategyResult struct {
	predictions   []prediction
	errorRate     *float64
	recentAverage *float64
}

type strategy interface {
	model() entities.ModelName
	method() string
	predict(series []entities.TimeSeriesPoint, horizon int) (*strategyResult, error)
}

// Engine produces forecasts with the strategy selected at construction.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	strategy strategy
	observer events.Observer
}

// Option configures an Engine
type Option func(*engineOptions)

type engineOptions struct {
	observer events.Observer
	advanced AdvancedOptions
}

// WithObserver sets the observer that receives forecast events
func WithObserver(o events.Observer) Option {
	return func(opts *engineOptions) {
		opts.observer = o
	}
}

// WithAdvancedOptions overrides the advanced model's tuning
func WithAdvancedOptions(a AdvancedOptions) Option {
	return func(opts *engineOptions) {
		opts.advanced = a
	}
}

// NewEngine creates an Engine. Without the advanced capability the fallback
// strategy is selected silently; callers see it only through Forecast.Model.
func NewEngine(caps Capabilities, opts ...Option) *Engine {
	options := engineOptions{advanced: DefaultAdvancedOptions()}
	for _, opt := range opts {
		opt(&options)
	}

	var s strategy = fallbackModel{}
	if caps.Advanced {
		s = advancedModel{options: options.advanced.withDefaults()}
	}

	e := &Engine{
		strategy: s,
		observer: events.OrNop(options.observer),
	}
	e.observer.Observe(events.NewForecastStrategySelectedEvent(events.NewStreamID("forecast-engine"), s.model(), s.method()))
	return e
}

// Model returns the identifier of the selected strategy
func (e *Engine) Model() entities.ModelName {
	return e.strategy.model()
}

// Forecast predicts horizonDays days following the last point of series.
// Input problems fail with a ValidationError before any computation;
// numerical degeneracy fails with a ComputationError.
func (e *Engine) Forecast(series []entities.TimeSeriesPoint, horizonDays int) (result *entities.Forecast, err error) {
	if err := validate(series, horizonDays); err != nil {
		return nil, err
	}

	streamID := events.NewStreamID("forecast")
	model := e.strategy.model()

	defer func() {
		// gonum panics on shape errors rather than returning them
		if r := recover(); r != nil {
			result = nil
			err = entities.NewComputationError(e.strategy.method(), fmt.Errorf("panic: %v", r))
		}
		if err != nil {
			e.observer.Observe(events.NewForecastFailedEvent(streamID, model, err))
		}
	}()

	raw, err := e.strategy.predict(series, horizonDays)
	if err != nil {
		if !errors.Is(err, entities.ErrComputation) {
			err = entities.NewComputationError(e.strategy.method(), err)
		}
		return nil, fmt.Errorf("%s forecast: %w", model, err)
	}
	if len(raw.predictions) != horizonDays {
		return nil, entities.NewComputationError(e.strategy.method(),
			fmt.Errorf("expected %d predictions, got %d", horizonDays, len(raw.predictions)))
	}

	predictions, err := finalize(series[len(series)-1], raw.predictions)
	if err != nil {
		return nil, err
	}

	result = &entities.Forecast{
		Predictions: predictions,
		Metrics: entities.ForecastMetrics{
			MethodName:          e.strategy.method(),
			DataPointCount:      len(series),
			ForecastHorizonDays: horizonDays,
			ErrorRate:           raw.errorRate,
			RecentAverage:       raw.recentAverage,
		},
		Model: model,
	}

	e.observer.Observe(events.NewForecastGeneratedEvent(streamID, result))
	return result, nil
}

func validate(series []entities.TimeSeriesPoint, horizonDays int) error {
	if len(series) < MinHistoryPoints {
		return entities.NewValidationError("ds", fmt.Sprintf("minimum %d data points required for forecasting, got %d", MinHistoryPoints, len(series)))
	}
	if horizonDays < 1 {
		return entities.NewValidationError("periods", fmt.Sprintf("horizon must be at least 1 day, got %d", horizonDays))
	}
	if horizonDays > MaxHorizonDays {
		return entities.NewValidationError("periods", fmt.Sprintf("horizon cannot exceed %d days, got %d", MaxHorizonDays, horizonDays))
	}
	if err := entities.ValidateQuantities(series); err != nil {
		return err
	}
	return entities.ValidateChronological(series)
}

// finalize floors, rounds and labels raw predictions. Trend labels compare
// the rounded estimates of consecutive predictions; the first is Stable.
func finalize(last entities.TimeSeriesPoint, raw []prediction) ([]entities.ForecastPoint, error) {
	points := make([]entities.ForecastPoint, len(raw))
	for i, p := range raw {
		if !stats.AllFinite(p.estimate, p.lower, p.upper) {
			return nil, entities.NewComputationError("finalize", fmt.Errorf("non-finite prediction for day %d", i+1))
		}

		estimate := stats.Round2(math.Max(0, p.estimate))
		lower := stats.Round2(math.Max(0, p.lower))
		upper := stats.Round2(math.Max(0, p.upper))

		trend := entities.Stable
		if i > 0 {
			trend = entities.CompareTrend(points[i-1].PointEstimate, estimate)
		}

		point, err := entities.NewForecastPoint(last.Date.AddDays(i+1), estimate, lower, upper, trend)
		if err != nil {
			return nil, entities.NewComputationError("finalize", err)
		}
		points[i] = *point
	}
	return points, nil
}
