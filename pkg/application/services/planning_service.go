package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/vsinha/restock/pkg/domain/entities"
	"github.com/vsinha/restock/pkg/domain/services/demand"
	"github.com/vsinha/restock/pkg/domain/services/forecast"
	"github.com/vsinha/restock/pkg/domain/services/restock"
)

const instrumentationName = "github.com/vsinha/restock/pkg/application/services"

// PlanningService is the entry point shared by the HTTP and CLI interfaces.
// It wraps the forecast engine, demand analyzer and restock planner with
// tracing, and combines them into a single recommendation.
type PlanningService struct {
	engine         *forecast.Engine
	analyzer       *demand.Analyzer
	planner        *restock.Planner
	defaultHorizon int
	logger         *slog.Logger

	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	tracer         trace.Tracer
	duration       metric.Float64Histogram
}

// Option configures a PlanningService
type Option func(*PlanningService)

// WithDefaultHorizon sets the horizon used when a caller gives none
func WithDefaultHorizon(days int) Option {
	return func(s *PlanningService) {
		s.defaultHorizon = days
	}
}

// WithLogger sets the logger for request-level diagnostics
func WithLogger(logger *slog.Logger) Option {
	return func(s *PlanningService) {
		s.logger = logger
	}
}

// WithTracerProvider sets where spans go (default: the otel global)
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *PlanningService) {
		s.tracerProvider = tp
	}
}

// WithMeterProvider sets where the duration histogram goes (default: the otel global)
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *PlanningService) {
		s.meterProvider = mp
	}
}

// NewPlanningService creates a new planning service
func NewPlanningService(engine *forecast.Engine, analyzer *demand.Analyzer, planner *restock.Planner, opts ...Option) *PlanningService {
	s := &PlanningService{
		engine:         engine,
		analyzer:       analyzer,
		planner:        planner,
		defaultHorizon: forecast.DefaultHorizonDays,
		logger:         slog.Default(),
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.tracerProvider == nil {
		s.tracerProvider = otel.GetTracerProvider()
	}
	if s.meterProvider == nil {
		s.meterProvider = otel.GetMeterProvider()
	}
	s.tracer = s.tracerProvider.Tracer(instrumentationName)

	// A missing histogram only disables duration recording
	if h, err := s.meterProvider.Meter(instrumentationName).Float64Histogram("restock.planning.duration",
		metric.WithDescription("Duration of planning operations"),
		metric.WithUnit("s"),
	); err == nil {
		s.duration = h
	}
	return s
}

// DefaultHorizon returns the horizon applied when callers give none
func (s *PlanningService) DefaultHorizon() int {
	return s.defaultHorizon
}

// Model returns the forecasting strategy in use
func (s *PlanningService) Model() entities.ModelName {
	return s.engine.Model()
}

// Forecast predicts daily demand over horizonDays
func (s *PlanningService) Forecast(ctx context.Context, series []entities.TimeSeriesPoint, horizonDays int) (*entities.Forecast, error) {
	ctx, span := s.tracer.Start(ctx, "PlanningService.Forecast",
		trace.WithAttributes(
			attribute.Int("forecast.data_points", len(series)),
			attribute.Int("forecast.horizon_days", horizonDays),
		),
	)
	defer span.End()
	defer s.record(ctx, "forecast", time.Now())

	if err := ctx.Err(); err != nil {
		return nil, s.fail(span, err)
	}

	result, err := s.engine.Forecast(series, horizonDays)
	if err != nil {
		return nil, s.fail(span, fmt.Errorf("forecast failed: %w", err))
	}

	span.SetAttributes(attribute.String("forecast.model", string(result.Model)))
	span.SetStatus(codes.Ok, "")
	return result, nil
}

// AnalyzeDemand builds the demand profile of a SKU
func (s *PlanningService) AnalyzeDemand(ctx context.Context, sku entities.SKU, history []entities.TimeSeriesPoint) (*entities.DemandProfile, error) {
	ctx, span := s.tracer.Start(ctx, "PlanningService.AnalyzeDemand",
		trace.WithAttributes(
			attribute.String("demand.sku", string(sku)),
			attribute.Int("demand.days", len(history)),
		),
	)
	defer span.End()
	defer s.record(ctx, "analyze", time.Now())

	if err := ctx.Err(); err != nil {
		return nil, s.fail(span, err)
	}

	profile, err := s.analyzer.Analyze(sku, history)
	if err != nil {
		return nil, s.fail(span, fmt.Errorf("demand analysis failed: %w", err))
	}

	span.SetAttributes(attribute.Bool("demand.seasonal", profile.SeasonalityDetected))
	span.SetStatus(codes.Ok, "")
	return profile, nil
}

// CalculateRestock decides whether, how much and when to reorder
func (s *PlanningService) CalculateRestock(ctx context.Context, in restock.PlanInput) (*entities.RestockDecision, error) {
	ctx, span := s.tracer.Start(ctx, "PlanningService.CalculateRestock",
		trace.WithAttributes(
			attribute.Int64("restock.current_stock", in.CurrentStock),
			attribute.Int64("restock.lead_time_days", in.LeadTimeDays),
			attribute.Int("restock.forecast_days", len(in.Forecast)),
		),
	)
	defer span.End()
	defer s.record(ctx, "restock", time.Now())

	if err := ctx.Err(); err != nil {
		return nil, s.fail(span, err)
	}

	decision, err := s.planner.Plan(in)
	if err != nil {
		return nil, s.fail(span, fmt.Errorf("restock planning failed: %w", err))
	}

	span.SetAttributes(attribute.String("restock.urgency", decision.Urgency.String()))
	span.SetStatus(codes.Ok, "")
	return decision, nil
}

// RecommendInput is the history and stock position of one SKU
type RecommendInput struct {
	SKU          entities.SKU
	History      []entities.TimeSeriesPoint
	CurrentStock int64
	LeadTimeDays int64
	SafetyStock  int64
	// HorizonDays of 0 means the service default
	HorizonDays int
}

// Recommendation bundles the results produced for one SKU
type Recommendation struct {
	SKU      entities.SKU
	Forecast *entities.Forecast
	Demand   *entities.DemandProfile
	Restock  *entities.RestockDecision
}

// Recommend forecasts and analyses the history concurrently, then plans the
// reorder against the forecast point estimates. The horizon is stretched to
// cover the lead time so the planner is never short of forecast days.
func (s *PlanningService) Recommend(ctx context.Context, in RecommendInput) (*Recommendation, error) {
	ctx, span := s.tracer.Start(ctx, "PlanningService.Recommend",
		trace.WithAttributes(
			attribute.String("recommend.sku", string(in.SKU)),
			attribute.Int("recommend.days", len(in.History)),
		),
	)
	defer span.End()
	defer s.record(ctx, "recommend", time.Now())

	horizon := s.recommendHorizon(in)
	rec := &Recommendation{SKU: in.SKU}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		f, err := s.Forecast(gctx, in.History, horizon)
		if err != nil {
			return err
		}
		rec.Forecast = f
		return nil
	})
	g.Go(func() error {
		p, err := s.AnalyzeDemand(gctx, in.SKU, in.History)
		if err != nil {
			return err
		}
		rec.Demand = p
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, s.fail(span, fmt.Errorf("recommendation for %s: %w", in.SKU, err))
	}

	decision, err := s.CalculateRestock(ctx, restock.PlanInput{
		CurrentStock: in.CurrentStock,
		LeadTimeDays: in.LeadTimeDays,
		SafetyStock:  in.SafetyStock,
		Forecast:     rec.Forecast.PointEstimates(),
	})
	if err != nil {
		return nil, s.fail(span, fmt.Errorf("recommendation for %s: %w", in.SKU, err))
	}
	rec.Restock = decision

	s.logger.Debug("recommendation complete",
		slog.String("sku", string(in.SKU)),
		slog.String("model", string(rec.Forecast.Model)),
		slog.Int("horizon_days", horizon),
		slog.String("urgency", decision.Urgency.String()),
	)
	span.SetStatus(codes.Ok, "")
	return rec, nil
}

func (s *PlanningService) recommendHorizon(in RecommendInput) int {
	horizon := in.HorizonDays
	if horizon <= 0 {
		horizon = s.defaultHorizon
	}
	if lead := int(in.LeadTimeDays); lead > horizon {
		horizon = min(lead, forecast.MaxHorizonDays)
	}
	return horizon
}

func (s *PlanningService) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func (s *PlanningService) record(ctx context.Context, op string, start time.Time) {
	if s.duration == nil {
		return
	}
	s.duration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("operation", op)),
	)
}
