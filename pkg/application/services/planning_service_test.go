package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/vsinha/restock/pkg/domain/calendar"
	"github.com/vsinha/restock/pkg/domain/entities"
	"github.com/vsinha/restock/pkg/domain/services/demand"
	"github.com/vsinha/restock/pkg/domain/services/forecast"
	"github.com/vsinha/restock/pkg/domain/services/restock"
	"github.com/vsinha/restock/pkg/domain/events"
	testinghelpers "github.com/vsinha/restock/pkg/infrastructure/testing"
)

var planningDay = time.Date(2024, time.January, 29, 9, 0, 0, 0, time.UTC)

func newTestService(store *testinghelpers.EventRecorder) *PlanningService {
	engine := forecast.NewEngine(forecast.Capabilities{}, forecast.WithObserver(store))
	analyzer := demand.NewAnalyzer(demand.WithObserver(store))
	planner := restock.NewPlanner(
		restock.WithObserver(store),
		restock.WithClock(func() time.Time { return planningDay }),
	)
	return NewPlanningService(engine, analyzer, planner)
}

func TestPlanningService_Recommend(t *testing.T) {
	store := testinghelpers.NewEventRecorder()
	svc := newTestService(store)

	rec, err := svc.Recommend(context.Background(), RecommendInput{
		SKU:          "TSHIRT-M",
		History:      testinghelpers.WeeklyPattern(testinghelpers.ScenarioStart, 28, 10, 20),
		CurrentStock: 40,
		LeadTimeDays: 7,
		SafetyStock:  5,
	})
	require.NoError(t, err)

	assert.Equal(t, entities.ModelFallback, rec.Forecast.Model)
	require.Len(t, rec.Forecast.Predictions, forecast.DefaultHorizonDays)
	assert.Equal(t, calendar.MustNew(2024, time.January, 29), rec.Forecast.Predictions[0].Date)
	assert.InDelta(t, 10, rec.Forecast.Predictions[0].PointEstimate, 1e-9)
	assert.InDelta(t, 20, rec.Forecast.Predictions[5].PointEstimate, 1e-9)

	assert.True(t, rec.Demand.SeasonalityDetected)
	assert.Equal(t, []time.Weekday{time.Saturday, time.Sunday}, rec.Demand.PeakWeekdays)

	// one week of forecast is 5x10 + 2x20
	assert.InDelta(t, 90, rec.Restock.LeadTimeDemand, 1e-9)
	assert.InDelta(t, 95, rec.Restock.ReorderPoint, 1e-9)
	assert.True(t, rec.Restock.ShouldRestock)
	assert.False(t, rec.Restock.ForecastShortfall)
	assert.Equal(t, int64(3), rec.Restock.DaysUntilStockout)
	assert.Equal(t, entities.Critical, rec.Restock.Urgency)
	assert.Equal(t, calendar.FromTime(planningDay), rec.Restock.SuggestedOrderDate)

	assert.Len(t, store.EventsOfType(events.ForecastGeneratedEvent), 1)
	assert.Len(t, store.EventsOfType(events.DemandAnalyzedEvent), 1)
	assert.Len(t, store.EventsOfType(events.RestockPlannedEvent), 1)
	assert.Empty(t, store.EventsOfType(events.ForecastShortfallEvent))
}

func TestPlanningService_RecommendStretchesHorizonToLeadTime(t *testing.T) {
	svc := newTestService(testinghelpers.NewEventRecorder())

	rec, err := svc.Recommend(context.Background(), RecommendInput{
		SKU:          "MUG-01",
		History:      testinghelpers.ConstantSeries(testinghelpers.ScenarioStart, 28, 3),
		CurrentStock: 500,
		LeadTimeDays: 45,
		SafetyStock:  10,
		HorizonDays:  10,
	})
	require.NoError(t, err)

	assert.Len(t, rec.Forecast.Predictions, 45)
	assert.False(t, rec.Restock.ForecastShortfall)
	assert.InDelta(t, 135, rec.Restock.LeadTimeDemand, 1e-9)
	assert.Equal(t, demand.RecommendStable, rec.Demand.Recommendation)
}

func TestPlanningService_RecommendErrors(t *testing.T) {
	svc := newTestService(testinghelpers.NewEventRecorder())

	_, err := svc.Recommend(context.Background(), RecommendInput{
		SKU:     "SHORT",
		History: testinghelpers.ConstantSeries(testinghelpers.ScenarioStart, 5, 1),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, entities.ErrValidation))
	assert.Contains(t, err.Error(), "recommendation for SHORT")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.Recommend(ctx, RecommendInput{
		SKU:     "MUG-01",
		History: testinghelpers.ConstantSeries(testinghelpers.ScenarioStart, 28, 3),
	})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestPlanningService_SingleOperations(t *testing.T) {
	store := testinghelpers.NewEventRecorder()
	svc := newTestService(store)
	ctx := context.Background()

	assert.Equal(t, forecast.DefaultHorizonDays, svc.DefaultHorizon())
	assert.Equal(t, entities.ModelFallback, svc.Model())

	f, err := svc.Forecast(ctx, testinghelpers.ConstantSeries(testinghelpers.ScenarioStart, 14, 4), 7)
	require.NoError(t, err)
	assert.Len(t, f.Predictions, 7)
	assert.Equal(t, []float64{4, 4, 4, 4, 4, 4, 4}, f.PointEstimates())

	profile, err := svc.AnalyzeDemand(ctx, "MUG-01", testinghelpers.ConstantSeries(testinghelpers.ScenarioStart, 14, 4))
	require.NoError(t, err)
	assert.Equal(t, 4.0, profile.AvgDaily)
	assert.Zero(t, profile.CoefficientOfVariation)

	decision, err := svc.CalculateRestock(ctx, restock.PlanInput{
		CurrentStock: 0,
		LeadTimeDays: 7,
		SafetyStock:  5,
		Forecast:     []float64{10, 10, 10},
	})
	require.NoError(t, err)
	assert.Equal(t, entities.Critical, decision.Urgency)
	assert.True(t, decision.ForecastShortfall)
	assert.Len(t, store.EventsOfType(events.ForecastShortfallEvent), 1)

	_, err = svc.CalculateRestock(ctx, restock.PlanInput{CurrentStock: -1})
	assert.True(t, errors.Is(err, entities.ErrValidation))

	_, err = svc.Forecast(ctx, testinghelpers.ConstantSeries(testinghelpers.ScenarioStart, 14, 0), 7)
	assert.True(t, errors.Is(err, entities.ErrComputation))
}

func TestPlanningService_WithDefaultHorizon(t *testing.T) {
	engine := forecast.NewEngine(forecast.Capabilities{})
	svc := NewPlanningService(engine, demand.NewAnalyzer(), restock.NewPlanner(), WithDefaultHorizon(14))

	rec, err := svc.Recommend(context.Background(), RecommendInput{
		SKU:          "MUG-01",
		History:      testinghelpers.ConstantSeries(testinghelpers.ScenarioStart, 28, 3),
		CurrentStock: 500,
		LeadTimeDays: 3,
		SafetyStock:  1,
	})
	require.NoError(t, err)
	assert.Len(t, rec.Forecast.Predictions, 14)
	assert.Equal(t, entities.Low, rec.Restock.Urgency)
}

func TestPlanningService_Telemetry(t *testing.T) {
	ctx := context.Background()
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer tp.Shutdown(ctx)
	defer mp.Shutdown(ctx)

	svc := NewPlanningService(
		forecast.NewEngine(forecast.Capabilities{}),
		demand.NewAnalyzer(),
		restock.NewPlanner(restock.WithClock(func() time.Time { return planningDay })),
		WithTracerProvider(tp),
		WithMeterProvider(mp),
	)

	_, err := svc.Recommend(ctx, RecommendInput{
		SKU:          "MUG-01",
		History:      testinghelpers.ConstantSeries(testinghelpers.ScenarioStart, 28, 3),
		CurrentStock: 500,
		LeadTimeDays: 14,
		SafetyStock:  10,
	})
	require.NoError(t, err)
	_, err = svc.CalculateRestock(ctx, restock.PlanInput{CurrentStock: -1})
	require.Error(t, err)

	ended := spans.Ended()
	require.Len(t, ended, 5)
	byName := make(map[string][]sdktrace.ReadOnlySpan)
	for _, span := range ended {
		byName[span.Name()] = append(byName[span.Name()], span)
	}

	require.Len(t, byName["PlanningService.Recommend"], 1)
	recommend := byName["PlanningService.Recommend"][0]
	assert.Equal(t, codes.Ok, recommend.Status().Code)
	for _, name := range []string{"PlanningService.Forecast", "PlanningService.AnalyzeDemand"} {
		require.Len(t, byName[name], 1, name)
		assert.Equal(t, recommend.SpanContext().SpanID(), byName[name][0].Parent().SpanID(), name)
	}

	restockSpans := byName["PlanningService.CalculateRestock"]
	require.Len(t, restockSpans, 2)
	assert.Equal(t, recommend.SpanContext().SpanID(), restockSpans[0].Parent().SpanID())
	failed := restockSpans[1]
	assert.Equal(t, codes.Error, failed.Status().Code)
	assert.False(t, failed.Parent().IsValid())
	require.NotEmpty(t, failed.Events())
	assert.Equal(t, "exception", failed.Events()[0].Name)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	counts := make(map[string]uint64)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != "restock.planning.duration" {
				continue
			}
			hist, ok := m.Data.(metricdata.Histogram[float64])
			require.True(t, ok)
			for _, dp := range hist.DataPoints {
				op, _ := dp.Attributes.Value(attribute.Key("operation"))
				counts[op.AsString()] += dp.Count
			}
		}
	}
	assert.Equal(t, map[string]uint64{"recommend": 1, "forecast": 1, "analyze": 1, "restock": 2}, counts)
}
