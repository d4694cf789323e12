package restock

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/restock/pkg/domain/calendar"
	"github.com/vsinha/restock/pkg/domain/entities"
	"github.com/vsinha/restock/pkg/domain/events"
	testinghelpers "github.com/vsinha/restock/pkg/infrastructure/testing"
)

var fixedNow = time.Date(2024, time.March, 9, 12, 0, 0, 0, time.UTC)

func flat(v float64, days int) []float64 {
	out := make([]float64, days)
	for i := range out {
		out[i] = v
	}
	return out
}

func newTestPlanner(opts ...Option) *Planner {
	return NewPlanner(append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)...)
}

func TestPlan_UrgencyTable(t *testing.T) {
	tests := []struct {
		name          string
		input         PlanInput
		wantUrgency   entities.Urgency
		wantReasoning string
		wantRestock   bool
		wantDays      int64
	}{
		{
			name:          "empty shelf is critical",
			input:         PlanInput{CurrentStock: 0, LeadTimeDays: 7, SafetyStock: 5, Forecast: flat(10, 30)},
			wantUrgency:   entities.Critical,
			wantReasoning: ReasonCritical,
			wantRestock:   true,
			wantDays:      0,
		},
		{
			name:          "stockout inside lead time is high",
			input:         PlanInput{CurrentStock: 60, LeadTimeDays: 7, SafetyStock: 5, Forecast: flat(10, 30)},
			wantUrgency:   entities.High,
			wantReasoning: "リードタイム(7日)以内に欠品の恐れ。",
			wantRestock:   true,
			wantDays:      6,
		},
		{
			name:          "reorder point reached is medium",
			input:         PlanInput{CurrentStock: 10, LeadTimeDays: 7, SafetyStock: 5, Forecast: flat(1, 30)},
			wantUrgency:   entities.Medium,
			wantReasoning: ReasonMedium,
			wantRestock:   true,
			wantDays:      10,
		},
		{
			name:          "ample stock is low",
			input:         PlanInput{CurrentStock: 1000, LeadTimeDays: 7, SafetyStock: 5, Forecast: flat(10, 30)},
			wantUrgency:   entities.Low,
			wantReasoning: ReasonLow,
			wantRestock:   false,
			wantDays:      100,
		},
	}

	planner := newTestPlanner()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, err := planner.Plan(tt.input)
			require.NoError(t, err)

			assert.Equal(t, tt.wantUrgency, decision.Urgency)
			assert.Equal(t, tt.wantReasoning, decision.Reasoning)
			assert.Equal(t, tt.wantRestock, decision.ShouldRestock)
			assert.Equal(t, tt.wantDays, decision.DaysUntilStockout)
		})
	}
}

func TestPlan_CriticalScenario(t *testing.T) {
	decision, err := newTestPlanner().Plan(PlanInput{CurrentStock: 0, LeadTimeDays: 7, SafetyStock: 5, Forecast: flat(10, 30)})
	require.NoError(t, err)

	assert.Equal(t, 70.0, decision.LeadTimeDemand)
	assert.Equal(t, 75.0, decision.ReorderPoint)
	assert.Equal(t, 10.0, decision.AvgDemand)
	assert.Equal(t, int64(105), decision.SuggestedQuantity)
	assert.Equal(t, calendar.MustNew(2024, time.March, 9), decision.SuggestedOrderDate)
	assert.False(t, decision.ForecastShortfall)
}

func TestPlan_OrderDateUsesUTCClock(t *testing.T) {
	// 08:00 in UTC+9 is still the previous day in UTC
	jst := time.FixedZone("JST", 9*60*60)
	planner := NewPlanner(WithClock(func() time.Time {
		return time.Date(2024, time.March, 10, 8, 0, 0, 0, jst)
	}))

	decision, err := planner.Plan(PlanInput{CurrentStock: 1000, LeadTimeDays: 7, SafetyStock: 5, Forecast: flat(10, 30)})
	require.NoError(t, err)

	// 100 days of cover minus 7 days lead time
	assert.Equal(t, calendar.MustNew(2024, time.June, 10), decision.SuggestedOrderDate)
}

func TestPlan_EmptyForecast(t *testing.T) {
	decision, err := newTestPlanner().Plan(PlanInput{CurrentStock: 0, LeadTimeDays: 3, SafetyStock: 4})
	require.NoError(t, err)

	assert.Equal(t, 0.0, decision.AvgDemand)
	assert.Equal(t, int64(NoStockoutDays), decision.DaysUntilStockout)
	assert.Equal(t, int64(8), decision.SuggestedQuantity)
	assert.True(t, decision.ShouldRestock)
	assert.Equal(t, entities.Medium, decision.Urgency)
	assert.True(t, decision.ForecastShortfall)
	assert.Equal(t, calendar.MustNew(2024, time.March, 9).AddDays(NoStockoutDays-3), decision.SuggestedOrderDate)
}

func TestPlan_ForecastShortfall(t *testing.T) {
	store := testinghelpers.NewEventRecorder()
	planner := newTestPlanner(WithObserver(store))

	decision, err := planner.Plan(PlanInput{CurrentStock: 50, LeadTimeDays: 7, SafetyStock: 2, Forecast: flat(10, 3)})
	require.NoError(t, err)

	// only the three forecast days are summed
	assert.Equal(t, 30.0, decision.LeadTimeDemand)
	assert.Equal(t, 32.0, decision.ReorderPoint)
	assert.True(t, decision.ForecastShortfall)

	shortfalls := store.EventsOfType(events.ForecastShortfallEvent)
	require.Len(t, shortfalls, 1)
	payload := shortfalls[0].Data().(events.ForecastShortfall)
	assert.Equal(t, int64(7), payload.LeadTimeDays)
	assert.Equal(t, 3, payload.ForecastDays)

	assert.Len(t, store.EventsOfType(events.RestockPlannedEvent), 1)
}

func TestPlan_SuggestedQuantityFloor(t *testing.T) {
	planner := newTestPlanner()
	for _, safety := range []int64{0, 1, 10, 250} {
		for _, lead := range []int64{0, 1, 14} {
			decision, err := planner.Plan(PlanInput{CurrentStock: 20, LeadTimeDays: lead, SafetyStock: safety, Forecast: flat(3.3, 10)})
			require.NoError(t, err)
			assert.GreaterOrEqual(t, decision.SuggestedQuantity, safety*2)
			assert.GreaterOrEqual(t, decision.SuggestedQuantity, int64(math.Floor(3.3*float64(lead)*1.5)))
		}
	}
}

func TestPlan_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input PlanInput
	}{
		{"negative stock", PlanInput{CurrentStock: -1, LeadTimeDays: 1, SafetyStock: 1}},
		{"negative lead time", PlanInput{CurrentStock: 1, LeadTimeDays: -1, SafetyStock: 1}},
		{"negative safety stock", PlanInput{CurrentStock: 1, LeadTimeDays: 1, SafetyStock: -1}},
		{"negative forecast", PlanInput{Forecast: []float64{1, -2}}},
		{"nan forecast", PlanInput{Forecast: []float64{math.NaN()}}},
	}

	planner := newTestPlanner()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, err := planner.Plan(tt.input)
			assert.Nil(t, decision)
			assert.True(t, errors.Is(err, entities.ErrValidation), "expected validation error, got %v", err)
		})
	}
}

func TestPlan_ExtremeForecastsSaturate(t *testing.T) {
	today := calendar.FromTime(fixedNow)
	planner := newTestPlanner()

	t.Run("vanishing demand", func(t *testing.T) {
		decision, err := planner.Plan(PlanInput{CurrentStock: 100, LeadTimeDays: 7, SafetyStock: 5, Forecast: []float64{1e-20, 1e-20}})
		require.NoError(t, err)

		assert.Equal(t, int64(math.MaxInt64), decision.DaysUntilStockout)
		assert.False(t, decision.ShouldRestock)
		assert.Equal(t, entities.Low, decision.Urgency)
		assert.Equal(t, int64(10), decision.SuggestedQuantity)
		assert.Equal(t, today.AddDays(MaxOrderOffsetDays), decision.SuggestedOrderDate)
	})

	t.Run("enormous demand", func(t *testing.T) {
		decision, err := planner.Plan(PlanInput{CurrentStock: 100, LeadTimeDays: 7, SafetyStock: 5, Forecast: []float64{1e300}})
		require.NoError(t, err)

		assert.Equal(t, int64(math.MaxInt64), decision.SuggestedQuantity)
		assert.Equal(t, int64(0), decision.DaysUntilStockout)
		assert.True(t, decision.ShouldRestock)
		assert.Equal(t, entities.Critical, decision.Urgency)
		assert.Equal(t, today, decision.SuggestedOrderDate)
	})

	t.Run("enormous safety stock", func(t *testing.T) {
		decision, err := planner.Plan(PlanInput{CurrentStock: 100, LeadTimeDays: 7, SafetyStock: math.MaxInt64, Forecast: flat(1, 7)})
		require.NoError(t, err)

		assert.Equal(t, int64(math.MaxInt64), decision.SuggestedQuantity)
		assert.Equal(t, entities.Critical, decision.Urgency)
	})
}
