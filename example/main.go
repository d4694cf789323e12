package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/vsinha/restock/pkg/domain/calendar"
	"github.com/vsinha/restock/pkg/domain/entities"
	"github.com/vsinha/restock/pkg/domain/services/demand"
	"github.com/vsinha/restock/pkg/domain/services/forecast"
	"github.com/vsinha/restock/pkg/domain/services/restock"
	"github.com/vsinha/restock/pkg/infrastructure/eventbus"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	observer := eventbus.NewLogObserver(logger)

	// Eight weeks of T-shirt sales: steady growth with busy weekends
	history := buildHistory(calendar.MustNew(2025, time.March, 3), 56)

	engine := forecast.NewEngine(forecast.Capabilities{Advanced: true}, forecast.WithObserver(observer))
	analyzer := demand.NewAnalyzer(demand.WithObserver(observer))
	planner := restock.NewPlanner(restock.WithObserver(observer))

	fmt.Println("👕 Planning restock for TSHIRT-M...")

	result, err := engine.Forecast(history, 14)
	if err != nil {
		log.Fatalf("Forecast failed: %v", err)
	}

	fmt.Printf("\n📈 Forecast (%s):\n", result.Model)
	for _, p := range result.Predictions {
		fmt.Printf("  %s  %-9s %6.2f  [%6.2f, %6.2f]  %s\n",
			p.Date, p.Date.Weekday(), p.PointEstimate, p.LowerBound, p.UpperBound, p.Trend)
	}
	if result.Metrics.ErrorRate != nil {
		fmt.Printf("  In-sample MAPE: %.2f%%\n", *result.Metrics.ErrorRate)
	}

	profile, err := analyzer.Analyze("TSHIRT-M", history)
	if err != nil {
		log.Fatalf("Demand analysis failed: %v", err)
	}

	fmt.Printf("\n📊 Demand profile:\n")
	fmt.Printf("  Average: %.2f/day  CV: %.2f  Seasonal: %t\n",
		profile.AvgDaily, profile.CoefficientOfVariation, profile.SeasonalityDetected)
	fmt.Printf("  %s\n", profile.Recommendation)

	decision, err := planner.Plan(restock.PlanInput{
		CurrentStock: 120,
		LeadTimeDays: 10,
		SafetyStock:  15,
		Forecast:     result.PointEstimates(),
	})
	if err != nil {
		log.Fatalf("Restock planning failed: %v", err)
	}

	fmt.Printf("\n📦 Restock decision:\n")
	fmt.Printf("  Urgency: %s\n", decision.Urgency)
	fmt.Printf("  Order %d units on %s\n", decision.SuggestedQuantity, decision.SuggestedOrderDate)
	fmt.Printf("  Days until stockout: %d\n", decision.DaysUntilStockout)
	fmt.Printf("  %s\n", decision.Reasoning)
}

func buildHistory(start calendar.Date, days int) []entities.TimeSeriesPoint {
	history := make([]entities.TimeSeriesPoint, days)
	for i := range history {
		date := start.AddDays(i)
		qty := 8 + 0.1*float64(i)
		if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			qty *= 1.6
		}
		history[i] = entities.TimeSeriesPoint{Date: date, Quantity: qty}
	}
	return history
}
