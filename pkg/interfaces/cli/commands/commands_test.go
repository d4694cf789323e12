package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/restock/pkg/application/dto"
	"github.com/vsinha/restock/pkg/domain/events"
	"github.com/vsinha/restock/pkg/domain/services/restock"
	"github.com/vsinha/restock/pkg/infrastructure/metrics"
	"github.com/vsinha/restock/pkg/infrastructure/repositories/csv"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// weeklyHistory renders 28 days from Monday 2024-01-01, 10 on weekdays and 20 on weekends
func weeklyHistory() string {
	var b strings.Builder
	b.WriteString("date,qty\n")
	for day := 1; day <= 28; day++ {
		qty := 10
		if day%7 == 6 || day%7 == 0 {
			qty = 20
		}
		fmt.Fprintf(&b, "2024-01-%02d,%d\n", day, qty)
	}
	return b.String()
}

func TestForecastCommand_CSV(t *testing.T) {
	dir := t.TempDir()
	history := writeFile(t, dir, "sales.csv", weeklyHistory())

	out, err := run(t, "forecast", "--advanced=false", "--history", history, "--horizon", "7", "--format", "csv")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, "ds,yhat,yhat_lower,yhat_upper,trend", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "2024-01-29,10,"), lines[1])
	assert.True(t, strings.HasPrefix(lines[6], "2024-02-03,20,"), lines[6])
}

func TestForecastCommand_AdvancedJSON(t *testing.T) {
	dir := t.TempDir()
	history := writeFile(t, dir, "sales.csv", weeklyHistory())

	out, err := run(t, "forecast", "--advanced", "--history", history, "--format", "json")
	require.NoError(t, err)

	var resp dto.ForecastResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ADVANCED", resp.ModelUsed)
	assert.Len(t, resp.Predictions, 30)
	assert.NotNil(t, resp.Metrics.ErrorRate)
}

func TestPlanCommand(t *testing.T) {
	out, err := run(t, "plan", "--stock", "0", "--lead-time", "7", "--safety", "5",
		"--forecast", "10,10,10,10,10,10,10,10,10,10", "--product-id", "TSHIRT-M", "--format", "json")
	require.NoError(t, err)

	var resp dto.RestockResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "TSHIRT-M", resp.ProductID)
	assert.Equal(t, "CRITICAL", resp.Urgency)
	assert.Equal(t, int64(105), resp.SuggestedQuantity)
	assert.Equal(t, 70.0, resp.LeadTimeDemand)
}

func TestPlanCommand_FromForecastFile(t *testing.T) {
	dir := t.TempDir()
	history := writeFile(t, dir, "sales.csv", weeklyHistory())

	_, err := run(t, "forecast", "--advanced=false", "--history", history, "--format", "csv", "--output", dir)
	require.NoError(t, err)

	out, err := run(t, "plan", "--stock", "40", "--lead-time", "7", "--safety", "5",
		"--forecast-file", filepath.Join(dir, "forecast.csv"), "--format", "json")
	require.NoError(t, err)

	var resp dto.RestockResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 90.0, resp.LeadTimeDemand)
	assert.True(t, resp.ShouldRestock)
	assert.Equal(t, int64(3), resp.DaysUntilStockout)

	_, err = run(t, "plan", "--stock=-1", "--lead-time", "7", "--safety", "5", "--forecast", "1")
	assert.ErrorContains(t, err, "current stock cannot be negative")
}

func TestAnalyzeCommand(t *testing.T) {
	dir := t.TempDir()
	history := writeFile(t, dir, "sales.csv", weeklyHistory())

	out, err := run(t, "analyze", "--history", history, "--sku", "TSHIRT-M")
	require.NoError(t, err)
	assert.Contains(t, out, "Demand Profile: TSHIRT-M")
	assert.Contains(t, out, "Peak Days: Saturday, Sunday")

	multi := writeFile(t, dir, "multi.csv", "sku,date,qty\nA,2024-01-01,1\nB,2024-01-01,2\n")
	_, err = run(t, "analyze", "--history", multi)
	assert.ErrorContains(t, err, "pick one with --sku")

	_, err = run(t, "analyze")
	assert.ErrorContains(t, err, "--history is required")
}

func TestGenerateAndRecommend(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, "generate", "--skus", "3", "--days", "60", "--seed", "42", "--output", dir)
	require.NoError(t, err)

	products, err := csv.NewLoader().LoadProducts(filepath.Join(dir, "products.csv"))
	require.NoError(t, err)
	require.Len(t, products, 3)

	sales, err := csv.NewLoader().LoadSales(filepath.Join(dir, "sales.csv"), "")
	require.NoError(t, err)
	assert.Len(t, sales, 180)

	out, err := run(t, "recommend", "--advanced=false",
		"--sku", "SKU_0002",
		"--history", filepath.Join(dir, "sales.csv"),
		"--products", filepath.Join(dir, "products.csv"),
		"--format", "json")
	require.NoError(t, err)

	var resp dto.RecommendResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "SKU_0002", resp.Demand.SKU)
	assert.Equal(t, "SKU_0002", resp.Restock.ProductID)
	assert.GreaterOrEqual(t, len(resp.Forecast.Predictions), 30)
	assert.NotEmpty(t, resp.Restock.Urgency)

	_, err = run(t, "generate", "--skus", "3")
	assert.ErrorContains(t, err, "--output is required")
}

func TestRecommendCommand_FromFlags(t *testing.T) {
	dir := t.TempDir()
	history := writeFile(t, dir, "sales.csv", weeklyHistory())

	out, err := run(t, "recommend", "--advanced=false", "--history", history,
		"--stock", "40", "--lead-time", "7", "--safety", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Urgency: CRITICAL")
	assert.Contains(t, out, "Forecast (FALLBACK_MOVING_AVERAGE)")
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "restock.yaml")

	out, err := run(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)
	assert.FileExists(t, path)

	_, err = run(t, "config", "init", path)
	assert.ErrorContains(t, err, "already exists")

	history := writeFile(t, filepath.Dir(path), "sales.csv", weeklyHistory())
	out, err = run(t, "--config", path, "--advanced=false", "forecast", "--history", history, "--horizon", "3", "--format", "csv")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 4)
}

func TestLoadRuntime_WiresEventsAndTelemetry(t *testing.T) {
	t.Setenv("RESTOCK_TELEMETRY_TRACES", "stdout")
	t.Setenv("RESTOCK_LOG_FORMAT", "json")

	var logs bytes.Buffer
	recorder := metrics.NewRecorder()
	ctx := context.Background()

	rt, err := (&GlobalOptions{}).loadRuntime(ctx, &logs, recorder)
	require.NoError(t, err)

	_, err = rt.service.CalculateRestock(ctx, restock.PlanInput{
		CurrentStock: 0,
		LeadTimeDays: 7,
		SafetyStock:  5,
		Forecast:     []float64{10, 10, 10, 10, 10, 10, 10},
	})
	require.NoError(t, err)
	rt.Close(ctx)

	stored, err := rt.events.ReadAllEvents(0)
	require.NoError(t, err)
	var planned []events.Event
	for _, e := range stored {
		if e.Type() == events.RestockPlannedEvent {
			planned = append(planned, e)
		}
	}
	require.Len(t, planned, 1)
	assert.Equal(t, 1, planned[0].Version())

	families, err := recorder.Registry().Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["restock_restock_decisions_total"])
	var durationExported bool
	for name := range names {
		if strings.HasPrefix(name, "restock_planning_duration") {
			durationExported = true
		}
	}
	assert.True(t, durationExported, "otel histogram missing from the prometheus registry: %v", names)

	output := logs.String()
	assert.Contains(t, output, `"event":"restock.planned"`)
	assert.Contains(t, output, "PlanningService.CalculateRestock")
}
