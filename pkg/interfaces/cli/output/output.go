package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vsinha/restock/pkg/application/dto"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
	// Writer receives output not saved to OutputDir, os.Stdout when nil
	Writer io.Writer
}

func (c Config) writer() io.Writer {
	if c.Writer == nil {
		return os.Stdout
	}
	return c.Writer
}

// Forecast renders a forecast in the configured format. The CSV form can be
// read back as a planner forecast.
func Forecast(result *dto.ForecastResponse, config Config) error {
	switch config.Format {
	case "text":
		return forecastText(result, config)
	case "json":
		return writeJSON(result, "forecast.json", config)
	case "csv":
		return writeCSV(forecastRows(result), "forecast.csv", config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// Demand renders a demand profile in the configured format
func Demand(result *dto.DemandAnalysisResponse, config Config) error {
	switch config.Format {
	case "text":
		return demandText(result, config)
	case "json":
		return writeJSON(result, "demand.json", config)
	case "csv":
		return writeCSV(demandRows(result), "demand.csv", config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// Restock renders a restock decision in the configured format
func Restock(result *dto.RestockResponse, config Config) error {
	switch config.Format {
	case "text":
		return restockText(result, config)
	case "json":
		return writeJSON(result, "restock.json", config)
	case "csv":
		return writeCSV(restockRows(result), "restock.csv", config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// Recommendation renders all three parts of a recommendation. CSV output
// needs an output directory since it spans three files.
func Recommendation(result *dto.RecommendResponse, config Config) error {
	switch config.Format {
	case "text":
		if err := restockText(result.Restock, config); err != nil {
			return err
		}
		if err := demandText(result.Demand, config); err != nil {
			return err
		}
		return forecastText(result.Forecast, config)
	case "json":
		return writeJSON(result, "recommendation.json", config)
	case "csv":
		if config.OutputDir == "" {
			return fmt.Errorf("output directory required for CSV format")
		}
		if err := writeCSV(forecastRows(result.Forecast), "forecast.csv", config); err != nil {
			return err
		}
		if err := writeCSV(demandRows(result.Demand), "demand.csv", config); err != nil {
			return err
		}
		return writeCSV(restockRows(result.Restock), "restock.csv", config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

func forecastText(result *dto.ForecastResponse, config Config) error {
	w := config.writer()
	m := result.Metrics

	fmt.Fprintf(w, "📈 Forecast (%s)\n", result.ModelUsed)
	fmt.Fprintf(w, "====================\n\n")
	fmt.Fprintf(w, "Method: %s\n", m.MethodName)
	fmt.Fprintf(w, "Data Points: %d\n", m.DataPointCount)
	fmt.Fprintf(w, "Horizon: %d days\n", m.ForecastHorizonDays)
	if m.ErrorRate != nil {
		fmt.Fprintf(w, "MAPE: %.2f%%\n", *m.ErrorRate)
	}
	if m.RecentAverage != nil {
		fmt.Fprintf(w, "Recent Average: %.2f\n", *m.RecentAverage)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%-12s %-10s %-10s %-10s %-12s\n", "Date", "Estimate", "Lower", "Upper", "Trend")
	fmt.Fprintf(w, "%-12s %-10s %-10s %-10s %-12s\n", "------------", "----------", "----------", "----------", "------------")
	for _, p := range result.Predictions {
		fmt.Fprintf(w, "%-12s %-10.2f %-10.2f %-10.2f %-12s\n", p.DS, p.YHat, p.YHatLower, p.YHatUpper, p.Trend)
	}
	fmt.Fprintln(w)
	return nil
}

func demandText(result *dto.DemandAnalysisResponse, config Config) error {
	w := config.writer()

	fmt.Fprintf(w, "📊 Demand Profile: %s\n", result.SKU)
	fmt.Fprintf(w, "====================\n\n")
	fmt.Fprintf(w, "Average Daily Sales: %.2f\n", result.AvgDailySales)
	fmt.Fprintf(w, "Std Deviation: %.2f\n", result.StdDeviation)
	fmt.Fprintf(w, "Coefficient of Variation: %.2f\n", result.CoefficientOfVariation)
	fmt.Fprintf(w, "Seasonality Detected: %t\n", result.SeasonalityDetected)
	if len(result.PeakDays) > 0 {
		fmt.Fprintf(w, "Peak Days: %s\n", strings.Join(result.PeakDays, ", "))
	}
	fmt.Fprintf(w, "Recommendation: %s\n\n", result.Recommendation)
	return nil
}

func restockText(result *dto.RestockResponse, config Config) error {
	w := config.writer()

	icon := "✅"
	if result.ShouldRestock {
		icon = "⚠️ "
	}
	title := "Restock Decision"
	if result.ProductID != "" {
		title += ": " + result.ProductID
	}
	fmt.Fprintf(w, "%s %s\n", icon, title)
	fmt.Fprintf(w, "====================\n\n")
	fmt.Fprintf(w, "Urgency: %s\n", result.Urgency)
	fmt.Fprintf(w, "Should Restock: %t\n", result.ShouldRestock)
	fmt.Fprintf(w, "Suggested Quantity: %d\n", result.SuggestedQuantity)
	fmt.Fprintf(w, "Suggested Order Date: %s\n", result.SuggestedOrderDate)
	fmt.Fprintf(w, "Lead Time Demand: %.2f\n", result.LeadTimeDemand)
	fmt.Fprintf(w, "Reorder Point: %.2f\n", result.ReorderPoint)
	fmt.Fprintf(w, "Days Until Stockout: %d\n", result.DaysUntilStockout)
	if result.ForecastShortfall {
		fmt.Fprintf(w, "Note: forecast is shorter than the lead time\n")
	}
	fmt.Fprintf(w, "Reasoning: %s\n\n", result.Reasoning)
	return nil
}

func forecastRows(result *dto.ForecastResponse) [][]string {
	rows := [][]string{{"ds", "yhat", "yhat_lower", "yhat_upper", "trend"}}
	for _, p := range result.Predictions {
		rows = append(rows, []string{p.DS, formatFloat(p.YHat), formatFloat(p.YHatLower), formatFloat(p.YHatUpper), p.Trend})
	}
	return rows
}

func demandRows(result *dto.DemandAnalysisResponse) [][]string {
	return [][]string{
		{"sku", "avg_daily_sales", "std_deviation", "coefficient_of_variation", "seasonality_detected", "peak_days", "recommendation"},
		{
			result.SKU,
			formatFloat(result.AvgDailySales),
			formatFloat(result.StdDeviation),
			formatFloat(result.CoefficientOfVariation),
			strconv.FormatBool(result.SeasonalityDetected),
			strings.Join(result.PeakDays, ";"),
			result.Recommendation,
		},
	}
}

func restockRows(result *dto.RestockResponse) [][]string {
	return [][]string{
		{"product_id", "should_restock", "suggested_quantity", "suggested_order_date", "urgency", "lead_time_demand", "reorder_point", "days_until_stockout", "forecast_shortfall", "reasoning"},
		{
			result.ProductID,
			strconv.FormatBool(result.ShouldRestock),
			strconv.FormatInt(result.SuggestedQuantity, 10),
			result.SuggestedOrderDate,
			result.Urgency,
			formatFloat(result.LeadTimeDemand),
			formatFloat(result.ReorderPoint),
			strconv.FormatInt(result.DaysUntilStockout, 10),
			strconv.FormatBool(result.ForecastShortfall),
			result.Reasoning,
		},
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeJSON(v any, filename string, config Config) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	return emit(filename, config, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, string(jsonData))
		return err
	})
}

func writeCSV(rows [][]string, filename string, config Config) error {
	return emit(filename, config, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.WriteAll(rows); err != nil {
			return fmt.Errorf("failed to write CSV: %w", err)
		}
		return nil
	})
}

// emit writes to config's writer, or to filename inside OutputDir when set
func emit(filename string, config Config, write func(io.Writer) error) error {
	if config.OutputDir == "" {
		return write(config.writer())
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(config.OutputDir, filename)
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	if config.Verbose {
		fmt.Fprintf(config.writer(), "💾 Results saved to: %s\n", path)
	}
	return nil
}
