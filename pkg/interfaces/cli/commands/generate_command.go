package commands

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/vsinha/restock/pkg/domain/calendar"
)

// GenerateConfig holds configuration for scenario generation
type GenerateConfig struct {
	SKUs      int     // Number of products to generate
	Days      int     // Days of sales history per product
	Start     string  // First day of history, YYYY-MM-DD
	Inventory float64 // Stock multiplier over lead-time demand (e.g., 0.5 = half coverage, 4.0 = 4x coverage)
	OutputDir string  // Output directory for generated files
	Seed      int64   // Random seed for reproducible generation
	Verbose   bool    // Verbose output
}

// GenerateCommand writes a synthetic products.csv and sales.csv
type GenerateCommand struct {
	config GenerateConfig
	rand   *rand.Rand
	out    io.Writer
}

// NewGenerateCommand creates a new generate command
func NewGenerateCommand(config GenerateConfig, out io.Writer) *GenerateCommand {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &GenerateCommand{
		config: config,
		rand:   rand.New(rand.NewSource(seed)),
		out:    out,
	}
}

func newGenerateCmd(global *GlobalOptions) *cobra.Command {
	config := GenerateConfig{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a synthetic products.csv and sales.csv scenario",
		Example: `  restock generate --skus 5 --days 90 --output ./scenario
  restock generate --skus 50 --days 730 --inventory 0.8 --seed 12345 --output ./large_scenario`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config.OutputDir = global.OutputDir
			config.Verbose = global.Verbose
			return NewGenerateCommand(config, cmd.OutOrStdout()).Execute(cmd.Context())
		},
	}
	cmd.Flags().IntVar(&config.SKUs, "skus", 5, "Number of products to generate")
	cmd.Flags().IntVar(&config.Days, "days", 90, "Days of sales history per product")
	cmd.Flags().StringVar(&config.Start, "start", "2024-01-01", "First day of history")
	cmd.Flags().Float64Var(&config.Inventory, "inventory", 1.0, "Stock multiplier over lead-time demand")
	cmd.Flags().Int64Var(&config.Seed, "seed", 0, "Random seed for reproducible generation")
	return cmd
}

// productProfile is the demand shape drawn for one generated SKU
type productProfile struct {
	SKU          string
	Description  string
	Base         float64 // mean weekday units at the start of history
	WeekendLift  float64 // multiplier applied on Saturdays and Sundays
	DailyGrowth  float64 // relative trend per day
	Noise        float64 // relative standard deviation of daily noise
	LeadTimeDays int
	SafetyStock  int
	CurrentStock int
}

// Execute runs the generate command
func (cmd *GenerateCommand) Execute(ctx context.Context) error {
	if err := cmd.validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	start, err := calendar.Parse(cmd.config.Start)
	if err != nil {
		return fmt.Errorf("invalid --start: %w", err)
	}

	if cmd.config.Verbose {
		fmt.Fprintf(cmd.out,
			"🔧 Generating scenario with %d SKUs, %d days of history, %.1fx inventory\n",
			cmd.config.SKUs,
			cmd.config.Days,
			cmd.config.Inventory,
		)
		fmt.Fprintf(cmd.out, "📁 Output directory: %s\n", cmd.config.OutputDir)
		fmt.Fprintf(cmd.out, "🎲 Random seed: %d\n", cmd.config.Seed)
	}

	if err := os.MkdirAll(cmd.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	profiles := make([]productProfile, cmd.config.SKUs)
	for i := range profiles {
		profiles[i] = cmd.generateProfile(i)
	}

	if cmd.config.Verbose {
		fmt.Fprintln(cmd.out, "📈 Generating sales.csv...")
	}
	if err := cmd.generateSales(ctx, profiles, start); err != nil {
		return fmt.Errorf("failed to generate sales: %w", err)
	}

	if cmd.config.Verbose {
		fmt.Fprintln(cmd.out, "📦 Generating products.csv...")
	}
	if err := cmd.generateProducts(profiles); err != nil {
		return fmt.Errorf("failed to generate products: %w", err)
	}

	if cmd.config.Verbose {
		fmt.Fprintf(cmd.out, "✅ Scenario generated successfully in %s\n", cmd.config.OutputDir)
	}
	return nil
}

func (cmd *GenerateCommand) validate() error {
	if cmd.config.OutputDir == "" {
		return fmt.Errorf("--output is required")
	}
	if cmd.config.SKUs < 1 {
		return fmt.Errorf("--skus must be positive, got %d", cmd.config.SKUs)
	}
	if cmd.config.Days < 1 {
		return fmt.Errorf("--days must be positive, got %d", cmd.config.Days)
	}
	if cmd.config.Inventory < 0 {
		return fmt.Errorf("--inventory cannot be negative, got %g", cmd.config.Inventory)
	}
	return nil
}

// generateProfile draws a demand shape and stock position for SKU i
func (cmd *GenerateCommand) generateProfile(i int) productProfile {
	categories := []string{"T-shirt", "Mug", "Tote bag", "Sticker pack", "Notebook", "Candle"}
	category := categories[cmd.rand.Intn(len(categories))]

	p := productProfile{
		SKU:          fmt.Sprintf("SKU_%04d", i+1),
		Description:  fmt.Sprintf("%s #%d", category, i+1),
		Base:         2 + cmd.rand.Float64()*28,         // 2-30 units
		WeekendLift:  1 + cmd.rand.Float64()*0.8,        // up to +80% on weekends
		DailyGrowth:  -0.002 + cmd.rand.Float64()*0.006, // -0.2% to +0.4% a day
		Noise:        0.05 + cmd.rand.Float64()*0.35,    // 5-40%
		LeadTimeDays: 3 + cmd.rand.Intn(28),             // 3-30 days
	}
	p.SafetyStock = int(math.Round(p.Base * float64(1+cmd.rand.Intn(5))))
	p.CurrentStock = int(math.Round(p.Base * float64(p.LeadTimeDays) * cmd.config.Inventory))
	return p
}

// dailyDemand draws the units sold on a given day of history
func (cmd *GenerateCommand) dailyDemand(p productProfile, day int, date calendar.Date) float64 {
	level := p.Base * math.Pow(1+p.DailyGrowth, float64(day))
	if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
		level *= p.WeekendLift
	}
	qty := level * (1 + cmd.rand.NormFloat64()*p.Noise)
	return math.Max(0, math.Round(qty))
}

func (cmd *GenerateCommand) generateSales(ctx context.Context, profiles []productProfile, start calendar.Date) error {
	return cmd.writeCSV("sales.csv", func(w *csv.Writer) error {
		if err := w.Write([]string{"sku", "date", "qty"}); err != nil {
			return err
		}
		for _, p := range profiles {
			if err := ctx.Err(); err != nil {
				return err
			}
			for day := 0; day < cmd.config.Days; day++ {
				date := start.AddDays(day)
				qty := cmd.dailyDemand(p, day, date)
				if err := w.Write([]string{p.SKU, date.String(), strconv.FormatFloat(qty, 'f', -1, 64)}); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (cmd *GenerateCommand) generateProducts(profiles []productProfile) error {
	return cmd.writeCSV("products.csv", func(w *csv.Writer) error {
		if err := w.Write([]string{"sku", "description", "current_stock", "lead_time_days", "safety_stock"}); err != nil {
			return err
		}
		for _, p := range profiles {
			record := []string{
				p.SKU,
				p.Description,
				strconv.Itoa(p.CurrentStock),
				strconv.Itoa(p.LeadTimeDays),
				strconv.Itoa(p.SafetyStock),
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
		return nil
	})
}

func (cmd *GenerateCommand) writeCSV(name string, write func(*csv.Writer) error) error {
	filePath := filepath.Join(cmd.config.OutputDir, name)
	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := write(w); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
