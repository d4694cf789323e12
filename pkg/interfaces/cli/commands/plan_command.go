package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vsinha/restock/pkg/application/dto"
	"github.com/vsinha/restock/pkg/domain/services/restock"
	"github.com/vsinha/restock/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/restock/pkg/interfaces/cli/output"
)

// PlanConfig holds configuration for the plan command
type PlanConfig struct {
	ProductID    string
	CurrentStock int64
	LeadTimeDays int64
	SafetyStock  int64
	Forecast     []float64
	ForecastFile string
}

// PlanCommand decides a reorder from a stock position and a forecast
type PlanCommand struct {
	global *GlobalOptions
	config PlanConfig
	out    io.Writer
}

// NewPlanCommand creates a new plan command
func NewPlanCommand(global *GlobalOptions, config PlanConfig, out io.Writer) *PlanCommand {
	return &PlanCommand{global: global, config: config, out: out}
}

func newPlanCmd(global *GlobalOptions) *cobra.Command {
	var config PlanConfig
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Decide whether, how much and when to reorder",
		Example: `  restock plan --stock 0 --lead-time 7 --safety 5 --forecast 10,10,10,10,10,10,10
  restock plan --stock 40 --lead-time 7 --safety 5 --forecast-file out/forecast.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewPlanCommand(global, config, cmd.OutOrStdout()).Execute(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&config.ProductID, "product-id", "", "Product identifier echoed in the result")
	cmd.Flags().Int64Var(&config.CurrentStock, "stock", 0, "Units currently on hand")
	cmd.Flags().Int64Var(&config.LeadTimeDays, "lead-time", 0, "Supplier lead time in days")
	cmd.Flags().Int64Var(&config.SafetyStock, "safety", 0, "Safety stock in units")
	cmd.Flags().Float64SliceVar(&config.Forecast, "forecast", nil, "Daily forecast, comma separated, starting tomorrow")
	cmd.Flags().StringVar(&config.ForecastFile, "forecast-file", "", "Forecast CSV with a yhat column")
	cmd.MarkFlagsMutuallyExclusive("forecast", "forecast-file")
	return cmd
}

// Execute runs the plan command
func (c *PlanCommand) Execute(ctx context.Context) error {
	rt, err := c.global.loadRuntime(ctx, os.Stderr, nil)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	defer rt.Close(ctx)

	forecast := c.config.Forecast
	if c.config.ForecastFile != "" {
		forecast, err = csv.NewLoader().LoadForecast(c.config.ForecastFile)
		if err != nil {
			return fmt.Errorf("error loading forecast: %w", err)
		}
	}

	decision, err := rt.service.CalculateRestock(ctx, restock.PlanInput{
		CurrentStock: c.config.CurrentStock,
		LeadTimeDays: c.config.LeadTimeDays,
		SafetyStock:  c.config.SafetyStock,
		Forecast:     forecast,
	})
	if err != nil {
		return err
	}

	return output.Restock(dto.NewRestockResponse(c.config.ProductID, decision), c.global.output(c.out))
}
