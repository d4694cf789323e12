package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vsinha/restock/pkg/application/dto"
	"github.com/vsinha/restock/pkg/domain/entities"
	"github.com/vsinha/restock/pkg/interfaces/cli/output"
)

// ForecastConfig holds configuration for the forecast command
type ForecastConfig struct {
	HistoryFile string
	SKU         string
	Horizon     int
}

// ForecastCommand forecasts daily demand from a sales history file
type ForecastCommand struct {
	global *GlobalOptions
	config ForecastConfig
	out    io.Writer
}

// NewForecastCommand creates a new forecast command
func NewForecastCommand(global *GlobalOptions, config ForecastConfig, out io.Writer) *ForecastCommand {
	return &ForecastCommand{global: global, config: config, out: out}
}

func newForecastCmd(global *GlobalOptions) *cobra.Command {
	var config ForecastConfig
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Forecast daily demand from a sales history CSV",
		Example: `  restock forecast --history sales.csv --horizon 14
  restock forecast --history sales.csv --format csv --output out/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewForecastCommand(global, config, cmd.OutOrStdout()).Execute(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&config.HistoryFile, "history", "", "Sales history CSV (sku,date,qty or date,qty)")
	cmd.Flags().StringVar(&config.SKU, "sku", "", "SKU to forecast when the history holds several")
	cmd.Flags().IntVar(&config.Horizon, "horizon", 0, "Days to forecast (default from config)")
	return cmd
}

// Execute runs the forecast command
func (c *ForecastCommand) Execute(ctx context.Context) error {
	rt, err := c.global.loadRuntime(ctx, os.Stderr, nil)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	defer rt.Close(ctx)

	sku, salesRepo, err := loadHistory(c.config.HistoryFile, entities.SKU(c.config.SKU))
	if err != nil {
		return err
	}
	history, err := salesRepo.GetSalesHistory(sku)
	if err != nil {
		return err
	}

	horizon := c.config.Horizon
	if horizon == 0 {
		horizon = rt.service.DefaultHorizon()
	}

	result, err := rt.service.Forecast(ctx, history, horizon)
	if err != nil {
		return err
	}

	return output.Forecast(dto.NewForecastResponse(result), c.global.output(c.out))
}
