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

// AnalyzeConfig holds configuration for the analyze command
type AnalyzeConfig struct {
	HistoryFile string
	SKU         string
}

// AnalyzeCommand profiles demand volatility and weekday seasonality
type AnalyzeCommand struct {
	global *GlobalOptions
	config AnalyzeConfig
	out    io.Writer
}

// NewAnalyzeCommand creates a new analyze command
func NewAnalyzeCommand(global *GlobalOptions, config AnalyzeConfig, out io.Writer) *AnalyzeCommand {
	return &AnalyzeCommand{global: global, config: config, out: out}
}

func newAnalyzeCmd(global *GlobalOptions) *cobra.Command {
	var config AnalyzeConfig
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Profile demand volatility and weekday seasonality",
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewAnalyzeCommand(global, config, cmd.OutOrStdout()).Execute(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&config.HistoryFile, "history", "", "Sales history CSV (sku,date,qty or date,qty)")
	cmd.Flags().StringVar(&config.SKU, "sku", "", "SKU to analyze")
	return cmd
}

// Execute runs the analyze command
func (c *AnalyzeCommand) Execute(ctx context.Context) error {
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

	profile, err := rt.service.AnalyzeDemand(ctx, sku, history)
	if err != nil {
		return err
	}

	return output.Demand(dto.NewDemandAnalysisResponse(profile), c.global.output(c.out))
}
