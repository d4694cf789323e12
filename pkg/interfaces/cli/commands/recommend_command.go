package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vsinha/restock/pkg/application/dto"
	"github.com/vsinha/restock/pkg/application/services"
	"github.com/vsinha/restock/pkg/application/services/orchestration"
	"github.com/vsinha/restock/pkg/domain/entities"
	"github.com/vsinha/restock/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/restock/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/restock/pkg/interfaces/cli/output"
)

// RecommendConfig holds configuration for the recommend command. Stock
// parameters come from ProductsFile when it is set, otherwise from the flags.
type RecommendConfig struct {
	SKU          string
	HistoryFile  string
	ProductsFile string
	CurrentStock int64
	LeadTimeDays int64
	SafetyStock  int64
	Horizon      int
}

// RecommendCommand runs forecast, demand analysis and restock planning for one SKU
type RecommendCommand struct {
	global *GlobalOptions
	config RecommendConfig
	out    io.Writer
}

// NewRecommendCommand creates a new recommend command
func NewRecommendCommand(global *GlobalOptions, config RecommendConfig, out io.Writer) *RecommendCommand {
	return &RecommendCommand{global: global, config: config, out: out}
}

func newRecommendCmd(global *GlobalOptions) *cobra.Command {
	var config RecommendConfig
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Forecast, analyze and plan a reorder for one SKU",
		Example: `  restock recommend --history sales.csv --stock 40 --lead-time 7 --safety 5
  restock recommend --sku TSHIRT-M --history sales.csv --products products.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewRecommendCommand(global, config, cmd.OutOrStdout()).Execute(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&config.SKU, "sku", "", "SKU to plan")
	cmd.Flags().StringVar(&config.HistoryFile, "history", "", "Sales history CSV (sku,date,qty or date,qty)")
	cmd.Flags().StringVar(&config.ProductsFile, "products", "", "Products CSV (sku,description,current_stock,lead_time_days,safety_stock)")
	cmd.Flags().Int64Var(&config.CurrentStock, "stock", 0, "Units currently on hand")
	cmd.Flags().Int64Var(&config.LeadTimeDays, "lead-time", 0, "Supplier lead time in days")
	cmd.Flags().Int64Var(&config.SafetyStock, "safety", 0, "Safety stock in units")
	cmd.Flags().IntVar(&config.Horizon, "horizon", 0, "Days to forecast (default from config, at least the lead time)")
	return cmd
}

// Execute runs the recommend command
func (c *RecommendCommand) Execute(ctx context.Context) error {
	rt, err := c.global.loadRuntime(ctx, os.Stderr, nil)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	defer rt.Close(ctx)

	sku, salesRepo, err := loadHistory(c.config.HistoryFile, entities.SKU(c.config.SKU))
	if err != nil {
		return err
	}

	var rec *services.Recommendation
	if c.config.ProductsFile != "" {
		rec, err = c.fromProducts(ctx, rt.service, sku, salesRepo)
	} else {
		rec, err = c.fromFlags(ctx, rt.service, sku, salesRepo)
	}
	if err != nil {
		return err
	}

	return output.Recommendation(&dto.RecommendResponse{
		Forecast: dto.NewForecastResponse(rec.Forecast),
		Demand:   dto.NewDemandAnalysisResponse(rec.Demand),
		Restock:  dto.NewRestockResponse(string(sku), rec.Restock),
	}, c.global.output(c.out))
}

func (c *RecommendCommand) fromProducts(ctx context.Context, svc *services.PlanningService, sku entities.SKU, salesRepo *memory.SalesRepository) (*services.Recommendation, error) {
	products, err := csv.NewLoader().LoadProducts(c.config.ProductsFile)
	if err != nil {
		return nil, fmt.Errorf("error loading products: %w", err)
	}

	productRepo := memory.NewProductRepository(len(products))
	if err := productRepo.LoadProducts(products); err != nil {
		return nil, fmt.Errorf("failed to load products into repository: %w", err)
	}

	orchestrator := orchestration.NewPlanningOrchestrator(svc, productRepo, salesRepo)
	result, err := orchestrator.RunPlanning(ctx, sku, c.config.Horizon)
	if err != nil {
		return nil, err
	}

	if c.global.Verbose {
		fmt.Fprintln(os.Stderr, result.GetSummary())
	}
	return result.Recommendation, nil
}

func (c *RecommendCommand) fromFlags(ctx context.Context, svc *services.PlanningService, sku entities.SKU, salesRepo *memory.SalesRepository) (*services.Recommendation, error) {
	history, err := salesRepo.GetSalesHistory(sku)
	if err != nil {
		return nil, err
	}

	return svc.Recommend(ctx, services.RecommendInput{
		SKU:          sku,
		History:      history,
		CurrentStock: c.config.CurrentStock,
		LeadTimeDays: c.config.LeadTimeDays,
		SafetyStock:  c.config.SafetyStock,
		HorizonDays:  c.config.Horizon,
	})
}
