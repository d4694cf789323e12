package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vsinha/restock/pkg/application/services"
	"github.com/vsinha/restock/pkg/domain/services/demand"
	"github.com/vsinha/restock/pkg/domain/services/forecast"
	"github.com/vsinha/restock/pkg/domain/services/restock"
	"github.com/vsinha/restock/pkg/infrastructure/config"
	"github.com/vsinha/restock/pkg/infrastructure/eventbus"
	"github.com/vsinha/restock/pkg/infrastructure/metrics"
	"github.com/vsinha/restock/pkg/infrastructure/telemetry"
	"github.com/vsinha/restock/pkg/interfaces/cli/output"
)

// GlobalOptions holds the flags shared by every command
type GlobalOptions struct {
	ConfigPath string
	EnvFiles   []string
	Advanced   bool
	// AdvancedSet is true when --advanced was given and overrides the config
	AdvancedSet bool
	Verbose     bool
	Format      string
	OutputDir   string
}

// NewRootCommand builds the restock command tree
func NewRootCommand() *cobra.Command {
	opts := &GlobalOptions{}

	root := &cobra.Command{
		Use:   "restock",
		Short: "Demand forecasting and reorder decisions for e-commerce inventory",
		Long: `restock forecasts daily demand from sales history, profiles its
volatility and weekday seasonality, and decides whether, how much and
when to reorder.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.AdvancedSet = cmd.Flags().Changed("advanced")
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "Path to YAML config file")
	flags.StringSliceVar(&opts.EnvFiles, "env-file", []string{".env"}, "Env files to load before RESTOCK_* variables")
	flags.BoolVar(&opts.Advanced, "advanced", false, "Enable or disable the advanced forecast model, overriding the config")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "Enable verbose output")
	flags.StringVar(&opts.Format, "format", "text", "Output format: text, json, csv")
	flags.StringVar(&opts.OutputDir, "output", "", "Output directory for results (optional)")

	root.AddCommand(
		newForecastCmd(opts),
		newAnalyzeCmd(opts),
		newPlanCmd(opts),
		newRecommendCmd(opts),
		newServeCmd(opts),
		newGenerateCmd(opts),
		newConfigCmd(),
	)
	return root
}

// runtime is what a command needs to call the planning service
type runtime struct {
	cfg       *config.Config
	logger    *slog.Logger
	service   *services.PlanningService
	events    *eventbus.InMemoryEventStore
	telemetry *telemetry.Providers
}

// loadRuntime reads configuration and wires the planning service. Planning
// events go through an event store that the log observer, and the recorder
// when given, subscribe to. The recorder's registry also receives the otel
// metrics when telemetry.metrics is prometheus.
func (o *GlobalOptions) loadRuntime(ctx context.Context, logOut io.Writer, recorder *metrics.Recorder) (*runtime, error) {
	cfg, err := config.Load(o.ConfigPath, o.EnvFiles...)
	if err != nil {
		return nil, err
	}
	if o.AdvancedSet {
		cfg.Forecast.AdvancedEnabled = o.Advanced
	}
	if o.Verbose {
		cfg.Log.Level = "debug"
	}

	logger := cfg.Log.NewLogger(logOut)

	store := eventbus.NewInMemoryEventStore(eventbus.DefaultCapacity)
	store.Subscribe(eventbus.NewLogObserver(logger))

	telemetryOpts := []telemetry.Option{telemetry.WithTraceWriter(logOut), telemetry.WithGlobal()}
	if recorder != nil {
		store.Subscribe(recorder)
		telemetryOpts = append(telemetryOpts, telemetry.WithRegisterer(recorder.Registry()))
	}
	providers, err := telemetry.Setup(ctx, cfg.Telemetry, telemetryOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to set up telemetry: %w", err)
	}

	engine := forecast.NewEngine(cfg.Capabilities(),
		forecast.WithObserver(store),
		forecast.WithAdvancedOptions(cfg.Forecast.Advanced),
	)
	svc := services.NewPlanningService(
		engine,
		demand.NewAnalyzer(demand.WithObserver(store)),
		restock.NewPlanner(restock.WithObserver(store)),
		services.WithDefaultHorizon(cfg.Forecast.DefaultHorizonDays),
		services.WithLogger(logger),
		services.WithTracerProvider(providers.TracerProvider),
		services.WithMeterProvider(providers.MeterProvider),
	)

	return &runtime{cfg: cfg, logger: logger, service: svc, events: store, telemetry: providers}, nil
}

// Close flushes telemetry
func (rt *runtime) Close(ctx context.Context) {
	if err := rt.telemetry.Shutdown(ctx); err != nil {
		rt.logger.Warn("telemetry shutdown failed", "error", err)
	}
}

func (o *GlobalOptions) output(w io.Writer) output.Config {
	return output.Config{
		Format:    o.Format,
		OutputDir: o.OutputDir,
		Verbose:   o.Verbose,
		Writer:    w,
	}
}
