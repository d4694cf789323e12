package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/vsinha/restock/pkg/infrastructure/metrics"
	"github.com/vsinha/restock/pkg/interfaces/httpapi"
)

// ServeConfig holds configuration for the serve command
type ServeConfig struct {
	// Addr overrides server.addr when set
	Addr string
}

// ServeCommand runs the planning HTTP API
type ServeCommand struct {
	global *GlobalOptions
	config ServeConfig
}

// NewServeCommand creates a new serve command
func NewServeCommand(global *GlobalOptions, config ServeConfig) *ServeCommand {
	return &ServeCommand{global: global, config: config}
}

func newServeCmd(global *GlobalOptions) *cobra.Command {
	var config ServeConfig
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the forecast, demand and restock HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewServeCommand(global, config).Execute(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&config.Addr, "addr", "", "Listen address (default from config)")
	return cmd
}

// Execute runs the server until SIGINT or SIGTERM
func (c *ServeCommand) Execute(ctx context.Context) error {
	recorder := metrics.NewRecorder()
	rt, err := c.global.loadRuntime(ctx, os.Stderr, recorder)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	defer rt.Close(context.WithoutCancel(ctx))

	serverCfg := rt.cfg.Server
	if c.config.Addr != "" {
		serverCfg.Addr = c.config.Addr
	}

	if !c.global.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	rt.logger.Info("starting restock API",
		"addr", serverCfg.Addr,
		"model", rt.service.Model(),
		"default_horizon_days", rt.service.DefaultHorizon(),
		"traces", rt.cfg.Telemetry.Traces,
		"metrics", rt.cfg.Telemetry.Metrics,
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	router := httpapi.NewRouter(rt.service,
		httpapi.WithRecorder(recorder),
		httpapi.WithEventStore(rt.events),
		httpapi.WithLogger(rt.logger),
	)
	return httpapi.NewServer(serverCfg, router, rt.logger).Run(ctx)
}
