package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittobank/internal/adminapi"
	"github.com/marmos91/dittobank/internal/bank"
	"github.com/marmos91/dittobank/internal/logger"
	"github.com/marmos91/dittobank/internal/server"
	"github.com/marmos91/dittobank/pkg/config"
	"github.com/marmos91/dittobank/pkg/metrics"
	promMetrics "github.com/marmos91/dittobank/pkg/metrics/prometheus"
)

var (
	startBind     string
	startPort     int
	startLossReq  float64
	startLossRep  float64
	startLossSeed int64
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the DittoBank server",
	Long: `Start the DittoBank UDP server with the specified configuration.

Flags override the corresponding configuration values, which makes loss
experiments easy to run without editing the config file.

Examples:
  # Start with the default config
  dittobank start

  # Start on a different port
  dittobank start --port 9999

  # Drop 30% of replies to provoke client retries
  dittobank start --loss-rep 0.3

  # Reproducible loss sequence
  dittobank start --loss-req 0.2 --loss-seed 42

  # Environment variable overrides
  DITTOBANK_LOGGING_LEVEL=DEBUG dittobank start`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().StringVar(&startBind, "bind", "", "address to bind the UDP socket to (overrides config)")
	startCmd.Flags().IntVar(&startPort, "port", 0, "UDP port to listen on (overrides config)")
	startCmd.Flags().Float64Var(&startLossReq, "loss-req", 0, "probability [0,1) of dropping an inbound request (overrides config)")
	startCmd.Flags().Float64Var(&startLossRep, "loss-rep", 0, "probability [0,1) of dropping an outbound reply (overrides config)")
	startCmd.Flags().Int64Var(&startLossSeed, "loss-seed", 0, "loss RNG seed, 0 seeds from the clock (overrides config)")
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}
	if err := applyStartOverrides(cmd, cfg); err != nil {
		return err
	}

	// Initialize the structured logger
	if err := InitLogger(cfg); err != nil {
		return err
	}

	// Create cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("configuration loaded", "source", getConfigSource(GetConfigFile()))

	// Initialize metrics before the server so the Prometheus
	// implementation can register its collectors.
	var serverMetrics metrics.ServerMetrics
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		serverMetrics = promMetrics.NewServerMetrics()
		logger.Info("metrics enabled")
	} else {
		logger.Info("metrics collection disabled")
	}

	vault := bank.New()
	srv := server.New(server.Config{
		Bind:       cfg.Server.Bind,
		Port:       cfg.Server.Port,
		LossReq:    cfg.Server.LossReq,
		LossRep:    cfg.Server.LossRep,
		LossSeed:   cfg.Server.LossSeed,
		DedupTTL:   cfg.Server.DedupTTL,
		ReadBuffer: cfg.Server.ReadBuffer.Int(),
	}, vault, serverMetrics)

	// Start the datagram loop in background
	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Serve(ctx)
	}()

	// Start the admin HTTP listener, if enabled
	var admin *adminapi.Server
	adminDone := make(chan error, 1)
	if cfg.Admin.Enabled {
		admin = adminapi.New(adminapi.Config{
			Bind: cfg.Admin.Bind,
			Port: cfg.Admin.Port,
		}, srv, vault)
		go func() {
			adminDone <- admin.Start(ctx)
		}()
	} else {
		logger.Info("admin listener disabled")
	}

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("server is running, press Ctrl+C to stop")

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("shutdown signal received, initiating graceful shutdown")
		cancel()

		// Admin listener drains first, then the datagram loop.
		if admin != nil {
			if err := <-adminDone; err != nil {
				logger.Error("admin listener shutdown error", logger.Err(err))
			}
		}
		if err := <-serverDone; err != nil {
			logger.Error("server shutdown error", logger.Err(err))
			return err
		}
		logShutdownSummary(srv)
		logger.Info("server stopped gracefully")

	case err := <-serverDone:
		signal.Stop(sigChan)
		cancel()
		if admin != nil {
			<-adminDone
		}
		if err != nil {
			logger.Error("server error", logger.Err(err))
			return err
		}
		logShutdownSummary(srv)
		logger.Info("server stopped")

	case err := <-adminDone:
		// Bind failures on the admin port surface here.
		signal.Stop(sigChan)
		cancel()
		<-serverDone
		if err != nil {
			logger.Error("admin listener error", logger.Err(err))
			return err
		}
		logShutdownSummary(srv)
	}

	return nil
}

// applyStartOverrides copies changed start flags over the loaded
// configuration and re-validates the result.
func applyStartOverrides(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("bind") {
		cfg.Server.Bind = startBind
	}
	if flags.Changed("port") {
		cfg.Server.Port = startPort
	}
	if flags.Changed("loss-req") {
		cfg.Server.LossReq = startLossReq
	}
	if flags.Changed("loss-rep") {
		cfg.Server.LossRep = startLossRep
	}
	if flags.Changed("loss-seed") {
		cfg.Server.LossSeed = startLossSeed
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid flag overrides: %w", err)
	}
	return nil
}

// logShutdownSummary reports the final counters so a loss experiment's
// numbers survive in the log after the process exits.
func logShutdownSummary(srv *server.Server) {
	stats := srv.Stats()
	logger.Info("final request summary",
		"requests_received", stats.RequestsReceived,
		"replies_sent", stats.RepliesSent,
		"requests_dropped", stats.RequestsDropped,
		"replies_dropped", stats.RepliesDropped,
		"dedup_hits", stats.DedupHits,
		"callbacks_sent", stats.CallbacksSent,
		"bad_datagrams", stats.BadDatagrams,
		"accounts", stats.Accounts,
	)
}
