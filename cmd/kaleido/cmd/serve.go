package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	mdwlog "github.com/anemortalkid/kaleido/foundation/core/log"
	"github.com/anemortalkid/kaleido/internal/server"
	"github.com/anemortalkid/kaleido/internal/store"
	"github.com/anemortalkid/kaleido/pkg/core/health"
	"github.com/anemortalkid/kaleido/pkg/core/logging"
)

var (
	serveHost     string
	serveHTTPPort int
	serveGRPCPort int
	serveStore    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the parse service",
	Long: `Starts the WebSocket endpoint (/ws), the health endpoint (/healthz)
and the gRPC ParserService. Stops gracefully on SIGINT or SIGTERM.

Examples:
  kaleido serve
  kaleido serve --host 127.0.0.1 --http-port 8080 --grpc-port 9090`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Listen host (default from config)")
	serveCmd.Flags().IntVar(&serveHTTPPort, "http-port", 0, "WebSocket and health port (default from config)")
	serveCmd.Flags().IntVar(&serveGRPCPort, "grpc-port", 0, "gRPC port (default from config)")
	serveCmd.Flags().BoolVar(&serveStore, "store", false, "Report the unit store in /healthz")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if serveHost != "" {
		appConfig.Server.Host = serveHost
	}
	if serveHTTPPort != 0 {
		appConfig.Server.HTTPPort = serveHTTPPort
	}
	if serveGRPCPort != 0 {
		appConfig.Server.GRPCPort = serveGRPCPort
	}
	if err := appConfig.Validate(); err != nil {
		return err
	}

	engine, err := newEngine()
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Host:            appConfig.Server.Host,
		HTTPPort:        appConfig.Server.HTTPPort,
		GRPCPort:        appConfig.Server.GRPCPort,
		ReadTimeout:     appConfig.Server.ReadTimeout.Duration,
		ShutdownTimeout: appConfig.Server.ShutdownTimeout.Duration,
		CacheSize:       max(appConfig.Server.CacheSize, 0),
		CacheTTL:        appConfig.Server.CacheTTL.Duration,
	}, engine, logging.Wrap(logger, "server"))
	if err != nil {
		return err
	}

	if serveStore || appConfig.Store.Enabled {
		s, err := store.Open(store.Config{Path: appConfig.Store.Path})
		if err != nil {
			return err
		}
		defer s.Close()
		srv.HealthRegistry().Register(health.PingCheck("store", s))
	}

	logger.Info("starting parse service", mdwlog.Fields{
		"http": appConfig.HTTPAddress(),
		"grpc": appConfig.GRPCAddress(),
	})
	return srv.Start(ctx)
}
