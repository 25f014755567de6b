package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mcpadapter "mediasweep/internal/adapters/mcp"
	"mediasweep/internal/bootstrap"
	"mediasweep/internal/config"
	"mediasweep/internal/logging"
)

func main() {
	configFlag := flag.String("config", "", "path to the config file")
	flag.Parse()

	load := config.Load
	if *configFlag != "" {
		load = func() (*config.Config, error) { return config.LoadFile(*configFlag) }
	}
	cfg, err := load()
	if err != nil {
		logging.Fatal().Err(err).Msg("mediasweep-mcp: failed to load configuration")
	}
	bootstrap.InitLogging(cfg)

	rt, err := bootstrap.Open(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("mediasweep-mcp: failed to open services")
	}
	defer rt.Close()

	if cfg.Metrics.Addr != "" {
		metricsServer := serveMetrics(cfg.Metrics.Addr)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsServer.Shutdown(ctx)
		}()
	}

	mcpServer := server.NewMCPServer(
		"mediasweep-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	mcpadapter.RegisterReadTools(mcpServer, rt.Services)
	mcpadapter.RegisterWriteTools(mcpServer, rt.Services, mcpadapter.ScanOptions{
		Workers: cfg.Scan.Workers,
		Timeout: cfg.Scan.Timeout,
	})

	if err := server.ServeStdio(mcpServer); err != nil {
		logging.Error().Err(err).Msg("mediasweep-mcp: server stopped")
	}
}

// serveMetrics exposes the Prometheus registry on addr in the background
func serveMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Str("addr", addr).Msg("metrics listener stopped")
		}
	}()
	logging.Info().Str("addr", addr).Msg("serving metrics")
	return srv
}
