package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/mj1618/desktop-harness/internal/metrics"
	"github.com/mj1618/desktop-harness/internal/scenario"
	"github.com/mj1618/desktop-harness/internal/server"
	"github.com/mj1618/desktop-harness/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an MCP server that drives a scenario's scene",
	Long: `Start a Model Context Protocol (MCP) server that builds a scenario's scene
and exposes read, click, move, drag, type, write, scroll, expect, step and
screenshot as tools. The scenario's own steps are not run.

Supported transports:
  stdio             Standard I/O (default, for MCP clients)
  streamable-http   Streamable HTTP transport (for remote agents)

Examples:
  desktop-harness serve --scenario login.yaml
  desktop-harness serve --transport streamable-http --port 8080
  desktop-harness serve --metrics-addr :9090 --cache-ttl 0`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", "stdio", "Transport: stdio, streamable-http")
	serveCmd.Flags().Int("port", 8080, "HTTP port for streamable-http transport")
	serveCmd.Flags().Int("cache-ttl", 500, "Scene cache TTL in milliseconds (0 to disable)")
	serveCmd.Flags().String("scenario", "", "Scenario whose window and scene are built (default: an empty window)")
	serveCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
}

func runServe(cmd *cobra.Command, args []string) error {
	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")
	cacheTTLMs, _ := cmd.Flags().GetInt("cache-ttl")
	path, _ := cmd.Flags().GetString("scenario")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

	cfg := server.Config{
		Name:      "desktop-harness",
		Version:   version.Version,
		Transport: transport,
		Port:      port,
		CacheTTL:  time.Duration(cacheTTLMs) * time.Millisecond,
	}

	script := &scenario.Script{Name: "serve", Window: scenario.WindowSpec{Title: "serve"}}
	if path != "" {
		s, err := scenario.Load(path)
		if err != nil {
			return err
		}
		script = s
	}

	env, tk, err := newEnv()
	if err != nil {
		return err
	}
	defer tk.Stop()

	if metricsAddr != "" {
		exporter, err := metrics.New("harness", nil, metrics.Options{})
		if err != nil {
			return fmt.Errorf("failed to create metrics: %w", err)
		}
		env.Metrics = exporter
		mux := http.NewServeMux()
		mux.Handle("/metrics", exporter.Handler())
		go func() {
			if err := http.ListenAndServe(metricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped", "addr", metricsAddr, "error", err)
			}
		}()
	}

	session, err := scenario.Setup(cmd.Context(), env, script)
	if err != nil {
		return fmt.Errorf("failed to set up scene: %w", err)
	}
	defer session.Close()

	return server.New(session, cfg, logger).Serve(cfg)
}
