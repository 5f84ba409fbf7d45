package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/detentlabs/detent"
	"github.com/detentlabs/detent/internal/cli"
	"github.com/detentlabs/detent/internal/config"
	"github.com/detentlabs/detent/internal/logging"
	httpadapter "github.com/detentlabs/detent/pkg/adapters/http"
	"github.com/detentlabs/detent/pkg/adapters/yamldef"
	"github.com/detentlabs/detent/pkg/fsm"
	"github.com/detentlabs/detent/pkg/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the stateless HTTP server",
	Long: `Starts the machine in stateless server mode, exposing a JSON API over
HTTP. Callers own the state: every request names the state to dispatch
from and gets the resulting state back. Listen address, metrics path, log
level and shutdown timeout come from DETENT_* environment variables.`,
	Run: func(cmd *cobra.Command, args []string) {
		file := definitionPath(cmd, args)

		cfg, err := config.LoadServe()
		if err != nil {
			fmt.Printf("Error loading configuration: %v\n", err)
			os.Exit(1)
		}

		logger := logging.NewJSON(logging.ParseLevel(cfg.LogLevel))

		def, err := yamldef.Load(file)
		if err != nil {
			fmt.Printf("Error loading machine: %v\n", err)
			os.Exit(1)
		}
		name := cli.MachineName(def, file)

		machine, err := cli.BuildMachine(def, logger, observability.Listener[string, string, map[string]any](name))
		if err != nil {
			fmt.Printf("Error building machine: %v\n", err)
			os.Exit(1)
		}

		router := chi.NewRouter()
		router.Handle(cfg.MetricsPath, promhttp.Handler())
		router.Mount("/", httpadapter.NewHandler(meteredEngine{machine, name}, detent.Version))

		srv := &http.Server{
			Addr:    cfg.Addr,
			Handler: router,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Detent Server on %s\n", srv.Addr)
			fmt.Printf("Serving machine '%s' from %s\n", name, file)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			// Error when starting HTTP server.
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()

			// Asking listener to shut down and shed load.
			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", cfg.ShutdownTimeout, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Detent Server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// meteredEngine decorates every dispatch with prometheus observations. The
// transition and error counters ride on the machine's listener; the
// per-request outcome counter and latency histogram live here, where the
// dispatch is bracketed.
type meteredEngine struct {
	*cli.Machine
	name string
}

func (m meteredEngine) FireWithResult(state, event string, ctx map[string]any) fsm.Result[string] {
	start := time.Now()
	res := m.Machine.FireWithResult(state, event, ctx)
	observability.ObserveDuration(m.name, time.Since(start))
	observability.ObserveResult(m.name, res)
	return res
}
