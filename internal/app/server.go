package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// healthHandler answers liveness probes.
func (app *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	app.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// StartMetricsServer serves /metrics and /health on the configured address.
// It returns the bound address, which differs from the configured one when
// the port is 0.
func (app *App) StartMetricsServer() (string, error) {
	if app.config.MetricsAddr == "" {
		app.logger.Debug("Metrics server not started: disabled")
		return "", nil
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", app.healthHandler)
	mux.Handle("/metrics", promhttp.HandlerFor(app.metricsReg, promhttp.HandlerOpts{}))

	ln, err := net.Listen("tcp", app.config.MetricsAddr)
	if err != nil {
		return "", fmt.Errorf("metrics server: %w", err)
	}

	app.httpServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		app.logger.Info("Metrics server starting", "address", ln.Addr().String())
		// Serve returns ErrServerClosed on graceful shutdown.
		if err := app.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error("Metrics server failed unexpectedly", "error", err)
		}
	}()
	return ln.Addr().String(), nil
}

func (app *App) closeMetricsServer() error {
	if app.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	app.logger.Debug("Shutting down metrics server...")
	if err := app.httpServer.Shutdown(ctx); err != nil {
		app.logger.Error("Metrics server shutdown failed", "error", err)
		return err
	}
	app.httpServer = nil
	return nil
}
