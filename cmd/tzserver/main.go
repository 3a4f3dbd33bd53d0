// Package main implements the tzapi web server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codeGROOVE-dev/tzapi/pkg/api"
	"github.com/codeGROOVE-dev/tzapi/pkg/constants"
	"github.com/codeGROOVE-dev/tzapi/pkg/tzconvert"
)

var (
	port        = flag.String("port", "", "Port for web server (or set PORT, default "+constants.DefaultPort+")")
	metricsAddr = flag.String("metrics-addr", "", "Address for the Prometheus listener, e.g. :9090 (or set METRICS_ADDR); off when empty")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")
	version     = flag.Bool("version", false, "Show version")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Println("tzapi server v1.0.0")
		return
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *port == "" {
		*port = os.Getenv("PORT")
		if *port == "" {
			*port = constants.DefaultPort
		}
	}
	if *metricsAddr == "" {
		*metricsAddr = os.Getenv("METRICS_ADDR")
	}

	logger.Info("Server configuration",
		"port", *port,
		"metrics_addr", *metricsAddr,
		"verbose", *verbose)

	server := api.New(tzconvert.New(), logger)

	srv := &http.Server{
		Addr:              ":" + *port,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	var metricsSrv *http.Server
	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("GET /metrics", server.MetricsHandler())
		metricsSrv = &http.Server{
			Addr:              *metricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("Metrics listener starting", "addr", *metricsAddr)
			if err := metricsSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics listener failed", "error", err)
			}
		}()
	}

	go func() {
		logger.Info("Server starting", "port", *port)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Shutdown failed", "error", err)
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logger.Error("Metrics shutdown failed", "error", err)
		}
	}
	logger.Info("Server stopped")
}
