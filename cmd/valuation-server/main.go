package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goliatone/go-valuation/internal/config"
	"github.com/goliatone/go-valuation/internal/httpapi"
	"github.com/goliatone/go-valuation/internal/logging"
	"github.com/goliatone/go-valuation/pkg/client"
	"github.com/goliatone/go-valuation/pkg/contract"
)

const shutdownTimeout = 10 * time.Second

func main() {
	envFile := flag.String("env", "", "dotenv file to load (default .env)")
	addr := flag.String("addr", "", "listen address, overrides HTTP_ADDR")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("load configuration: %v", err)
	}
	if *addr != "" {
		cfg.HTTPAddr = *addr
	}

	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

func run(cfg *config.Config) error {
	logOpts := logging.Options{Writer: os.Stderr, Level: cfg.Log.Level, Format: cfg.Log.Format}
	if cfg.FluentBit.Enabled {
		logOpts.Fluent = &logging.FluentOptions{
			Host:      cfg.FluentBit.Host,
			Port:      cfg.FluentBit.Port,
			TagPrefix: cfg.FluentBit.Tag,
			Level:     cfg.FluentBit.Level,
		}
	}
	logger, closeLogs, err := logging.New(logOpts)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() {
		if err := closeLogs(); err != nil {
			fmt.Fprintf(os.Stderr, "close fluent client: %v\n", err)
		}
	}()
	logger = logger.With(slog.String("service_name", cfg.AppName))

	var spec *contract.Contract
	if cfg.ValidateContract {
		spec = contract.Default()
	}

	api, err := httpapi.New(
		httpapi.WithClient(client.New(
			client.WithBaseURL(cfg.APIURL),
			client.WithTimeout(cfg.Timeout),
			client.WithContract(spec),
			client.WithLogger(logger),
		)),
		httpapi.WithContract(spec),
		httpapi.WithLogger(logger),
		httpapi.WithLocale(cfg.Locale),
		httpapi.WithAllowedOrigins(cfg.CORSOrigins...),
	)
	if err != nil {
		return fmt.Errorf("init http api: %w", err)
	}
	defer api.Close()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("valuation server listening", slog.String("addr", srv.Addr), slog.String("api_url", cfg.APIURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case sig := <-quit:
		logger.Info("shutting down", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("valuation server stopped")
	return nil
}
