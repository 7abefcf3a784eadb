// Command example-server serves a small greeting API wired with injector.
//
// Settings are read from the environment and an optional .env file; see
// package config for the recognized variables.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fcagreatgoals/injector"
	"github.com/fcagreatgoals/injector/config"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := cfg.Logger(os.Stderr)

	opts := append(cfg.ContainerOptions(os.Stderr), injector.WithMetadata(injector.NewMetadata()))
	c := injector.New(opts...)

	greeting := os.Getenv("GREETING")
	if greeting == "" {
		greeting = "Hello"
	}

	if err := c.Install(appModule(logger, greeting)); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(c),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr, "container", c.ID())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			_ = c.Destroy()
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return errors.Join(srv.Shutdown(shutdownCtx), c.Shutdown(shutdownCtx))
}
