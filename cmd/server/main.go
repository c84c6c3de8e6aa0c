package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"hr-timer/internal/api"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if lvl := strings.TrimSpace(os.Getenv("LOG_LEVEL")); lvl != "" {
		parsed, err := logrus.ParseLevel(lvl)
		if err != nil {
			logrus.Fatalf("parse LOG_LEVEL: %v", err)
		}
		logrus.SetLevel(parsed)
	}

	cfg := api.Config{
		SourceName: os.Getenv("TIMER_SOURCE"),
	}
	if interval := os.Getenv("TIMER_STREAM_INTERVAL"); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil {
			cfg.StreamInterval = d
		} else {
			logrus.WithError(err).Warn("ignore TIMER_STREAM_INTERVAL")
		}
	}
	if origins := strings.TrimSpace(os.Getenv("TIMER_ALLOWED_ORIGINS")); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
			}
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "2000"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, ":"+port, cfg)
	stop()
	if err != nil {
		logrus.Fatalf("server exited: %v", err)
	}
	logrus.Info("server stopped")
}

// run serves the timer API on addr until ctx is done, then shuts down.
func run(ctx context.Context, addr string, cfg api.Config) error {
	server, err := api.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}
	router, err := server.Router()
	if err != nil {
		return fmt.Errorf("configure router: %w", err)
	}

	streamCtx, cancelStream := context.WithCancel(ctx)
	defer cancelStream()
	go server.Stream(streamCtx)

	srv := &http.Server{Addr: addr, Handler: router}
	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("starting hr-timer server on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logrus.Info("shutting down hr-timer server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}
