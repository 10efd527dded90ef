package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"local-library/configs"
	"local-library/internal/handlers"
	"local-library/internal/middleware"
)

// serve runs the HTTP server until SIGINT or SIGTERM, then gives in-flight
// requests 10 seconds to finish.
func serve(cfg configs.Config, logger *slog.Logger, deps handlers.Deps) error {
	var extra []mux.MiddlewareFunc
	if cfg.RateLimited() {
		extra = append(extra, handlers.RateLimit(deps, middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)))
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handlers.NewRouter(deps, extra...),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	shutdownErr := make(chan error)
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit
		logger.Info("shutting down server", slog.String("signal", s.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		shutdownErr <- server.Shutdown(ctx)
	}()

	logger.Info("starting server", slog.String("address", server.Addr), slog.String("env", cfg.Env))
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if err := <-shutdownErr; err != nil {
		return err
	}

	logger.Info("server stopped", slog.String("address", server.Addr))
	return nil
}
