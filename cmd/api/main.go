//This project is the school meal backend API. It resolves schools and serves the daily cafeteria menu compiled from the NEIS open data service.
//API Copyright (C) 2025 OpenSourceDUTH
//This program is free software: you can redistribute it and/or modify
//it under the terms of the GNU General Public License as published by
//the Free Software Foundation, either version 3 of the License, or
//(at your option) any later version.
//
//This program is distributed in the hope that it will be useful,
//but WITHOUT ANY WARRANTY; without even the implied warranty of
//MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
//GNU General Public License for more details.
//
//You should have received a copy of the GNU General Public License
//along with this program.  If not, see <https://www.gnu.org/licenses/>.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"MealAPI/internal/card"
	"MealAPI/internal/common"
	"MealAPI/internal/config"
	"MealAPI/internal/logging"
	"MealAPI/internal/metrics"
	"MealAPI/internal/middleware"
	"MealAPI/internal/neis"
	"MealAPI/internal/v0/meal"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	name    = "meal-api"
	version = "v0"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logging.SetDefaultStructuredLogger(name, version, cfg.LogLevel)

	if err := run(cfg); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	if cfg.Card.FontPath == "" {
		slog.Warn("CARD_FONT_PATH not set, meal cards use the embedded font without Hangul glyphs")
	}
	composer, err := card.NewComposer(cfg.Card.FontPath)
	if err != nil {
		return err
	}

	client := neis.NewClient(cfg.NEIS.APIKey,
		neis.WithBaseURL(cfg.NEIS.BaseURL),
		neis.WithTimeout(cfg.NEIS.Timeout),
		neis.WithRateLimit(cfg.NEIS.RateLimit, cfg.NEIS.RateBurst),
	)
	mealHandler := meal.NewHandler(meal.NewService(client, composer, meal.WithLocation(cfg.Location)))

	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Metrics(),
		middleware.Logger(),
	)

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Global routes
	global := router.Group("/api")
	common.RegisterRoutes(global)

	// v0 API routes
	v0Group := router.Group("/api/v0")
	v0Group.Use(middleware.RateLimit(rate.NewLimiter(cfg.Server.RateLimit, cfg.Server.RateLimitBurst)))
	{
		meal.RegisterRoutes(v0Group, mealHandler)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ErrorLog:          logging.NewLogLogger(slog.LevelError),
	}

	// Graceful shutdown handling
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting server",
			"address", srv.Addr,
			"timezone", cfg.Location.String(),
			"neisRateLimit", float64(cfg.NEIS.RateLimit),
			"rateLimit", float64(cfg.Server.RateLimit),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	slog.Info("server stopped gracefully")
	return nil
}
