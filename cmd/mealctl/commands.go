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
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"MealAPI/internal/card"
	"MealAPI/internal/config"
	"MealAPI/internal/env"
	"MealAPI/internal/logging"
	"MealAPI/internal/neis"
	"MealAPI/internal/v0/meal"

	"github.com/urfave/cli/v3"
)

// Flags are built per command.

func nameFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "name",
		Aliases:  []string{"n"},
		Usage:    "School name as registered with NEIS",
		Required: true,
	}
}

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Output file path (default: stdout)",
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "format",
		Value: string(FormatJSON),
		Usage: fmt.Sprintf("Output format (supported values: %s, %s)", FormatJSON, FormatYAML),
	}
}

func rootCmd() *cli.Command {
	return &cli.Command{
		Name:                  name,
		Version:               version,
		EnableShellCompletion: true,
		Usage:                 "Look up schools and today's meals from the NEIS open data hub",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "NEIS open data API key",
				Sources: cli.EnvVars(env.EnvNEISAPIKey),
			},
			&cli.StringFlag{
				Name:    "base-url",
				Value:   neis.DefaultBaseURL,
				Usage:   "NEIS hub base URL",
				Sources: cli.EnvVars(env.EnvNEISBaseURL),
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Value:   neis.DefaultTimeout,
				Usage:   "Timeout for each NEIS request",
				Sources: cli.EnvVars(env.EnvNEISTimeout),
			},
			&cli.StringFlag{
				Name:    "timezone",
				Value:   config.DefaultTimezone,
				Usage:   "Time zone used to decide which day is today",
				Sources: cli.EnvVars(env.EnvMealTimezone),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   config.DefaultLogLevel,
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars(env.EnvLogLevel),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logging.SetDefaultStructuredLogger(name, version, cmd.String("log-level"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			schoolCmd(),
			mealsCmd(),
			renderCmd(),
		},
	}
}

func schoolCmd() *cli.Command {
	return &cli.Command{
		Name:  "school",
		Usage: "Resolve a school name to its NEIS codes",
		Flags: []cli.Flag{
			nameFlag(),
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, err := parseFormat(cmd.String("format"))
			if err != nil {
				return err
			}
			svc, err := newService(cmd, nil)
			if err != nil {
				return err
			}

			school, err := svc.ResolveSchool(ctx, cmd.String("name"))
			if err != nil {
				return err
			}
			return write(cmd.String("output"), format, school)
		},
	}
}

func mealsCmd() *cli.Command {
	return &cli.Command{
		Name:  "meals",
		Usage: "List today's meals for a school",
		Flags: []cli.Flag{
			nameFlag(),
			&cli.StringFlag{
				Name:    "type",
				Aliases: []string{"t"},
				Usage:   fmt.Sprintf("Meal slot to keep (%s, %s or %s), all when empty", meal.Breakfast, meal.Lunch, meal.Dinner),
			},
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, err := parseFormat(cmd.String("format"))
			if err != nil {
				return err
			}
			var mealType meal.MealType
			if raw := cmd.String("type"); raw != "" {
				if mealType, err = meal.ParseMealType(raw); err != nil {
					return err
				}
			}
			svc, err := newService(cmd, nil)
			if err != nil {
				return err
			}

			records, err := svc.GetMeals(ctx, cmd.String("name"), mealType)
			if err != nil {
				return err
			}
			return write(cmd.String("output"), format, records)
		},
	}
}

func renderCmd() *cli.Command {
	return &cli.Command{
		Name:  "render",
		Usage: "Render today's meal card as PNG",
		Flags: []cli.Flag{
			nameFlag(),
			&cli.StringFlag{
				Name:     "type",
				Aliases:  []string{"t"},
				Usage:    fmt.Sprintf("Meal slot to render (%s, %s or %s)", meal.Breakfast, meal.Lunch, meal.Dinner),
				Required: true,
			},
			&cli.StringFlag{
				Name:     "out",
				Usage:    "PNG file to write",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "font",
				Usage:   "TTF/OTF font with Hangul glyphs (default: embedded Go font)",
				Sources: cli.EnvVars(env.EnvCardFontPath),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			mealType, err := meal.ParseMealType(cmd.String("type"))
			if err != nil {
				return err
			}
			composer, err := card.NewComposer(cmd.String("font"))
			if err != nil {
				return err
			}
			svc, err := newService(cmd, composer)
			if err != nil {
				return err
			}

			img, err := svc.RenderMealImage(ctx, cmd.String("name"), mealType)
			if err != nil {
				return err
			}

			path := cmd.String("out")
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("failed to create %q: %w", path, err)
			}
			if err := img.EncodePNG(f); err != nil {
				_ = f.Close()
				return fmt.Errorf("failed to encode %q: %w", path, err)
			}
			if err := f.Close(); err != nil {
				return err
			}
			slog.Info("meal card written", "path", path)
			return nil
		},
	}
}

// newService builds the meal service from the global flags. renderer may be
// nil for commands that do not draw cards.
func newService(cmd *cli.Command, renderer meal.Renderer) (*meal.Service, error) {
	apiKey := strings.TrimSpace(cmd.String("api-key"))
	if apiKey == "" {
		return nil, fmt.Errorf("an API key is required, set --api-key or %s", env.EnvNEISAPIKey)
	}
	tz := cmd.String("timezone")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}

	client := neis.NewClient(apiKey,
		neis.WithBaseURL(cmd.String("base-url")),
		neis.WithTimeout(cmd.Duration("timeout")),
	)
	return meal.NewService(client, renderer, meal.WithLocation(loc)), nil
}

func write(path string, format Format, v any) error {
	w, closeFn, err := openOutput(path)
	if err != nil {
		return err
	}
	if err := writeValue(w, format, v); err != nil {
		_ = closeFn()
		return err
	}
	return closeFn()
}
