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

// Package meal resolves schools against NEIS, turns the daily meal feed into
// clean records and renders the meal card.
package meal

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"MealAPI/internal/card"
	apperr "MealAPI/internal/errors"
	"MealAPI/internal/metrics"
	"MealAPI/internal/neis"
)

// dateLayout is the NEIS MLSV_YMD format
const dateLayout = "20060102"

// Upstream is the part of the NEIS client the service needs
type Upstream interface {
	SearchSchools(ctx context.Context, name string) ([]neis.SchoolRow, error)
	MealDiet(ctx context.Context, officeCode, schoolCode, date string) ([]neis.MealRow, error)
}

// Renderer draws a meal card
type Renderer interface {
	Render(content card.Content) (*card.RenderedImage, error)
}

type Service struct {
	upstream Upstream
	renderer Renderer
	now      func() time.Time
	location *time.Location
	logger   *slog.Logger
}

type Option func(*Service)

// WithClock replaces time.Now, mostly for tests
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLocation sets the zone "today" is computed in
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewService(upstream Upstream, renderer Renderer, opts ...Option) *Service {
	s := &Service{
		upstream: upstream,
		renderer: renderer,
		now:      time.Now,
		location: time.Local,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the current date in the service location as YYYYMMDD
func (s *Service) Today() string {
	return s.now().In(s.location).Format(dateLayout)
}

// ResolveSchool finds the school called name. When several schools match, the
// first one NEIS returns is used.
func (s *Service) ResolveSchool(ctx context.Context, name string) (SchoolIdentity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return SchoolIdentity{}, apperr.New(apperr.ErrCodeValidation, "school name must not be empty")
	}

	rows, err := s.upstream.SearchSchools(ctx, name)
	if err != nil {
		return SchoolIdentity{}, err
	}
	if len(rows) == 0 {
		return SchoolIdentity{}, apperr.NewWithContext(apperr.ErrCodeNotFound,
			"no school matches the given name", map[string]any{"schoolName": name})
	}
	if len(rows) > 1 {
		s.logger.Debug("school name is ambiguous, using first match",
			"schoolName", name,
			"matches", len(rows),
		)
	}
	return newSchoolIdentity(rows[0])
}

// GetMeals returns today's meals for the named school. An empty mealType
// returns every slot. No meal service today is an empty result, not an error.
func (s *Service) GetMeals(ctx context.Context, name string, mealType MealType) ([]MealRecord, error) {
	if mealType != "" && !mealType.IsValid() {
		return nil, invalidMealType(string(mealType))
	}

	school, err := s.ResolveSchool(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.mealsFor(ctx, school, mealType)
}

func (s *Service) mealsFor(ctx context.Context, school SchoolIdentity, mealType MealType) ([]MealRecord, error) {
	date := s.Today()
	rows, err := s.upstream.MealDiet(ctx, school.OfficeCode, school.SchoolCode, date)
	if err != nil {
		return nil, err
	}

	records := make([]MealRecord, 0, len(rows))
	for _, row := range filterByType(rows, mealType) {
		record, err := newMealRecord(row)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	s.logger.Debug("meals loaded",
		"schoolCode", school.SchoolCode,
		"date", date,
		"mealType", string(mealType),
		"records", len(records),
	)
	return records, nil
}

// RenderMealImage draws the card for the first record of mealType served today
func (s *Service) RenderMealImage(ctx context.Context, name string, mealType MealType) (*card.RenderedImage, error) {
	if !mealType.IsValid() {
		return nil, invalidMealType(string(mealType))
	}

	school, err := s.ResolveSchool(ctx, name)
	if err != nil {
		return nil, err
	}
	records, err := s.mealsFor(ctx, school, mealType)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperr.NewWithContext(apperr.ErrCodeNoRecord, "no meal record to render",
			map[string]any{"schoolName": school.Name, "mealType": string(mealType), "date": s.Today()})
	}

	img, err := s.renderer.Render(cardContent(s.now().In(s.location), school, records[0]))
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInternal, "rendering meal card failed", err)
	}
	metrics.CardsRendered.Inc()
	return img, nil
}

func cardContent(at time.Time, school SchoolIdentity, record MealRecord) card.Content {
	content := card.Content{
		RenderedAt: at,
		School:     school.Name,
		Calories:   record.Calories,
		Dishes:     record.Dishes,
	}
	for i, t := range MealTypes {
		content.Slots[i] = string(t)
	}
	return content
}
