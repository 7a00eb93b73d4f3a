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

// Package neis is a typed client for the NEIS open data hub
// (https://open.neis.go.kr/hub). Only the first page of each query is read.
package neis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperr "MealAPI/internal/errors"
	"MealAPI/internal/metrics"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://open.neis.go.kr/hub"
	DefaultTimeout = 10 * time.Second

	ServiceSchoolInfo = "schoolInfo"
	ServiceMealDiet   = "mealServiceDietInfo"

	pageIndex = 1
	pageSize  = 100

	// maxBodySize bounds how much of a response is read
	maxBodySize = 4 << 20
)

// Client talks to the NEIS hub. It is safe for concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL overrides the hub URL, mainly for tests
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds every request, including reading the body. The HTTP
// client is copied first so a client shared through WithHTTPClient is left
// untouched.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// WithRateLimit paces outbound requests. A zero limit disables pacing.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(c *Client) {
		if limit <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(limit, burst)
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a client authenticated with apiKey
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchSchools returns the first page of schools whose name matches name.
// An empty slice means NEIS had no match.
func (c *Client) SearchSchools(ctx context.Context, name string) ([]SchoolRow, error) {
	params := url.Values{}
	params.Set("SCHUL_NM", name)
	return fetch[SchoolRow](ctx, c, ServiceSchoolInfo, params)
}

// MealDiet returns the first page of meal rows served by a school on date
// (YYYYMMDD). An empty slice means no meal is served that day.
func (c *Client) MealDiet(ctx context.Context, officeCode, schoolCode, date string) ([]MealRow, error) {
	params := url.Values{}
	params.Set("ATPT_OFCDC_SC_CODE", officeCode)
	params.Set("SD_SCHUL_CODE", schoolCode)
	params.Set("MLSV_YMD", date)
	return fetch[MealRow](ctx, c, ServiceMealDiet, params)
}

func fetch[T any](ctx context.Context, c *Client, service string, params url.Values) ([]T, error) {
	start := time.Now()

	var rows []T
	outcome := metrics.OutcomeUnavailable
	body, err := c.get(ctx, service, params)
	if err == nil {
		rows, outcome, err = decode[T](service, body)
	}

	took := time.Since(start)
	metrics.ObserveUpstream(service, outcome, took)
	c.logger.Debug("neis request",
		"service", service,
		"outcome", outcome,
		"rows", len(rows),
		"duration", took.String(),
	)
	return rows, err
}

// get performs one paced GET against service and returns the response body.
// Every failure is reported as ErrCodeUnavailable.
func (c *Client) get(ctx context.Context, service string, params url.Values) ([]byte, error) {
	errCtx := map[string]any{"service": service}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, apperr.WrapWithContext(apperr.ErrCodeUnavailable, "NEIS request not sent", err, errCtx)
		}
	}

	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set("KEY", c.apiKey)
	query.Set("Type", "json")
	query.Set("pIndex", fmt.Sprint(pageIndex))
	query.Set("pSize", fmt.Sprint(pageSize))

	endpoint := c.baseURL + "/" + service + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperr.WrapWithContext(apperr.ErrCodeUnavailable, "invalid NEIS request", err, errCtx)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.WrapWithContext(apperr.ErrCodeUnavailable, "NEIS request failed", err, errCtx)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errCtx["status"] = resp.StatusCode
		return nil, apperr.NewWithContext(apperr.ErrCodeUnavailable,
			fmt.Sprintf("NEIS responded with HTTP %d", resp.StatusCode), errCtx)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, apperr.WrapWithContext(apperr.ErrCodeUnavailable, "reading NEIS response failed", err, errCtx)
	}
	return body, nil
}

// decode unwraps the NEIS envelope for service and returns its rows together
// with the metrics outcome.
//
// Success:  {"<service>":[{"head":[{"list_total_count":n},{"RESULT":{...}}]},{"row":[...]}]}
// No data:  {"RESULT":{"CODE":"INFO-200","MESSAGE":"..."}}
func decode[T any](service string, body []byte) ([]T, string, error) {
	errCtx := map[string]any{"service": service}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, metrics.OutcomeSchema,
			apperr.WrapWithContext(apperr.ErrCodeSchema, "NEIS response is not a JSON object", err, errCtx)
	}

	raw, ok := envelope[service]
	if !ok {
		resultRaw, hasResult := envelope["RESULT"]
		if !hasResult {
			return nil, metrics.OutcomeSchema,
				apperr.NewWithContext(apperr.ErrCodeSchema, "NEIS response has neither rows nor a result", errCtx)
		}
		var result Result
		if err := json.Unmarshal(resultRaw, &result); err != nil {
			return nil, metrics.OutcomeSchema,
				apperr.WrapWithContext(apperr.ErrCodeSchema, "NEIS result is malformed", err, errCtx)
		}
		return nil, resultOutcome(result), resultError(result, errCtx)
	}

	var sections []section[T]
	if err := json.Unmarshal(raw, &sections); err != nil {
		return nil, metrics.OutcomeSchema,
			apperr.WrapWithContext(apperr.ErrCodeSchema, "NEIS service payload is malformed", err, errCtx)
	}

	var rows []T
	found := false
	for _, sec := range sections {
		for _, h := range sec.Head {
			if h.Result == nil {
				continue
			}
			if err := resultError(*h.Result, errCtx); err != nil {
				return nil, resultOutcome(*h.Result), err
			}
		}
		if sec.Row != nil {
			found = true
			rows = append(rows, *sec.Row...)
		}
	}
	if !found {
		return nil, metrics.OutcomeSchema,
			apperr.NewWithContext(apperr.ErrCodeSchema, "NEIS service payload has no row list", errCtx)
	}
	if len(rows) == 0 {
		return rows, metrics.OutcomeNoData, nil
	}
	return rows, metrics.OutcomeOK, nil
}

// resultError maps a NEIS result code to an error. INFO-000 and INFO-200 are
// not errors; every other code (invalid key, quota, maintenance) means the
// service cannot answer.
func resultError(r Result, errCtx map[string]any) error {
	switch r.Code {
	case CodeOK, CodeNoData:
		return nil
	}
	errCtx["code"] = r.Code
	return apperr.NewWithContext(apperr.ErrCodeUnavailable,
		fmt.Sprintf("NEIS returned %s: %s", r.Code, r.Message), errCtx)
}

func resultOutcome(r Result) string {
	switch r.Code {
	case CodeOK:
		return metrics.OutcomeOK
	case CodeNoData:
		return metrics.OutcomeNoData
	default:
		return metrics.OutcomeUnavailable
	}
}
