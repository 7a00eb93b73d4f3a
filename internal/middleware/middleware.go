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
package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"MealAPI/internal/metrics"
	"MealAPI/internal/v0/common"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	// Headers
	HeaderRequestID          = "X-Request-Id"
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
	HeaderRetryAfter         = "Retry-After"

	unmatchedPath = "unmatched"
)

// RequestID propagates a caller supplied X-Request-Id when it is a valid UUID
// and generates one otherwise
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.New().String()
		}

		c.Set(common.ContextKeyRequestID, requestID)
		c.Header(HeaderRequestID, requestID)
		c.Next()
	}
}

// RateLimit rejects requests once the shared token bucket is empty. An
// infinite limiter lets everything through without rate limit headers.
func RateLimit(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter.Limit() == rate.Inf {
			c.Next()
			return
		}
		c.Header(HeaderRateLimitLimit, strconv.Itoa(int(limiter.Limit())))
		c.Header(HeaderRateLimitReset, strconv.FormatInt(time.Now().Add(time.Second).Unix(), 10))

		if !limiter.Allow() {
			metrics.RateLimitRejects.Inc()
			c.Header(HeaderRateLimitRemaining, "0")
			c.Header(HeaderRetryAfter, "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				common.CreateErrorResponseWithRequestID([]string{"rate limit exceeded"}, common.RequestID(c)))
			return
		}

		remaining := int(limiter.Tokens())
		if remaining < 0 {
			remaining = 0
		}
		c.Header(HeaderRateLimitRemaining, strconv.Itoa(remaining))
		c.Next()
	}
}

// Metrics records request counts and latency per route template
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = unmatchedPath
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// Logger writes one structured access log line per request
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		slog.Log(c.Request.Context(), level, "request completed",
			"requestID", common.RequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"bytes", c.Writer.Size(),
			"duration", time.Since(start).String(),
			"clientIP", c.ClientIP(),
		)
	}
}

// Recovery turns handler panics into an enveloped 500
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		metrics.PanicRecoveries.Inc()
		slog.Error("panic recovered",
			"error", fmt.Sprintf("%v", recovered),
			"requestID", common.RequestID(c),
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			common.CreateErrorResponseWithRequestID([]string{"internal server error"}, common.RequestID(c)))
	})
}
