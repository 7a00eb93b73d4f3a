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
package common

import (
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	apperr "MealAPI/internal/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextKeyRequestID is the gin context key holding the request id
const ContextKeyRequestID = "request_id"

// Structs for the API response format

type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	RequestID string    `json:"requestId"`
}

type APIResponse struct {
	Data     interface{} `json:"data"`
	Errors   []string    `json:"errors"`
	Code     string      `json:"code,omitempty"`
	Metadata Metadata    `json:"metadata"`
}

// Response functions

func CreateAPIResponse(data interface{}, errors []string, requestID string) APIResponse {
	// If the requestID is blank and not cascading from other functions generate a new one
	if requestID == "" {
		requestID = uuid.New().String()
	}
	return APIResponse{
		Data:   data,
		Errors: errors,
		Metadata: Metadata{
			Timestamp: time.Now(),
			Version:   "v0",
			RequestID: requestID,
		},
	}
}

func CreateSuccessResponseWithRequestID(data interface{}, requestID string) APIResponse {
	return CreateAPIResponse(
		data,
		[]string{},
		requestID,
	)
}

func CreateErrorResponseWithRequestID(errors []string, requestID string) APIResponse {
	return CreateAPIResponse(
		nil,
		errors,
		requestID,
	)
}

// RequestID returns the id assigned by the request id middleware, if any
func RequestID(c *gin.Context) string {
	return c.GetString(ContextKeyRequestID)
}

// StatusFor maps an error code to the HTTP status shown to callers
func StatusFor(code apperr.ErrorCode) int {
	switch code {
	case apperr.ErrCodeValidation:
		return http.StatusBadRequest
	case apperr.ErrCodeNotFound, apperr.ErrCodeNoRecord:
		return http.StatusNotFound
	case apperr.ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	case apperr.ErrCodeSchema:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// RespondSuccess writes data inside the envelope
func RespondSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, CreateSuccessResponseWithRequestID(data, RequestID(c)))
}

// RespondError writes err inside the envelope with the status for its code.
// Internal errors are logged and their detail is not exposed.
func RespondError(c *gin.Context, err error) {
	code := apperr.CodeOf(err)
	status := StatusFor(code)

	message := err.Error()
	var se *apperr.StructuredError
	if stderrors.As(err, &se) {
		message = se.Message
	}
	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"requestID", RequestID(c),
			"path", c.Request.URL.Path,
			"code", string(code),
			"error", err,
		)
		if code == apperr.ErrCodeInternal {
			message = "internal server error"
		}
	}

	response := CreateErrorResponseWithRequestID([]string{message}, RequestID(c))
	response.Code = string(code)
	c.AbortWithStatusJSON(status, response)
}
