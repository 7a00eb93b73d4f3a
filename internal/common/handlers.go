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
	"net/http"
	"time"

	"MealAPI/internal/card"
	response "MealAPI/internal/v0/common"

	"github.com/gin-gonic/gin"
)

type StatusResponse struct {
	InternalServerLatency string `json:"internal_server_latency"`
	Uptime                string `json:"uptime"`
	CardFont              string `json:"card_font"`
}

// Uptime Logic
var startTime time.Time

func uptime() time.Duration {
	return time.Since(startTime)
}

func init() {
	startTime = time.Now()
}

// Ping Logic
func ping(c *gin.Context) time.Duration {
	start := c.GetTime(ContextKeyReceivedAt)
	if start.IsZero() {
		start = time.Now()
	}
	return time.Since(start)
}

func Status(c *gin.Context) {
	data := StatusResponse{
		InternalServerLatency: ping(c).String(),
		Uptime:                uptime().Truncate(time.Second).String(),
		CardFont:              card.FontName(),
	}
	response.RespondSuccess(c, http.StatusOK, data)
}
