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
package meal

import (
	"bytes"
	"net/http"

	"MealAPI/internal/v0/common"

	"github.com/gin-gonic/gin"
)

// Query parameters accepted by the meal endpoints
const (
	QuerySchoolName = "school_name"
	QueryMealType   = "meal_type"
)

// Handler holds the Service used by the meal routes
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetMeals lists today's meals, optionally narrowed to one slot
func (h *Handler) GetMeals(c *gin.Context) {
	var mealType MealType
	if raw := c.Query(QueryMealType); raw != "" {
		parsed, err := ParseMealType(raw)
		if err != nil {
			common.RespondError(c, err)
			return
		}
		mealType = parsed
	}

	records, err := h.service.GetMeals(c.Request.Context(), c.Query(QuerySchoolName), mealType)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	common.RespondSuccess(c, http.StatusOK, records)
}

func (h *Handler) GetSchool(c *gin.Context) {
	school, err := h.service.ResolveSchool(c.Request.Context(), c.Query(QuerySchoolName))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	common.RespondSuccess(c, http.StatusOK, school)
}

// GetImage streams the meal card as PNG
func (h *Handler) GetImage(c *gin.Context) {
	mealType, err := ParseMealType(c.Query(QueryMealType))
	if err != nil {
		common.RespondError(c, err)
		return
	}

	img, err := h.service.RenderMealImage(c.Request.Context(), c.Query(QuerySchoolName), mealType)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	// Encode fully before writing so a failure can still become a JSON error
	var buf bytes.Buffer
	if err := img.EncodePNG(&buf); err != nil {
		common.RespondError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
