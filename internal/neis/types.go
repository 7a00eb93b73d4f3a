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
package neis

// Result codes reported by NEIS in the RESULT object
const (
	CodeOK     = "INFO-000"
	CodeNoData = "INFO-200"
)

// SchoolRow is one row of the schoolInfo service
type SchoolRow struct {
	OfficeCode string `json:"ATPT_OFCDC_SC_CODE"`
	OfficeName string `json:"ATPT_OFCDC_SC_NM"`
	SchoolCode string `json:"SD_SCHUL_CODE"`
	SchoolName string `json:"SCHUL_NM"`
	SchoolKind string `json:"SCHUL_KND_SC_NM"`
	Address    string `json:"ORG_RDNMA"`
}

// MealRow is one row of the mealServiceDietInfo service.
// Dishes holds the raw DDISH_NM text, entries separated by "<br/>".
type MealRow struct {
	OfficeCode string `json:"ATPT_OFCDC_SC_CODE"`
	SchoolCode string `json:"SD_SCHUL_CODE"`
	SchoolName string `json:"SCHUL_NM"`
	MealCode   string `json:"MMEAL_SC_CODE"`
	MealName   string `json:"MMEAL_SC_NM"`
	Date       string `json:"MLSV_YMD"`
	Dishes     string `json:"DDISH_NM"`
	Origin     string `json:"ORPLC_INFO"`
	Calories   string `json:"CAL_INFO"`
	Nutrition  string `json:"NTR_INFO"`
}

// Result is the status object NEIS attaches to every response
type Result struct {
	Code    string `json:"CODE"`
	Message string `json:"MESSAGE"`
}

type headEntry struct {
	ListTotalCount *int    `json:"list_total_count,omitempty"`
	Result         *Result `json:"RESULT,omitempty"`
}

// section is one element of the service array. NEIS sends the head and the
// rows as two separate elements.
type section[T any] struct {
	Head []headEntry `json:"head"`
	Row  *[]T        `json:"row"`
}
