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
	"fmt"
	"slices"
	"strings"

	apperr "MealAPI/internal/errors"
	"MealAPI/internal/neis"
)

// MealType is a meal slot label as NEIS publishes it in MMEAL_SC_NM
type MealType string

const (
	Breakfast MealType = "조식"
	Lunch     MealType = "중식"
	Dinner    MealType = "석식"
)

// MealTypes lists every slot in serving order. The card badge row uses this order.
var MealTypes = [...]MealType{Breakfast, Lunch, Dinner}

// IsValid reports whether t is one of the known slots
func (t MealType) IsValid() bool {
	for _, known := range MealTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseMealType validates a caller supplied slot label. The label must match
// exactly; surrounding whitespace is rejected like any other unknown value.
func ParseMealType(s string) (MealType, error) {
	t := MealType(s)
	if !t.IsValid() {
		return "", invalidMealType(s)
	}
	return t, nil
}

func invalidMealType(s string) error {
	return apperr.NewWithContext(apperr.ErrCodeValidation,
		fmt.Sprintf("meal type must be one of %s, %s or %s", Breakfast, Lunch, Dinner),
		map[string]any{"mealType": s})
}

// SchoolIdentity identifies a school towards NEIS
type SchoolIdentity struct {
	Name       string `json:"schoolName" yaml:"schoolName"`
	SchoolCode string `json:"schoolCode" yaml:"schoolCode"`
	OfficeCode string `json:"officeCode" yaml:"officeCode"`
}

// MealRecord is one served meal with its dishes cleaned up.
type MealRecord struct {
	Date     string   `json:"date" yaml:"date"`
	Type     MealType `json:"type" yaml:"type"`
	Calories string   `json:"calories" yaml:"calories"`
	Dishes   []string `json:"meals" yaml:"meals"`
}

func newSchoolIdentity(row neis.SchoolRow) (SchoolIdentity, error) {
	id := SchoolIdentity{
		Name:       strings.TrimSpace(row.SchoolName),
		SchoolCode: strings.TrimSpace(row.SchoolCode),
		OfficeCode: strings.TrimSpace(row.OfficeCode),
	}
	if err := requireFields(neis.ServiceSchoolInfo, map[string]string{
		"SCHUL_NM":           id.Name,
		"SD_SCHUL_CODE":      id.SchoolCode,
		"ATPT_OFCDC_SC_CODE": id.OfficeCode,
	}); err != nil {
		return SchoolIdentity{}, err
	}
	return id, nil
}

func newMealRecord(row neis.MealRow) (MealRecord, error) {
	if err := requireFields(neis.ServiceMealDiet, map[string]string{
		"MLSV_YMD":    row.Date,
		"MMEAL_SC_NM": row.MealName,
	}); err != nil {
		return MealRecord{}, err
	}
	return MealRecord{
		Date:     row.Date,
		Type:     MealType(row.MealName),
		Calories: row.Calories,
		Dishes:   ParseDishes(row.Dishes),
	}, nil
}

func requireFields(service string, fields map[string]string) error {
	var missing []string
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	slices.Sort(missing)
	return apperr.NewWithContext(apperr.ErrCodeSchema,
		fmt.Sprintf("NEIS row is missing %s", strings.Join(missing, ", ")),
		map[string]any{"service": service, "fields": missing})
}
