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
	"regexp"
	"strings"

	"MealAPI/internal/neis"
)

// dishSeparator is the line break NEIS embeds in DDISH_NM
const dishSeparator = "<br/>"

// annotation matches a parenthesised suffix such as allergen codes "(5.6.13)"
// together with the whitespace before it.
var annotation = regexp.MustCompile(`\s*\([^)]*\)`)

// ParseDishes splits a raw DDISH_NM value into dish names in serving order.
// Annotations are removed and every entry is trimmed. The result always has at
// least one entry; empty input yields a single empty name.
func ParseDishes(raw string) []string {
	fragments := strings.Split(raw, dishSeparator)
	dishes := make([]string, 0, len(fragments))
	for _, fragment := range fragments {
		dishes = append(dishes, strings.TrimSpace(annotation.ReplaceAllString(fragment, "")))
	}
	return dishes
}

// filterByType keeps the rows whose slot label equals t exactly. An empty t
// keeps every row. Order is preserved.
func filterByType(rows []neis.MealRow, t MealType) []neis.MealRow {
	if t == "" {
		return rows
	}
	kept := make([]neis.MealRow, 0, len(rows))
	for _, row := range rows {
		if row.MealName == string(t) {
			kept = append(kept, row)
		}
	}
	return kept
}
