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
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"MealAPI/internal/v0/meal"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleRecords() []meal.MealRecord {
	return []meal.MealRecord{
		{Date: "20251015", Type: meal.Lunch, Calories: "712.4 Kcal", Dishes: []string{"밥", "국", "김치"}},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"YAML", FormatYAML, false},
		{" yaml ", FormatYAML, false},
		{"table", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteValueJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeValue(&buf, FormatJSON, sampleRecords()))

	assert.JSONEq(t,
		`[{"date":"20251015","type":"중식","calories":"712.4 Kcal","meals":["밥","국","김치"]}]`,
		buf.String())
}

func TestWriteValueYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeValue(&buf, FormatYAML, sampleRecords()))

	// dates must stay strings
	assert.Contains(t, buf.String(), `date: "20251015"`)

	var got []meal.MealRecord
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	if diff := cmp.Diff(sampleRecords(), got); diff != "" {
		t.Errorf("YAML round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meals.json")

	w, closeFn, err := openOutput(path)
	require.NoError(t, err)
	require.NoError(t, writeValue(w, FormatJSON, sampleRecords()))
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"date": "20251015"`)
}

func TestOpenOutputStdout(t *testing.T) {
	w, closeFn, err := openOutput("  ")
	require.NoError(t, err)
	assert.Equal(t, os.Stdout, w)
	assert.NoError(t, closeFn())
}
