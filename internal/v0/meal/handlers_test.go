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
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"MealAPI/internal/card"
	"MealAPI/internal/neis"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	hubSchoolBody = `{"schoolInfo":[
 {"head":[{"list_total_count":1},{"RESULT":{"CODE":"INFO-000","MESSAGE":"정상 처리되었습니다."}}]},
 {"row":[{"ATPT_OFCDC_SC_CODE":"B10","SD_SCHUL_CODE":"7010536","SCHUL_NM":"서울고등학교"}]}
]}`
	hubMealBody = `{"mealServiceDietInfo":[
 {"head":[{"list_total_count":3},{"RESULT":{"CODE":"INFO-000","MESSAGE":"정상 처리되었습니다."}}]},
 {"row":[
  {"MMEAL_SC_NM":"조식","MLSV_YMD":"20251015","CAL_INFO":"500.1 Kcal","DDISH_NM":"토스트(1.2)<br/>우유(2)"},
  {"MMEAL_SC_NM":"중식","MLSV_YMD":"20251015","CAL_INFO":"712.4 Kcal","DDISH_NM":"밥<br/>국<br/>김치(5)"},
  {"MMEAL_SC_NM":"석식","MLSV_YMD":"20251015","CAL_INFO":"650.0 Kcal","DDISH_NM":"김치찌개(5.6.13)"}
 ]}
]}`
	hubNoData = `{"RESULT":{"CODE":"INFO-200","MESSAGE":"해당하는 데이터가 없습니다."}}`
)

// fakeHub serves the two NEIS services. Setting mealBody changes the meal feed.
type fakeHub struct {
	schoolBody string
	mealBody   string
	requests   atomic.Int32

	mu       sync.Mutex
	lastMeal url.Values
}

func (h *fakeHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.requests.Add(1)
	w.Header().Set("Content-Type", "application/json;charset=UTF-8")
	switch r.URL.Path {
	case "/" + neis.ServiceSchoolInfo:
		_, _ = w.Write([]byte(h.schoolBody))
	case "/" + neis.ServiceMealDiet:
		h.mu.Lock()
		h.lastMeal = r.URL.Query()
		h.mu.Unlock()
		_, _ = w.Write([]byte(h.mealBody))
	default:
		http.NotFound(w, r)
	}
}

type envelope struct {
	Data     json.RawMessage `json:"data"`
	Errors   []string        `json:"errors"`
	Code     string          `json:"code"`
	Metadata struct {
		RequestID string `json:"requestId"`
	} `json:"metadata"`
}

func newTestRouter(t *testing.T, hub *fakeHub) *gin.Engine {
	t.Helper()
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)

	client := neis.NewClient("test-key", neis.WithBaseURL(srv.URL), neis.WithTimeout(2*time.Second))
	composer, err := card.NewComposer("")
	require.NoError(t, err)

	svc := NewService(client, composer,
		WithClock(func() time.Time { return fixedNow }),
		WithLocation(seoul),
	)

	r := gin.New()
	RegisterRoutes(r.Group("/api/v0"), NewHandler(svc))
	return r
}

func get(t *testing.T, r http.Handler, path string, query url.Values) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path+"?"+query.Encode(), nil))
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func TestGetMealsEndpoint(t *testing.T) {
	hub := &fakeHub{schoolBody: hubSchoolBody, mealBody: hubMealBody}
	r := newTestRouter(t, hub)

	w := get(t, r, "/api/v0/school-meal", url.Values{
		QuerySchoolName: {"서울고등학교"},
		QueryMealType:   {"중식"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	env := decodeEnvelope(t, w)
	assert.Empty(t, env.Errors)

	var got []MealRecord
	require.NoError(t, json.Unmarshal(env.Data, &got))
	want := []MealRecord{{Date: "20251015", Type: Lunch, Calories: "712.4 Kcal", Dishes: []string{"밥", "국", "김치"}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("meals mismatch (-want +got):\n%s", diff)
	}

	hub.mu.Lock()
	defer hub.mu.Unlock()
	assert.Equal(t, "20251015", hub.lastMeal.Get("MLSV_YMD"))
	assert.Equal(t, "B10", hub.lastMeal.Get("ATPT_OFCDC_SC_CODE"))
	assert.Equal(t, "7010536", hub.lastMeal.Get("SD_SCHUL_CODE"))
	assert.Contains(t, w.Body.String(), `"meals":["밥","국","김치"]`)
}

func TestGetMealsEndpointNoService(t *testing.T) {
	r := newTestRouter(t, &fakeHub{schoolBody: hubSchoolBody, mealBody: hubNoData})

	w := get(t, r, "/api/v0/school-meal", url.Values{QuerySchoolName: {"서울고등학교"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `[]`, string(decodeEnvelope(t, w).Data))
}

func TestGetMealsEndpointErrors(t *testing.T) {
	tests := []struct {
		name       string
		hub        *fakeHub
		query      url.Values
		wantStatus int
		wantCode   string
		wantCalls  int32
	}{
		{
			name:       "missing school name",
			hub:        &fakeHub{schoolBody: hubSchoolBody, mealBody: hubMealBody},
			query:      url.Values{},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "unknown meal type",
			hub:        &fakeHub{schoolBody: hubSchoolBody, mealBody: hubMealBody},
			query:      url.Values{QuerySchoolName: {"서울고등학교"}, QueryMealType: {"lunch"}},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "padded meal type",
			hub:        &fakeHub{schoolBody: hubSchoolBody, mealBody: hubMealBody},
			query:      url.Values{QuerySchoolName: {"서울고등학교"}, QueryMealType: {" 중식 "}},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "school not found",
			hub:        &fakeHub{schoolBody: hubNoData, mealBody: hubMealBody},
			query:      url.Values{QuerySchoolName: {"없는학교"}},
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
			wantCalls:  1,
		},
		{
			name:       "invalid key",
			hub:        &fakeHub{schoolBody: `{"RESULT":{"CODE":"ERROR-290","MESSAGE":"인증키가 유효하지 않습니다."}}`},
			query:      url.Values{QuerySchoolName: {"서울고등학교"}},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "UPSTREAM_UNAVAILABLE",
			wantCalls:  1,
		},
		{
			name:       "unexpected payload",
			hub:        &fakeHub{schoolBody: hubSchoolBody, mealBody: `{"something":"else"}`},
			query:      url.Values{QuerySchoolName: {"서울고등학교"}},
			wantStatus: http.StatusBadGateway,
			wantCode:   "SCHEMA_ERROR",
			wantCalls:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t, tt.hub)

			w := get(t, r, "/api/v0/school-meal", tt.query)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			env := decodeEnvelope(t, w)
			assert.Equal(t, tt.wantCode, env.Code)
			assert.Len(t, env.Errors, 1)
			assert.Equal(t, "null", string(env.Data))
			assert.Equal(t, tt.wantCalls, tt.hub.requests.Load())
		})
	}
}

func TestGetMealsEndpointEmptyDishes(t *testing.T) {
	hub := &fakeHub{schoolBody: hubSchoolBody, mealBody: `{"mealServiceDietInfo":[
 {"head":[{"list_total_count":1},{"RESULT":{"CODE":"INFO-000","MESSAGE":"정상 처리되었습니다."}}]},
 {"row":[{"MMEAL_SC_NM":"중식","MLSV_YMD":"20251015","CAL_INFO":"0.0 Kcal","DDISH_NM":""}]}
]}`}
	r := newTestRouter(t, hub)

	w := get(t, r, "/api/v0/school-meal", url.Values{QuerySchoolName: {"서울고등학교"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"meals":[""]`)
}

func TestGetSchoolEndpoint(t *testing.T) {
	r := newTestRouter(t, &fakeHub{schoolBody: hubSchoolBody})

	w := get(t, r, "/api/v0/school-meal/school", url.Values{QuerySchoolName: {"서울고등학교"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t,
		`{"schoolName":"서울고등학교","schoolCode":"7010536","officeCode":"B10"}`,
		string(decodeEnvelope(t, w).Data))
}

func TestGetImageEndpoint(t *testing.T) {
	r := newTestRouter(t, &fakeHub{schoolBody: hubSchoolBody, mealBody: hubMealBody})

	w := get(t, r, "/api/v0/school-meal/image", url.Values{
		QuerySchoolName: {"서울고등학교"},
		QueryMealType:   {"조식"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	img, err := png.Decode(w.Body)
	require.NoError(t, err)
	assert.Equal(t, card.CanvasSize, img.Bounds().Dx())
	assert.Equal(t, card.CanvasSize, img.Bounds().Dy())
}

func TestGetImageEndpointErrors(t *testing.T) {
	t.Run("meal type required", func(t *testing.T) {
		hub := &fakeHub{schoolBody: hubSchoolBody, mealBody: hubMealBody}
		w := get(t, newTestRouter(t, hub), "/api/v0/school-meal/image", url.Values{QuerySchoolName: {"서울고등학교"}})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", decodeEnvelope(t, w).Code)
		assert.Zero(t, hub.requests.Load())
	})

	t.Run("nothing served", func(t *testing.T) {
		hub := &fakeHub{schoolBody: hubSchoolBody, mealBody: hubNoData}
		w := get(t, newTestRouter(t, hub), "/api/v0/school-meal/image", url.Values{
			QuerySchoolName: {"서울고등학교"},
			QueryMealType:   {"석식"},
		})

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "NO_RECORD", decodeEnvelope(t, w).Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	})
}
