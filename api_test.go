package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afrah-create/agro-advisor/advisor-api/appinsightsutils"
	"github.com/afrah-create/agro-advisor/advisor-api/models"
)

// newTestMux wires the full route table against an empty model store, so the
// advisor runs on its builtin defaults.
func newTestMux(t *testing.T) *appinsightsutils.ServeMuxWithTrace {
	t.Helper()
	disk, err := models.NewDiskCache(t.TempDir())
	require.NoError(t, err)
	client := models.NewClient("example/models", "main", "", zerolog.Nop())
	manager := models.NewManager(client, disk, zerolog.Nop())

	mux := appinsightsutils.NewServeMuxWithTrace(nil)
	registerHandlers(mux, nil, manager, time.Minute)
	return mux
}

const analyzeBody = `{
	"soil": {
		"pH": 6.3,
		"organic_matter": 3.5,
		"nitrogen": 90,
		"phosphorus": 30,
		"potassium": 150,
		"texture": "loam",
		"drainage": "good"
	},
	"constraints": {
		"total_area": 2,
		"budget": 5000,
		"labor_availability": 200,
		"water_availability": 1200,
		"fertilizer_nitrogen": 200,
		"fertilizer_phosphorus": 80,
		"fertilizer_potassium": 150
	},
	"objectives": ["maximize_yield", "maximize_profit"]
}`

func TestHello(t *testing.T) {
	mux := newTestMux(t)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "advisory")
}

func TestHealth_DegradedWithoutModels(t *testing.T) {
	mux := newTestMux(t)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var health struct {
		Status string `json:"status"`
		Source string `json:"source"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "degraded", health.Status)
	assert.Equal(t, "builtin", health.Source)
}

func TestHealth_ToleratesUnreadableCacheDir(t *testing.T) {
	dir := t.TempDir()
	disk, err := models.NewDiskCache(dir)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(dir))

	client := models.NewClient("example/models", "main", "", zerolog.Nop())
	manager := models.NewManager(client, disk, zerolog.Nop())
	mux := appinsightsutils.NewServeMuxWithTrace(nil)
	registerHandlers(mux, nil, manager, time.Minute)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var health struct {
		ModelCacheBytes int64 `json:"model_cache_bytes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Zero(t, health.ModelCacheBytes)
}

func TestModelsGet_EmptyStore(t *testing.T) {
	mux := newTestMux(t)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/models", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{}`, w.Body.String())
}

func TestAnalyze(t *testing.T) {
	mux := newTestMux(t)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("POST", "/analyze", strings.NewReader(analyzeBody)))

	require.Equal(t, http.StatusOK, w.Code)

	var response analyzeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.NotEmpty(t, response.ReportID)
	require.NotNil(t, response.Report)
	assert.NotEmpty(t, response.Report.ExecutiveSummary.RecommendedCrops)
	assert.Equal(t, "builtin", response.Report.DetailedAnalysis.Recommendations.Source)
}

func TestAnalyze_BadJSON(t *testing.T) {
	mux := newTestMux(t)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("POST", "/analyze", strings.NewReader("{")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyze_InvalidSoil(t *testing.T) {
	mux := newTestMux(t)
	body := strings.Replace(analyzeBody, `"pH": 6.3`, `"pH": 12`, 1)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("POST", "/analyze", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "pH")
}

func TestReportGet(t *testing.T) {
	mux := newTestMux(t)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("POST", "/analyze", strings.NewReader(analyzeBody)))
	require.Equal(t, http.StatusOK, w.Code)

	var response analyzeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/reports/"+response.ReportID, nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "executive_summary")
}

func TestReportGet_Missing(t *testing.T) {
	mux := newTestMux(t)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/reports/not-a-report", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReportImage_EtagRoundTrip(t *testing.T) {
	mux := newTestMux(t)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("POST", "/analyze", strings.NewReader(analyzeBody)))
	require.Equal(t, http.StatusOK, w.Code)

	var response analyzeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	imagePath := "/reports/" + response.ReportID + "/image"

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", imagePath, nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	etag := w.Header().Get("Etag")
	require.NotEmpty(t, etag)
	assert.NotEmpty(t, w.Body.Bytes())

	request := httptest.NewRequest("GET", imagePath, nil)
	request.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, request)

	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Empty(t, w.Body.Bytes())
}

func TestReportImage_MissingReport(t *testing.T) {
	mux := newTestMux(t)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/reports/nope/image", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
