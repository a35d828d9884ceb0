package main

import (
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"image/jpeg"
	"net/http"
	"time"

	"github.com/gofrs/uuid"
	"github.com/microsoft/ApplicationInsights-Go/appinsights"
	"github.com/rs/zerolog/log"

	"github.com/afrah-create/agro-advisor/advisor-api/advisor"
	"github.com/afrah-create/agro-advisor/advisor-api/appinsightsutils"
	"github.com/afrah-create/agro-advisor/advisor-api/cache"
	"github.com/afrah-create/agro-advisor/advisor-api/models"
)

type ApiRouter struct {
	telemetryClient appinsights.TelemetryClient
	manager         *models.Manager
	reportCache     *cache.Cache[string, advisor.Report]
}

func NewApiRouter(telemetryClient appinsights.TelemetryClient, manager *models.Manager, reportTTL time.Duration) *ApiRouter {
	if manager == nil {
		panic("manager is required")
	}
	if reportTTL <= 0 {
		reportTTL = 10 * time.Minute
	}
	return &ApiRouter{
		telemetryClient: telemetryClient,
		manager:         manager,
		reportCache:     cache.NewCache[string, advisor.Report](reportTTL),
	}
}

// currentAdvisor builds an advisor from the model store's artifacts, falling
// back to the embedded defaults when artifacts are missing or malformed.
func (api *ApiRouter) currentAdvisor() *advisor.Advisor {
	a, err := advisor.NewFromJSON(api.manager.CropDatabase(), api.manager.RuleConfig())
	if err != nil {
		log.Warn().Err(err).Msg("model artifacts unusable, falling back to builtin defaults")
		a, _ = advisor.NewFromJSON(nil, nil)
	}
	return a
}

func (api *ApiRouter) Hello(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("Not Found"))
		return
	}
	fmt.Fprintf(w, "Agricultural advisory API 🌾")
}

func (api *ApiRouter) HealthGet(w http.ResponseWriter, r *http.Request) {
	loaded, total := api.manager.Counts()
	status := "healthy"
	if total == 0 || loaded < total {
		status = "degraded"
	}
	cacheSize, err := api.manager.CacheSize()
	if err != nil {
		log.Warn().Err(err).Msg("failed to measure model cache size")
	}

	_ = json.NewEncoder(w).Encode(struct {
		Status          string    `json:"status"`
		ModelsLoaded    int       `json:"models_loaded"`
		ModelsTotal     int       `json:"models_total"`
		ModelCacheBytes int64     `json:"model_cache_bytes"`
		Source          string    `json:"source"`
		Timestamp       time.Time `json:"timestamp"`
	}{
		Status:          status,
		ModelsLoaded:    loaded,
		ModelsTotal:     total,
		ModelCacheBytes: cacheSize,
		Source:          api.currentAdvisor().Source(),
		Timestamp:       time.Now().UTC(),
	})
}

func (api *ApiRouter) ModelsGet(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(api.manager.Status())
}

func (api *ApiRouter) ModelsRefresh(w http.ResponseWriter, r *http.Request) {
	if _, err := api.manager.Refresh(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	_ = json.NewEncoder(w).Encode(api.manager.Status())
}

type analyzeRequest struct {
	Soil        advisor.SoilProfile         `json:"soil"`
	Constraints advisor.ResourceConstraints `json:"constraints"`
	Objectives  []string                    `json:"objectives"`
}

type analyzeResponse struct {
	ReportID string          `json:"report_id"`
	Report   *advisor.Report `json:"report"`
}

func (api *ApiRouter) Analyze(w http.ResponseWriter, r *http.Request) {
	var request analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if request.Soil.Location == "" {
		request.Soil.Location = "Uganda"
	}

	report, err := api.currentAdvisor().Analyze(request.Soil, request.Constraints, request.Objectives)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, err := uuid.NewV4()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	reportID := id.String()
	api.reportCache.Set(reportID, report)

	_ = json.NewEncoder(w).Encode(analyzeResponse{
		ReportID: reportID,
		Report:   report,
	})
}

func (api *ApiRouter) ReportGet(w http.ResponseWriter, r *http.Request) {
	report := api.reportCache.Get(r.PathValue("id"))
	if report == nil {
		http.Error(w, "report not found or expired", http.StatusNotFound)
		return
	}
	_ = json.NewEncoder(w).Encode(report)
}

func (api *ApiRouter) trackCacheEvent(cacheHit bool, reason string) {
	appinsightsutils.TrackEvent(api.telemetryClient, "report-image-cache", map[string]string{
		"cache-hit": fmt.Sprintf("%t", cacheHit),
		"reason":    reason,
	})
}

// ReportImageGet renders a report card image. Reports are immutable per id,
// so the ETag is a hash of the report content and an If-None-Match hit skips
// the render entirely.
func (api *ApiRouter) ReportImageGet(w http.ResponseWriter, r *http.Request, telemetry *appinsights.RequestTelemetry) {
	reportID := r.PathValue("id")
	report := api.reportCache.Get(reportID)
	if report == nil {
		http.Error(w, "report not found or expired", http.StatusNotFound)
		return
	}

	etag, err := reportEtag(report)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	telemetry.Properties["Etag"] = etag

	ifNoneMatch := r.Header.Get("If-None-Match")
	if ifNoneMatch != "" {
		telemetry.Properties["If-None-Match"] = ifNoneMatch
		if ifNoneMatch == etag {
			api.trackCacheEvent(true, "etag-match")
			w.Header().Set("Etag", etag)
			w.WriteHeader(http.StatusNotModified)
			return
		}
		api.trackCacheEvent(false, "etag-mismatch")
	} else {
		api.trackCacheEvent(false, "If-None-Match header not set")
	}

	dc, err := drawReportCard(report)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	buf := new(bytes.Buffer)
	if err = dc.EncodeJPG(buf, &jpeg.Options{Quality: 100}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Etag", etag)
	_, _ = w.Write(buf.Bytes())
}

func reportEtag(report *advisor.Report) (string, error) {
	encoded, err := json.Marshal(report)
	if err != nil {
		return "", err
	}
	hash := sha1.New()
	hash.Write(encoded)
	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}
