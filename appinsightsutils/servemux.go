package appinsightsutils

import (
	"fmt"
	"net/http"
	"time"

	"github.com/microsoft/ApplicationInsights-Go/appinsights"
	"github.com/rs/zerolog/log"
)

// ServeMuxWithTrace wraps http.ServeMux so that every handler emits a request
// log line and, when a telemetry client is configured, request telemetry.
// A nil client disables telemetry without changing handler behaviour.
type ServeMuxWithTrace struct {
	*http.ServeMux
	client appinsights.TelemetryClient
}

func NewServeMuxWithTrace(client appinsights.TelemetryClient) *ServeMuxWithTrace {
	return &ServeMuxWithTrace{
		ServeMux: http.NewServeMux(),
		client:   client,
	}
}

// TODO: wrap Handle()
func (mux *ServeMuxWithTrace) HandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	mux.ServeMux.HandleFunc(pattern, traceHTTPFunc(mux.client, pattern, handler))
}
func (mux *ServeMuxWithTrace) HandleFuncWithContext(pattern string, handler func(http.ResponseWriter, *http.Request, *appinsights.RequestTelemetry)) {
	mux.ServeMux.HandleFunc(pattern, traceHTTPFuncWithContext(mux.client, pattern, handler))
}

// TrackEvent sends a custom event when telemetry is enabled.
func TrackEvent(client appinsights.TelemetryClient, name string, properties map[string]string) {
	if client == nil {
		return
	}
	event := appinsights.NewEventTelemetry(name)
	for key, value := range properties {
		event.Properties[key] = value
	}
	client.Track(event)
}

func traceHTTPFunc(client appinsights.TelemetryClient, name string, fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return traceHTTPFuncWithContext(client, name, func(w http.ResponseWriter, r *http.Request, _ *appinsights.RequestTelemetry) {
		fn(w, r)
	})
}
func traceHTTPFuncWithContext(client appinsights.TelemetryClient, name string, fn func(http.ResponseWriter, *http.Request, *appinsights.RequestTelemetry)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scheme := "https"
		if r.TLS == nil {
			scheme = "http"
		}
		telemetry := appinsights.NewRequestTelemetry(r.Method, fmt.Sprintf("%s://%s%s", scheme, r.Host, r.URL.Path), 0*time.Second, "200")
		startTime := time.Now().UTC()

		wrappedResponseWriter := NewResponseWriterWithStatusCode(w)
		fn(wrappedResponseWriter, r, telemetry)

		duration := time.Since(startTime)
		telemetry.Duration = duration
		telemetry.ResponseCode = fmt.Sprintf("%d", wrappedResponseWriter.StatusCode())
		telemetry.Name = name

		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrappedResponseWriter.StatusCode()).
			Dur("duration", duration).
			Msg("request")

		if client != nil {
			client.Track(telemetry)
		}
	}
}
