package appinsightsutils

import "net/http"

// ResponseWriterWithStatusCode records the status code a handler writes so
// the request trace and log line can report it.
type ResponseWriterWithStatusCode struct {
	http.ResponseWriter
	statusCode int
}

// NewResponseWriterWithStatusCode wraps w. Handlers that never call
// WriteHeader are reported as 200.
func NewResponseWriterWithStatusCode(w http.ResponseWriter) *ResponseWriterWithStatusCode {
	return &ResponseWriterWithStatusCode{ResponseWriter: w, statusCode: http.StatusOK}
}

func (w *ResponseWriterWithStatusCode) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *ResponseWriterWithStatusCode) StatusCode() int {
	return w.statusCode
}
