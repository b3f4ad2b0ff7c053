package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.statusCode = http.StatusOK
		rw.written = true
	}
	return rw.ResponseWriter.Write(b)
}

const unmatchedEndpoint = "unmatched"

type routeKey struct{}

// routeLabel is filled in by TagRoute once the router has matched.
type routeLabel struct {
	template string
}

// TagRoute is installed on the router with Use. It copies the matched route
// template into the label created by MetricsMiddleware, so patient IDs do
// not become label values.
func TagRoute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if label, ok := r.Context().Value(routeKey{}).(*routeLabel); ok {
			if route := mux.CurrentRoute(r); route != nil {
				if tpl, err := route.GetPathTemplate(); err == nil {
					label.template = tpl
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// MetricsMiddleware records HTTP metrics for all requests. It wraps the whole
// router so 404 and 405 answers are counted under the "unmatched" endpoint.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		IncActiveConnections()
		defer DecActiveConnections()

		label := &routeLabel{template: unmatchedEndpoint}
		r = r.WithContext(context.WithValue(r.Context(), routeKey{}, label))

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		RecordHTTPRequest(r.Method, label.template, rw.statusCode, time.Since(start))
	})
}
