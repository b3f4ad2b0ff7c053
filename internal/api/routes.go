package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"stealthcompany.com/patients/internal/metrics"
)

// NewServerHandler returns the router wrapped in request logging and HTTP
// metrics. The wrappers sit outside mux so unmatched requests reach them too.
func NewServerHandler(h *Handlers) http.Handler {
	return RequestLogger(metrics.MetricsMiddleware(SetupRoutes(h)))
}

// SetupRoutes configures and returns the HTTP router
func SetupRoutes(h *Handlers) *mux.Router {
	r := mux.NewRouter()
	r.Use(metrics.TagRoute)

	r.HandleFunc("/", h.HelloHandler).Methods(http.MethodGet)
	r.HandleFunc("/about", h.AboutHandler).Methods(http.MethodGet)
	r.HandleFunc("/health", h.HealthHandler).Methods(http.MethodGet)

	// Patient endpoints
	r.HandleFunc("/patients", h.ListPatientsHandler).Methods(http.MethodGet)
	r.HandleFunc("/patients/{id}", h.GetPatientHandler).Methods(http.MethodGet)
	r.HandleFunc("/sort", h.SortPatientsHandler).Methods(http.MethodGet)
	r.HandleFunc("/create", h.CreatePatientHandler).Methods(http.MethodPost)
	r.HandleFunc("/edit/{id}", h.UpdatePatientHandler).Methods(http.MethodPut)
	r.HandleFunc("/patient/{id}", h.DeletePatientHandler).Methods(http.MethodDelete)

	// Prometheus metrics endpoint
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	return r
}
