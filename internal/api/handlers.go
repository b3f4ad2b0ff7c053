package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"stealthcompany.com/patients/internal/patient"
	"stealthcompany.com/patients/internal/records"
)

// Handlers serves the patient endpoints from a record service
type Handlers struct {
	records *records.Service
}

// NewHandlers creates the HTTP handlers for svc
func NewHandlers(svc *records.Service) *Handlers {
	return &Handlers{records: svc}
}

// HelloHandler returns the service banner
func (h *Handlers) HelloHandler(w http.ResponseWriter, r *http.Request) {
	log.Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("remote_addr", r.RemoteAddr).
		Msg("Hello endpoint called")

	writeJSON(w, http.StatusOK, MessageResponse{
		Message: "Patient Management System API",
		Status:  StatusSuccess,
	})
}

// AboutHandler returns a static description
func (h *Handlers) AboutHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, MessageResponse{
		Message: "A fully functional API to manage your patient records",
		Status:  StatusSuccess,
	})
}

// HealthHandler is the liveness probe
func (h *Handlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListPatientsHandler handles GET /patients
func (h *Handlers) ListPatientsHandler(w http.ResponseWriter, r *http.Request) {
	patients, err := h.records.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.Debug().
		Int("count", len(patients)).
		Msg("Listed patients")

	writeJSON(w, http.StatusOK, patients)
}

// GetPatientHandler handles GET /patients/{id}
func (h *Handlers) GetPatientHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	p, err := h.records.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// SortPatientsHandler handles GET /sort?sort_by=&order=
func (h *Handlers) SortPatientsHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	sortBy := query.Get("sort_by")
	order := query.Get("order")

	sorted, err := h.records.Sorted(r.Context(), sortBy, order)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.Debug().
		Str("sort_by", sortBy).
		Str("order", order).
		Int("count", len(sorted)).
		Msg("Sorted patients")

	writeJSON(w, http.StatusOK, sorted)
}

// CreatePatientHandler handles POST /create
func (h *Handlers) CreatePatientHandler(w http.ResponseWriter, r *http.Request) {
	var req patient.NewPatient
	if err := decodeBody(w, r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	p, err := h.records.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, MessageResponse{
		Message: "Patient created successfully",
		Status:  StatusSuccess,
		Patient: &p,
	})
}

// UpdatePatientHandler handles PUT /edit/{id}
func (h *Handlers) UpdatePatientHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req patient.Update
	if err := decodeBody(w, r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	p, err := h.records.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{
		Message: "Patient details updated successfully",
		Status:  StatusSuccess,
		Patient: &p,
	})
}

// DeletePatientHandler handles DELETE /patient/{id}
func (h *Handlers) DeletePatientHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.records.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{
		Message: "Patient deleted successfully",
		Status:  StatusSuccess,
	})
}
