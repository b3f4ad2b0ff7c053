package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"stealthcompany.com/patients/internal/patient"
)

// writeJSON encodes body before touching the status line, so an encode
// failure still reaches the client as a 500.
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		log.Error().Err(err).Int("status", status).Msg("Failed to encode response")
		buf.Reset()
		buf.WriteString(`{"error":"internal error"}` + "\n")
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Error().Err(err).Msg("Failed to write response")
	}
}

// writeError maps an operation error onto its HTTP status
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *patient.ValidationError
	status := http.StatusInternalServerError
	resp := ErrorResponse{Error: err.Error()}

	switch {
	case errors.As(err, &verr):
		status = http.StatusUnprocessableEntity
		resp.Error = "validation failed"
		resp.Details = verr.Fields
	case errors.Is(err, patient.ErrNotFound):
		status = http.StatusNotFound
		resp.Error = "Patient not found"
	case errors.Is(err, patient.ErrConflict):
		status = http.StatusBadRequest
		resp.Error = "Patient already exists"
	case errors.Is(err, patient.ErrBadQuery):
		status = http.StatusNotFound
	case errors.Is(err, patient.ErrStorageUnavailable):
		resp.Error = "storage unavailable"
	default:
		resp.Error = "internal error"
	}

	logger := zerolog.Ctx(r.Context())
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.
		Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Msg("Request failed")

	writeJSON(w, status, resp)
}

var (
	// errMalformedBody marks a body that is not a single JSON value
	errMalformedBody = errors.New("invalid JSON format")
	errBodyTooLarge  = errors.New("request body too large")
)

// decodeBody reads exactly one JSON value into dst. Type mismatches become
// validation errors naming the field; syntax errors and trailing data are
// errMalformedBody; oversized bodies are errBodyTooLarge.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	err := dec.Decode(dst)
	if err == nil {
		if _, err = dec.Token(); errors.Is(err, io.EOF) {
			return nil
		}
		if tooLarge(err) {
			return errBodyTooLarge
		}
		return fmt.Errorf("%w: trailing data after JSON value", errMalformedBody)
	}

	if tooLarge(err) {
		return errBodyTooLarge
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return patient.NewTypeError(typeErr.Field, jsonTypeName(typeErr.Type.String()))
	}
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: empty body", errMalformedBody)
	}
	return fmt.Errorf("%w: %v", errMalformedBody, err)
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func jsonTypeName(goType string) string {
	switch goType {
	case "int":
		return "integer"
	case "float64":
		return "number"
	case "string", "patient.Gender":
		return "string"
	default:
		return goType
	}
}

// writeDecodeError answers a body that decodeBody could not turn into a value.
// Validation errors from type mismatches fall through to writeError.
func writeDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := 0, ""
	switch {
	case errors.Is(err, errBodyTooLarge):
		status, msg = http.StatusRequestEntityTooLarge, "Request body too large"
	case errors.Is(err, errMalformedBody):
		status, msg = http.StatusBadRequest, "Invalid JSON format"
	default:
		writeError(w, r, err)
		return
	}

	zerolog.Ctx(r.Context()).Warn().
		Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Msg("Failed to decode JSON request")

	writeJSON(w, status, ErrorResponse{Error: msg})
}
