package api

import "stealthcompany.com/patients/internal/patient"

// Response Types
type MessageResponse struct {
	Message string           `json:"message"`
	Status  string           `json:"status"`
	Patient *patient.Patient `json:"patient,omitempty"`
}

type ErrorResponse struct {
	Error   string               `json:"error"`
	Details []patient.FieldError `json:"details,omitempty"`
}

// Constants
const (
	StatusSuccess = "success"

	// maxBodyBytes caps request bodies on create and edit
	maxBodyBytes = 1 << 20
)
