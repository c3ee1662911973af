package utils

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"rental-backend/internal/apperrors"
)

// JSON writes data as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[HTTP] failed to encode response: %v", err)
	}
}

// ErrorMessage writes a plain error payload with the given status.
func ErrorMessage(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// Error maps a service error onto an HTTP status and payload.
func Error(w http.ResponseWriter, err error) {
	var rb *apperrors.RollbackError
	if errors.As(err, &rb) {
		JSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error":        rb.Error(),
			"cause":        rb.Cause.Error(),
			"failed_steps": rb.FailedSteps,
		})
		return
	}

	switch {
	case apperrors.IsValidation(err):
		ErrorMessage(w, http.StatusBadRequest, err.Error())
	case apperrors.IsNotFound(err):
		ErrorMessage(w, http.StatusNotFound, err.Error())
	case apperrors.IsStateConflict(err):
		ErrorMessage(w, http.StatusConflict, err.Error())
	default:
		var ext *apperrors.ExternalCallError
		if errors.As(err, &ext) {
			ErrorMessage(w, http.StatusBadGateway, err.Error())
			return
		}
		log.Printf("[HTTP] internal error: %v", err)
		ErrorMessage(w, http.StatusInternalServerError, "internal server error")
	}
}
