package httputil

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the body of every error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse acknowledges operations without a resource body
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// RespondJSON writes a JSON response with the given status code.
// It marshals first so an encoding failure never leaves a partial body.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		RespondError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}

// RespondError writes {"error": message}
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondErrorWithDetails(w, status, message, "")
}

// RespondErrorWithDetails adds a details field when details is non-empty
func RespondErrorWithDetails(w http.ResponseWriter, status int, message, details string) {
	payload, err := json.Marshal(ErrorResponse{Error: message, Details: details})
	if err != nil {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("internal server error"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}

// RespondSuccess writes {"success": true, "message": message} with 200
func RespondSuccess(w http.ResponseWriter, message string) {
	RespondJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: message})
}
