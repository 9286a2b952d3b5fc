package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"promptvault/internal/domain"
	"promptvault/internal/httputil"
)

// base is embedded by every handler for error reporting.
type base struct {
	logger *slog.Logger
	// debug adds the underlying error to 500 responses
	debug bool
}

// handleError converts domain errors to HTTP responses
func (b base) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) {
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
		return
	}

	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	default:
		b.logger.ErrorContext(r.Context(), "request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
		)
		if b.debug {
			httputil.RespondErrorWithDetails(w, http.StatusInternalServerError, "internal server error", err.Error())
			return
		}
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
