package handler

import (
	"net/http"
	"strings"

	"promptvault/internal/domain/models"
	"promptvault/internal/httputil"
)

// caller returns the authenticated identity, answering 401 when the auth
// middleware did not run.
func caller(w http.ResponseWriter, r *http.Request) (*models.Identity, bool) {
	identity := httputil.GetIdentity(r)
	if identity == nil {
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
		return nil, false
	}
	return identity, true
}

// pathID reads and validates a UUID path parameter, answering 400 on
// failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id, err := httputil.PathUUID(r, name)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return id, true
}

// decode parses the JSON body, answering 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := httputil.ParseJSON(w, r, dest); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// enumValue trims and upper-cases an optional enum field so "published"
// and "PUBLISHED" are accepted alike.
func enumValue(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.ToUpper(strings.TrimSpace(*s))
	return &v
}
