package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"promptvault/internal/domain"

	"github.com/google/uuid"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 10 << 20

// ParseJSON decodes the request body into dest. Malformed JSON and
// oversized bodies are validation errors.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &domain.ValidationError{Message: "request body too large"}
		}
		return &domain.ValidationError{Message: fmt.Sprintf("invalid JSON: %v", err)}
	}

	return nil
}

// PathUUID reads a path parameter and requires it to be a UUID. The
// canonical lowercase form is returned.
func PathUUID(r *http.Request, name string) (string, error) {
	raw := r.PathValue(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", &domain.ValidationError{Message: fmt.Sprintf("invalid %s: %q is not a valid UUID", name, raw)}
	}
	return id.String(), nil
}

// QueryUUID reads an optional UUID query parameter. Absent or blank
// values return "".
func QueryUUID(r *http.Request, name string) (string, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return "", nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", &domain.ValidationError{Message: fmt.Sprintf("invalid %s: %q is not a valid UUID", name, raw)}
	}
	return id.String(), nil
}

// OptionalUUID validates a present, non-null optional id.
func OptionalUUID(name string, opt OptionalString) (OptionalString, error) {
	if !opt.Present || opt.Value == nil || strings.TrimSpace(*opt.Value) == "" {
		return opt, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*opt.Value))
	if err != nil {
		return opt, &domain.ValidationError{Message: fmt.Sprintf("invalid %s: %q is not a valid UUID", name, *opt.Value)}
	}
	canonical := id.String()
	return OptionalString{Present: true, Value: &canonical}, nil
}

// UUIDPtr validates an optional id given as a plain pointer.
func UUIDPtr(name string, raw *string) (*string, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("invalid %s: %q is not a valid UUID", name, *raw)}
	}
	canonical := id.String()
	return &canonical, nil
}
