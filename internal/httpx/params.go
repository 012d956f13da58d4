package httpx

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"shareit/internal/apperrors"
	"shareit/internal/models"

	"github.com/go-chi/chi/v5"
)

// UserID reads the caller identity header. Missing or non-numeric values are rejected.
func UserID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.Header.Get(models.UserIDHeader))
	if raw == "" {
		return 0, apperrors.Validation("missing %s header", models.UserIDHeader)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperrors.Validation("invalid %s header %q", models.UserIDHeader, raw)
	}
	return id, nil
}

// OptionalUserID is like UserID but returns nil when the header is absent.
func OptionalUserID(r *http.Request) (*int64, error) {
	if strings.TrimSpace(r.Header.Get(models.UserIDHeader)) == "" {
		return nil, nil
	}
	id, err := UserID(r)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func PathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperrors.Validation("invalid %s %q", name, raw)
	}
	return id, nil
}

// Page reads the from and size query parameters.
func Page(r *http.Request) (*models.Page, error) {
	from, err := optionalInt(r, "from")
	if err != nil {
		return nil, err
	}
	size, err := optionalInt(r, "size")
	if err != nil {
		return nil, err
	}
	return models.NewPage(from, size)
}

// State reads the state query parameter. Absent means ALL.
func State(r *http.Request) (models.State, error) {
	return models.ParseState(r.URL.Query().Get("state"))
}

func Bool(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperrors.Validation("invalid %s %q", name, raw)
	}
	return v, nil
}

func DecodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.Validation("invalid JSON body: %v", err)
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func optionalInt(r *http.Request, name string) (*int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperrors.Validation("invalid %s %q", name, raw)
	}
	return &v, nil
}
