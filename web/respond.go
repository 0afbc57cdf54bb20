// ABOUTME: JSON request decoding and response helpers
// ABOUTME: Maps CRM error sentinels onto HTTP status codes
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/harperreed/medcrm/crm"
)

const maxBody = 32 << 20

var errBadRequest = errors.New("bad request")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, crm.ErrValidation), errors.Is(err, crm.ErrInvalidBackup), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, crm.ErrUnauthenticated), errors.Is(err, crm.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, crm.ErrForbidden), errors.Is(err, crm.ErrPasswordChangeRequired):
		return http.StatusForbidden
	case errors.Is(err, crm.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

func decode[T any](r *http.Request) (T, error) {
	var v T
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	if err := dec.Decode(&v); err != nil {
		return v, fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	return v, nil
}

func readBody(r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read body: %v", errBadRequest, err)
	}
	return data, nil
}
