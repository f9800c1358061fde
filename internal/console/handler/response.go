package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/xela07ax/thermal-policy-host/internal/domain"
)

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// writeError разделяет типы ошибок (404, 400, 409, 500)
func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	var syntax *json.SyntaxError
	switch {
	case errors.Is(err, domain.ErrPolicyNotFound):
		code = http.StatusNotFound
	case errors.Is(err, domain.ErrUnknownKind), errors.Is(err, domain.ErrPayloadMismatch), errors.As(err, &syntax):
		code = http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrPolicyDisabled):
		code = http.StatusConflict
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
