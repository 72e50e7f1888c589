package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/elskow/sphere-accounts/internal/auth"
)

type envelope struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message,omitempty"`
	ErrorCode string            `json:"errorCode,omitempty"`
	Errors    []auth.FieldError `json:"errors,omitempty"`
	Token     string            `json:"token,omitempty"`
	User      any               `json:"user,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeFailure renders a classified service error. The failure class is the
// HTTP status.
func writeFailure(w http.ResponseWriter, failure auth.Failure) {
	writeJSON(w, int(failure.Class), envelope{
		Success:   false,
		Message:   failure.Message,
		ErrorCode: failure.Code,
		Errors:    failure.Fields,
	})
}
