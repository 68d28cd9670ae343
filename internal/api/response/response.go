// Package response writes the JSON envelopes of the public API. Every body
// carries a boolean "success"; failures add a short error category and a
// human-readable message, optionally with the partial data accumulated so far.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/nattapongc/shopscout/pkg/models"
)

type errorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// partialErrorEnvelope always serializes partialData, as [] when nothing was
// accumulated.
type partialErrorEnvelope struct {
	Success     bool             `json:"success"`
	Error       string           `json:"error"`
	Message     string           `json:"message"`
	PartialData []models.Product `json:"partialData"`
}

// JSON writes v with a 200 status. The value is expected to carry its own
// "success" field.
func JSON(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusOK, v)
}

// Error writes a failure envelope with the given status, error category and message.
func Error(w http.ResponseWriter, status int, errCode, message string) {
	writeJSON(w, status, errorEnvelope{Error: errCode, Message: message})
}

// ErrorWithPartial is Error plus the products accumulated before the failure.
func ErrorWithPartial(w http.ResponseWriter, status int, errCode, message string, partial []models.Product) {
	if partial == nil {
		partial = []models.Product{}
	}
	writeJSON(w, status, partialErrorEnvelope{Error: errCode, Message: message, PartialData: partial})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
