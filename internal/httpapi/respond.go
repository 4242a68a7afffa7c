package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/weeklybasket/storefront/internal/backend"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// RejectionResponse carries the human-readable reasons of a validation
// rejection (stock shortfall, minimum-order shortfall).
type RejectionResponse struct {
	Errors []string `json:"errors"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// respondBackendError maps an error from the backend client to an HTTP
// reply. 4xx statuses pass through with the normalized message; anything
// else (including transport failure) becomes a 502 with the generic
// message. The raw error shape never reaches the caller.
func respondBackendError(w http.ResponseWriter, err error) {
	var remote *backend.RemoteError
	if errors.As(err, &remote) && remote.StatusCode >= 400 && remote.StatusCode < 500 {
		respondError(w, remote.StatusCode, "backend_rejected", remote.Message)
		return
	}
	log.Printf("backend call failed: %v", err)
	respondError(w, http.StatusBadGateway, "backend_unavailable", backend.GenericFailureMessage)
}
