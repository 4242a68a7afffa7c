package backend

import (
	"encoding/json"
	"errors"
	"strings"
)

// GenericFailureMessage is shown when the backend's error shape could not
// be turned into anything more specific.
const GenericFailureMessage = "Something went wrong. Please try again."

// RemoteError is a non-2xx reply from the backend, normalized to a single
// human-readable message regardless of the shape the backend returned.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return e.Message
}

func newRemoteError(statusCode int, body []byte) *RemoteError {
	return &RemoteError{
		StatusCode: statusCode,
		Message:    normalizeErrorBody(body),
	}
}

// normalizeErrorBody squashes the error shapes the backend is known to
// produce into one string:
//
//	{"errors": ["...", ...]}
//	{"detail": {"errors": ["...", ...]}}
//	{"detail": "..."}
//	{"error": "..."}
//
// Anything else falls back to the generic message.
func normalizeErrorBody(body []byte) string {
	var payload struct {
		Errors json.RawMessage `json:"errors"`
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return GenericFailureMessage
	}

	if msg := joinErrors(payload.Errors); msg != "" {
		return msg
	}

	if len(payload.Detail) > 0 {
		var detailStr string
		if json.Unmarshal(payload.Detail, &detailStr) == nil && detailStr != "" {
			return detailStr
		}
		var nested struct {
			Errors json.RawMessage `json:"errors"`
		}
		if json.Unmarshal(payload.Detail, &nested) == nil {
			if msg := joinErrors(nested.Errors); msg != "" {
				return msg
			}
		}
	}

	if payload.Error != "" {
		return payload.Error
	}

	return GenericFailureMessage
}

// joinErrors accepts either a JSON string or a JSON array of strings.
func joinErrors(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var one string
	if json.Unmarshal(raw, &one) == nil {
		return one
	}
	var many []string
	if json.Unmarshal(raw, &many) == nil {
		return strings.Join(many, "; ")
	}
	return ""
}

// ErrorMessage extracts the normalized message from any error the client
// returns, so presentation code never sees a non-string error shape.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.Message
	}
	return GenericFailureMessage
}
