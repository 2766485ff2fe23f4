// Package httpapi implements the v1 REST surface of spec §6: zone/client
// read and control endpoints, media/playlist listing, cover-art proxying,
// and health checks, all wrapped in the uniform
// {success,data,error,requestId} envelope.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/metaneutrons/snapdog2-sub015/internal/model"
)

// envelope is the response shape every v1 endpoint returns.
type envelope struct {
	Success   bool             `json:"success"`
	Data      interface{}      `json:"data,omitempty"`
	Error     *errorPayload    `json:"error,omitempty"`
	RequestID string           `json:"requestId"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func newRequestID() string { return uuid.NewString() }

func writeData(w http.ResponseWriter, status int, data interface{}) {
	writeEnvelope(w, status, envelope{Success: true, Data: data, RequestID: newRequestID()})
}

func writeAppError(w http.ResponseWriter, err *model.AppError) {
	writeEnvelope(w, err.HTTPStatus(), envelope{
		Success:   false,
		Error:     &errorPayload{Code: string(err.Kind), Message: err.Message, Details: err.Details},
		RequestID: newRequestID(),
	})
}

func writeEnvelope(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}
