package handler

import (
	"encoding/json"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// response is the JSON envelope shared by every endpoint.
type response struct {
	Success *bool             `json:"success,omitempty"`
	Message string            `json:"message"`
	Data    any               `json:"data,omitempty"`
	Token   string            `json:"token,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
	Code    string            `json:"code,omitempty"`
}

func boolPtr(b bool) *bool { return &b }

func writeJSON(w http.ResponseWriter, status int, body response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeInternalError logs err under a fresh error id and responds with only that id.
func writeInternalError(
	w http.ResponseWriter,
	r *http.Request,
	logger *zerolog.Logger,
	err error,
	msg string,
	success *bool,
) {
	errorID := uuid.NewString()
	logger.Error().
		Err(err).
		Str("error_id", errorID).
		Str("request_id", chimiddleware.GetReqID(r.Context())).
		Msg(msg)

	writeJSON(w, http.StatusInternalServerError, response{
		Success: success,
		Message: "something went wrong",
		Code:    errorID,
	})
}
