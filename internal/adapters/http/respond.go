package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"classroll/internal/application/session"
	"classroll/internal/domain/account"
	"classroll/internal/domain/attendance"
)

// statusClientClosedRequest is the nginx convention for a client that went
// away before the response was written.
const statusClientClosedRequest = 499

// errBadRequestBody is reported when the JSON body cannot be decoded.
var errBadRequestBody = errors.New("request body must be a valid JSON object")

type errorBody struct {
	Error string `json:"error"`
}

// statusFor maps user-recoverable errors to HTTP status codes.
// Anything unlisted is an internal failure.
func statusFor(err error) (int, bool) {
	switch {
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest, true
	case errors.Is(err, session.ErrNotAuthenticated),
		errors.Is(err, session.ErrInvalidCredentials):
		return http.StatusUnauthorized, true
	case errors.Is(err, session.ErrForbidden):
		return http.StatusForbidden, true
	case errors.Is(err, account.ErrAccountNotFound),
		errors.Is(err, attendance.ErrRecordNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, account.ErrDuplicateUsername),
		errors.Is(err, account.ErrProtectedAccount),
		errors.Is(err, account.ErrLastAdmin),
		errors.Is(err, session.ErrLoginPending):
		return http.StatusConflict, true
	case errors.Is(err, errBadRequestBody),
		errors.Is(err, account.ErrEmptyUsername),
		errors.Is(err, account.ErrEmptyPassword),
		errors.Is(err, account.ErrEmptyFullName),
		errors.Is(err, account.ErrInvalidRole),
		errors.Is(err, attendance.ErrEmptyName),
		errors.Is(err, attendance.ErrInvalidDate),
		errors.Is(err, attendance.ErrInvalidTime),
		errors.Is(err, attendance.ErrInvalidSemester),
		errors.Is(err, attendance.ErrEmptyStatus):
		return http.StatusBadRequest, true
	}
	return http.StatusInternalServerError, false
}

// writeError sends a JSON error for known errors and a generic 500 otherwise.
func writeError(w http.ResponseWriter, err error) {
	status, known := statusFor(err)
	if !known {
		internalError(w, err)
		return
	}
	if status == statusClientClosedRequest {
		slog.Debug("request_canceled", "error", err.Error())
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode_failed", "error", err.Error())
	}
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errBadRequestBody
	}
	return nil
}
