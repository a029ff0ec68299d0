// Package httputils holds the JSON request/response helpers shared by every
// HTTP handler. Error responses carry a {"detail": ...} body so clients get a
// stable envelope regardless of which module answered.
package httputils

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/fairway-collective/links-backend/app/shared/observability/attr"
	"github.com/fairway-collective/links-backend/app/shared/types"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// RespondJSON writes v as JSON with the given status. A nil v writes only the
// status line.
func RespondJSON(w http.ResponseWriter, status int, v any) {
	if v == nil {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are gone; nothing to do but drop it.
		return
	}
}

// RespondError maps a domain error to its status code and writes the detail
// body. Unrecognized errors become 500 with a generic detail so internals do
// not leak.
func RespondError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status, detail := statusForError(err)
	if status == http.StatusInternalServerError && logger != nil {
		logger.ErrorContext(r.Context(), "Request failed",
			attr.ExtractCorrelationID(r.Context()),
			attr.String("method", r.Method),
			attr.String("path", r.URL.Path),
			attr.Error(err),
		)
	}
	RespondJSON(w, status, ErrorResponse{Detail: detail})
}

func statusForError(err error) (int, string) {
	var validation types.ValidationError
	if errors.As(err, &validation) {
		return http.StatusBadRequest, validation.Message
	}
	var authz types.AuthorizationError
	if errors.As(err, &authz) {
		return http.StatusForbidden, authz.Message
	}
	var notFound types.NotFoundError
	if errors.As(err, &notFound) {
		return http.StatusNotFound, notFound.Message
	}
	var conflict types.ConflictError
	if errors.As(err, &conflict) {
		return http.StatusConflict, conflict.Message
	}
	return http.StatusInternalServerError, "Internal server error"
}

// DecodeJSON decodes a request body, rejecting unknown fields.
func DecodeJSON(r *http.Request, out any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return types.ValidationError{Message: fmt.Sprintf("Invalid request body: %v", err)}
	}
	return nil
}
