package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/homecontrol-core/internal/aircon"
	"github.com/nerrad567/homecontrol-core/internal/auth"
	"github.com/nerrad567/homecontrol-core/internal/filter"
	"github.com/nerrad567/homecontrol-core/internal/hue"
	"github.com/nerrad567/homecontrol-core/internal/mapping"
	"github.com/nerrad567/homecontrol-core/internal/roomstate"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest      = "bad_request"
	ErrCodeNotFound        = "not_found"
	ErrCodeUnauthorized    = "unauthorised"
	ErrCodeForbidden       = "forbidden"
	ErrCodeConflict        = "conflict"
	ErrCodeInternal        = "internal_error"
	ErrCodeValidation      = "validation_error"
	ErrCodeUpstream        = "upstream_error"
	ErrCodeMapping         = "mapping_error"
	ErrCodeFilterSyntax    = "filter_syntax"
	ErrCodeUnknownOperator = "unknown_operator"
	ErrCodeUnknownField    = "unknown_field"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeUnauthorized writes a 401 error response.
func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// writeForbidden writes a 403 error response.
func writeForbidden(w http.ResponseWriter, message string) {
	writeError(w, http.StatusForbidden, ErrCodeForbidden, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// errorStatus maps a domain error to its HTTP status and error code.
//
// Bridge errors are checked first: a response the bridge sent that does not
// match our schemas wraps a *mapping.MappingError, but it is an upstream
// failure, not a bad request.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, hue.ErrBridgeNotFound),
		errors.Is(err, hue.ErrResourceNotFound),
		errors.Is(err, roomstate.ErrNotFound),
		errors.Is(err, aircon.ErrNotFound),
		errors.Is(err, mapping.ErrSchemaNotFound):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, hue.ErrRequestFailed),
		errors.Is(err, hue.ErrUnavailable),
		errors.Is(err, hue.ErrInvalidResponse):
		return http.StatusBadGateway, ErrCodeUpstream

	case errors.Is(err, mapping.ErrTypeMismatch),
		errors.Is(err, mapping.ErrUnknownKey):
		return http.StatusBadRequest, ErrCodeMapping
	case errors.Is(err, filter.ErrSyntax):
		return http.StatusBadRequest, ErrCodeFilterSyntax
	case errors.Is(err, filter.ErrUnknownOperator):
		return http.StatusBadRequest, ErrCodeUnknownOperator
	case errors.Is(err, filter.ErrFieldNotFound):
		return http.StatusBadRequest, ErrCodeUnknownField

	case errors.Is(err, roomstate.ErrNameRequired),
		errors.Is(err, aircon.ErrNameRequired),
		errors.Is(err, aircon.ErrInvalidState),
		errors.Is(err, errBridgeNameRequired):
		return http.StatusBadRequest, ErrCodeValidation
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrUserInactive),
		errors.Is(err, auth.ErrTokenInvalid):
		return http.StatusUnauthorized, ErrCodeUnauthorized
	}
	return http.StatusInternalServerError, ErrCodeInternal
}

// writeDomainError writes err using errorStatus. Internal errors are logged
// and replaced by a generic message.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", r.Context().Value(ctxKeyRequestID),
			"error", err,
		)
		writeInternalError(w, "internal server error")
		return
	}
	if status == http.StatusBadGateway {
		s.logger.Warn("bridge request failed",
			"path", r.URL.Path,
			"error", err,
		)
	}
	writeError(w, status, code, err.Error())
}
