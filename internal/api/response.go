package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"finadvisor/pkg/advisor"
)

// ErrorResponse represents an error API response with structured information.
type ErrorResponse struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	ErrorCode string `json:"error_code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// writeErrorResponse writes an error response. Structured advisor errors
// choose their own HTTP status; fallbackStatus applies to everything else.
func writeErrorResponse(w http.ResponseWriter, r *http.Request, fallbackStatus int, err error) {
	response := ErrorResponse{
		Code:      fallbackStatus,
		Message:   err.Error(),
		RequestID: middleware.GetReqID(r.Context()),
	}

	var advErr *advisor.Error
	if errors.As(err, &advErr) {
		response.ErrorCode = string(advErr.Code)
		response.Message = advErr.Message
		response.Code = mapErrorCodeToHTTPStatus(advErr.Code)
	}

	if lw, ok := w.(interface{ SetErrorMessage(string) }); ok {
		lw.SetErrorMessage(err.Error())
	}
	writeJSON(w, response.Code, response)
}

// mapErrorCodeToHTTPStatus maps business error codes to HTTP status codes.
func mapErrorCodeToHTTPStatus(code advisor.ErrorCode) int {
	switch code {
	case advisor.ErrCodeInvalidInput, advisor.ErrCodeValidation:
		return http.StatusBadRequest
	case advisor.ErrCodeNotFound:
		return http.StatusNotFound
	case advisor.ErrCodeUpstream:
		return http.StatusBadGateway
	case advisor.ErrCodeStorage, advisor.ErrCodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
