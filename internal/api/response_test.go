package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"finadvisor/pkg/advisor"
)

func TestWriteErrorResponse(t *testing.T) {
	t.Run("structured error", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		err := fmt.Errorf("lookup: %w", advisor.NewError(advisor.ErrCodeNotFound, "missing"))
		writeErrorResponse(rr, req, http.StatusInternalServerError, err)

		if rr.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rr.Code)
		}
		var resp ErrorResponse
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.ErrorCode != string(advisor.ErrCodeNotFound) || resp.Message != "missing" {
			t.Fatalf("unexpected response %+v", resp)
		}
	})

	t.Run("plain error", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		writeErrorResponse(rr, req, http.StatusBadRequest, errors.New("bad"))

		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rr.Code)
		}
		var resp ErrorResponse
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.ErrorCode != "" || resp.Message != "bad" || resp.Code != http.StatusBadRequest {
			t.Fatalf("unexpected response %+v", resp)
		}
	})
}

func TestMapErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code advisor.ErrorCode
		want int
	}{
		{advisor.ErrCodeInvalidInput, http.StatusBadRequest},
		{advisor.ErrCodeValidation, http.StatusBadRequest},
		{advisor.ErrCodeNotFound, http.StatusNotFound},
		{advisor.ErrCodeUpstream, http.StatusBadGateway},
		{advisor.ErrCodeStorage, http.StatusInternalServerError},
		{advisor.ErrCodeInternal, http.StatusInternalServerError},
		{advisor.ErrorCode("SOMETHING_ELSE"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		if got := mapErrorCodeToHTTPStatus(tc.code); got != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.code, tc.want, got)
		}
	}
}
