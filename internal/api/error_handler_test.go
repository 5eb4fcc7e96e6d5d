package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/recordhub/records-system/internal/core/domain"
)

func runErrorHandler(t *testing.T, err error) (*httptest.ResponseRecorder, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/things", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.New(&logs))(err, c)
	return rec, &logs
}

func TestErrorHandler_DomainErrors(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{domain.ErrSelfDelete, http.StatusBadRequest},
		{domain.ErrIncorrectPassword, http.StatusBadRequest},
		{domain.ErrDuplicateMember, http.StatusBadRequest},
		{domain.ErrUnsupportedFormat, http.StatusBadRequest},
		{domain.ErrUnsupportedFileType, http.StatusBadRequest},
		{domain.ErrFileRequired, http.StatusBadRequest},
		{domain.ErrUnauthenticated, http.StatusUnauthorized},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("load project: %w", domain.ErrNotFound), http.StatusNotFound},
		{domain.ErrUserExists, http.StatusConflict},
		{domain.ErrPayloadTooLarge, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec, logs := runErrorHandler(t, tt.err)
			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
			if logs.Len() != 0 {
				t.Fatalf("expected no log output for a known error, got %s", logs.String())
			}
		})
	}
}

func TestErrorHandler_ValidationDetails(t *testing.T) {
	ve := domain.NewValidationError("title", "title is required").Add("client", "client must be a valid id")

	rec, _ := runErrorHandler(t, ve)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp struct {
		Error   string              `json:"error"`
		Details []domain.FieldError `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Details) != 2 || resp.Details[0].Field != "title" || resp.Details[1].Field != "client" {
		t.Fatalf("unexpected details: %+v", resp.Details)
	}
	if !strings.Contains(resp.Error, "title is required") {
		t.Fatalf("unexpected message: %s", resp.Error)
	}
}

func TestErrorHandler_EchoError(t *testing.T) {
	rec, _ := runErrorHandler(t, echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header"))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "missing authorization header") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestErrorHandler_UnexpectedErrorIsHidden(t *testing.T) {
	rec, logs := runErrorHandler(t, errors.New("mongo: connection reset"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "mongo") {
		t.Fatalf("internal detail leaked: %s", rec.Body.String())
	}
	if !strings.Contains(logs.String(), "mongo: connection reset") {
		t.Fatalf("expected the cause to be logged, got %s", logs.String())
	}
}
