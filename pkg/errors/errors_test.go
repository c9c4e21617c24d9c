package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"not found", NotFound("Resource"), CodeNotFound, http.StatusNotFound},
		{"not found with id", NotFoundWithID("Resource", "abc"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("bad", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"invalid input", InvalidInput("bad body"), CodeInvalidInput, http.StatusBadRequest},
		{"unauthorized", Unauthorized("no token"), CodeUnauthorized, http.StatusUnauthorized},
		{"forbidden", Forbidden("no role"), CodeForbidden, http.StatusForbidden},
		{"conflict", Conflict("already resolved"), CodeConflict, http.StatusConflict},
		{"internal", Internal("boom", errors.New("db")), CodeInternal, http.StatusInternalServerError},
		{"rate limited", New(CodeRateLimited, "slow down", http.StatusTooManyRequests), CodeRateLimited, http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", tt.err.Code, tt.wantCode)
			}
			if tt.err.StatusCode() != tt.wantStatus {
				t.Errorf("status = %d, want %d", tt.err.StatusCode(), tt.wantStatus)
			}
		})
	}
}

func TestNotFoundWithID_Details(t *testing.T) {
	err := NotFoundWithID("Schedule entry", "12345")
	if err.Message != "Schedule entry not found" {
		t.Errorf("unexpected message %q", err.Message)
	}
	if err.Details["id"] != "12345" || err.Details["resource"] != "Schedule entry" {
		t.Errorf("unexpected details %v", err.Details)
	}
}

func TestAppError_Error(t *testing.T) {
	plain := &AppError{Code: CodeNotFound, Message: "resource not found"}
	if got := plain.Error(); got != "NOT_FOUND: resource not found" {
		t.Errorf("Error() = %q", got)
	}

	caused := Internal("internal error", errors.New("database connection failed"))
	want := "INTERNAL_ERROR: internal error (caused by: database connection failed)"
	if got := caused.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("original error")
	appErr := Internal("wrapped", cause)
	if !errors.Is(appErr, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestAppError_ZeroStatusDefaultsTo500(t *testing.T) {
	err := &AppError{Code: CodeInternal}
	if err.StatusCode() != http.StatusInternalServerError {
		t.Errorf("StatusCode() = %d", err.StatusCode())
	}
}

func TestAsAppError(t *testing.T) {
	appErr := Conflict("flag already resolved")
	if AsAppError(appErr) != appErr {
		t.Error("expected the same AppError back")
	}

	wrapped := fmt.Errorf("resolving: %w", appErr)
	if AsAppError(wrapped) != appErr {
		t.Error("expected wrapped AppError to be found")
	}
	if !IsAppError(wrapped) {
		t.Error("IsAppError should see through wrapping")
	}

	plain := errors.New("regular error")
	got := AsAppError(plain)
	if got.Code != CodeInternal || got.Err != plain {
		t.Errorf("expected internal wrapper around plain error, got %+v", got)
	}
	if IsAppError(plain) {
		t.Error("IsAppError should be false for plain errors")
	}
}

func TestHasCode(t *testing.T) {
	if !HasCode(fmt.Errorf("x: %w", Conflict("c")), CodeConflict) {
		t.Error("expected HasCode to match wrapped conflict")
	}
	if HasCode(NotFound("x"), CodeConflict) {
		t.Error("expected HasCode to reject other codes")
	}
	if HasCode(errors.New("plain"), CodeInternal) {
		t.Error("expected HasCode to reject non-AppErrors")
	}
}

func TestAppError_JSON(t *testing.T) {
	err := Validation("start_time must be before end_time", map[string]any{"field": "end_time"})
	data, e := json.Marshal(err)
	if e != nil {
		t.Fatalf("marshal: %v", e)
	}

	var body map[string]any
	if e := json.Unmarshal(data, &body); e != nil {
		t.Fatalf("invalid JSON: %v", e)
	}
	if body["code"] != CodeValidation {
		t.Errorf("code = %v", body["code"])
	}
	if body["error"] != "start_time must be before end_time" {
		t.Errorf("error = %v", body["error"])
	}
	if _, ok := body["details"]; !ok {
		t.Error("expected details in body")
	}
}
