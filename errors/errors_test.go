package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_New_Retryable(t *testing.T) {
	if New(ErrCodeExternalService, "down", http.StatusBadGateway).Retryable != true {
		t.Error("EXTERNAL_SERVICE_ERROR should be retryable")
	}
	if New(ErrCodeStateMismatch, "x", http.StatusBadRequest).Retryable {
		t.Error("STATE_MISMATCH should not be retryable")
	}
}

func TestLoginErrors_NeverRetryable(t *testing.T) {
	cause := fmt.Errorf("boom")
	errs := []*AppError{
		PopupBlocked(cause),
		PopupClosedByUser(),
		StateMismatch(),
		ProviderError("access_denied", "user denied"),
		MissingAccessToken(),
		ConfigFetchFailed("Error during fetching config", cause),
		KeyReconstructionFailed(cause),
		NotAuthenticated(),
	}
	for _, e := range errs {
		if e.Retryable {
			t.Errorf("%s should not be retryable", e.Code)
		}
	}
}

func TestProviderError_Message(t *testing.T) {
	err := ProviderError("access_denied", "The user denied the request")
	if err.Message != "access_denied: The user denied the request" {
		t.Errorf("unexpected message %q", err.Message)
	}
	if err.Details["error"] != "access_denied" {
		t.Errorf("expected error detail, got %v", err.Details["error"])
	}
}

func TestPopupClosedByUser_Message(t *testing.T) {
	if !strings.Contains(PopupClosedByUser().Error(), "popup closed by user") {
		t.Errorf("unexpected error string %q", PopupClosedByUser().Error())
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("dial tcp: refused")
	err := KeyReconstructionFailed(cause)
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if !strings.Contains(err.Error(), "cause: dial tcp: refused") {
		t.Errorf("expected cause in message, got %q", err.Error())
	}
}

func TestIsCode(t *testing.T) {
	wrapped := fmt.Errorf("login: %w", StateMismatch())
	if !IsCode(wrapped, ErrCodeStateMismatch) {
		t.Error("expected IsCode to match wrapped error")
	}
	if IsCode(wrapped, ErrCodeProviderError) {
		t.Error("expected IsCode to reject other codes")
	}
	if IsCode(fmt.Errorf("plain"), ErrCodeStateMismatch) {
		t.Error("expected IsCode to reject non-AppError")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil) != nil {
		t.Error("expected nil for nil error")
	}
	orig := MissingAccessToken()
	if FromError(orig) != orig {
		t.Error("expected AppError to pass through")
	}
	got := FromError(fmt.Errorf("x"))
	if got.Code != ErrCodeInternal {
		t.Errorf("expected INTERNAL_ERROR, got %s", got.Code)
	}
}

func TestToResponse(t *testing.T) {
	resp := InvalidInput("login_type", "unknown").ToResponse()
	if resp.Error.Code != ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", resp.Error.Code)
	}
	if resp.Error.Details["field"] != "login_type" {
		t.Errorf("expected field detail, got %v", resp.Error.Details)
	}
}

func TestReporterFunc(t *testing.T) {
	var got error
	var r Reporter = ReporterFunc(func(_ context.Context, err error, tags map[string]string) {
		got = err
		if tags["login_type"] != "google" {
			t.Errorf("expected login_type tag, got %v", tags)
		}
	})
	r.Report(context.Background(), StateMismatch(), map[string]string{"login_type": "google"})
	if !IsCode(got, ErrCodeStateMismatch) {
		t.Errorf("expected reported error, got %v", got)
	}
	NopReporter{}.Report(context.Background(), got, nil)
}
