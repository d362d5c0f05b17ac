package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStorageWrapsOnlyForeignErrors(t *testing.T) {
	cause := errors.New("connection reset")
	err := Storage("load application", cause)
	if !IsCode(err, CodeStorageFailure) {
		t.Fatalf("expected storage failure, got %v", GetCode(err))
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be preserved")
	}

	notFound := New(CodeNotFound, "application not found")
	if got := Storage("load application", notFound); got != notFound {
		t.Fatalf("expected workflow error to pass through unchanged")
	}
	if Storage("noop", nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
}

func TestSentinelMatchesThroughWrapping(t *testing.T) {
	sentinel := New(CodeAlreadyAssigned, "application already has a reviewer")
	wrapped := fmt.Errorf("assign: %w", sentinel)
	if !errors.Is(wrapped, sentinel) {
		t.Fatalf("expected errors.Is to match wrapped sentinel")
	}
	if errors.Is(wrapped, New(CodeAlreadyAssigned, "other message")) {
		t.Fatalf("expected different message not to match")
	}
	if GetCode(errors.New("plain")) != CodeUnknown {
		t.Fatalf("expected unknown code for plain error")
	}
}

func TestCodeMapping(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		retryable bool
	}{
		{CodeNotFound, http.StatusNotFound, false},
		{CodeForbidden, http.StatusForbidden, false},
		{CodeInvalidTransition, http.StatusConflict, false},
		{CodeCommentRequired, http.StatusUnprocessableEntity, false},
		{CodeAlreadyAssigned, http.StatusConflict, false},
		{CodeInvalidKind, http.StatusUnprocessableEntity, false},
		{CodeApplicationLocked, http.StatusConflict, false},
		{CodeStorageFailure, http.StatusServiceUnavailable, true},
		{CodeUnknown, http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		if got := tt.code.HTTPStatus(); got != tt.status {
			t.Fatalf("%s: expected status %d, got %d", tt.code, tt.status, got)
		}
		if got := tt.code.Retryable(); got != tt.retryable {
			t.Fatalf("%s: expected retryable %v, got %v", tt.code, tt.retryable, got)
		}
	}
}
