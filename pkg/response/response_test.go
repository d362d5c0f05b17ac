package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/apperror"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		status    int
		code      apperror.Code
		retryable bool
	}{
		{"comment required", apperror.New(apperror.CodeCommentRequired, "a comment is required"), http.StatusUnprocessableEntity, apperror.CodeCommentRequired, false},
		{"wrapped conflict", fmt.Errorf("assign: %w", apperror.New(apperror.CodeAlreadyAssigned, "taken")), http.StatusConflict, apperror.CodeAlreadyAssigned, false},
		{"storage", apperror.Storage("failed to load application", errors.New("timeout")), http.StatusServiceUnavailable, apperror.CodeStorageFailure, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			FromError(rec, tt.err)
			if rec.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, rec.Code)
			}

			var body struct {
				Success bool        `json:"success"`
				Message string      `json:"message"`
				Error   ErrorDetail `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Success || body.Error.Code != tt.code || body.Error.Retryable != tt.retryable {
				t.Fatalf("unexpected body: %+v", body)
			}
			if body.Message != apperror.Message(tt.err) {
				t.Fatalf("expected message %q, got %q", apperror.Message(tt.err), body.Message)
			}
		})
	}
}

func TestFromErrorHidesUnknownErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	FromError(rec, errors.New("pq: relation does not exist"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var body Response
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Message != "Internal server error" || body.Error != nil {
		t.Fatalf("expected generic message without detail, got %+v", body)
	}
}

func TestNewMeta(t *testing.T) {
	meta := NewMeta(2, 20, 41)
	if meta.TotalPages != 3 {
		t.Fatalf("expected 3 pages, got %d", meta.TotalPages)
	}
	if NewMeta(1, 0, 10).TotalPages != 0 {
		t.Fatalf("expected zero pages without a limit")
	}
}
