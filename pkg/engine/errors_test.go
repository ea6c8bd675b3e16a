package engine

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestNewRemoteHTTPErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantCode  string
		wantClass ErrorClass
	}{
		{name: "too many requests", status: http.StatusTooManyRequests, wantCode: ErrCodeRateLimited, wantClass: ErrorClassThrottled},
		{name: "server error", status: http.StatusInternalServerError, wantCode: ErrCodeRemoteHTTP, wantClass: ErrorClassPermanent},
		{name: "bad request", status: http.StatusBadRequest, wantCode: ErrCodeRemoteHTTP, wantClass: ErrorClassPermanent},
		{name: "service unavailable", status: http.StatusServiceUnavailable, wantCode: ErrCodeRemoteHTTP, wantClass: ErrorClassPermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRemoteHTTPError(tt.status, nil)
			if err.Code != tt.wantCode {
				t.Errorf("Code = %s, want %s", err.Code, tt.wantCode)
			}
			if err.Class != tt.wantClass {
				t.Errorf("Class = %s, want %s", err.Class, tt.wantClass)
			}
			if status, ok := StatusCode(err); !ok || status != tt.status {
				t.Errorf("StatusCode = %d, %v; want %d, true", status, ok, tt.status)
			}
		})
	}
}

func TestErrorsIsMatchesClassAndCode(t *testing.T) {
	wrapped := fmt.Errorf("placing: %w", NewRateLimitedError(errors.New("slow down")))

	if !errors.Is(wrapped, ErrRateLimited) {
		t.Error("expected wrapped rate limit to match ErrRateLimited")
	}
	if errors.Is(wrapped, ErrRemoteHTTP) {
		t.Error("rate limit must not match ErrRemoteHTTP")
	}
	if !IsRateLimited(wrapped) || !IsRetryable(wrapped) {
		t.Error("expected rate limit to be retryable")
	}

	transport := NewTransportError("dial failed", errors.New("connection refused"))
	if IsRetryable(transport) {
		t.Error("transport errors must not be retryable")
	}
	if !errors.Is(transport, ErrTransport) || !IsTransport(transport) {
		t.Error("expected transport error to match ErrTransport")
	}

	if _, ok := StatusCode(transport); ok {
		t.Error("transport error should carry no status")
	}
	if _, ok := StatusCode(errors.New("plain")); ok {
		t.Error("plain error should carry no status")
	}
}

func TestEngineErrorMessage(t *testing.T) {
	err := NewMaxRetriesExceededError(5, NewRateLimitedError(nil)).
		WithResource("soloon").
		WithCell(2, 3).
		WithOperation(OperationPlace)

	msg := err.Error()
	for _, want := range []string{"[permanent]", "variant=soloon", "cell=(2,3)", "operation=place", "attempts=5", "rate limited"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
	if !IsMaxRetriesExceeded(err) {
		t.Error("expected IsMaxRetriesExceeded")
	}
	if !errors.Is(err, ErrRateLimited) {
		t.Error("expected the last rate limit to remain in the chain")
	}
}

func TestPredicatesOnForeignErrors(t *testing.T) {
	err := errors.New("boom")
	if IsRateLimited(err) || IsValidation(err) || IsUnknownVariant(err) || IsMaxRetriesExceeded(err) || IsRetryable(err) {
		t.Error("predicates should be false for non-engine errors")
	}
	if !IsUnknownVariant(NewUnknownVariantError("nebula")) {
		t.Error("expected IsUnknownVariant")
	}
	if !IsValidation(NewValidationError("bad %s", "label")) {
		t.Error("expected IsValidation")
	}
}

func TestWithContextCopies(t *testing.T) {
	orig := NewValidationError("bad")
	got := withContext(orig, func(e *EngineError) { e.WithCell(1, 1) })

	var e *EngineError
	if !errors.As(got, &e) || e.Cell != "(1,1)" {
		t.Fatalf("expected cell context on copy, got %v", got)
	}
	if orig.Cell != "" {
		t.Error("original error must not be mutated")
	}

	plain := errors.New("plain")
	if withContext(plain, func(e *EngineError) {}) != plain {
		t.Error("non-engine errors should pass through unchanged")
	}
}

func TestWithContextKeepsOuterWrapping(t *testing.T) {
	orig := NewValidationError("bad")
	wrapped := fmt.Errorf("placing item: %w", orig)
	got := withContext(wrapped, func(e *EngineError) { e.WithCell(2, 3).WithOperation(OperationPlace) })

	if got.Error() != wrapped.Error() {
		t.Errorf("expected outer message %q, got %q", wrapped.Error(), got.Error())
	}
	if !errors.Is(got, wrapped) {
		t.Error("expected outer chain to stay reachable")
	}
	if !IsValidation(got) {
		t.Error("expected classification to survive rewrapping")
	}

	var e *EngineError
	if !errors.As(got, &e) {
		t.Fatal("expected an EngineError in the chain")
	}
	if e.Cell != "(2,3)" || e.Operation != OperationPlace {
		t.Errorf("expected contextualized copy first, got cell=%q operation=%q", e.Cell, e.Operation)
	}
	if orig.Cell != "" {
		t.Error("original error must not be mutated")
	}
}
