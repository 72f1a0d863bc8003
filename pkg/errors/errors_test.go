package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(CodeNetwork, cause, "push cart snapshot")

	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to survive errors.Is")
	}
	if err.Code() != CodeNetwork {
		t.Fatalf("expected network code, got %s", err.Code())
	}
}

func TestAsUnwrapsThroughFmtErrorf(t *testing.T) {
	inner := New(CodeValidation, "quantity exceeds stock")
	wrapped := fmt.Errorf("add item: %w", inner)

	typed := As(wrapped)
	if typed == nil {
		t.Fatal("expected typed error through wrapping")
	}
	if typed.Code() != CodeValidation {
		t.Fatalf("unexpected code %s", typed.Code())
	}
}

func TestMetadataForUnknownCodeFallsBackToInternal(t *testing.T) {
	meta := MetadataFor(Code("NOPE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", meta.HTTPStatus)
	}
}

func TestRetryable(t *testing.T) {
	if !Retryable(New(CodeNetwork, "timeout")) {
		t.Fatal("network errors should be retryable")
	}
	if Retryable(New(CodeValidation, "rejected")) {
		t.Fatal("validation errors should not be retryable")
	}
	if Retryable(errors.New("untyped")) {
		t.Fatal("untyped errors should not be retryable")
	}
}

func TestDumpCollectsChain(t *testing.T) {
	err := Wrap(CodeStateCorruption, errors.New("unexpected end of JSON input"), "decode snapshot")
	d := Dump(err)
	if d.Code != CodeStateCorruption {
		t.Fatalf("unexpected code %s", d.Code)
	}
	if len(d.Chain) != 2 {
		t.Fatalf("expected chain of 2, got %d", len(d.Chain))
	}
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeNotFound, "missing item"))
	if !IsCode(err, CodeNotFound) {
		t.Fatal("expected IsCode to match through wrapping")
	}
	if IsCode(nil, CodeNotFound) {
		t.Fatal("nil error must not match")
	}
}
