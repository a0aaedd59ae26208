package service

import (
	"errors"
	"strings"
	"testing"
)

func TestUnavailable(t *testing.T) {
	err := Unavailable("http://localhost:11434", errors.New("connection refused"))

	if !errors.Is(err, ErrServiceUnavailable) {
		t.Errorf("Unavailable() error = %v, want wrapped ErrServiceUnavailable", err)
	}
	if !strings.Contains(err.Error(), "http://localhost:11434") {
		t.Errorf("Unavailable() error should name the endpoint: %v", err)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("Unavailable() error should carry the cause: %v", err)
	}
}

func TestWrapError(t *testing.T) {
	if WrapError(nil, "context") != nil {
		t.Error("WrapError(nil) should return nil")
	}

	base := errors.New("base")
	wrapped := WrapError(base, "reading file")
	if !errors.Is(wrapped, base) {
		t.Error("WrapError() should wrap the original error")
	}
	if !strings.Contains(wrapped.Error(), "reading file") {
		t.Errorf("WrapError() = %v, want context prefix", wrapped)
	}
}
