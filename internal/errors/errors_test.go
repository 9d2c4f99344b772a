package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(CodeUnavailable, "reach ledger", cause)
	if !stderrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to survive errors.Is")
	}
	if got := err.Error(); got != "reach ledger: connection refused" {
		t.Fatalf("unexpected message: %s", got)
	}
}

func TestAsFindsNestedError(t *testing.T) {
	inner := New(CodeRejected, "ledger rejected command")
	outer := fmt.Errorf("exercise Fund: %w", inner)
	found, ok := As(outer)
	if !ok {
		t.Fatal("expected As to find nested *Error")
	}
	if found.Code != CodeRejected {
		t.Fatalf("unexpected code: %d", found.Code)
	}
}

func TestExitCodeCollapsesToOne(t *testing.T) {
	if got := ExitCode(nil); got != 0 {
		t.Fatalf("expected 0 for nil, got %d", got)
	}
	for _, err := range []error{
		New(CodeUsage, "bad flag"),
		New(CodeAuth, "bad token"),
		stderrors.New("plain"),
	} {
		if got := ExitCode(err); got != 1 {
			t.Fatalf("expected 1 for %v, got %d", err, got)
		}
	}
}
