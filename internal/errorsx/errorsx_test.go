package errorsx

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapAndReason(t *testing.T) {
	err := Wrap(assertErr{}, ReasonModelUnavailable)
	if Reason(err) != ReasonModelUnavailable {
		t.Fatalf("expected reason %s, got %s", ReasonModelUnavailable, Reason(err))
	}
	if !HasReason(err, ReasonModelUnavailable) {
		t.Fatalf("expected HasReason true")
	}
}

func TestWrapPreservesExistingReason(t *testing.T) {
	first := Wrap(assertErr{}, ReasonMissingCredential)
	second := Wrap(first, ReasonModelUnavailable)
	if Reason(second) != ReasonMissingCredential {
		t.Fatalf("expected reason preserved, got %s", Reason(second))
	}
}

func TestReasonSurvivesFmtWrapping(t *testing.T) {
	err := fmt.Errorf("turn failed: %w", New(ReasonModelUnavailable, "provider %s down", "openai"))
	if !HasReason(err, ReasonModelUnavailable) {
		t.Fatalf("expected reason through %%w, got %s", Reason(err))
	}
	if err.Error() != "turn failed: provider openai down" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, ReasonToolFailure) != nil {
		t.Fatalf("expected nil")
	}
	if Reason(nil) != ReasonUnknown {
		t.Fatalf("expected unknown reason for nil")
	}
	if !errors.Is(Wrap(assertErr{}, ReasonToolFailure), assertErr{}) {
		t.Fatalf("expected unwrap to reach the cause")
	}
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }
