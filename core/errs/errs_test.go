package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("duplicated entry")

	tests := []struct {
		name string
		err  error
		kind Kind
		ok   bool
	}{
		{"not found", NotFound("course[%s] not found", "c1"), KindNotFound, true},
		{"forbidden", Forbidden("nope"), KindForbidden, true},
		{"business rule", BusinessRule("no lessons"), KindBusinessRule, true},
		{"conflict", Conflict(cause, "order taken"), KindConflict, true},
		{"validation", Validation("title is required"), KindValidation, true},
		{"wrapped", fmt.Errorf("publishing: %w", Forbidden("nope")), KindForbidden, true},
		{"plain", errors.New("connection reset"), 0, false},
		{"nil", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := KindOf(tt.err)
			if kind != tt.kind || ok != tt.ok {
				t.Fatalf("expected (%v, %v), got (%v, %v)", tt.kind, tt.ok, kind, ok)
			}
		})
	}
}

func TestConflictUnwraps(t *testing.T) {
	cause := errors.New("duplicated entry")
	err := Conflict(cause, "order taken")

	if !errors.Is(err, cause) {
		t.Fatal("expected conflict to unwrap to its cause")
	}
	if got := Message(err); got != "order taken" {
		t.Fatalf("expected message %q, got %q", "order taken", got)
	}
	if !Is(err, KindConflict) {
		t.Fatal("expected conflict kind")
	}
}
