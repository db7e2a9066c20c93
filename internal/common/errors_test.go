package common

import (
	"errors"
	"fmt"
	"testing"
)

func TestInvalid_MatchesErrValidation(t *testing.T) {
	err := fmt.Errorf("create product: %w", Invalid("Please provide all fields"))

	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected errors.Is(err, ErrValidation)")
	}
	var ie *InvalidInputError
	if !errors.As(err, &ie) || ie.Msg != "Please provide all fields" {
		t.Fatalf("unexpected error: %#v", ie)
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("must not match unrelated sentinels")
	}
}
