package errors

import (
	stdErrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"already exists", ErrAlreadyExists},
		{"not found", ErrNotFound},
		{"invalid credentials", ErrInvalidCredentials},
		{"validation", ErrValidation},
		{"invalid transition", ErrInvalidTransition},
		{"already paid", ErrAlreadyPaid},
		{"package inactive", ErrPackageInactive},
		{"payment rejected", ErrPaymentRejected},
		{"gateway", ErrGateway},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !stdErrors.Is(tc.err, tc.err) {
				t.Fatalf("expected error to match itself: %v", tc.err)
			}
		})
	}
}

func TestGatewayError(t *testing.T) {
	cause := stdErrors.New("timeout")
	err := fmt.Errorf("checkout: %w", &GatewayError{Op: "create order", StatusCode: 502, Err: cause})

	if !stdErrors.Is(err, ErrGateway) {
		t.Fatalf("expected gateway sentinel match, got %v", err)
	}
	if !stdErrors.Is(err, cause) {
		t.Fatalf("expected cause to be unwrapped")
	}
	var gwErr *GatewayError
	if !stdErrors.As(err, &gwErr) || gwErr.StatusCode != 502 {
		t.Fatalf("unexpected gateway error: %+v", gwErr)
	}
	if !strings.Contains(err.Error(), "status 502") {
		t.Fatalf("unexpected message %q", err.Error())
	}

	noStatus := &GatewayError{Op: "refund", Err: cause}
	if noStatus.Error() != "gateway refund: timeout" {
		t.Fatalf("unexpected message %q", noStatus.Error())
	}
}

func TestHelpers(t *testing.T) {
	if err := Validation("requirements %s", "missing"); !stdErrors.Is(err, ErrValidation) || !strings.Contains(err.Error(), "requirements missing") {
		t.Fatalf("unexpected validation error %v", err)
	}
	if err := Transition("pending", "completed"); !stdErrors.Is(err, ErrInvalidTransition) || !strings.Contains(err.Error(), "pending -> completed") {
		t.Fatalf("unexpected transition error %v", err)
	}
}
