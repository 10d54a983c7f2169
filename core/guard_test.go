package core

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func recordingGuard(name GuardName, calls *[]GuardName, reason error) Guard {
	return GuardFunc{
		GuardName: name,
		Fn: func(ctx context.Context, req *GuardRequest) Decision {
			*calls = append(*calls, name)
			if reason != nil {
				return Reject(reason)
			}
			return Continue()
		},
	}
}

// Requirement: guards run in declaration order and stop at the first rejection.
func TestGuardChain_Run(t *testing.T) {
	errDenied := errors.New("denied")

	tests := []struct {
		name         string
		rejectAt     GuardName
		wantAllowed  bool
		wantRejector GuardName
		wantCalls    []GuardName
	}{
		{
			name:        "all guards pass",
			wantAllowed: true,
			wantCalls:   []GuardName{GuardAuthenticate, GuardAdmin, GuardSession},
		},
		{
			name:         "first guard rejects",
			rejectAt:     GuardAuthenticate,
			wantRejector: GuardAuthenticate,
			wantCalls:    []GuardName{GuardAuthenticate},
		},
		{
			name:         "middle guard rejects",
			rejectAt:     GuardAdmin,
			wantRejector: GuardAdmin,
			wantCalls:    []GuardName{GuardAuthenticate, GuardAdmin},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			var calls []GuardName
			var chain GuardChain
			for _, name := range []GuardName{GuardAuthenticate, GuardAdmin, GuardSession} {
				var reason error
				if name == test.rejectAt {
					reason = errDenied
				}
				chain = append(chain, recordingGuard(name, &calls, reason))
			}

			// Act
			decision, rejector := chain.Run(context.Background(), &GuardRequest{})

			// Assert
			if decision.Allowed != test.wantAllowed {
				t.Errorf("Allowed = %v, want %v", decision.Allowed, test.wantAllowed)
			}
			if rejector != test.wantRejector {
				t.Errorf("rejector = %q, want %q", rejector, test.wantRejector)
			}
			if !test.wantAllowed && !errors.Is(decision.Reason, errDenied) {
				t.Errorf("Reason = %v, want %v", decision.Reason, errDenied)
			}
			if !reflect.DeepEqual(calls, test.wantCalls) {
				t.Errorf("calls = %v, want %v", calls, test.wantCalls)
			}
		})
	}
}

func TestArena_Chain_UnknownGuard(t *testing.T) {
	a := &Arena{Guards: map[GuardName]Guard{}}

	if _, err := a.Chain([]GuardName{GuardAuthenticate}); err == nil {
		t.Fatal("Chain() should fail for an unregistered guard")
	}
}

func TestArena_Chain_EmptyIsAllowed(t *testing.T) {
	a := &Arena{}

	chain, err := a.Chain(nil)
	if err != nil {
		t.Fatalf("Chain() error = %v", err)
	}
	if d, _ := chain.Run(context.Background(), &GuardRequest{}); !d.Allowed {
		t.Error("empty chain should allow")
	}
}
