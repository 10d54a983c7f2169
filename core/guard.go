package core

import "context"

type GuardName string

const (
	GuardAuthenticate GuardName = "authenticate"
	GuardSession      GuardName = "session"
	GuardAdmin        GuardName = "admin"
)

// GuardRequest is the framework-agnostic view of a request that guards
// inspect. Guards may enrich it (the authenticate guard sets Principal).
type GuardRequest struct {
	AccessToken  string
	SessionToken string
	Principal    *Principal
	Session      *Session
}

// Decision is the verdict of a single guard
type Decision struct {
	Allowed bool
	Reason  error
}

func Continue() Decision {
	return Decision{Allowed: true}
}

func Reject(reason error) Decision {
	return Decision{Reason: reason}
}

// Guard is a capability check executed before a handler
type Guard interface {
	Name() GuardName
	Check(ctx context.Context, req *GuardRequest) Decision
}

// GuardFunc adapts a plain function to the Guard interface
type GuardFunc struct {
	GuardName GuardName
	Fn        func(ctx context.Context, req *GuardRequest) Decision
}

func (g GuardFunc) Name() GuardName { return g.GuardName }

func (g GuardFunc) Check(ctx context.Context, req *GuardRequest) Decision {
	return g.Fn(ctx, req)
}

// GuardChain runs guards in order and stops at the first rejection
type GuardChain []Guard

// Run returns the first rejecting guard's decision along with its name, or
// Continue with an empty name when every guard passes.
func (c GuardChain) Run(ctx context.Context, req *GuardRequest) (Decision, GuardName) {
	for _, g := range c {
		if d := g.Check(ctx, req); !d.Allowed {
			return d, g.Name()
		}
	}
	return Continue(), ""
}
