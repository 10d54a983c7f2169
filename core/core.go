package core

import (
	"fmt"
	"log/slog"
	"time"
)

type SessionConfig struct {
	// MaxAge is how long a session token stays valid
	MaxAge time.Duration
	// RefreshMaxAge is how long the refresh token can rotate the session
	RefreshMaxAge time.Duration
	// AccessTokenTTL bounds the signed access token
	AccessTokenTTL time.Duration
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		MaxAge:         SessionTokenMaxAge,
		RefreshMaxAge:  RefreshTokenMaxAge,
		AccessTokenTTL: time.Hour,
	}
}

// Endpoint describes a route independently of the HTTP framework
type Endpoint struct {
	Path        string
	Method      string
	OperationID string
	Description string
	Guards      []GuardName
}

// Arena is the assembled application handed to the HTTP adapter
type Arena struct {
	Accounts  AccountService
	Issuer    *CredentialIssuer
	Guards    map[GuardName]Guard
	Endpoints []Endpoint
	BasePath  string
	Logger    *slog.Logger
}

// Chain resolves guard names into an executable chain. An unknown name is
// an error so that a route is never registered with fewer guards than it
// declares.
func (a *Arena) Chain(names []GuardName) (GuardChain, error) {
	chain := make(GuardChain, 0, len(names))
	for _, name := range names {
		g, ok := a.Guards[name]
		if !ok {
			return nil, fmt.Errorf("unknown guard %q", name)
		}
		chain = append(chain, g)
	}
	return chain, nil
}
