package services

import (
	"context"
	"errors"
	"slices"

	"github.com/lborres/arena/core"
)

// AuthenticateGuard verifies the access token and records the caller
type AuthenticateGuard struct {
	tokens *AccessTokenSigner
}

func NewAuthenticateGuard(tokens *AccessTokenSigner) *AuthenticateGuard {
	return &AuthenticateGuard{tokens: tokens}
}

func (g *AuthenticateGuard) Name() core.GuardName { return core.GuardAuthenticate }

func (g *AuthenticateGuard) Check(_ context.Context, req *core.GuardRequest) core.Decision {
	if req.AccessToken == "" {
		return core.Reject(core.ErrMissingAccessToken)
	}

	principal, err := g.tokens.Verify(req.AccessToken)
	if err != nil {
		return core.Reject(err)
	}

	req.Principal = principal
	return core.Continue()
}

// SessionGuard requires a live session token. When a principal is already
// known the session must be the one its access token was minted for.
type SessionGuard struct {
	sessions *SessionManager
}

func NewSessionGuard(sessions *SessionManager) *SessionGuard {
	return &SessionGuard{sessions: sessions}
}

func (g *SessionGuard) Name() core.GuardName { return core.GuardSession }

func (g *SessionGuard) Check(ctx context.Context, req *core.GuardRequest) core.Decision {
	if req.SessionToken == "" {
		return core.Reject(core.ErrMissingSessionToken)
	}

	session, err := g.sessions.Verify(ctx, req.SessionToken)
	if err != nil {
		if errors.Is(err, core.ErrSessionExpired) || errors.Is(err, core.ErrSessionNotFound) || errors.Is(err, core.ErrInvalidToken) {
			return core.Reject(err)
		}
		return core.Reject(errors.Join(core.ErrInvalidToken, err))
	}

	if p := req.Principal; p != nil {
		if p.UserID != session.UserID || (p.SessionID != "" && p.SessionID != session.ID) {
			return core.Reject(core.ErrSessionMismatch)
		}
	}

	req.Session = session
	return core.Continue()
}

// RoleGuard admits principals holding one of the listed roles
type RoleGuard struct {
	name  core.GuardName
	roles []core.Role
}

func NewRoleGuard(name core.GuardName, roles ...core.Role) *RoleGuard {
	return &RoleGuard{name: name, roles: roles}
}

// NewAdminGuard is the role guard registered under core.GuardAdmin
func NewAdminGuard() *RoleGuard {
	return NewRoleGuard(core.GuardAdmin, core.RoleAdmin)
}

func (g *RoleGuard) Name() core.GuardName { return g.name }

func (g *RoleGuard) Check(_ context.Context, req *core.GuardRequest) core.Decision {
	if req.Principal == nil {
		return core.Reject(core.ErrMissingAccessToken)
	}
	if !slices.Contains(g.roles, req.Principal.Role) {
		return core.Reject(core.ErrForbidden)
	}
	return core.Continue()
}

// DefaultGuards builds the guards every arena route may reference
func DefaultGuards(tokens *AccessTokenSigner, sessions *SessionManager) map[core.GuardName]core.Guard {
	guards := []core.Guard{
		NewAuthenticateGuard(tokens),
		NewSessionGuard(sessions),
		NewAdminGuard(),
	}
	m := make(map[core.GuardName]core.Guard, len(guards))
	for _, g := range guards {
		m[g.Name()] = g
	}
	return m
}
