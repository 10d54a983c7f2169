package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lborres/arena/core"
)

const accessTokenIssuer = "arena"

// AccessClaims is the payload of a signed access token
type AccessClaims struct {
	Role      core.Role `json:"role"`
	SessionID string    `json:"sid"`
	jwt.RegisteredClaims
}

// AccessTokenSigner mints and verifies HS256 access tokens
type AccessTokenSigner struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewAccessTokenSigner(secret string, ttl time.Duration) *AccessTokenSigner {
	if ttl <= 0 {
		ttl = core.DefaultSessionConfig().AccessTokenTTL
	}
	return &AccessTokenSigner{key: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *AccessTokenSigner) Sign(user *core.User, sessionID string) (string, error) {
	now := s.now()
	claims := AccessClaims{
		Role:      user.Role,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    accessTokenIssuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, issuer and expiry and returns the caller identity
func (s *AccessTokenSigner) Verify(token string) (*core.Principal, error) {
	if token == "" {
		return nil, core.ErrMissingAccessToken
	}

	claims := &AccessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(accessTokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidAccessToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, core.ErrInvalidAccessToken
	}

	return &core.Principal{
		UserID:    claims.Subject,
		Role:      claims.Role,
		SessionID: claims.SessionID,
	}, nil
}
