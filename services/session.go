package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lborres/arena/core"
	"github.com/lborres/arena/pkg/crypto"
	"github.com/lborres/arena/pkg/metrics"
)

type SessionManager struct {
	config  core.SessionConfig
	storage core.SessionStorage
	cache   core.Cache // optional, can be nil if caching is disabled
	ids     *crypto.IDGenerator
	logger  *slog.Logger
	now     func() time.Time
}

func NewSessionManager(config core.SessionConfig, storage core.SessionStorage, cache core.Cache, logger *slog.Logger) *SessionManager {
	defaults := core.DefaultSessionConfig()
	if config.MaxAge <= 0 {
		config.MaxAge = defaults.MaxAge
	}
	if config.RefreshMaxAge <= 0 {
		config.RefreshMaxAge = defaults.RefreshMaxAge
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SessionManager{
		config:  config,
		storage: storage,
		cache:   cache,
		ids:     crypto.DefaultIDGenerator(),
		logger:  logger,
		now:     time.Now,
	}
}

// Create opens a session for userID and returns its raw secrets
func (sm *SessionManager) Create(ctx context.Context, userID string, meta core.ClientMeta) (*core.CreateSessionResult, error) {
	// Generate cryptographic material
	sessionToken, err := crypto.NewSecret(crypto.DefaultSecretLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	refreshToken, err := crypto.NewSecret(crypto.DefaultSecretLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	sessionID, err := sm.ids.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	now := sm.now()
	session := &core.Session{
		ID:               sessionID,
		UserID:           userID,
		TokenHash:        sessionToken.Hash,
		RefreshHash:      refreshToken.Hash,
		IPAddress:        meta.IPAddress,
		UserAgent:        meta.UserAgent,
		ExpiresAt:        now.Add(sm.config.MaxAge),
		RefreshExpiresAt: now.Add(sm.config.RefreshMaxAge),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := sm.storage.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	// We don't fail the request if caching fails
	if sm.cache != nil {
		_ = sm.cache.Set(ctx, session.TokenHash, session)
	}

	return &core.CreateSessionResult{
		Session:      session,
		Token:        sessionToken.Secret,
		RefreshToken: refreshToken.Secret,
	}, nil
}

// Verify resolves a raw session token into its live session
func (sm *SessionManager) Verify(ctx context.Context, token string) (*core.Session, error) {
	if token == "" {
		return nil, core.ErrInvalidToken
	}

	tokenHash := crypto.HashSecret(token)

	// Try cache first if caching is enabled
	if sm.cache != nil {
		if session, err := sm.cache.Get(ctx, tokenHash); err == nil {
			metrics.SessionCacheLookups.WithLabelValues("hit").Inc()
			if sm.now().After(session.ExpiresAt) {
				_ = sm.cache.Delete(ctx, tokenHash)
				return nil, core.ErrSessionExpired
			}
			return session, nil
		}
		metrics.SessionCacheLookups.WithLabelValues("miss").Inc()
	}

	session, err := sm.storage.GetSessionByHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, core.ErrSessionNotFound) {
			return nil, core.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if sm.now().After(session.ExpiresAt) {
		if err := sm.storage.DeleteSessionByID(ctx, session.ID); err != nil {
			sm.logger.Warn("failed to delete expired session", "session_id", session.ID, "error", err)
		}
		return nil, core.ErrSessionExpired
	}

	if sm.cache != nil {
		_ = sm.cache.Set(ctx, tokenHash, session)
	}

	return session, nil
}

// Rotate exchanges a refresh token for a brand new session. The previous
// session, and with it the presented refresh token, stops working.
func (sm *SessionManager) Rotate(ctx context.Context, refreshToken string, meta core.ClientMeta) (*core.CreateSessionResult, error) {
	if refreshToken == "" {
		return nil, core.ErrInvalidRefreshToken
	}

	previous, err := sm.storage.GetSessionByRefreshHash(ctx, crypto.HashSecret(refreshToken))
	if err != nil {
		if errors.Is(err, core.ErrSessionNotFound) {
			return nil, core.ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if err := sm.Destroy(ctx, previous); err != nil {
		return nil, err
	}

	if sm.now().After(previous.RefreshExpiresAt) {
		return nil, core.ErrRefreshExpired
	}

	result, err := sm.Create(ctx, previous.UserID, meta)
	if err != nil {
		return nil, err
	}

	sm.logger.Debug("session rotated",
		"user_id", previous.UserID,
		"previous_session_id", previous.ID,
		"session_id", result.Session.ID,
	)

	return result, nil
}

// Destroy removes a single session from storage and cache
func (sm *SessionManager) Destroy(ctx context.Context, session *core.Session) error {
	if sm.cache != nil {
		_ = sm.cache.Delete(ctx, session.TokenHash)
	}

	if err := sm.storage.DeleteSessionByID(ctx, session.ID); err != nil && !errors.Is(err, core.ErrSessionNotFound) {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (sm *SessionManager) DestroyAllUserSessions(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, core.ErrUserNotFound
	}

	count, err := sm.storage.DeleteUserSessions(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete user sessions: %w", err)
	}

	// Clearing everything avoids fetching each session hash first
	if sm.cache != nil && count > 0 {
		_ = sm.cache.Clear(ctx)
	}

	return count, nil
}

// PurgeExpired deletes sessions whose refresh window has closed
func (sm *SessionManager) PurgeExpired(ctx context.Context) (int, error) {
	count, err := sm.storage.DeleteExpiredSessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	return count, nil
}
