package pgx

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/lborres/arena/core"
)

const sessionColumns = `id, user_id::text, token_hash, refresh_hash, ip_address, user_agent, expires_at, refresh_expires_at, created_at, updated_at`

func scanSession(row rowScanner) (*core.Session, error) {
	s := &core.Session{}
	err := row.Scan(&s.ID, &s.UserID, &s.TokenHash, &s.RefreshHash, &s.IPAddress, &s.UserAgent, &s.ExpiresAt, &s.RefreshExpiresAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrSessionNotFound
		}
		return nil, err
	}
	return s, nil
}

func (a *Adapter) CreateSession(ctx context.Context, s *core.Session) error {
	query := `INSERT INTO public.sessions (id, user_id, token_hash, refresh_hash, ip_address, user_agent, expires_at, refresh_expires_at, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	uid, err := parseUserID(s.UserID)
	if err != nil {
		return err
	}

	_, err = a.pool.Exec(ctx, query,
		s.ID, uid, s.TokenHash, s.RefreshHash, s.IPAddress, s.UserAgent, s.ExpiresAt, s.RefreshExpiresAt, s.CreatedAt, s.UpdatedAt,
	)
	return err
}

func (a *Adapter) GetSessionByHash(ctx context.Context, tokenHash string) (*core.Session, error) {
	q := `SELECT ` + sessionColumns + ` FROM public.sessions WHERE token_hash = $1`
	return scanSession(a.pool.QueryRow(ctx, q, tokenHash))
}

func (a *Adapter) GetSessionByRefreshHash(ctx context.Context, refreshHash string) (*core.Session, error) {
	q := `SELECT ` + sessionColumns + ` FROM public.sessions WHERE refresh_hash = $1`
	return scanSession(a.pool.QueryRow(ctx, q, refreshHash))
}

func (a *Adapter) DeleteSessionByID(ctx context.Context, id string) error {
	tag, err := a.pool.Exec(ctx, `DELETE FROM public.sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrSessionNotFound
	}
	return nil
}

func (a *Adapter) DeleteUserSessions(ctx context.Context, userID string) (int, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		// a non-uuid owns no sessions
		return 0, nil
	}
	tag, err := a.pool.Exec(ctx, `DELETE FROM public.sessions WHERE user_id = $1`, uid)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// DeleteExpiredSessions removes sessions that can no longer be refreshed
func (a *Adapter) DeleteExpiredSessions(ctx context.Context) (int, error) {
	tag, err := a.pool.Exec(ctx, `DELETE FROM public.sessions WHERE refresh_expires_at < now()`)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
