package pgx

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lborres/arena/core"
)

// AddSubmission stores s and, for accepted submissions, bumps the user's
// solved counter in the same transaction.
func (a *Adapter) AddSubmission(ctx context.Context, s *core.Submission) error {
	uid, err := parseUserID(s.UserID)
	if err != nil {
		return err
	}

	return pgx.BeginFunc(ctx, a.pool, func(tx pgx.Tx) error {
		insert := `INSERT INTO public.submissions (id, user_id, problem_id, difficulty, status, language, submitted_at)
		           VALUES ($1, $2, $3, $4, $5, $6, $7)`
		if _, err := tx.Exec(ctx, insert, s.ID, uid, s.ProblemID, s.Difficulty, s.Status, s.Language, s.SubmittedAt); err != nil {
			return fmt.Errorf("insert submission: %w", err)
		}

		if s.Status != core.SubmissionAccepted {
			return nil
		}

		tag, err := tx.Exec(ctx, `UPDATE public.users SET solved = solved + 1, updated_at = now() WHERE id = $1`, uid)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return core.ErrUserNotFound
		}
		return nil
	})
}

func (a *Adapter) GetUserSubmissions(ctx context.Context, userID string) ([]*core.Submission, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	q := `SELECT id, user_id::text, problem_id, difficulty, status, language, submitted_at
	      FROM public.submissions WHERE user_id = $1 ORDER BY submitted_at DESC`

	rows, err := a.pool.Query(ctx, q, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	submissions := make([]*core.Submission, 0)
	for rows.Next() {
		s := &core.Submission{}
		if err := rows.Scan(&s.ID, &s.UserID, &s.ProblemID, &s.Difficulty, &s.Status, &s.Language, &s.SubmittedAt); err != nil {
			return nil, err
		}
		submissions = append(submissions, s)
	}
	return submissions, rows.Err()
}

func (a *Adapter) AddScore(ctx context.Context, userID string, points int) (*core.User, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	q := `UPDATE public.users SET score = score + $2, updated_at = now() WHERE id = $1 RETURNING ` + userColumns

	user, err := scanUser(a.pool.QueryRow(ctx, q, uid, points))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// TopUsers orders by score, earliest sign up first among equals
func (a *Adapter) TopUsers(ctx context.Context, limit int) ([]*core.User, error) {
	q := `SELECT ` + userColumns + ` FROM public.users ORDER BY score DESC, created_at ASC LIMIT $1`
	return a.queryUsers(ctx, q, limit)
}
