package pgx

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lborres/arena/core"
)

const userColumns = `id::text, name, email, role, score, solved, password_hash, created_at, updated_at`

func scanUser(row rowScanner) (*core.User, error) {
	user := &core.User{}
	var role string
	err := row.Scan(&user.ID, &user.Name, &user.Email, &role, &user.Score, &user.Solved, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	user.Role = core.Role(role)
	return user, nil
}

func (a *Adapter) CreateUser(ctx context.Context, user *core.User) error {
	query := `INSERT INTO public.users (id, name, email, role, password_hash)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING score, solved, created_at, updated_at`

	uid, err := parseUserID(user.ID)
	if err != nil {
		return fmt.Errorf("%w: user id must be a uuid", core.ErrInvalidInput)
	}

	err = a.pool.QueryRow(ctx, query, uid, user.Name, user.Email, string(user.Role), user.PasswordHash).
		Scan(&user.Score, &user.Solved, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (a *Adapter) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	uid, err := parseUserID(id)
	if err != nil {
		return nil, err
	}
	q := `SELECT ` + userColumns + ` FROM public.users WHERE id = $1`

	user, err := scanUser(a.pool.QueryRow(ctx, q, uid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (a *Adapter) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	q := `SELECT ` + userColumns + ` FROM public.users WHERE email = $1`

	user, err := scanUser(a.pool.QueryRow(ctx, q, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (a *Adapter) ListUsers(ctx context.Context) ([]*core.User, error) {
	q := `SELECT ` + userColumns + ` FROM public.users ORDER BY created_at`
	return a.queryUsers(ctx, q)
}

func (a *Adapter) queryUsers(ctx context.Context, q string, args ...any) ([]*core.User, error) {
	rows, err := a.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*core.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (a *Adapter) UpdateUser(ctx context.Context, user *core.User) error {
	uid, err := parseUserID(user.ID)
	if err != nil {
		return err
	}
	q := `UPDATE public.users SET name = $1, email = $2, role = $3, updated_at = now() WHERE id = $4 RETURNING updated_at`
	err = a.pool.QueryRow(ctx, q, user.Name, user.Email, string(user.Role), uid).Scan(&user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return core.ErrUserNotFound
		}
		if isUniqueViolation(err) {
			return core.ErrUserExists
		}
		return err
	}
	return nil
}

// DeleteUser removes the user; submissions and sessions cascade
func (a *Adapter) DeleteUser(ctx context.Context, id string) error {
	uid, err := parseUserID(id)
	if err != nil {
		return err
	}
	tag, err := a.pool.Exec(ctx, `DELETE FROM public.users WHERE id = $1`, uid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrUserNotFound
	}
	return nil
}
