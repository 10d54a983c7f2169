package pgx

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lborres/arena/core"
)

func TestMigrationURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "postgres://u:p@localhost:5432/arena?sslmode=disable", want: "pgx5://u:p@localhost:5432/arena?sslmode=disable"},
		{in: "postgresql://localhost/arena", want: "pgx5://localhost/arena"},
		{in: "pgx5://localhost/arena", want: "pgx5://localhost/arena"},
	}

	for _, test := range tests {
		if got := migrationURL(test.in); got != test.want {
			t.Errorf("migrationURL(%q) = %q, want %q", test.in, got, test.want)
		}
	}
}

func TestParseUserID(t *testing.T) {
	if _, err := parseUserID("not-a-uuid"); !errors.Is(err, core.ErrUserNotFound) {
		t.Errorf("parseUserID() error = %v, want %v", err, core.ErrUserNotFound)
	}
	id := uuid.NewString()
	got, err := parseUserID(id)
	if err != nil || got.String() != id {
		t.Errorf("parseUserID(%q) = %v, %v", id, got, err)
	}
}

// newTestAdapter connects to the database named by ARENA_TEST_DATABASE_URL,
// migrates it and truncates all tables. Tests skip without it.
func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	url := os.Getenv("ARENA_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("ARENA_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	if err := Migrate(url); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatalf("pgxpool.New() error = %v", err)
	}
	truncate := func() {
		_, _ = pool.Exec(ctx, `TRUNCATE public.sessions, public.submissions, public.users`)
	}
	truncate()
	t.Cleanup(func() {
		truncate()
		pool.Close()
	})
	return New(pool)
}

func newTestUser(name string) *core.User {
	return &core.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        name + "@example.com",
		Role:         core.RoleUser,
		PasswordHash: "hash",
	}
}

func TestAdapter_Users(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	// Arrange
	alice := newTestUser("alice")
	if err := a.CreateUser(ctx, alice); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	// Duplicate email
	dup := newTestUser("alice")
	if err := a.CreateUser(ctx, dup); !errors.Is(err, core.ErrUserExists) {
		t.Errorf("duplicate CreateUser() error = %v, want %v", err, core.ErrUserExists)
	}

	got, err := a.GetUserByEmail(ctx, "alice@example.com")
	if err != nil || got.ID != alice.ID {
		t.Fatalf("GetUserByEmail() = %+v, %v", got, err)
	}

	alice.Name = "Alice"
	if err := a.UpdateUser(ctx, alice); err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}
	got, _ = a.GetUserByID(ctx, alice.ID)
	if got.Name != "Alice" {
		t.Errorf("Name = %q, want Alice", got.Name)
	}

	if _, err := a.GetUserByID(ctx, "missing"); !errors.Is(err, core.ErrUserNotFound) {
		t.Errorf("GetUserByID(missing) error = %v", err)
	}

	if err := a.DeleteUser(ctx, alice.ID); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}
	if err := a.DeleteUser(ctx, alice.ID); !errors.Is(err, core.ErrUserNotFound) {
		t.Errorf("second DeleteUser() error = %v", err)
	}
}

func TestAdapter_Scores(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	users := []*core.User{newTestUser("a"), newTestUser("b"), newTestUser("c")}
	for _, u := range users {
		if err := a.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser() error = %v", err)
		}
	}

	if _, err := a.AddScore(ctx, users[1].ID, 5); err != nil {
		t.Fatalf("AddScore() error = %v", err)
	}
	updated, err := a.AddScore(ctx, users[2].ID, 3)
	if err != nil || updated.Score != 3 {
		t.Fatalf("AddScore() = %+v, %v", updated, err)
	}

	err = a.AddSubmission(ctx, &core.Submission{
		ID: "sub-1", UserID: users[0].ID, ProblemID: "p1", Difficulty: "easy",
		Status: core.SubmissionAccepted, SubmittedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("AddSubmission() error = %v", err)
	}

	top, err := a.TopUsers(ctx, 2)
	if err != nil {
		t.Fatalf("TopUsers() error = %v", err)
	}
	if len(top) != 2 || top[0].ID != users[1].ID || top[1].ID != users[2].ID {
		t.Errorf("TopUsers() order unexpected: %+v", top)
	}

	solver, _ := a.GetUserByID(ctx, users[0].ID)
	if solver.Solved != 1 {
		t.Errorf("Solved = %d, want 1", solver.Solved)
	}
	subs, _ := a.GetUserSubmissions(ctx, users[0].ID)
	if len(subs) != 1 {
		t.Errorf("len(submissions) = %d, want 1", len(subs))
	}
}

func TestAdapter_Sessions(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	user := newTestUser("sess")
	if err := a.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	live := &core.Session{
		ID: "s-live", UserID: user.ID, TokenHash: "t1", RefreshHash: "r1",
		ExpiresAt: now.Add(time.Hour), RefreshExpiresAt: now.Add(24 * time.Hour),
		CreatedAt: now, UpdatedAt: now,
	}
	stale := &core.Session{
		ID: "s-stale", UserID: user.ID, TokenHash: "t2", RefreshHash: "r2",
		ExpiresAt: now.Add(-2 * time.Hour), RefreshExpiresAt: now.Add(-time.Hour),
		CreatedAt: now, UpdatedAt: now,
	}
	for _, s := range []*core.Session{live, stale} {
		if err := a.CreateSession(ctx, s); err != nil {
			t.Fatalf("CreateSession() error = %v", err)
		}
	}

	got, err := a.GetSessionByHash(ctx, "t1")
	if err != nil || got.ID != live.ID || got.UserID != user.ID {
		t.Fatalf("GetSessionByHash() = %+v, %v", got, err)
	}
	if got, err := a.GetSessionByRefreshHash(ctx, "r1"); err != nil || got.ID != live.ID {
		t.Fatalf("GetSessionByRefreshHash() = %+v, %v", got, err)
	}
	if _, err := a.GetSessionByHash(ctx, "nope"); !errors.Is(err, core.ErrSessionNotFound) {
		t.Errorf("GetSessionByHash(nope) error = %v", err)
	}

	purged, err := a.DeleteExpiredSessions(ctx)
	if err != nil || purged != 1 {
		t.Errorf("DeleteExpiredSessions() = %d, %v; want 1", purged, err)
	}

	count, err := a.DeleteUserSessions(ctx, user.ID)
	if err != nil || count != 1 {
		t.Errorf("DeleteUserSessions() = %d, %v; want 1", count, err)
	}
	if err := a.DeleteSessionByID(ctx, live.ID); !errors.Is(err, core.ErrSessionNotFound) {
		t.Errorf("DeleteSessionByID() after purge error = %v", err)
	}
}
