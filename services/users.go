package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lborres/arena/core"
	"github.com/lborres/arena/pkg/crypto"
)

const defaultLeaderboardSize = 100

// UserService implements core.AccountService on top of a storage adapter
type UserService struct {
	db              core.StorageAdapter
	passwordHasher  crypto.PasswordHandler
	sessionManager  *SessionManager
	tokens          *AccessTokenSigner
	events          core.EventPublisher // optional
	ids             *crypto.IDGenerator
	logger          *slog.Logger
	leaderboardSize int
	now             func() time.Time
}

var _ core.AccountService = (*UserService)(nil)

type UserServiceOption func(*UserService)

// WithEvents publishes domain events after successful mutations
func WithEvents(p core.EventPublisher) UserServiceOption {
	return func(s *UserService) { s.events = p }
}

func WithLogger(l *slog.Logger) UserServiceOption {
	return func(s *UserService) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithLeaderboardSize(n int) UserServiceOption {
	return func(s *UserService) {
		if n > 0 {
			s.leaderboardSize = n
		}
	}
}

func NewUserService(db core.StorageAdapter, passwordHasher crypto.PasswordHandler, sessionManager *SessionManager, tokens *AccessTokenSigner, opts ...UserServiceOption) *UserService {
	s := &UserService{
		db:              db,
		passwordHasher:  passwordHasher,
		sessionManager:  sessionManager,
		tokens:          tokens,
		ids:             crypto.DefaultIDGenerator(),
		logger:          slog.Default(),
		leaderboardSize: defaultLeaderboardSize,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateUser registers a user and opens a first session. An email that is
// already taken yields an informational result rather than an error.
func (s *UserService) CreateUser(ctx context.Context, input core.CreateUserInput, meta core.ClientMeta) (core.CreationResult, error) {
	if err := input.Validate(); err != nil {
		return core.CreationResult{}, err
	}
	email := normalizeEmail(input.Email)

	// Step 1: Check if user already exists
	existing, err := s.db.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, core.ErrUserNotFound) {
		return core.CreationResult{}, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return core.Informational(core.ErrUserExists.Error()), nil
	}

	// Step 2: Hash the password
	hashedPassword, err := s.passwordHasher.Hash(input.Password)
	if err != nil {
		return core.CreationResult{}, fmt.Errorf("failed to hash password: %w", err)
	}

	// Step 3: Create the user
	now := s.now()
	user := &core.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		Role:         core.RoleUser,
		PasswordHash: hashedPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.db.CreateUser(ctx, user); err != nil {
		// Lost a race with a concurrent sign up for the same email
		if errors.Is(err, core.ErrUserExists) {
			return core.Informational(core.ErrUserExists.Error()), nil
		}
		return core.CreationResult{}, fmt.Errorf("failed to create user: %w", err)
	}

	// Step 4: Open a session and sign the access token
	account, err := s.issue(ctx, user, meta)
	if err != nil {
		// Without credentials the account is unreachable; drop it so the
		// email can sign up again
		if delErr := s.db.DeleteUser(ctx, user.ID); delErr != nil {
			s.logger.Error("failed to remove user after session failure", "user_id", user.ID, "error", delErr)
		}
		return core.CreationResult{}, err
	}

	s.publish(ctx, core.EventUserCreated, map[string]any{
		"id":   user.ID,
		"name": user.Name,
	})

	return core.Created(account), nil
}

// RefreshSession rotates the session behind refreshToken and signs a new
// access token for it
func (s *UserService) RefreshSession(ctx context.Context, refreshToken string, meta core.ClientMeta) (core.CreationResult, error) {
	rotated, err := s.sessionManager.Rotate(ctx, refreshToken, meta)
	if err != nil {
		return core.CreationResult{}, err
	}

	user, err := s.db.GetUserByID(ctx, rotated.Session.UserID)
	if err != nil {
		// The user vanished between rotation and lookup; drop the new session
		_ = s.sessionManager.Destroy(ctx, rotated.Session)
		return core.CreationResult{}, err
	}

	accessToken, err := s.tokens.Sign(user, rotated.Session.ID)
	if err != nil {
		return core.CreationResult{}, err
	}

	return core.Created(&core.IssuedAccount{
		ID:           user.ID,
		AccessToken:  accessToken,
		SessionToken: rotated.Token,
		RefreshToken: rotated.RefreshToken,
		Profile:      user,
	}), nil
}

func (s *UserService) issue(ctx context.Context, user *core.User, meta core.ClientMeta) (*core.IssuedAccount, error) {
	sessionResult, err := s.sessionManager.Create(ctx, user.ID, meta)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	accessToken, err := s.tokens.Sign(user, sessionResult.Session.ID)
	if err != nil {
		return nil, err
	}

	return &core.IssuedAccount{
		ID:           user.ID,
		AccessToken:  accessToken,
		SessionToken: sessionResult.Token,
		RefreshToken: sessionResult.RefreshToken,
		Profile:      user,
	}, nil
}

func (s *UserService) GetAllUsers(ctx context.Context) ([]*core.User, error) {
	users, err := s.db.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*core.User, error) {
	if id == "" {
		return nil, core.ErrUserNotFound
	}
	return s.db.GetUserByID(ctx, id)
}

func (s *UserService) UpdateUser(ctx context.Context, id string, input core.UpdateUserInput) (*core.User, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *user
	if input.Name != nil {
		updated.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if email != user.Email {
			other, err := s.db.GetUserByEmail(ctx, email)
			if err != nil && !errors.Is(err, core.ErrUserNotFound) {
				return nil, fmt.Errorf("failed to check existing user: %w", err)
			}
			if other != nil {
				return nil, core.ErrUserExists
			}
		}
		updated.Email = email
	}
	updated.UpdatedAt = s.now()

	if err := s.db.UpdateUser(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return &updated, nil
}

func (s *UserService) AddSubmission(ctx context.Context, id string, input core.SubmissionInput) (*core.Submission, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.GetUser(ctx, id); err != nil {
		return nil, err
	}

	submissionID, err := s.ids.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate submission id: %w", err)
	}

	submission := &core.Submission{
		ID:          submissionID,
		UserID:      id,
		ProblemID:   input.ProblemID,
		Difficulty:  input.Difficulty,
		Status:      input.Status,
		Language:    input.Language,
		SubmittedAt: s.now(),
	}
	if err := s.db.AddSubmission(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to add submission: %w", err)
	}

	s.publish(ctx, core.EventSubmissionAdded, submission)
	return submission, nil
}

func (s *UserService) UpdateScore(ctx context.Context, id string, points int) (*core.User, error) {
	if id == "" {
		return nil, core.ErrUserNotFound
	}
	if points < 0 {
		return nil, fmt.Errorf("%w: points must not be negative", core.ErrInvalidInput)
	}

	user, err := s.db.AddScore(ctx, id, points)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, core.EventScoreUpdated, map[string]any{
		"id":     user.ID,
		"points": points,
		"score":  user.Score,
	})
	return user, nil
}

// DeleteUser removes the user together with every session it owns
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if _, err := s.GetUser(ctx, id); err != nil {
		return err
	}

	if _, err := s.sessionManager.DestroyAllUserSessions(ctx, id); err != nil {
		return err
	}

	if err := s.db.DeleteUser(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, core.EventUserDeleted, map[string]any{"id": id})
	return nil
}

func (s *UserService) GetLeaderboard(ctx context.Context) ([]core.LeaderboardEntry, error) {
	users, err := s.db.TopUsers(ctx, s.leaderboardSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	return rankUsers(users), nil
}

// rankUsers assigns competition ranks to users already ordered by score:
// equal scores share a rank and the next distinct score skips ahead.
func rankUsers(users []*core.User) []core.LeaderboardEntry {
	entries := make([]core.LeaderboardEntry, 0, len(users))
	for i, u := range users {
		rank := i + 1
		if i > 0 && u.Score == users[i-1].Score {
			rank = entries[i-1].Rank
		}
		entries = append(entries, core.LeaderboardEntry{
			Rank:   rank,
			UserID: u.ID,
			Name:   u.Name,
			Score:  u.Score,
			Solved: u.Solved,
		})
	}
	return entries
}

// publish never fails the caller; events are best effort
func (s *UserService) publish(ctx context.Context, subject string, payload any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, subject, payload); err != nil {
		s.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
