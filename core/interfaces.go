package core

import (
	"context"
	"time"
)

// Ports define interfaces for external dependencies

// ============================================
// STORAGE PORTS (Database operations)
// ============================================

// SessionStorage defines session-related database operations
type SessionStorage interface {
	CreateSession(ctx context.Context, session *Session) error
	GetSessionByHash(ctx context.Context, tokenHash string) (*Session, error)
	GetSessionByRefreshHash(ctx context.Context, refreshHash string) (*Session, error)
	DeleteSessionByID(ctx context.Context, id string) error
	DeleteUserSessions(ctx context.Context, userID string) (int, error)
	DeleteExpiredSessions(ctx context.Context) (int, error)
}

// UserStorage defines user-related database operations
type UserStorage interface {
	CreateUser(ctx context.Context, u *User) error
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	UpdateUser(ctx context.Context, u *User) error
	DeleteUser(ctx context.Context, id string) error
}

// SubmissionStorage defines submission and scoring operations
type SubmissionStorage interface {
	AddSubmission(ctx context.Context, s *Submission) error
	GetUserSubmissions(ctx context.Context, userID string) ([]*Submission, error)
	AddScore(ctx context.Context, userID string, points int) (*User, error)
	// TopUsers returns users ordered by score, highest first
	TopUsers(ctx context.Context, limit int) ([]*User, error)
}

type StorageAdapter interface {
	UserStorage
	SubmissionStorage
	SessionStorage
}

// ============================================
// CACHE PORT
// ============================================

// Cache defines session caching operations, keyed by session token hash
type Cache interface {
	Get(ctx context.Context, tokenHash string) (*Session, error)
	Set(ctx context.Context, tokenHash string, session *Session) error
	Delete(ctx context.Context, tokenHash string) error
	Clear(ctx context.Context) error
}

// CacheWithStats extends Cache with statistics tracking
type CacheWithStats interface {
	Cache
	Stats() CacheStats
}

// CacheConfig configures cache behavior
type CacheConfig struct {
	TTL     time.Duration
	MaxSize int
}

// CacheStats tracks cache performance metrics
type CacheStats struct {
	Hits      int64         `json:"hits"`
	Misses    int64         `json:"misses"`
	Sets      int64         `json:"sets"`
	Deletes   int64         `json:"deletes"`
	Evictions int64         `json:"evictions"`
	Size      int           `json:"size"`
	TTL       time.Duration `json:"ttl"`
}

// ============================================
// EVENTS PORT
// ============================================

// Event subjects
const (
	EventUserCreated     = "users.created"
	EventUserDeleted     = "users.deleted"
	EventScoreUpdated    = "scores.updated"
	EventSubmissionAdded = "submissions.added"
)

type EventPublisher interface {
	Publish(ctx context.Context, subject string, payload any) error
}

// ============================================
// ACCOUNT SERVICE (for HTTP adapters)
// ============================================

// AccountService is the contract the HTTP surface delegates to
type AccountService interface {
	CreateUser(ctx context.Context, input CreateUserInput, meta ClientMeta) (CreationResult, error)
	RefreshSession(ctx context.Context, refreshToken string, meta ClientMeta) (CreationResult, error)
	GetAllUsers(ctx context.Context) ([]*User, error)
	GetUser(ctx context.Context, id string) (*User, error)
	UpdateUser(ctx context.Context, id string, input UpdateUserInput) (*User, error)
	AddSubmission(ctx context.Context, id string, input SubmissionInput) (*Submission, error)
	UpdateScore(ctx context.Context, id string, points int) (*User, error)
	DeleteUser(ctx context.Context, id string) error
	GetLeaderboard(ctx context.Context) ([]LeaderboardEntry, error)
}

// ============================================
// HTTP PORT
// ============================================

type HTTPAdapter interface {
	RegisterRoutes(arena *Arena) error
}
