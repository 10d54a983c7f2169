package core

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a competitor on the board
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	Score        int       `json:"score"`
	Solved       int       `json:"solved"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Submission statuses
const (
	SubmissionAccepted = "accepted"
	SubmissionRejected = "rejected"
	SubmissionPending  = "pending"
)

// Submission is a single attempt at a problem
type Submission struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	ProblemID   string    `json:"problemId"`
	Difficulty  string    `json:"difficulty"`
	Status      string    `json:"status"`
	Language    string    `json:"language,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Session represents an active login session.
//
// A session is addressed by two opaque secrets: the session token
// (short-lived, sent on every guarded request) and the refresh token
// (long-lived, only used to rotate the session).
type Session struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	TokenHash        string    `json:"-"` // Never expose in JSON (security!)
	RefreshHash      string    `json:"-"`
	IPAddress        string    `json:"ipAddress"`
	UserAgent        string    `json:"userAgent"`
	ExpiresAt        time.Time `json:"expiresAt"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// CreateSessionResult carries the raw secrets of a freshly created session.
// Only hashes are ever persisted.
type CreateSessionResult struct {
	Session      *Session `json:"session"`
	Token        string   `json:"token"`
	RefreshToken string   `json:"refreshToken"`
}

type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
	Solved int    `json:"solved"`
}

// Principal is the caller identity established by the authenticate guard
type Principal struct {
	UserID    string
	Role      Role
	SessionID string
}

// ClientMeta describes the client a session is issued to
type ClientMeta struct {
	IPAddress string
	UserAgent string
}
