package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/lborres/arena/core"
)

// FakeSessionStorage is a test-only fake implementing core.SessionStorage.
// It stores sessions in a map and exposes error fields for behavior injection.
type FakeSessionStorage struct {
	sessions  map[string]*core.Session
	mu        sync.RWMutex
	createErr error
	getErr    error
	deleteErr error
}

func NewFakeSessionStorage() *FakeSessionStorage {
	return &FakeSessionStorage{
		sessions: make(map[string]*core.Session),
	}
}

func (f *FakeSessionStorage) CreateSession(_ context.Context, s *core.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return f.createErr
	}

	f.sessions[s.TokenHash] = s
	return nil
}

func (f *FakeSessionStorage) GetSessionByHash(_ context.Context, tokenHash string) (*core.Session, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	s, ok := f.sessions[tokenHash]
	if !ok {
		return nil, core.ErrSessionNotFound
	}
	return s, nil
}

func (f *FakeSessionStorage) GetSessionByRefreshHash(_ context.Context, refreshHash string) (*core.Session, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, s := range f.sessions {
		if s.RefreshHash == refreshHash {
			return s, nil
		}
	}
	return nil, core.ErrSessionNotFound
}

func (f *FakeSessionStorage) DeleteSessionByID(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for k, s := range f.sessions {
		if s.ID == id {
			delete(f.sessions, k)
			return nil
		}
	}
	return core.ErrSessionNotFound
}

func (f *FakeSessionStorage) DeleteUserSessions(_ context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	count := 0
	for k, s := range f.sessions {
		if s.UserID == userID {
			delete(f.sessions, k)
			count++
		}
	}
	return count, nil
}

func (f *FakeSessionStorage) DeleteExpiredSessions(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	count := 0
	for k, s := range f.sessions {
		if now.After(s.RefreshExpiresAt) {
			delete(f.sessions, k)
			count++
		}
	}
	return count, nil
}

// SessionCount returns the number of stored sessions
func (f *FakeSessionStorage) SessionCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.sessions)
}

// FakeStorageProvider is a test-only fake implementing core.StorageAdapter.
// It combines session, user, and submission storage fakes.
type FakeStorageProvider struct {
	*FakeSessionStorage
	users       map[string]*core.User
	submissions []*core.Submission
	listErr     error
}

var _ core.StorageAdapter = (*FakeStorageProvider)(nil)

func NewFakeStorageProvider() *FakeStorageProvider {
	return &FakeStorageProvider{
		FakeSessionStorage: NewFakeSessionStorage(),
		users:              make(map[string]*core.User),
	}
}

// SetListError makes ListUsers and TopUsers fail
func (f *FakeStorageProvider) SetListError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listErr = err
}

// SetCreateSessionError makes CreateSession fail
func (f *FakeStorageProvider) SetCreateSessionError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createErr = err
}

// UserStorage implementation
func (f *FakeStorageProvider) CreateUser(_ context.Context, u *core.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[u.ID]; exists {
		return core.ErrUserExists
	}
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return core.ErrUserExists
		}
	}
	stored := *u
	f.users[u.ID] = &stored
	return nil
}

func (f *FakeStorageProvider) GetUserByID(_ context.Context, id string) (*core.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if u, ok := f.users[id]; ok {
		out := *u
		return &out, nil
	}
	return nil, core.ErrUserNotFound
}

func (f *FakeStorageProvider) GetUserByEmail(_ context.Context, email string) (*core.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, u := range f.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, core.ErrUserNotFound
}

func (f *FakeStorageProvider) ListUsers(_ context.Context) ([]*core.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	users := make([]*core.User, 0, len(f.users))
	for _, u := range f.users {
		out := *u
		users = append(users, &out)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (f *FakeStorageProvider) UpdateUser(_ context.Context, u *core.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[u.ID]; !exists {
		return core.ErrUserNotFound
	}
	stored := *u
	f.users[u.ID] = &stored
	return nil
}

func (f *FakeStorageProvider) DeleteUser(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[id]; !exists {
		return core.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

// SubmissionStorage implementation
func (f *FakeStorageProvider) AddSubmission(_ context.Context, s *core.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[s.UserID]
	if !ok {
		return core.ErrUserNotFound
	}
	if s.Status == core.SubmissionAccepted {
		u.Solved++
	}
	f.submissions = append(f.submissions, s)
	return nil
}

func (f *FakeStorageProvider) GetUserSubmissions(_ context.Context, userID string) ([]*core.Submission, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []*core.Submission
	for _, s := range f.submissions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *FakeStorageProvider) AddScore(_ context.Context, userID string, points int) (*core.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	u.Score += points
	out := *u
	return &out, nil
}

func (f *FakeStorageProvider) TopUsers(ctx context.Context, limit int) ([]*core.User, error) {
	users, err := f.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(users, func(i, j int) bool { return users[i].Score > users[j].Score })
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

// FakeCache is a test-only fake implementing core.Cache.
// It stores sessions in a map and exposes error fields for behavior injection.
type FakeCache struct {
	cache    map[string]*core.Session
	mu       sync.RWMutex
	getErr   error
	setErr   error
	delErr   error
	clearErr error
	hits     int
	misses   int
}

func NewFakeCache() *FakeCache {
	return &FakeCache{
		cache: make(map[string]*core.Session),
	}
}

func (f *FakeCache) Get(_ context.Context, tokenHash string) (*core.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return nil, f.getErr
	}

	s, ok := f.cache[tokenHash]
	if !ok {
		f.misses++
		return nil, core.ErrCacheNotFound
	}

	f.hits++
	return s, nil
}

func (f *FakeCache) Set(_ context.Context, tokenHash string, session *core.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.setErr != nil {
		return f.setErr
	}

	f.cache[tokenHash] = session
	return nil
}

func (f *FakeCache) Delete(_ context.Context, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.delErr != nil {
		return f.delErr
	}

	delete(f.cache, tokenHash)
	return nil
}

func (f *FakeCache) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.clearErr != nil {
		return f.clearErr
	}

	f.cache = make(map[string]*core.Session)
	return nil
}

func (f *FakeCache) Stats() core.CacheStats {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return core.CacheStats{
		Hits:   int64(f.hits),
		Misses: int64(f.misses),
		Size:   len(f.cache),
	}
}

// Test helper methods
func (f *FakeCache) SetSetError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setErr = err
}

func (f *FakeCache) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.cache)
}

// FakePublisher records published events
type FakePublisher struct {
	mu     sync.Mutex
	events []FakeEvent
	err    error
}

type FakeEvent struct {
	Subject string
	Payload any
}

func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

func (p *FakePublisher) Publish(_ context.Context, subject string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, FakeEvent{Subject: subject, Payload: payload})
	return nil
}

func (p *FakePublisher) SetError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// Subjects returns the subjects published so far, in order
func (p *FakePublisher) Subjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Subject)
	}
	return out
}

var errFakeBackend = errors.New("fake backend failure")
