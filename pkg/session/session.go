// Package session keeps per-client panel state.
//
// The HTTP panel gives every browser its own [view.View] (and canvas), keyed
// by a random session ID stored in a cookie. [MemoryStore] holds those views
// with a sliding TTL and destroys them when they expire or the store closes.
//
// The terminal panel has a single user and only needs to remember which tab
// was open; [FileStore] persists that between runs.
//
// # Usage
//
//	store := session.NewMemoryStore(newView, session.DefaultTTL, logger)
//	defer store.Close()
//	go store.Run(ctx, time.Minute)
//
//	sess, err := store.Get(ctx, cookie.Value)
//	if errors.Is(err, errors.ErrCodeSessionNotFound) {
//	    sess, err = store.Create(ctx)
//	}
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	stderrors "errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tabpanel/pkg/errors"
	"github.com/matzehuels/tabpanel/pkg/view"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = stderrors.New("not found")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = stderrors.New("expired")
)

// DefaultTTL is the default idle lifetime of a session.
const DefaultTTL = 30 * time.Minute

// Session is one client's panel.
type Session struct {
	ID        string
	View      *view.View
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Store is the interface for session storage backends.
type Store interface {
	// Create starts a new session with a fresh view.
	Create(ctx context.Context) (*Session, error)

	// Get retrieves a session by ID and extends its lifetime.
	// Missing and expired sessions are SESSION_NOT_FOUND errors.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Delete removes a session and destroys its view.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions and returns how many it removed.
	Cleanup(ctx context.Context) (int, error)

	Close() error
}

// ViewFactory builds the view for a new session.
type ViewFactory func() (*view.View, error)

// GenerateID creates a cryptographically secure random session ID.
func GenerateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	newView  ViewFactory
	ttl      time.Duration
	logger   *log.Logger
	closed   bool
}

// NewMemoryStore creates a store whose sessions idle out after ttl.
// A non-positive ttl uses DefaultTTL; a nil logger uses log.Default().
func NewMemoryStore(newView ViewFactory, ttl time.Duration, logger *log.Logger) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = log.Default()
	}
	return &MemoryStore{
		sessions: make(map[string]*Session),
		newView:  newView,
		ttl:      ttl,
		logger:   logger,
	}
}

// Create implements [Store].
func (s *MemoryStore) Create(ctx context.Context) (*Session, error) {
	id, err := GenerateID()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "generate session id")
	}
	v, err := s.newView()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sess := &Session{ID: id, View: v, CreatedAt: now, ExpiresAt: now.Add(s.ttl)}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		v.Destroy()
		return nil, errors.New(errors.ErrCodeInternal, "session store closed")
	}
	s.sessions[id] = sess
	n := len(s.sessions)
	s.mu.Unlock()

	s.logger.Debug("session created", "id", shortID(id), "active", n)
	return sess, nil
}

// Get implements [Store].
func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return nil, errors.Wrap(errors.ErrCodeSessionNotFound, ErrNotFound, "session %s", shortID(sessionID))
	}
	if sess.IsExpired() {
		delete(s.sessions, sessionID)
		s.mu.Unlock()
		sess.View.Destroy()
		return nil, errors.Wrap(errors.ErrCodeSessionNotFound, ErrExpired, "session %s", shortID(sessionID))
	}
	sess.ExpiresAt = time.Now().Add(s.ttl)
	s.mu.Unlock()
	return sess, nil
}

// Delete implements [Store].
func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	if ok {
		sess.View.Destroy()
	}
	return nil
}

// Cleanup implements [Store].
func (s *MemoryStore) Cleanup(ctx context.Context) (int, error) {
	var expired []*Session
	s.mu.Lock()
	for id, sess := range s.sessions {
		if sess.IsExpired() {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.View.Destroy()
	}
	if len(expired) > 0 {
		s.logger.Debug("sessions expired", "count", len(expired))
	}
	return len(expired), nil
}

// Run calls Cleanup every interval until ctx is done.
func (s *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Cleanup(ctx)
		}
	}
}

// Len returns the number of stored sessions, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Close destroys every session. Create fails afterwards.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*Session)
	s.closed = true
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.View.Destroy()
	}
	return nil
}

var _ Store = (*MemoryStore)(nil)

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
