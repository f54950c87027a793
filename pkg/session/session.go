// Package session provides session management for logged-in users.
//
// Sessions are issued by the server on login and carried in a cookie. The
// Store interface has implementations for different backends:
//   - memory: in-process storage for development and tests
//   - redis: shared storage for multi-instance servers
//   - file: JSON files, used by the CLI to remember its server login
//
// # Usage
//
//	store := session.NewMemoryStore()
//
//	sess, err := session.New("ada", session.DefaultTTL)
//	if err != nil {
//	    return err
//	}
//	store.Set(ctx, sess)
//
//	sess, err = store.Get(ctx, sessionID)
//	if err != nil {
//	    return err
//	}
//	if sess == nil {
//	    // Session not found or expired
//	}
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/matzehuels/reflections/pkg/errors"
	"github.com/matzehuels/reflections/pkg/store"
)

// Session stores the identity of a logged-in user.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// TTL returns the remaining lifetime, or zero once expired.
func (s *Session) TTL() time.Duration {
	return max(time.Until(s.ExpiresAt), 0)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions (may be a no-op for Redis).
	Cleanup(ctx context.Context) error

	Close() error
}

// DefaultTTL is the default session duration.
const DefaultTTL = 24 * time.Hour

// GenerateID creates a cryptographically secure random session ID.
func GenerateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// New creates a session for username. The user ID is derived from the name
// so that logging in again reaches the same stored data.
func New(username string, ttl time.Duration) (*Session, error) {
	if err := errors.ValidateUsername(username); err != nil {
		return nil, err
	}
	id, err := GenerateID()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "generate session id")
	}

	now := time.Now()
	return &Session{
		ID:        id,
		UserID:    store.UserID(username),
		Username:  username,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}, nil
}

// Local returns a non-expiring session for the standalone editor, which runs
// without a server.
func Local(username string) *Session {
	now := time.Now()
	return &Session{
		ID:        "local-session",
		UserID:    store.UserID(username),
		Username:  username,
		ExpiresAt: now.Add(365 * 24 * time.Hour),
		CreatedAt: now,
	}
}
