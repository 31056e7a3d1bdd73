package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/core"
)

// SessionDuration is how long a session stays valid.
const SessionDuration = 30 * 24 * time.Hour

// SessionStore is the slice of the persistence gateway sessions need.
type SessionStore interface {
	CreateSession(ctx context.Context, token string, userID int64, expiresAt time.Time) error
	GetSessionUser(ctx context.Context, token string) (core.User, time.Time, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}

// Manager resolves session tokens to authenticated identities.
type Manager struct {
	store SessionStore
}

func NewManager(store SessionStore) *Manager {
	return &Manager{store: store}
}

// GenerateToken returns a new opaque session token.
func GenerateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Start creates a session for the user and returns its token.
func (m *Manager) Start(ctx context.Context, userID int64) (string, time.Time, error) {
	token, err := GenerateToken()
	if err != nil {
		return "", time.Time{}, err
	}
	expiresAt := time.Now().Add(SessionDuration)
	if err := m.store.CreateSession(ctx, token, userID, expiresAt); err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Resolve returns the identity bound to the token, or ErrUnauthorized if the
// token is unknown or expired. Expired sessions are deleted on sight.
func (m *Manager) Resolve(ctx context.Context, token string) (core.User, error) {
	if token == "" {
		return core.User{}, core.ErrUnauthorized
	}
	user, expiresAt, err := m.store.GetSessionUser(ctx, token)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.User{}, core.ErrUnauthorized
		}
		return core.User{}, err
	}
	if time.Now().After(expiresAt) {
		if err := m.store.DeleteSession(ctx, token); err != nil {
			slog.WarnContext(ctx, "Failed to delete expired session", "error", err)
		}
		return core.User{}, core.ErrUnauthorized
	}
	return user, nil
}

// End deletes the session bound to the token.
func (m *Manager) End(ctx context.Context, token string) error {
	return m.store.DeleteSession(ctx, token)
}

// SweepExpired runs a periodic cleanup of expired sessions until ctx is done.
func (m *Manager) SweepExpired(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n, err := m.store.DeleteExpiredSessions(ctx)
			if err != nil {
				slog.ErrorContext(ctx, "Session sweep failed", "error", err)
				continue
			}
			if n > 0 {
				slog.DebugContext(ctx, "Session sweep completed", "removed", n)
			}
		case <-ctx.Done():
			return
		}
	}
}
