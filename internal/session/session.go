// Package session maps opaque tokens to the user identifiers that namespace
// durable storage. Identity is an external input here: no passwords, no
// verification beyond token possession.
package session

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a token is unknown or expired.
var ErrNotFound = errors.New("session not found")

// Manager issues and resolves session tokens, backed by a SQLite table in
// the same database as the KV store.
type Manager struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewManager initialises the sessions schema and returns a Manager. A ttl of
// zero disables expiry.
func NewManager(db *sql.DB, ttl time.Duration) (*Manager, error) {
	schema := `CREATE TABLE IF NOT EXISTS sessions (
		token      TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		expires_at TEXT NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("session schema: %w", err)
	}
	return &Manager{db: db, ttl: ttl, now: time.Now}, nil
}

// SetClock overrides the time source, for tests.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// Create issues a fresh token for userID.
func (m *Manager) Create(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", errors.New("empty user identifier")
	}

	token := uuid.NewString()
	expires := time.Time{}
	if m.ttl > 0 {
		expires = m.now().UTC().Add(m.ttl)
	}

	_, err := m.db.Exec(
		`INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)`,
		token, userID, expires.Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("session create: %w", err)
	}
	return token, nil
}

// Lookup resolves a token to its user identifier. Expired or unknown tokens
// return ErrNotFound.
func (m *Manager) Lookup(token string) (string, error) {
	var userID, expiresAt string
	err := m.db.QueryRow(
		`SELECT user_id, expires_at FROM sessions WHERE token = ?`, token,
	).Scan(&userID, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("session lookup: %w", err)
	}

	expires, err := time.Parse(time.RFC3339, expiresAt)
	if err == nil && !expires.IsZero() && m.now().UTC().After(expires) {
		return "", ErrNotFound
	}
	return userID, nil
}

// Delete removes a token (logout).
func (m *Manager) Delete(token string) error {
	_, err := m.db.Exec(`DELETE FROM sessions WHERE token = ?`, token)
	return err
}

// PruneExpired removes all expired sessions and reports how many went.
func (m *Manager) PruneExpired() (int64, error) {
	res, err := m.db.Exec(
		`DELETE FROM sessions WHERE expires_at != ? AND expires_at < ?`,
		time.Time{}.Format(time.RFC3339),
		m.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("session prune: %w", err)
	}
	return res.RowsAffected()
}
