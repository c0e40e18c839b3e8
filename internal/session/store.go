package session

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Persisted keys. Exactly these two facts survive a restart.
const (
	keyToken       = "token"
	keyTokenExpiry = "tokenExpiry"
)

// Store persists the durable session facts across gateway restarts.
type Store interface {
	// Save writes the token and its expiry representation.
	Save(token, expiry string) error

	// Load reads the persisted token and expiry. A store with no
	// persisted session returns two empty strings and no error.
	Load() (token, expiry string, err error)

	// Clear removes any persisted session.
	Clear() error
}

// SQLiteStore persists session state in the gateway's sqlite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a store over an open database. The session_state
// table must already exist via migrations.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save writes both session keys in one transaction.
func (s *SQLiteStore) Save(token, expiry string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning session save: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	now := time.Now().UTC().Format(time.RFC3339)
	for key, value := range map[string]string{keyToken: token, keyTokenExpiry: expiry} {
		_, err := tx.Exec(
			`INSERT INTO session_state (key, value, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			key, value, now,
		)
		if err != nil {
			return fmt.Errorf("saving session key %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing session save: %w", err)
	}
	return nil
}

// Load reads both session keys. Missing rows yield empty strings.
func (s *SQLiteStore) Load() (string, string, error) {
	token, err := s.loadKey(keyToken)
	if err != nil {
		return "", "", err
	}
	expiry, err := s.loadKey(keyTokenExpiry)
	if err != nil {
		return "", "", err
	}
	return token, expiry, nil
}

func (s *SQLiteStore) loadKey(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM session_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("loading session key %q: %w", key, err)
	}
	return value, nil
}

// Clear deletes both session keys.
func (s *SQLiteStore) Clear() error {
	_, err := s.db.Exec(`DELETE FROM session_state WHERE key IN (?, ?)`, keyToken, keyTokenExpiry)
	if err != nil {
		return fmt.Errorf("clearing session state: %w", err)
	}
	return nil
}

// MemoryStore is an in-memory Store for tests.
type MemoryStore struct {
	mu     sync.Mutex
	token  string
	expiry string
	set    bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save implements Store.
func (m *MemoryStore) Save(token, expiry string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.expiry, m.set = token, expiry, true
	return nil
}

// Load implements Store.
func (m *MemoryStore) Load() (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return "", "", nil
	}
	return m.token, m.expiry, nil
}

// Clear implements Store.
func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.expiry, m.set = "", "", false
	return nil
}
