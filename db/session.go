// ABOUTME: File-backed store for the logged-in user session
// ABOUTME: Persists the public user record as JSON in the runtime directory
package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/harperreed/medcrm/models"
)

type SessionStore struct {
	path   string
	logger *zap.Logger
}

func NewSessionStore(path string, logger *zap.Logger) *SessionStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionStore{path: path, logger: logger}
}

func (s *SessionStore) Path() string {
	return s.path
}

// Save records user as the current session. Credentials are never written.
func (s *SessionStore) Save(user models.User) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(user.Public(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// Load returns the stored session user, or nil when there is none. A
// corrupt session file counts as no session.
func (s *SessionStore) Load() (*models.User, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var user models.User
	if err := json.Unmarshal(data, &user); err != nil || user.ID == "" {
		s.logger.Warn("ignoring unreadable session file", zap.String("path", s.path), zap.Error(err))
		return nil, nil
	}
	return &user, nil
}

func (s *SessionStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}
