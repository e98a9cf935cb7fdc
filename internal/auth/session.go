package auth

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"bist-cli/internal/logger"
)

const sessionFileName = "session.json"

// SessionCache persists the last seen user profile so the client can greet
// a returning user before any network call. Failures are warnings only.
type SessionCache struct {
	dir string
	log *logger.Logger
}

// NewSessionCache creates a cache rooted at the app directory.
func NewSessionCache(dir string, log *logger.Logger) *SessionCache {
	return &SessionCache{dir: dir, log: log}
}

func (s *SessionCache) path() string {
	return filepath.Join(s.dir, sessionFileName)
}

// Save writes the profile to disk with owner-only permissions.
func (s *SessionCache) Save(profile *UserProfile) {
	b, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		s.log.Warn(context.Background(), "could not encode session cache", "error", err)
		return
	}
	if err := os.WriteFile(s.path(), b, 0o600); err != nil {
		s.log.Warn(context.Background(), "could not save session cache", "error", err)
	}
}

// Load returns the cached profile, or nil when absent or unreadable.
func (s *SessionCache) Load() *UserProfile {
	b, err := os.ReadFile(s.path())
	if err != nil {
		return nil
	}
	var profile UserProfile
	if err := json.Unmarshal(b, &profile); err != nil {
		return nil
	}
	return &profile
}

// Clear removes the cached profile, best-effort.
func (s *SessionCache) Clear() {
	if err := os.Remove(s.path()); err != nil && !os.IsNotExist(err) {
		s.log.Warn(context.Background(), "could not clear session cache", "error", err)
	}
}
