// Package secrets persists opaque bearer tokens. The primary backend is the
// OS keyring; any keyring failure falls back silently to a JSON file with
// owner-only permissions in the application directory.
package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zalando/go-keyring"

	"bist-cli/internal/logger"
)

const (
	keyringService = "bist-cli"
	tokenFileName  = "tokens.json"
)

// Token names used across the client.
const (
	AccessTokenName  = "access_token"
	RefreshTokenName = "refresh_token"
)

// Store reads and writes named tokens.
type Store struct {
	useKeyring bool
	dir        string
	log        *logger.Logger
}

// NewStore creates a token store rooted at dir.
func NewStore(dir string, useKeyring bool, log *logger.Logger) *Store {
	return &Store{useKeyring: useKeyring, dir: dir, log: log}
}

func (s *Store) filePath() string {
	return filepath.Join(s.dir, tokenFileName)
}

// Get returns the stored token value, or false when absent.
func (s *Store) Get(name string) (string, bool) {
	if s.useKeyring {
		v, err := keyring.Get(keyringService, name)
		if err == nil {
			return v, true
		}
		if err != keyring.ErrNotFound {
			s.log.Warn(context.Background(), "keyring read failed, falling back to file", "token", name, "error", err)
		}
	}

	tokens, err := s.readFile()
	if err != nil {
		return "", false
	}
	v, ok := tokens[name]
	return v, ok && v != ""
}

// Set stores a token. Write failure is reported to the caller so it can be
// logged as a warning; the in-memory token remains usable either way.
func (s *Store) Set(name, value string) error {
	if s.useKeyring {
		if err := keyring.Set(keyringService, name, value); err == nil {
			return nil
		} else {
			s.log.Warn(context.Background(), "keyring write failed, falling back to file", "token", name, "error", err)
		}
	}

	tokens, err := s.readFile()
	if err != nil {
		tokens = map[string]string{}
	}
	tokens[name] = value
	return s.writeFile(tokens)
}

// ClearAll removes every stored token, best-effort.
func (s *Store) ClearAll() {
	if s.useKeyring {
		for _, name := range []string{AccessTokenName, RefreshTokenName} {
			if err := keyring.Delete(keyringService, name); err != nil && err != keyring.ErrNotFound {
				s.log.Warn(context.Background(), "keyring delete failed", "token", name, "error", err)
			}
		}
	}

	path := s.filePath()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.log.Warn(context.Background(), "token file delete failed", "path", path, "error", err)
	}
}

func (s *Store) readFile() (map[string]string, error) {
	b, err := os.ReadFile(s.filePath())
	if err != nil {
		return nil, err
	}
	tokens := map[string]string{}
	if err := json.Unmarshal(b, &tokens); err != nil {
		return nil, fmt.Errorf("parsing token file: %w", err)
	}
	return tokens, nil
}

func (s *Store) writeFile(tokens map[string]string) error {
	b, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.filePath(), b, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	return nil
}
