package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alf-academy/enroll/internal/logger"
)

// ErrNoSession is returned when no bearer token is available.
var ErrNoSession = errors.New("not logged in: run 'enroll login' or set ENROLL_AUTH_TOKEN")

// sessionFile is the name of the session file inside the data directory.
const sessionFile = "session.json"

// TokenSource supplies the bearer token for the student API.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Static is a fixed token, typically from --token or ENROLL_AUTH_TOKEN.
type Static string

// Token returns the token, or ErrNoSession when it is blank.
func (s Static) Token(context.Context) (string, error) {
	tok := strings.TrimSpace(string(s))
	if tok == "" {
		return "", ErrNoSession
	}
	return tok, nil
}

// Session is what `enroll login` persists.
type Session struct {
	Token    string    `json:"token"`
	Email    string    `json:"email,omitempty"`
	Endpoint string    `json:"endpoint,omitempty"`
	SavedAt  time.Time `json:"saved_at"`
}

// Store keeps the session in <dataDir>/session.json.
type Store struct {
	dataDir string
}

// NewStore returns a store rooted at dataDir.
func NewStore(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

// Path returns the session file location.
func (s *Store) Path() string {
	return filepath.Join(s.dataDir, sessionFile)
}

// Load reads the saved session. A missing file is ErrNoSession.
func (s *Store) Load() (*Session, error) {
	data, err := os.ReadFile(s.Path())
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("reading session file: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parsing session file: %w", err)
	}
	if strings.TrimSpace(sess.Token) == "" {
		return nil, ErrNoSession
	}
	return &sess, nil
}

// Save writes the session, creating the data directory if needed. The file
// holds a credential and is written owner-only.
func (s *Store) Save(sess Session) error {
	if strings.TrimSpace(sess.Token) == "" {
		return errors.New("session token is empty")
	}
	if sess.SavedAt.IsZero() {
		sess.SavedAt = time.Now().UTC()
	}

	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}

	if err := os.WriteFile(s.Path(), data, 0600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}

	logger.Debug("Session saved to %s", s.Path())
	return nil
}

// Clear removes the session file. Clearing an absent session is not an
// error.
func (s *Store) Clear() error {
	err := os.Remove(s.Path())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing session file: %w", err)
	}
	return nil
}

// Token returns the saved session's token.
func (s *Store) Token(context.Context) (string, error) {
	sess, err := s.Load()
	if err != nil {
		return "", err
	}
	return sess.Token, nil
}

// Chain tries each source in order and returns the first token found.
// Sources reporting ErrNoSession are skipped; any other error stops the
// search.
type Chain []TokenSource

// Token implements TokenSource.
func (c Chain) Token(ctx context.Context) (string, error) {
	for _, src := range c {
		if src == nil {
			continue
		}
		tok, err := src.Token(ctx)
		if err == nil {
			return tok, nil
		}
		if !errors.Is(err, ErrNoSession) {
			return "", err
		}
	}
	return "", ErrNoSession
}
