package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/reinhart/personaAgent/internal/assistant"
	"github.com/reinhart/personaAgent/internal/errorsx"
)

// ErrNotFound is returned when a session id has no file
var ErrNotFound = errors.New("session not found")

// Session is a persisted chat
type Session struct {
	ID           string                 `json:"id"`
	Provider     string                 `json:"provider,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
	Conversation assistant.Conversation `json:"conversation"`
}

// Store keeps one JSON file per session in Dir
type Store struct {
	Dir string
	now func() time.Time
}

func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("session directory not set")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{Dir: dir, now: time.Now}, nil
}

// New starts an unsaved session. Ids sort by creation time.
func (s *Store) New(provider string, conv assistant.Conversation) *Session {
	now := s.now()
	return &Session{
		ID:           now.Format("20060102-150405") + "-" + uuid.NewString()[:8],
		Provider:     provider,
		CreatedAt:    now,
		UpdatedAt:    now,
		Conversation: conv,
	}
}

// Save writes the session, replacing any earlier version
func (s *Store) Save(sess *Session) error {
	path, err := s.path(sess.ID)
	if err != nil {
		return err
	}
	sess.UpdatedAt = s.now()

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.Dir, ".session-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Load reads a session and checks its conversation is well formed
func (s *Store) Load(id string) (*Session, error) {
	path, err := s.path(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, errorsx.Wrap(fmt.Errorf("session %s: %w", id, err), errorsx.ReasonInvalidSession)
	}
	if err := sess.Conversation.Validate(); err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}
	return &sess, nil
}

// List returns session ids, oldest first
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

// Latest loads the most recently created session
func (s *Store) Latest() (*Session, error) {
	ids, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, ErrNotFound
	}
	return s.Load(ids[len(ids)-1])
}

func (s *Store) path(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.HasPrefix(id, ".") {
		return "", errorsx.New(errorsx.ReasonInvalidSession, "invalid session id %q", id)
	}
	return filepath.Join(s.Dir, id+".json"), nil
}
