package session

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/videocraft/videocraft-agent/internal/editor"
)

// ErrNoSession is returned when no session matches the requested id.
var ErrNoSession = errors.New("no such session")

// Registry holds the single active editor session. One video is edited
// at a time; opening a session for a new video discards the previous
// one, the same way loading a new file replaces the edit state.
type Registry struct {
	mu      sync.Mutex
	current *Session
	logger  *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Open creates the session for a video, replacing any existing one.
func (r *Registry) Open(videoID string, meta editor.Metadata) (*Session, error) {
	s, err := newSession(videoID, meta)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	prev := r.current
	r.current = s
	r.mu.Unlock()

	if prev != nil {
		r.logger.Info("replaced editor session", "previous", prev.ID, "session_id", s.ID)
	}
	r.logger.Info("editor session opened", "session_id", s.ID, "video_id", videoID)
	return s, nil
}

// OpenFromSnapshot creates a session and rehydrates a saved state.
func (r *Registry) OpenFromSnapshot(videoID string, meta editor.Metadata, snap editor.Snapshot) (*Session, error) {
	s, err := newSession(videoID, meta)
	if err != nil {
		return nil, err
	}
	if err := s.restore(snap); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.current = s
	r.mu.Unlock()

	r.logger.Info("editor session restored", "session_id", s.ID, "video_id", videoID)
	return s, nil
}

// Get returns the session with the given id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil || r.current.ID != id {
		return nil, ErrNoSession
	}
	return r.current, nil
}

// Current returns the active session, or nil.
func (r *Registry) Current() *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Close discards the session with the given id.
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil || r.current.ID != id {
		return ErrNoSession
	}
	r.logger.Info("editor session closed", "session_id", id)
	r.current = nil
	return nil
}
