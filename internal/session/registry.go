package session

import (
	"fmt"
	"sync"

	"github.com/rocketscienceinc/minigames-backend/internal/apperror"
)

// Registry maps a session key to the one live session bound to it.
// It only guards existence; board content is guarded by each session.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// Create - binds the session to its key. Fails if the key is already taken.
func (that *Registry) Create(session *Session) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.sessions[session.Key]; ok {
		return fmt.Errorf("%w: %s", apperror.ErrDuplicateSession, session.Key)
	}

	that.sessions[session.Key] = session

	return nil
}

func (that *Registry) Get(key string) (*Session, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	session, ok := that.sessions[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrNotFound, key)
	}

	return session, nil
}

// Remove - unbinds key if it still points at session. A newer session created
// under the same key is left alone.
func (that *Registry) Remove(key string, session *Session) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	current, ok := that.sessions[key]
	if !ok || current != session {
		return false
	}

	delete(that.sessions, key)

	return true
}

func (that *Registry) Len() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.sessions)
}
