// Package session tracks live sessions: an opaque token issued at join,
// mapped to the owning username until the connection goes away.
package session

import (
	"sync"

	"github.com/google/uuid"
)

// Registry is the process-wide token table. It is shared by every connection
// goroutine, so all access goes through a mutex; the lock is never held
// across I/O.
type Registry struct {
	mu      sync.Mutex
	byToken map[string]string
}

func NewRegistry() *Registry {
	return &Registry{byToken: make(map[string]string)}
}

// Register issues a fresh token for username and records the session.
// Tokens are never reused: every successful join gets a new one, even for a
// user with earlier sessions.
func (r *Registry) Register(username string) string {
	token := uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byToken[token] = username
	return token
}

// Lookup resolves a token to its username.
func (r *Registry) Lookup(token string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	username, ok := r.byToken[token]
	return username, ok
}

// Remove ends the session for token, if any. Called when the owning
// connection terminates for any reason.
func (r *Registry) Remove(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byToken, token)
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byToken)
}
