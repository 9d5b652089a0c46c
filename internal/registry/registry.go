package registry

import (
	"sync"
	"time"

	"github.com/vocaquiz/vocaquiz/internal/game"
)

type Config struct {
	Clock game.Clock
}

// Registry is the process-wide directory of live game sessions, keyed by
// join code. It owns creation, lookup and expiry; all gameplay state lives
// in the sessions themselves, so the critical sections here stay short.
type Registry struct {
	clock game.Clock

	mu       sync.RWMutex
	sessions map[string]*game.Session
}

func New(c Config) *Registry {
	if c.Clock == nil {
		c.Clock = game.SystemClock()
	}

	return &Registry{
		clock:    c.Clock,
		sessions: make(map[string]*game.Session),
	}
}

// CreateSession constructs a session and stores it under its join code,
// re-rolling the code until it does not collide with a live session.
func (r *Registry) CreateSession(cfg game.Config) *game.Session {
	if cfg.Clock == nil {
		cfg.Clock = r.clock
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		s := game.NewSession(cfg)
		if _, taken := r.sessions[s.Code()]; taken {
			continue
		}
		r.sessions[s.Code()] = s
		return s
	}
}

// GetSession looks up a session by code. Absence is a normal outcome for
// expired or mistyped codes, not an error.
func (r *Registry) GetSession(code string) (*game.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[code]
	return s, ok
}

// CloseSession removes a session from the directory. Removing an absent code
// is a no-op.
func (r *Registry) CloseSession(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, code)
}

// CleanupExpired drops every session older than maxAge and returns the
// removed codes so the caller can release per-session resources held
// elsewhere, like the redis leaderboard mirror. The registry has no timer of
// its own; the server sweeps periodically.
func (r *Registry) CleanupExpired(maxAge time.Duration) []string {
	now := r.clock.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []string
	for code, s := range r.sessions {
		if now.Sub(s.CreatedAt()) > maxAge {
			delete(r.sessions, code)
			removed = append(removed, code)
		}
	}

	return removed
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}
