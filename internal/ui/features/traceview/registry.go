package traceview

import (
	"sync"
	"time"

	"github.com/leapstack-labs/simtrace/internal/dataset"
	"github.com/leapstack-labs/simtrace/internal/trace"
)

// DefaultMaxSessions bounds the number of views kept in memory.
const DefaultMaxSessions = 1024

// Session is one browser's view of the graph. The view is not safe for
// concurrent use, so every access goes through Do.
type Session struct {
	mu       sync.Mutex
	view     *trace.View
	lastSeen time.Time
}

// Do runs fn with exclusive access to the view.
func (s *Session) Do(fn func(v *trace.View) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.view)
}

// Registry owns the served dataset and the per-session views built from it.
type Registry struct {
	mu          sync.RWMutex
	compiled    *dataset.Compiled
	sessions    map[string]*Session
	lastError   string
	maxSessions int
	now         func() time.Time
}

// NewRegistry creates a registry serving compiled.
func NewRegistry(compiled *dataset.Compiled) *Registry {
	return &Registry{
		compiled:    compiled,
		sessions:    make(map[string]*Session),
		maxSessions: DefaultMaxSessions,
		now:         time.Now,
	}
}

// Dataset returns the served dataset.
func (r *Registry) Dataset() *dataset.Compiled {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.compiled
}

// LastError returns the message of the last failed reload, or "" after a
// successful one.
func (r *Registry) LastError() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastError
}

// SetError records a failed reload. The previous dataset keeps being served.
func (r *Registry) SetError(msg string) {
	r.mu.Lock()
	r.lastError = msg
	r.mu.Unlock()
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Get returns the session for id, creating a fresh view when there is none.
func (r *Registry) Get(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok {
		s.lastSeen = r.now()
		return s
	}

	if len(r.sessions) >= r.maxSessions {
		r.evictOldest()
	}
	s := &Session{
		view:     trace.NewView(r.compiled.Graph, r.compiled.Layout),
		lastSeen: r.now(),
	}
	r.sessions[id] = s
	return s
}

// evictOldest drops the least recently used session. Caller holds r.mu.
func (r *Registry) evictOldest() {
	var oldestID string
	var oldest time.Time
	for id, s := range r.sessions {
		if oldestID == "" || s.lastSeen.Before(oldest) {
			oldestID, oldest = id, s.lastSeen
		}
	}
	delete(r.sessions, oldestID)
}

// Replace swaps in a new dataset and rebuilds every view from it. A view keeps
// its selection, its visibility and any moved position whose node still
// exists.
func (r *Registry) Replace(compiled *dataset.Compiled) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.compiled = compiled
	r.lastError = ""

	for _, s := range r.sessions {
		s.mu.Lock()
		s.view = carryOver(s.view, compiled)
		s.mu.Unlock()
	}
}

func carryOver(old *trace.View, compiled *dataset.Compiled) *trace.View {
	v := trace.NewView(compiled.Graph, compiled.Layout)

	for id, p := range old.Layout().Positions() {
		if def, ok := old.Layout().Default(id); ok && def == p {
			continue
		}
		_ = v.Move(id, p) // nodes that no longer exist are dropped
	}
	if id, ok := old.Selection().Current(); ok && compiled.Graph.Has(id) {
		_ = v.Click(id)
	}
	if !old.Visible() {
		v.Close()
	}
	return v
}
