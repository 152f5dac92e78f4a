package sessions

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/shelflife/internal/acquisition"
)

// Session is one acquisition workflow owned by an API client. Barcodes
// decoded on the client are pushed into the workflow through Decoder.
type Session struct {
	ID       uuid.UUID
	Username string
	Workflow *acquisition.Workflow
	Decoder  *acquisition.PushDecoder

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	return now.Sub(s.lastSeen)
}

// Registry holds the live sessions of an API process. Sessions idle for
// longer than ttl are closed the next time a session is created.
type Registry struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	ttl      time.Duration
	clock    func() time.Time
}

func NewRegistry(ttl time.Duration, clock func() time.Time) *Registry {
	if clock == nil {
		clock = time.Now
	}

	return &Registry{
		sessions: make(map[uuid.UUID]*Session),
		ttl:      ttl,
		clock:    clock,
	}
}

func (r *Registry) Add(s *Session) {
	now := r.clock()
	s.touch(now)

	r.mu.Lock()
	r.sessions[s.ID] = s
	expired := r.sweepLocked(now)
	r.mu.Unlock()

	for _, old := range expired {
		old.Workflow.Close()
	}
}

// Get returns the session if it exists and belongs to username. An empty
// username matches only sessions created anonymously.
func (r *Registry) Get(id uuid.UUID, username string) (*Session, bool) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()

	if !ok || s.Username != username {
		return nil, false
	}

	s.touch(r.clock())

	return s, true
}

func (r *Registry) Remove(id uuid.UUID) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		s.Workflow.Close()
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.sessions)
}

// Close ends every session, for server shutdown.
func (r *Registry) Close() {
	r.mu.Lock()
	all := make([]*Session, 0, len(r.sessions))

	for id, s := range r.sessions {
		all = append(all, s)
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	for _, s := range all {
		s.Workflow.Close()
	}
}

func (r *Registry) sweepLocked(now time.Time) []*Session {
	if r.ttl <= 0 {
		return nil
	}

	var expired []*Session

	for id, s := range r.sessions {
		if s.idleSince(now) > r.ttl {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}

	return expired
}
