package planner

import (
	"log/slog"
	"sync"

	"allswell/internal/docstore"
)

// Hub tracks the live session of each signed-in user.
type Hub struct {
	store  docstore.Store
	log    *slog.Logger
	notify func(uid string, ev Event)

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewHub creates a hub. notify, when non-nil, receives every session event
// together with the owning user id (the SSE layer fans these out to clients).
func NewHub(store docstore.Store, log *slog.Logger, notify func(uid string, ev Event)) *Hub {
	return &Hub{store: store, log: log, notify: notify, sessions: make(map[string]*Session)}
}

// Session returns the user's session, creating it on first use.
func (h *Hub) Session(uid string) *Session {
	h.mu.Lock()
	defer h.mu.Unlock()

	if s, ok := h.sessions[uid]; ok {
		return s
	}
	s := NewSession(h.store, uid, h.log, func(ev Event) {
		if h.notify != nil {
			h.notify(uid, ev)
		}
	})
	h.sessions[uid] = s
	return s
}

// Close tears down one user's session. Called on sign-out.
func (h *Hub) Close(uid string) {
	h.mu.Lock()
	s, ok := h.sessions[uid]
	delete(h.sessions, uid)
	h.mu.Unlock()

	if ok {
		s.Close()
	}
}

// CloseAll tears down every session. Called on shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	sessions := h.sessions
	h.sessions = make(map[string]*Session)
	h.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
