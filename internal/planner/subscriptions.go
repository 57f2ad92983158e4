package planner

import (
	"fmt"
	"sync"

	"allswell/internal/datekey"
	"allswell/internal/docstore"
)

// SubscriptionManager owns the live task-query subscriptions of one session,
// at most one per date. Handles stay live until UnsubscribeAll, which must run
// on logout to stop stale cross-session updates.
type SubscriptionManager struct {
	store docstore.Store
	uid   string

	mu     sync.Mutex
	active map[datekey.Key]docstore.Unsubscribe
}

func NewSubscriptionManager(store docstore.Store, uid string) *SubscriptionManager {
	return &SubscriptionManager{
		store:  store,
		uid:    uid,
		active: make(map[datekey.Key]docstore.Unsubscribe),
	}
}

// Subscribe establishes a live subscription for a date. A second call for the
// same date is a no-op. onChange receives the fresh ordered task snapshot on
// every change to the date's tasks.
func (m *SubscriptionManager) Subscribe(key datekey.Key, onChange func(docs []docstore.Document)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.active[key]; ok {
		return nil
	}

	unsub, err := m.store.Subscribe(dayTasksPath(m.uid, key), "createdAt", onChange)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", key, err)
	}
	m.active[key] = unsub
	return nil
}

// Count returns the number of open subscriptions.
func (m *SubscriptionManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

// UnsubscribeAll tears down every open subscription.
func (m *SubscriptionManager) UnsubscribeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, unsub := range m.active {
		unsub()
		delete(m.active, key)
	}
}
