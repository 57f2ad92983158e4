package planner

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"allswell/internal/datekey"
	"allswell/internal/docstore"
	"allswell/internal/model"
)

// Event types emitted when a session's underlying data changes.
const (
	EventTasksChanged    = "tasks.changed"
	EventCalendarUpdated = "calendar.updated"
)

// Event tells views what became stale.
type Event struct {
	Type    string      `json:"type"`
	DateKey datekey.Key `json:"dateKey,omitempty"`
}

// Session is the explicit per-login context that replaces global state: it
// owns the task cache, the live subscriptions, selection and viewed-month
// state, and the aggregation generation. Created on login, closed on logout.
type Session struct {
	UserID string

	Cache      *TaskStore
	Subs       *SubscriptionManager
	Aggregator *MonthAggregator

	log    *slog.Logger
	notify func(Event)

	mu           sync.Mutex
	selectedDate time.Time
	viewingMonth time.Time
	lastApplied  uint64 // newest month-metadata generation seen
}

// NewSession builds a session for one user. notify, when non-nil, receives
// change events after the cache has been updated.
func NewSession(store docstore.Store, uid string, log *slog.Logger, notify func(Event)) *Session {
	now := time.Now()
	return &Session{
		UserID:       uid,
		Cache:        NewTaskStore(store, uid),
		Subs:         NewSubscriptionManager(store, uid),
		Aggregator:   NewMonthAggregator(store, log),
		log:          log,
		notify:       notify,
		selectedDate: now,
		viewingMonth: now,
	}
}

// EnsureDay loads a date into the cache and installs its live subscription.
// The subscription refreshes the cache before any view is notified.
func (s *Session) EnsureDay(ctx context.Context, key datekey.Key) ([]model.Task, error) {
	tasks, err := s.Cache.Load(ctx, key)
	if err != nil {
		return nil, err
	}

	err = s.Subs.Subscribe(key, func(docs []docstore.Document) {
		s.Cache.Replace(key, decodeTasks(docs))
		s.emit(Event{Type: EventTasksChanged, DateKey: key})
		s.emit(Event{Type: EventCalendarUpdated})
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// LoadMonth loads every day of the month containing t into the cache,
// concurrently. Used before aggregating a month's chart so the distribution
// covers the full month, not just previously visited days.
func (s *Session) LoadMonth(ctx context.Context, t time.Time) error {
	g, gCtx := errgroup.WithContext(ctx)
	for _, key := range datekey.MonthKeys(t) {
		key := key
		g.Go(func() error {
			_, err := s.EnsureDay(gCtx, key)
			return err
		})
	}
	return g.Wait()
}

// MonthMetadata aggregates the viewed month's counters, dropping the result
// if a newer aggregation finished in the meantime.
func (s *Session) MonthMetadata(ctx context.Context, t time.Time) (MonthMetadata, bool) {
	meta := s.Aggregator.ComputeMonth(ctx, s.UserID, t)

	s.mu.Lock()
	defer s.mu.Unlock()
	if meta.Generation < s.lastApplied {
		return MonthMetadata{}, false // stale response for an abandoned month
	}
	s.lastApplied = meta.Generation
	return meta, true
}

// SelectDate is a pure state transition; callers re-render afterwards.
func (s *Session) SelectDate(d time.Time) {
	s.mu.Lock()
	s.selectedDate = d
	s.mu.Unlock()
}

func (s *Session) SelectedDate() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedDate
}

// SetViewingMonth moves the viewed month.
func (s *Session) SetViewingMonth(t time.Time) {
	s.mu.Lock()
	s.viewingMonth = t
	s.mu.Unlock()
}

func (s *Session) ViewingMonth() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewingMonth
}

// Close tears down every subscription and clears the cache. Must run on
// logout so no live update crosses into a later session.
func (s *Session) Close() {
	s.Subs.UnsubscribeAll()
	s.Cache.Clear()
}

func (s *Session) emit(ev Event) {
	if s.notify != nil {
		s.notify(ev)
	}
}
