package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"allswell/internal/datekey"
	"allswell/internal/docstore"
	"allswell/internal/model"
)

// TaskStore is the per-date task cache: the single source of truth for what
// views render. Every load or live update replaces a date's entry wholesale,
// so a returned slice is an immutable snapshot.
type TaskStore struct {
	store docstore.Store
	uid   string

	mu     sync.RWMutex
	byDate map[datekey.Key][]model.Task
}

func NewTaskStore(store docstore.Store, uid string) *TaskStore {
	return &TaskStore{
		store:  store,
		uid:    uid,
		byDate: make(map[datekey.Key][]model.Task),
	}
}

// Load fetches all tasks for a date ordered by creation time ascending and
// caches them.
func (ts *TaskStore) Load(ctx context.Context, key datekey.Key) ([]model.Task, error) {
	docs, err := ts.store.GetAll(ctx, dayTasksPath(ts.uid, key), "createdAt")
	if err != nil {
		return nil, fmt.Errorf("load tasks for %s: %w", key, err)
	}
	tasks := decodeTasks(docs)
	ts.Replace(key, tasks)
	return tasks, nil
}

// Get returns the cached snapshot for a date, empty if never loaded.
func (ts *TaskStore) Get(key datekey.Key) []model.Task {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return ts.byDate[key]
}

// Loaded reports whether the date has an entry in the cache.
func (ts *TaskStore) Loaded(key datekey.Key) bool {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	_, ok := ts.byDate[key]
	return ok
}

// Replace swaps the cached snapshot for a date.
func (ts *TaskStore) Replace(key datekey.Key, tasks []model.Task) {
	ts.mu.Lock()
	ts.byDate[key] = tasks
	ts.mu.Unlock()
}

// Invalidate drops a date from the cache.
func (ts *TaskStore) Invalidate(key datekey.Key) {
	ts.mu.Lock()
	delete(ts.byDate, key)
	ts.mu.Unlock()
}

// Keys lists every cached date in ascending order.
func (ts *TaskStore) Keys() []datekey.Key {
	ts.mu.RLock()
	keys := make([]datekey.Key, 0, len(ts.byDate))
	for k := range ts.byDate {
		keys = append(keys, k)
	}
	ts.mu.RUnlock()
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Clear empties the cache. Called on logout.
func (ts *TaskStore) Clear() {
	ts.mu.Lock()
	ts.byDate = make(map[datekey.Key][]model.Task)
	ts.mu.Unlock()
}

// decodeTasks converts raw documents to tasks, carrying the document id.
// A record that fails to decode is skipped rather than failing the snapshot.
func decodeTasks(docs []docstore.Document) []model.Task {
	tasks := make([]model.Task, 0, len(docs))
	for _, doc := range docs {
		var task model.Task
		if err := json.Unmarshal(doc.Data, &task); err != nil {
			continue
		}
		task.ID = doc.ID
		tasks = append(tasks, task)
	}
	return tasks
}
