package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"allswell/internal/datekey"
	"allswell/internal/docstore"
	"allswell/internal/model"
)

// Reconciler recounts per-day counter documents from the task records they
// summarize. Counter updates ride beside task writes without a transaction,
// so a failed second write leaves drift; the reconciler heals it.
type Reconciler struct {
	store docstore.Store
	log   *slog.Logger
}

func NewReconciler(store docstore.Store, log *slog.Logger) *Reconciler {
	return &Reconciler{store: store, log: log}
}

// ReconcileDay recomputes one day's counters from its tasks. A day with no
// counter document and no tasks is left untouched.
func (r *Reconciler) ReconcileDay(ctx context.Context, uid string, key datekey.Key) error {
	docs, err := r.store.GetAll(ctx, dayTasksPath(uid, key), "")
	if err != nil {
		return fmt.Errorf("scan tasks for %s: %w", key, err)
	}

	var meta model.DayMetadata
	for _, doc := range docs {
		var task model.Task
		if err := json.Unmarshal(doc.Data, &task); err != nil {
			continue
		}
		meta.TaskCount++
		if task.Completed {
			meta.CompletedCount++
		}
	}

	if meta.TaskCount == 0 {
		if _, err := r.store.Get(ctx, dailyTasksPath(uid), key.String()); err != nil {
			return nil
		}
	}

	if err := r.store.Set(ctx, dailyTasksPath(uid), key.String(), meta, true); err != nil {
		return fmt.Errorf("write counters for %s: %w", key, err)
	}
	return nil
}

// ReconcileMonth recounts every day of the month containing t.
func (r *Reconciler) ReconcileMonth(ctx context.Context, uid string, t time.Time) error {
	for _, key := range datekey.MonthKeys(t) {
		if err := r.ReconcileDay(ctx, uid, key); err != nil {
			r.log.Warn("day reconcile failed",
				slog.String("user", uid),
				slog.String("date", key.String()),
				slog.String("error", err.Error()))
		}
	}
	return nil
}

// ReconcileAll recounts the current month for every known user. Driven by the
// scheduler.
func (r *Reconciler) ReconcileAll(ctx context.Context, now time.Time) error {
	users, err := r.store.GetAll(ctx, usersCollection, "")
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	for _, user := range users {
		if err := r.ReconcileMonth(ctx, user.ID, now); err != nil {
			return err
		}
	}
	return nil
}
