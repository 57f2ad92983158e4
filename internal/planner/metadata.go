package planner

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"allswell/internal/apperr"
	"allswell/internal/datekey"
	"allswell/internal/docstore"
	"allswell/internal/model"
)

// MonthMetadata is a complete per-day counter mapping for one month, tagged
// with the aggregator generation that produced it so a response for an
// abandoned month can be discarded instead of clobbering a newer one.
type MonthMetadata struct {
	Generation uint64
	Days       map[datekey.Key]model.DayMetadata
}

// MonthAggregator computes per-day summary counts for a displayed month. The
// backing store has no range query across a month of per-day documents, so it
// fans out one fetch per day and merges the results.
type MonthAggregator struct {
	store docstore.Store
	log   *slog.Logger
	gen   atomic.Uint64
}

func NewMonthAggregator(store docstore.Store, log *slog.Logger) *MonthAggregator {
	return &MonthAggregator{store: store, log: log}
}

// Latest returns the most recently issued generation.
func (a *MonthAggregator) Latest() uint64 {
	return a.gen.Load()
}

// ComputeMonth returns counters for every calendar day of the month containing
// month. Days without a stored document, and days whose fetch failed, default
// to zero counts; a single day's failure never aborts the whole month. The
// call is read-only and idempotent.
func (a *MonthAggregator) ComputeMonth(ctx context.Context, uid string, month time.Time) MonthMetadata {
	generation := a.gen.Add(1)
	keys := datekey.MonthKeys(month)
	results := make([]model.DayMetadata, len(keys))

	g, gCtx := errgroup.WithContext(ctx)
	for i, key := range keys {
		i, key := i, key
		g.Go(func() error {
			doc, err := a.store.Get(gCtx, dailyTasksPath(uid), key.String())
			if err != nil {
				if !errors.Is(err, apperr.ErrNotFound) {
					a.log.Warn("day metadata fetch failed",
						slog.String("date", key.String()),
						slog.String("error", err.Error()))
				}
				return nil // day degrades to zero counts
			}
			var meta model.DayMetadata
			if err := json.Unmarshal(doc.Data, &meta); err != nil {
				a.log.Warn("day metadata decode failed",
					slog.String("date", key.String()),
					slog.String("error", err.Error()))
				return nil
			}
			results[i] = meta
			return nil
		})
	}
	_ = g.Wait() // every task returns nil; Wait is the join point

	days := make(map[datekey.Key]model.DayMetadata, len(keys))
	for i, key := range keys {
		days[key] = results[i]
	}
	return MonthMetadata{Generation: generation, Days: days}
}

// ZeroMonth synthesizes a zero-count mapping for immediate rendering while
// ComputeMonth is in flight.
func ZeroMonth(month time.Time) map[datekey.Key]model.DayMetadata {
	keys := datekey.MonthKeys(month)
	days := make(map[datekey.Key]model.DayMetadata, len(keys))
	for _, key := range keys {
		days[key] = model.DayMetadata{}
	}
	return days
}
