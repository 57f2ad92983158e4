package planner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"allswell/internal/datekey"
	"allswell/internal/docstore"
	"allswell/internal/model"
)

// failingStore makes Get fail for one document id, leaving everything else to
// the real store.
type failingStore struct {
	docstore.Store
	failID string
}

func (f *failingStore) Get(ctx context.Context, collection, id string) (*docstore.Document, error) {
	if id == f.failID {
		return nil, errors.New("simulated fetch failure")
	}
	return f.Store.Get(ctx, collection, id)
}

func TestComputeMonthCoversEveryDay(t *testing.T) {
	store := newTestStore(t)
	agg := NewMonthAggregator(store, testLogger())
	ctx := context.Background()

	march := time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local)
	require.NoError(t, store.Set(ctx, dailyTasksPath(testUID), "2024-03-05",
		model.DayMetadata{TaskCount: 3, CompletedCount: 2}, false))
	require.NoError(t, store.Set(ctx, dailyTasksPath(testUID), "2024-03-20",
		model.DayMetadata{TaskCount: 1, CompletedCount: 0}, false))

	meta := agg.ComputeMonth(ctx, testUID, march)
	require.Len(t, meta.Days, 31)

	assert.Equal(t, model.DayMetadata{TaskCount: 3, CompletedCount: 2}, meta.Days["2024-03-05"])
	assert.Equal(t, model.DayMetadata{TaskCount: 1}, meta.Days["2024-03-20"])
	assert.Equal(t, model.DayMetadata{}, meta.Days["2024-03-01"])
	assert.Equal(t, model.DayMetadata{}, meta.Days["2024-03-31"])
}

func TestComputeMonthDefaultsFailedDays(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, dailyTasksPath(testUID), "2024-04-10",
		model.DayMetadata{TaskCount: 2, CompletedCount: 1}, false))
	require.NoError(t, store.Set(ctx, dailyTasksPath(testUID), "2024-04-11",
		model.DayMetadata{TaskCount: 5, CompletedCount: 5}, false))

	flaky := &failingStore{Store: store, failID: "2024-04-11"}
	agg := NewMonthAggregator(flaky, testLogger())

	meta := agg.ComputeMonth(ctx, testUID, time.Date(2024, 4, 1, 0, 0, 0, 0, time.Local))
	require.Len(t, meta.Days, 30, "one failed fetch must not shrink the mapping")
	assert.Equal(t, model.DayMetadata{TaskCount: 2, CompletedCount: 1}, meta.Days["2024-04-10"])
	assert.Equal(t, model.DayMetadata{}, meta.Days["2024-04-11"], "failed day degrades to zero counts")
}

func TestComputeMonthGenerationsIncrease(t *testing.T) {
	store := newTestStore(t)
	agg := NewMonthAggregator(store, testLogger())
	ctx := context.Background()
	month := time.Date(2024, 5, 1, 0, 0, 0, 0, time.Local)

	first := agg.ComputeMonth(ctx, testUID, month)
	second := agg.ComputeMonth(ctx, testUID, month)
	assert.Greater(t, second.Generation, first.Generation)
	assert.Equal(t, second.Generation, agg.Latest())
}

func TestZeroMonth(t *testing.T) {
	days := ZeroMonth(time.Date(2024, 2, 10, 0, 0, 0, 0, time.Local))
	require.Len(t, days, 29)
	for key, meta := range days {
		assert.Equal(t, model.DayMetadata{}, meta, "day %s", key)
	}
	_, ok := days[datekey.Key("2024-02-29")]
	assert.True(t, ok)
}
