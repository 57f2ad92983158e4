package planner

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"allswell/internal/datekey"
	"allswell/internal/model"
)

const testDate = datekey.Key("2024-03-05")

func readDayMeta(t *testing.T, svc *TaskService, uid string, key datekey.Key) model.DayMetadata {
	t.Helper()
	doc, err := svc.store.Get(context.Background(), dailyTasksPath(uid), key.String())
	require.NoError(t, err)
	var meta model.DayMetadata
	require.NoError(t, json.Unmarshal(doc.Data, &meta))
	return meta
}

func TestCreateOrdersByCreationTime(t *testing.T) {
	store := newTestStore(t)
	svc := NewTaskService(store, testLogger())
	ctx := context.Background()

	for _, title := range []string{"first", "second", "third"} {
		_, err := svc.Create(ctx, testUID, testDate, TaskInput{Title: title, CategoryID: "cat"})
		require.NoError(t, err)
	}

	tasks, err := svc.List(ctx, testUID, testDate)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "first", tasks[0].Title)
	assert.Equal(t, "second", tasks[1].Title)
	assert.Equal(t, "third", tasks[2].Title)
	assert.Equal(t, 0, tasks[0].Order)
	assert.Equal(t, 2, tasks[2].Order)
}

func TestCreateValidatesInput(t *testing.T) {
	store := newTestStore(t)
	svc := NewTaskService(store, testLogger())
	ctx := context.Background()

	_, err := svc.Create(ctx, testUID, testDate, TaskInput{CategoryID: "cat"})
	assert.Error(t, err, "missing title")

	_, err = svc.Create(ctx, testUID, testDate, TaskInput{Title: "walk"})
	assert.Error(t, err, "missing category")

	tasks, err := svc.List(ctx, testUID, testDate)
	require.NoError(t, err)
	assert.Empty(t, tasks, "validation failures must not persist anything")
}

func TestCountersFollowTaskLifecycle(t *testing.T) {
	store := newTestStore(t)
	svc := NewTaskService(store, testLogger())
	ctx := context.Background()

	var ids []string
	for _, in := range []TaskInput{
		{Title: "report", CategoryID: "work"},
		{Title: "review", CategoryID: "work"},
		{Title: "gym", CategoryID: "personal"},
	} {
		task, err := svc.Create(ctx, testUID, testDate, in)
		require.NoError(t, err)
		ids = append(ids, task.ID)
	}

	_, err := svc.Toggle(ctx, testUID, testDate, ids[0])
	require.NoError(t, err)
	_, err = svc.Toggle(ctx, testUID, testDate, ids[1])
	require.NoError(t, err)

	meta := readDayMeta(t, svc, testUID, testDate)
	assert.Equal(t, 3, meta.TaskCount)
	assert.Equal(t, 2, meta.CompletedCount)
}

func TestToggleBackClearsCompletion(t *testing.T) {
	store := newTestStore(t)
	svc := NewTaskService(store, testLogger())
	ctx := context.Background()

	created, err := svc.Create(ctx, testUID, testDate, TaskInput{Title: "walk", CategoryID: "cat"})
	require.NoError(t, err)

	toggled, err := svc.Toggle(ctx, testUID, testDate, created.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)
	assert.NotNil(t, toggled.CompletedAt)
	assert.Equal(t, 1, readDayMeta(t, svc, testUID, testDate).CompletedCount)

	back, err := svc.Toggle(ctx, testUID, testDate, created.ID)
	require.NoError(t, err)
	assert.False(t, back.Completed)
	assert.Nil(t, back.CompletedAt)
	assert.Equal(t, 0, readDayMeta(t, svc, testUID, testDate).CompletedCount)

	tasks, err := svc.List(ctx, testUID, testDate)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Nil(t, tasks[0].CompletedAt, "completedAt must clear in the stored document")
}

func TestDeleteLowersTaskCount(t *testing.T) {
	store := newTestStore(t)
	svc := NewTaskService(store, testLogger())
	ctx := context.Background()

	created, err := svc.Create(ctx, testUID, testDate, TaskInput{Title: "walk", CategoryID: "cat"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, testUID, testDate, created.ID))
	assert.Equal(t, 0, readDayMeta(t, svc, testUID, testDate).TaskCount)

	// A second delete of the same id must not push the counter negative.
	require.NoError(t, svc.Delete(ctx, testUID, testDate, created.ID))
	assert.Equal(t, 0, readDayMeta(t, svc, testUID, testDate).TaskCount)
}

func TestUpdateEditsWithoutTouchingCounters(t *testing.T) {
	store := newTestStore(t)
	svc := NewTaskService(store, testLogger())
	ctx := context.Background()

	created, err := svc.Create(ctx, testUID, testDate, TaskInput{Title: "walk", CategoryID: "cat"})
	require.NoError(t, err)

	err = svc.Update(ctx, testUID, testDate, created.ID, TaskInput{Title: "run", CategoryID: "health", Description: "5k"})
	require.NoError(t, err)

	tasks, err := svc.List(ctx, testUID, testDate)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "run", tasks[0].Title)
	assert.Equal(t, "health", tasks[0].CategoryID)
	assert.Equal(t, "5k", tasks[0].Description)

	meta := readDayMeta(t, svc, testUID, testDate)
	assert.Equal(t, 1, meta.TaskCount)
	assert.Equal(t, 0, meta.CompletedCount)
}
