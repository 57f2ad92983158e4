package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"allswell/internal/apperr"
	"allswell/internal/datekey"
	"allswell/internal/docstore"
	"allswell/internal/model"
)

// TaskInput represents data required to create or edit a task.
type TaskInput struct {
	Title       string `json:"title"`
	CategoryID  string `json:"categoryId"`
	Description string `json:"description"`
}

// Validate reports missing required fields before anything is persisted.
func (in TaskInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required),
		validation.Field(&in.CategoryID, validation.Required),
	)
}

// TaskService wraps task CRUD. Each mutation keeps the day's denormalized
// counters in step: creation bumps taskCount, completion toggles move
// completedCount, deletion lowers taskCount. There is no transaction around
// the pair; the reconciler recounts drift.
type TaskService struct {
	store docstore.Store
	log   *slog.Logger
}

func NewTaskService(store docstore.Store, log *slog.Logger) *TaskService {
	return &TaskService{store: store, log: log}
}

// List fetches the tasks of a date ordered by creation time ascending.
func (s *TaskService) List(ctx context.Context, uid string, key datekey.Key) ([]model.Task, error) {
	docs, err := s.store.GetAll(ctx, dayTasksPath(uid, key), "createdAt")
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return decodeTasks(docs), nil
}

// Create adds a task to a date and increments the day's task counter,
// creating the day document on first use.
func (s *TaskService) Create(ctx context.Context, uid string, key datekey.Key, input TaskInput) (*model.Task, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	if err := s.ensureDayDoc(ctx, uid, key); err != nil {
		return nil, err
	}

	existing, err := s.store.GetAll(ctx, dayTasksPath(uid, key), "")
	if err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}

	task := model.Task{
		Title:       input.Title,
		CategoryID:  input.CategoryID,
		Description: input.Description,
		Completed:   false,
		CreatedAt:   time.Now(),
		Order:       len(existing),
	}

	id, err := s.store.Add(ctx, dayTasksPath(uid, key), task)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	task.ID = id

	if err := s.store.Update(ctx, dailyTasksPath(uid), key.String(), map[string]any{
		"taskCount": docstore.Increment(1),
	}); err != nil {
		s.log.Warn("task counter increment failed",
			slog.String("date", key.String()),
			slog.String("error", err.Error()))
	}

	return &task, nil
}

// Update edits title, category and description of an existing task.
// Counters are untouched.
func (s *TaskService) Update(ctx context.Context, uid string, key datekey.Key, taskID string, input TaskInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	return s.store.Update(ctx, dayTasksPath(uid, key), taskID, map[string]any{
		"title":       input.Title,
		"categoryId":  input.CategoryID,
		"description": input.Description,
		"updatedAt":   time.Now(),
	})
}

// Toggle flips a task's completed flag, sets or clears completedAt, and moves
// the day's completed counter by one in the matching direction.
func (s *TaskService) Toggle(ctx context.Context, uid string, key datekey.Key, taskID string) (*model.Task, error) {
	doc, err := s.store.Get(ctx, dayTasksPath(uid, key), taskID)
	if err != nil {
		return nil, err
	}
	var task model.Task
	if err := json.Unmarshal(doc.Data, &task); err != nil {
		return nil, fmt.Errorf("decode task: %w", err)
	}
	task.ID = taskID

	wasCompleted := task.Completed
	task.Completed = !wasCompleted
	if wasCompleted {
		task.CompletedAt = nil
	} else {
		now := time.Now()
		task.CompletedAt = &now
	}

	fields := map[string]any{
		"completed":   task.Completed,
		"completedAt": task.CompletedAt,
	}
	if err := s.store.Update(ctx, dayTasksPath(uid, key), taskID, fields); err != nil {
		return nil, fmt.Errorf("toggle task: %w", err)
	}

	delta := docstore.Increment(1)
	if wasCompleted {
		delta = docstore.Increment(-1)
	}
	if err := s.store.Update(ctx, dailyTasksPath(uid), key.String(), map[string]any{
		"completedCount": delta,
	}); err != nil {
		s.log.Warn("completed counter update failed",
			slog.String("date", key.String()),
			slog.String("error", err.Error()))
	}

	return &task, nil
}

// Delete removes a task and lowers the day's task counter, flooring at zero.
func (s *TaskService) Delete(ctx context.Context, uid string, key datekey.Key, taskID string) error {
	if err := s.store.Delete(ctx, dayTasksPath(uid, key), taskID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	doc, err := s.store.Get(ctx, dailyTasksPath(uid), key.String())
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("read day counters: %w", err)
	}
	var meta model.DayMetadata
	if err := json.Unmarshal(doc.Data, &meta); err != nil {
		return fmt.Errorf("decode day counters: %w", err)
	}
	if meta.TaskCount > 0 {
		if err := s.store.Update(ctx, dailyTasksPath(uid), key.String(), map[string]any{
			"taskCount": meta.TaskCount - 1,
		}); err != nil {
			s.log.Warn("task counter decrement failed",
				slog.String("date", key.String()),
				slog.String("error", err.Error()))
		}
	}
	return nil
}

// ensureDayDoc creates the per-day counter document when absent.
func (s *TaskService) ensureDayDoc(ctx context.Context, uid string, key datekey.Key) error {
	_, err := s.store.Get(ctx, dailyTasksPath(uid), key.String())
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return fmt.Errorf("read day document: %w", err)
	}
	if err := s.store.Set(ctx, dailyTasksPath(uid), key.String(), model.DayMetadata{}, false); err != nil {
		return fmt.Errorf("create day document: %w", err)
	}
	return nil
}
