package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"allswell/internal/apperr"
	"allswell/internal/datekey"
	"allswell/internal/docstore"
	"allswell/internal/model"
)

// DefaultCategoryColor is applied when a category is saved without a color.
const DefaultCategoryColor = "#6C5CE7"

// CategoryInput represents data required to create or edit a category.
type CategoryInput struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Emoji string `json:"emoji"`
}

func (in CategoryInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required),
	)
}

// CategoryService manages the user's ordered category list.
type CategoryService struct {
	store docstore.Store
	log   *slog.Logger

	mu     sync.Mutex
	saving map[string]bool // per-user in-flight save guard against double submission
}

func NewCategoryService(store docstore.Store, log *slog.Logger) *CategoryService {
	return &CategoryService{store: store, log: log, saving: make(map[string]bool)}
}

// List returns the user's categories ordered by their order field.
func (s *CategoryService) List(ctx context.Context, uid string) ([]model.Category, error) {
	docs, err := s.store.GetAll(ctx, categoriesPath(uid), "order")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	categories := make([]model.Category, 0, len(docs))
	for _, doc := range docs {
		var cat model.Category
		if err := json.Unmarshal(doc.Data, &cat); err != nil {
			continue
		}
		cat.ID = doc.ID
		categories = append(categories, cat)
	}
	return categories, nil
}

// Save creates a category (next order slot, duplicate names rejected) or,
// when editingID is set, updates an existing one. A save that starts while
// another save for the same user is still running fails with ErrSaveInFlight.
func (s *CategoryService) Save(ctx context.Context, uid, editingID string, input CategoryInput) (*model.Category, error) {
	s.mu.Lock()
	if s.saving[uid] {
		s.mu.Unlock()
		return nil, apperr.ErrSaveInFlight
	}
	s.saving[uid] = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.saving, uid)
		s.mu.Unlock()
	}()

	if err := input.Validate(); err != nil {
		return nil, err
	}
	if input.Color == "" {
		input.Color = DefaultCategoryColor
	}

	existing, err := s.List(ctx, uid)
	if err != nil {
		return nil, err
	}

	if editingID != "" {
		if err := s.store.Update(ctx, categoriesPath(uid), editingID, map[string]any{
			"name":  input.Name,
			"color": input.Color,
			"emoji": input.Emoji,
		}); err != nil {
			return nil, fmt.Errorf("update category: %w", err)
		}
		return &model.Category{ID: editingID, Name: input.Name, Color: input.Color, Emoji: input.Emoji}, nil
	}

	maxOrder := -1
	for _, cat := range existing {
		if cat.Name == input.Name {
			return nil, apperr.ErrAlreadyExists
		}
		if cat.Order > maxOrder {
			maxOrder = cat.Order
		}
	}

	cat := model.Category{
		Name:  input.Name,
		Color: input.Color,
		Emoji: input.Emoji,
		Order: maxOrder + 1,
	}
	id, err := s.store.Add(ctx, categoriesPath(uid), cat)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	cat.ID = id
	return &cat, nil
}

// Delete removes a category and cascades to every task referencing it on the
// given dates (the session passes its cached date keys, matching the scope the
// views have seen). Orphans on never-loaded days are left to a later visit.
func (s *CategoryService) Delete(ctx context.Context, uid, categoryID string, cachedDates []datekey.Key) error {
	for _, key := range cachedDates {
		docs, err := s.store.GetAll(ctx, dayTasksPath(uid, key), "")
		if err != nil {
			return fmt.Errorf("scan tasks for %s: %w", key, err)
		}
		for _, doc := range docs {
			var task model.Task
			if err := json.Unmarshal(doc.Data, &task); err != nil {
				continue
			}
			if task.CategoryID != categoryID {
				continue
			}
			if err := s.store.Delete(ctx, dayTasksPath(uid, key), doc.ID); err != nil {
				return fmt.Errorf("cascade delete task %s: %w", doc.ID, err)
			}
		}
	}

	if err := s.store.Delete(ctx, categoriesPath(uid), categoryID); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
