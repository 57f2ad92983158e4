package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"allswell/internal/apperr"
	"allswell/internal/docstore"
	"allswell/internal/model"
)

// GoalService stores one free-text goal per month.
type GoalService struct {
	store docstore.Store
}

func NewGoalService(store docstore.Store) *GoalService {
	return &GoalService{store: store}
}

// Load returns the goal for the month of t, or an empty goal when none is stored.
func (s *GoalService) Load(ctx context.Context, uid string, t time.Time) (*model.MonthlyGoal, error) {
	year, month, _ := t.Date()
	empty := &model.MonthlyGoal{Year: year, Month: int(month)}

	doc, err := s.store.Get(ctx, monthlyGoalsPath(uid), goalKey(t))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return empty, nil
		}
		return nil, fmt.Errorf("load monthly goal: %w", err)
	}

	var goal model.MonthlyGoal
	if err := json.Unmarshal(doc.Data, &goal); err != nil {
		return nil, fmt.Errorf("decode monthly goal: %w", err)
	}
	return &goal, nil
}

// Save writes the goal for the month of t with merge semantics.
func (s *GoalService) Save(ctx context.Context, uid string, t time.Time, text string) error {
	year, month, _ := t.Date()
	goal := model.MonthlyGoal{
		Year:      year,
		Month:     int(month),
		Goal:      text,
		UpdatedAt: time.Now(),
	}
	if err := s.store.Set(ctx, monthlyGoalsPath(uid), goalKey(t), goal, true); err != nil {
		return fmt.Errorf("save monthly goal: %w", err)
	}
	return nil
}

func goalKey(t time.Time) string {
	return t.Format("2006-01")
}
