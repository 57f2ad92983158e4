package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"allswell/internal/apperr"
	"allswell/internal/docstore"
	"allswell/internal/model"
)

// ProfileService exposes the user's editable app title.
type ProfileService struct {
	store docstore.Store
}

func NewProfileService(store docstore.Store) *ProfileService {
	return &ProfileService{store: store}
}

// Title returns the user's app title, falling back to the default.
func (s *ProfileService) Title(ctx context.Context, uid string) (string, error) {
	doc, err := s.store.Get(ctx, usersCollection, uid)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return model.DefaultAppTitle, nil
		}
		return "", fmt.Errorf("load profile: %w", err)
	}

	var profile model.UserProfile
	if err := json.Unmarshal(doc.Data, &profile); err != nil {
		return "", fmt.Errorf("decode profile: %w", err)
	}
	if profile.AppTitle == "" {
		return model.DefaultAppTitle, nil
	}
	return profile.AppTitle, nil
}

// SaveTitle stores the app title. A title without the sprout emoji gets it
// appended; an empty title resets to the default.
func (s *ProfileService) SaveTitle(ctx context.Context, uid, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = model.DefaultAppTitle
	} else if !strings.Contains(title, "🌱") {
		title += " 🌱"
	}

	if err := s.store.Set(ctx, usersCollection, uid, map[string]any{"appTitle": title}, true); err != nil {
		return "", fmt.Errorf("save app title: %w", err)
	}
	return title, nil
}
