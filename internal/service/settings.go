package service

import (
	"context"

	"qrscanner/internal/contextutil"
	"qrscanner/internal/prefs"
)

// SettingsService reads and changes the preference flags.
type SettingsService interface {
	Get(ctx context.Context) (prefs.Preferences, error)
	// Update applies only the flags present in patch.
	Update(ctx context.Context, patch prefs.Patch) (prefs.Preferences, error)
}

type settingsService struct {
	store PreferenceStore
}

// NewSettingsService creates a new SettingsService.
func NewSettingsService(store PreferenceStore) SettingsService {
	return &settingsService{store: store}
}

func (s *settingsService) Get(ctx context.Context) (prefs.Preferences, error) {
	p, err := s.store.Get(ctx)
	if err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to read preferences", "error", err)
		return prefs.Preferences{}, WrapError(err, "failed to read preferences")
	}
	return p, nil
}

func (s *settingsService) Update(ctx context.Context, patch prefs.Patch) (prefs.Preferences, error) {
	if patch.Empty() {
		return prefs.Preferences{}, &ValidationError{Field: "settings", Message: "no known setting in request"}
	}

	p, err := s.store.Update(ctx, patch)
	if err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to update preferences", "error", err)
		return prefs.Preferences{}, WrapError(err, "failed to update preferences")
	}
	return p, nil
}
