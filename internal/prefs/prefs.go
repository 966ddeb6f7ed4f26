// Package prefs persists the user's scanner preferences as a YAML file.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"qrscanner/internal/contextutil"
)

// Preferences holds the independent preference flags.
type Preferences struct {
	CopyToClipboard   bool `yaml:"copy_to_clipboard" json:"copy_to_clipboard"`
	RetrieveURLInfo   bool `yaml:"retrieve_url_info" json:"retrieve_url_info"`
	AutoFocus         bool `yaml:"auto_focus" json:"auto_focus"`
	TouchFocus        bool `yaml:"touch_focus" json:"touch_focus"`
	KeepDuplicates    bool `yaml:"keep_duplicates" json:"keep_duplicates"`
	UseInAppBrowser   bool `yaml:"use_in_app_browser" json:"use_in_app_browser"`
	AddScansToHistory bool `yaml:"add_scans_to_history" json:"add_scans_to_history"`
}

// Defaults returns the preferences of a fresh install.
func Defaults() Preferences {
	return Preferences{
		AutoFocus:         true,
		UseInAppBrowser:   true,
		AddScansToHistory: true,
	}
}

// Patch carries the flags to change. Nil fields are left as they are.
type Patch struct {
	CopyToClipboard   *bool `json:"copy_to_clipboard,omitempty"`
	RetrieveURLInfo   *bool `json:"retrieve_url_info,omitempty"`
	AutoFocus         *bool `json:"auto_focus,omitempty"`
	TouchFocus        *bool `json:"touch_focus,omitempty"`
	KeepDuplicates    *bool `json:"keep_duplicates,omitempty"`
	UseInAppBrowser   *bool `json:"use_in_app_browser,omitempty"`
	AddScansToHistory *bool `json:"add_scans_to_history,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.CopyToClipboard == nil && p.RetrieveURLInfo == nil && p.AutoFocus == nil &&
		p.TouchFocus == nil && p.KeepDuplicates == nil && p.UseInAppBrowser == nil &&
		p.AddScansToHistory == nil
}

// Apply returns prefs with the patch's fields set.
func (p Patch) Apply(prefs Preferences) Preferences {
	set := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	set(&prefs.CopyToClipboard, p.CopyToClipboard)
	set(&prefs.RetrieveURLInfo, p.RetrieveURLInfo)
	set(&prefs.AutoFocus, p.AutoFocus)
	set(&prefs.TouchFocus, p.TouchFocus)
	set(&prefs.KeepDuplicates, p.KeepDuplicates)
	set(&prefs.UseInAppBrowser, p.UseInAppBrowser)
	set(&prefs.AddScansToHistory, p.AddScansToHistory)
	return prefs
}

// FileStore keeps preferences in a single YAML file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a store backed by path. The file is created on the
// first update.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Get reads the preferences. A missing file or missing keys yield defaults.
func (s *FileStore) Get(ctx context.Context) (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Update applies patch and writes the result back.
func (s *FileStore) Update(ctx context.Context, patch Patch) (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load()
	if err != nil {
		return Preferences{}, err
	}
	next := patch.Apply(current)
	if err := s.save(next); err != nil {
		return Preferences{}, err
	}

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "preferences updated", "path", s.path)
	return next, nil
}

func (s *FileStore) load() (Preferences, error) {
	prefs := Defaults()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return prefs, nil
	}
	if err != nil {
		return Preferences{}, fmt.Errorf("failed to read preferences: %w", err)
	}

	if err := yaml.Unmarshal(data, &prefs); err != nil {
		return Preferences{}, fmt.Errorf("failed to parse preferences: %w", err)
	}
	return prefs, nil
}

func (s *FileStore) save(prefs Preferences) error {
	data, err := yaml.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".settings-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace preferences: %w", err)
	}
	return nil
}
