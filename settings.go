package canopy

import (
	"fmt"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

const settingsTag = "Settings"

const (
	settingsObject   = "settings"
	settingsProperty = "leaves"
)

// Settings are the user-tunable values persisted between runs.
type Settings struct {
	LeavesEnabled bool    `yaml:"leavesEnabled"`
	Number        int     `yaml:"number"`
	AutoFall      bool    `yaml:"autoFall"`
	Opacity       float64 `yaml:"opacity"`
	ShowFPS       bool    `yaml:"showFPS"`
}

// DefaultSettings returns settings matching DefaultLeavesConfig.
func DefaultSettings() Settings {
	def := DefaultLeavesConfig()
	return Settings{
		LeavesEnabled: true,
		Number:        def.Number,
		AutoFall:      def.AutoFall,
		Opacity:       1,
	}
}

// SettingsFromConfig derives initial settings from a loaded config.
func SettingsFromConfig(cfg Config) Settings {
	s := DefaultSettings()
	s.Number = cfg.Leaves.Number
	s.AutoFall = cfg.Leaves.AutoFall
	s.ShowFPS = cfg.Window.ShowFPS
	return s
}

// SettingsStore loads and saves Settings through gdata. A nil manager keeps
// settings in memory only.
type SettingsStore struct {
	manager  *gdata.Manager
	settings Settings
	defaults Settings
}

// OpenSettingsStore opens the gdata storage for appName. When the storage
// cannot be opened the store degrades to memory only and the error is
// returned alongside it.
func OpenSettingsStore(appName string, defaults Settings) (*SettingsStore, error) {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		logf(settingsTag, "storage unavailable, settings will not persist: %v", err)
		return NewSettingsStore(nil, defaults), fmt.Errorf("open settings storage: %w", err)
	}
	return NewSettingsStore(m, defaults), nil
}

// NewSettingsStore creates a store over manager and loads saved settings.
// Load failures are logged and leave defaults in place.
func NewSettingsStore(manager *gdata.Manager, defaults Settings) *SettingsStore {
	s := &SettingsStore{
		manager:  manager,
		settings: defaults,
		defaults: defaults,
	}
	if err := s.Load(); err != nil {
		logf(settingsTag, "warning: %v (using defaults)", err)
	}
	return s
}

// Persistent reports whether the store writes to disk.
func (s *SettingsStore) Persistent() bool {
	return s.manager != nil
}

// Load reads saved settings. Missing settings reset to defaults and are not
// an error.
func (s *SettingsStore) Load() error {
	if s.manager == nil || !s.manager.ObjectPropExists(settingsObject, settingsProperty) {
		s.settings = s.defaults
		return nil
	}

	data, err := s.manager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		s.settings = s.defaults
		return fmt.Errorf("load settings: %w", err)
	}

	loaded := s.defaults
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		s.settings = s.defaults
		return fmt.Errorf("unmarshal settings: %w", err)
	}
	s.settings = loaded
	s.normalize()
	return nil
}

// Save writes the current settings. Without a manager it does nothing.
func (s *SettingsStore) Save() error {
	if s.manager == nil {
		return nil
	}
	data, err := yaml.Marshal(s.settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := s.manager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Settings returns the current settings.
func (s *SettingsStore) Settings() Settings {
	return s.settings
}

// Update replaces the current settings in memory. Call Save to persist.
func (s *SettingsStore) Update(fn func(*Settings)) {
	fn(&s.settings)
	s.normalize()
}

func (s *SettingsStore) normalize() {
	if s.settings.Opacity < 0 || s.settings.Opacity > 1 {
		logf(settingsTag, "opacity %v out of range, clamped", s.settings.Opacity)
		s.settings.Opacity = clamp(s.settings.Opacity, 0, 1)
	}
	if s.settings.Number < 0 {
		logf(settingsTag, "number %d below 0, clamped", s.settings.Number)
		s.settings.Number = 0
	}
}
