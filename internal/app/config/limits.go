package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"video-subtitler/internal/app/model"
)

// LimitsDocument is the on-disk shape of the quota configuration. An
// override, when present, replaces the defaults wholesale for that identity.
type LimitsDocument struct {
	Defaults  model.Limits            `yaml:"defaults" validate:"required"`
	Overrides map[string]model.Limits `yaml:"overrides,omitempty"`
}

// DefaultLimits is used when no limits file exists yet.
func DefaultLimits() model.Limits {
	return model.Limits{
		MaxVideos:          10,
		MaxDurationMinutes: 10,
		MaxFileSizeMB:      500,
		AllowedExtensions:  []string{".mp4", ".mov", ".avi", ".mkv", ".wmv"},
	}
}

// LimitsStore serves effective limits and supports hot reload. It satisfies
// the quota ledger's LimitsSource.
type LimitsStore struct {
	mu       sync.RWMutex
	path     string
	doc      LimitsDocument
	validate *validator.Validate
}

// NewLimitsStore loads the limits file at path. A missing file is not an
// error: built-in defaults apply until one is written.
func NewLimitsStore(path string) (*LimitsStore, error) {
	s := &LimitsStore{
		path:     os.ExpandEnv(path),
		doc:      LimitsDocument{Defaults: DefaultLimits()},
		validate: validator.New(),
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the limits file, replacing the in-memory document. The
// previous document stays in effect when the file is absent.
func (s *LimitsStore) Reload() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read limits file: %w", err)
	}

	var doc LimitsDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse limits file: %w", err)
	}
	if err := s.validateDocument(&doc); err != nil {
		return err
	}

	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	return nil
}

func (s *LimitsStore) validateDocument(doc *LimitsDocument) error {
	if err := s.validate.Struct(doc.Defaults); err != nil {
		return fmt.Errorf("invalid default limits: %w", err)
	}
	for identity, limits := range doc.Overrides {
		if err := s.validate.Struct(limits); err != nil {
			return fmt.Errorf("invalid limits override for %s: %w", identity, err)
		}
	}
	return nil
}

// EffectiveLimits returns the override for identity when one exists,
// otherwise the defaults. Resolved fresh on every call.
func (s *LimitsStore) EffectiveLimits(identity string) model.Limits {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limits, ok := s.doc.Overrides[identity]; ok {
		return limits
	}
	return s.doc.Defaults
}

// Defaults returns the process-wide default limits.
func (s *LimitsStore) Defaults() model.Limits {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Defaults
}

// SetOverride installs (or replaces) an identity override and persists the
// document.
func (s *LimitsStore) SetOverride(identity string, limits model.Limits) error {
	if err := s.validate.Struct(limits); err != nil {
		return fmt.Errorf("invalid limits override: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc.Overrides == nil {
		s.doc.Overrides = make(map[string]model.Limits)
	}
	s.doc.Overrides[identity] = limits
	return s.saveLocked()
}

// RemoveOverride drops an identity override, restoring the defaults for it.
func (s *LimitsStore) RemoveOverride(identity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.doc.Overrides, identity)
	return s.saveLocked()
}

func (s *LimitsStore) saveLocked() error {
	data, err := yaml.Marshal(&s.doc)
	if err != nil {
		return fmt.Errorf("encode limits file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create limits directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write limits file: %w", err)
	}
	return nil
}
