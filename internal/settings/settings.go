// Package settings persists the user's transform defaults as JSON.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"ultramdmemo/internal/apperr"
	"ultramdmemo/internal/pkg/atomicfile"
	"ultramdmemo/internal/transform"
)

type Settings struct {
	DefaultIntent     transform.Intent `json:"default_intent" validate:"required,oneof=auto meeting requirements incident study draftarticle chatsummary generic"`
	DefaultMode       transform.Mode   `json:"default_mode" validate:"required,oneof=balanced strict compact verbose"`
	DefaultIncludeRaw bool             `json:"default_include_raw"`
}

func Defaults() Settings {
	return Settings{
		DefaultIntent:     transform.IntentAuto,
		DefaultMode:       transform.ModeBalanced,
		DefaultIncludeRaw: false,
	}
}

var settingsValidator = validator.New()

func (s Settings) Validate() error {
	if err := settingsValidator.Struct(s); err != nil {
		return apperr.NewInvalidRequest(fmt.Sprintf("invalid settings: %v", err))
	}
	return nil
}

// Request builds a transform request for text using these defaults.
func (s Settings) Request(text string) transform.Request {
	req := transform.NewRequest(text)
	req.Intent = s.DefaultIntent
	req.Mode = s.DefaultMode
	req.IncludeRaw = s.DefaultIncludeRaw
	return req
}

type Store struct {
	path   string
	logger *zap.SugaredLogger
}

func NewStore(path string, logger *zap.SugaredLogger) *Store {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Store{path: path, logger: logger}
}

func (s *Store) Path() string { return s.path }

// Load never fails: a missing, unreadable or invalid file yields Defaults.
func (s *Store) Load() Settings {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warnw("settings_read_failed", "path", s.path, "err", err)
		}
		return Defaults()
	}

	// Start from defaults so absent keys keep their default value.
	out := Defaults()
	if err := json.Unmarshal(b, &out); err != nil {
		s.logger.Warnw("settings_corrupt", "path", s.path, "err", err)
		return Defaults()
	}
	if err := out.Validate(); err != nil {
		s.logger.Warnw("settings_invalid", "path", s.path, "err", err)
		return Defaults()
	}
	return out
}

func (s *Store) Save(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	b, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := atomicfile.WriteFile(s.path, b, 0o644); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	s.logger.Infow("settings_saved", "path", s.path)
	return nil
}
