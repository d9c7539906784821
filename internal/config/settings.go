package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Conflict policies accepted by restore.on_conflict.
const (
	OnConflictPrompt = "prompt"
	OnConflictApply  = "apply"
	OnConflictKeep   = "keep"
	OnConflictMark   = "mark"
)

// Defaults for settings missing from config.yaml.
const (
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultLogFileName   = "shelf.log"
	DefaultMaxLogSizeMB  = 10
	DefaultMaxLogBackups = 3
)

// Settings is the content of config.yaml.
type Settings struct {
	Log     LogSettings     `yaml:"log"`
	Restore RestoreSettings `yaml:"restore"`
}

// LogSettings configures the structured logger.
type LogSettings struct {
	Level      string `yaml:"level" validate:"loglevel"`
	Format     string `yaml:"format" validate:"oneof=console json"`
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb" validate:"gte=1"`
	MaxBackups int    `yaml:"max_backups" validate:"gte=0"`
}

// RestoreSettings configures restore defaults.
type RestoreSettings struct {
	OnConflict string `yaml:"on_conflict" validate:"oneof=prompt apply keep mark"`
}

// DefaultSettings returns the settings used when no config file exists.
// The log file lives under the paths' Logs directory.
func DefaultSettings(paths *Paths) *Settings {
	return &Settings{
		Log: LogSettings{
			Level:      DefaultLogLevel,
			Format:     DefaultLogFormat,
			File:       filepath.Join(paths.Logs, DefaultLogFileName),
			MaxSizeMB:  DefaultMaxLogSizeMB,
			MaxBackups: DefaultMaxLogBackups,
		},
		Restore: RestoreSettings{
			OnConflict: OnConflictPrompt,
		},
	}
}

// LoadSettings reads paths.Config on top of the defaults.
// A missing file is not an error.
func LoadSettings(paths *Paths) (*Settings, error) {
	settings := DefaultSettings(paths)

	data, err := os.ReadFile(paths.Config)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", paths.Config, err)
	}

	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", paths.Config, err)
	}

	settings.Log.Level = strings.ToLower(settings.Log.Level)
	settings.Log.Format = strings.ToLower(settings.Log.Format)
	settings.Restore.OnConflict = strings.ToLower(settings.Restore.OnConflict)

	if err := ValidateSettings(settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// ValidationError lists every invalid field found in a Settings value.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// ValidateSettings checks settings with struct tag rules.
func ValidateSettings(settings *Settings) error {
	validate := validator.New()

	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "trace", "debug", "info", "warn", "error", "disabled":
			return true
		default:
			return false
		}
	})

	err := validate.Struct(settings)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate config: %w", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s: value %v fails rule %q", fe.Namespace(), fe.Value(), fe.Tag()))
	}
	return &ValidationError{Errors: msgs}
}
