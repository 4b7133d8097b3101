// Package config loads the layered YAML configuration.
package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/benwelker/terse/internal/domain"
	"github.com/benwelker/terse/internal/pkg/filesystem"
	"github.com/benwelker/terse/internal/ports"
)

// FileLoader merges configuration layers: built-in defaults, the user file
// at ~/.terse/config.yaml (overridable via TERSE_CONFIG), a project-local
// .terse.yaml, and TERSE_* environment variables. Later layers win.
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader. path overrides the user file location.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	cfg := domain.DefaultConfig()

	userPath := l.UserPath()
	if err := ensureConfigDir(userPath); err != nil {
		return domain.Config{}, err
	}
	data, err := os.ReadFile(userPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return domain.Config{}, err
		}
	case errors.Is(err, fs.ErrNotExist):
		if err := writeConfig(userPath, cfg); err != nil {
			return domain.Config{}, err
		}
	default:
		return domain.Config{}, err
	}

	if data, err := os.ReadFile(projectPath()); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return domain.Config{}, err
		}
	}

	applyEnv(&cfg)
	cfg.ApplyProfile()
	return cfg, nil
}

// UserPath resolves the user config file location.
func (l *FileLoader) UserPath() string {
	if l.overridePath != "" {
		return l.overridePath
	}
	if custom := os.Getenv("TERSE_CONFIG"); custom != "" {
		return filesystem.ExpandPath(custom)
	}
	return filepath.Join(filesystem.UserHomeDir(), ".terse", "config.yaml")
}

// Save writes cfg to the user config file.
func (l *FileLoader) Save(cfg domain.Config) error {
	path := l.UserPath()
	if err := ensureConfigDir(path); err != nil {
		return err
	}
	return writeConfig(path, cfg)
}

func projectPath() string {
	wd, err := os.Getwd()
	if err != nil {
		return ".terse.yaml"
	}
	return filepath.Join(wd, ".terse.yaml")
}

func ensureConfigDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

func writeConfig(path string, cfg domain.Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

func applyEnv(cfg *domain.Config) {
	if v := os.Getenv("TERSE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.General.Enabled = b
		}
	}
	if v := os.Getenv("TERSE_MODE"); v != "" && domain.ValidMode(v) {
		cfg.General.Mode = v
	}
	if v := os.Getenv("TERSE_PROFILE"); v != "" && domain.ValidProfile(v) {
		cfg.General.Profile = v
	}
	if v := os.Getenv("TERSE_MODEL"); v != "" {
		cfg.SmartPath.Model = v
	}
	if v := os.Getenv("TERSE_OLLAMA_URL"); v != "" {
		cfg.SmartPath.OllamaURL = v
	}
	if v := os.Getenv("TERSE_SMART_PATH"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.SmartPath.Enabled = b
		}
	}
	if v := os.Getenv("TERSE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
