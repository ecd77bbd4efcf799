package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ConfigPathEnv overrides the default config file location.
const ConfigPathEnv = "COMPANION_CONFIG"

// Store is a key-value settings store with an ordered history list.
type Store interface {
	Load() (Settings, error)
	Save(Settings) error
	// History returns the stored results, most recent first.
	History() ([]string, error)
	SetHistory([]string) error
	Path() string
}

var _ Store = (*FileStore)(nil)

// FileStore keeps settings and history in a YAML file.
type FileStore struct {
	path string
	v    *viper.Viper
}

// DefaultPath returns $COMPANION_CONFIG or <user config dir>/companion/config.yaml.
func DefaultPath() (string, error) {
	if p := os.Getenv(ConfigPathEnv); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, "companion", "config.yaml"), nil
}

// Open reads the config file at path. A missing file is not an error; it is
// created on the first Save.
func Open(path string) (*FileStore, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}
	return &FileStore{path: path, v: v}, nil
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault(KeyModel, d.Model)
	v.SetDefault(KeyTemperature, d.Temperature)
	v.SetDefault(KeyMaxTokens, d.MaxTokens)
	v.SetDefault(KeyBaseURL, d.BaseURL)
	v.SetDefault(KeyHistory, []string{})
}

// Path returns the config file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load returns the stored settings with defaults for missing keys.
func (s *FileStore) Load() (Settings, error) {
	var out Settings
	if err := s.v.Unmarshal(&out); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings: %w", err)
	}
	return out, nil
}

// Save replaces the stored settings and writes the file.
func (s *FileStore) Save(in Settings) error {
	s.v.Set(KeyModel, in.Model)
	s.v.Set(KeyTemperature, in.Temperature)
	s.v.Set(KeyMaxTokens, in.MaxTokens)
	s.v.Set(KeyBaseURL, in.BaseURL)
	return s.write()
}

// History returns the stored results, most recent first.
func (s *FileStore) History() ([]string, error) {
	return s.v.GetStringSlice(KeyHistory), nil
}

// SetHistory replaces the stored history and writes the file.
func (s *FileStore) SetHistory(history []string) error {
	if history == nil {
		history = []string{}
	}
	s.v.Set(KeyHistory, history)
	return s.write()
}

func (s *FileStore) write() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("failed to write config %s: %w", s.path, err)
	}
	return nil
}
