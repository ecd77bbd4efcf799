// Package settings persists generation settings, the API key and the result
// history.
package settings

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/aicompanion/companion/internal/pipeline"
	"github.com/samber/lo"
)

// Setting keys as they appear in the config file.
const (
	KeyModel       = "model"
	KeyTemperature = "temperature"
	KeyMaxTokens   = "max_tokens"
	KeyBaseURL     = "base_url"
	KeyHistory     = "history"
)

// Settings are the stored generation settings. Zero values mean "not set"
// only for Model and BaseURL; use Defaults for a complete value.
type Settings struct {
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	BaseURL     string  `mapstructure:"base_url"`
}

// Defaults returns the settings used for missing keys.
func Defaults() Settings {
	return Settings{
		Model:       pipeline.DefaultModel,
		Temperature: pipeline.DefaultTemperature,
		MaxTokens:   pipeline.DefaultMaxTokens,
		BaseURL:     pipeline.DefaultBaseURL,
	}
}

// Keys returns the user-editable setting keys in display order.
func Keys() []string {
	return []string{KeyModel, KeyTemperature, KeyMaxTokens, KeyBaseURL}
}

// Params converts s into generation parameters, clamping temperature and max
// tokens into the ranges exposed to users.
func (s Settings) Params() pipeline.GenerationParameters {
	model := s.Model
	if model == "" {
		model = pipeline.DefaultModel
	}
	return pipeline.GenerationParameters{
		Model:       model,
		Temperature: lo.Clamp(s.Temperature, pipeline.MinTemperature, pipeline.MaxTemperature),
		MaxTokens:   lo.Clamp(s.MaxTokens, pipeline.MinMaxTokens, pipeline.MaxMaxTokens),
	}
}

// Value returns the string form of the setting named key.
func (s Settings) Value(key string) (string, error) {
	switch key {
	case KeyModel:
		return s.Model, nil
	case KeyTemperature:
		return strconv.FormatFloat(s.Temperature, 'f', -1, 64), nil
	case KeyMaxTokens:
		return strconv.Itoa(s.MaxTokens), nil
	case KeyBaseURL:
		return s.BaseURL, nil
	default:
		return "", unknownKeyError(key)
	}
}

// SetValue parses value and assigns it to the setting named key. Temperature
// and max tokens must be inside the exposed ranges.
func (s *Settings) SetValue(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case KeyModel:
		if value == "" {
			return fmt.Errorf("model must not be empty")
		}
		s.Model = value
	case KeyTemperature:
		t, err := ParseTemperature(value)
		if err != nil {
			return err
		}
		s.Temperature = t
	case KeyMaxTokens:
		n, err := ParseMaxTokens(value)
		if err != nil {
			return err
		}
		s.MaxTokens = n
	case KeyBaseURL:
		if value != "" && !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
			return fmt.Errorf("base_url must start with http:// or https://")
		}
		s.BaseURL = strings.TrimRight(value, "/")
	default:
		return unknownKeyError(key)
	}
	return nil
}

// ParseTemperature parses and range-checks a temperature, rounding it to one
// decimal place.
func ParseTemperature(value string) (float64, error) {
	t, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid temperature %q: %w", value, err)
	}
	if t < pipeline.MinTemperature || t > pipeline.MaxTemperature {
		return 0, fmt.Errorf("temperature must be between %.1f and %.1f", pipeline.MinTemperature, pipeline.MaxTemperature)
	}
	return math.Round(t*10) / 10, nil
}

// ParseMaxTokens parses and range-checks a max token count.
func ParseMaxTokens(value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid max_tokens %q: %w", value, err)
	}
	if n < pipeline.MinMaxTokens || n > pipeline.MaxMaxTokens {
		return 0, fmt.Errorf("max_tokens must be between %d and %d", pipeline.MinMaxTokens, pipeline.MaxMaxTokens)
	}
	return n, nil
}

func unknownKeyError(key string) error {
	keys := Keys()
	sort.Strings(keys)
	return fmt.Errorf("unknown setting %q (valid: %s)", key, strings.Join(keys, ", "))
}
