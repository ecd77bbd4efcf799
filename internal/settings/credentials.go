package settings

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// APIKeyEnv is read before the keyring when resolving the API key.
	APIKeyEnv = "OPENAI_API_KEY"

	keyringService = "companion"
	keyringUser    = "openai"
)

// ErrNoAPIKey is returned when no API key is configured anywhere.
var ErrNoAPIKey = errors.New("no API key configured; run `companion auth login` or set " + APIKeyEnv)

// Key sources reported by Resolve.
const (
	SourceFlag    = "flag"
	SourceEnv     = "env"
	SourceKeyring = "keyring"
)

// Credentials stores the API key in the OS keyring.
type Credentials struct {
	getenv func(string) string
}

// NewCredentials returns Credentials reading the process environment.
func NewCredentials() Credentials {
	return Credentials{getenv: os.Getenv}
}

// Resolve returns the API key and where it came from, in order of
// precedence: explicit value, environment, keyring.
func (c Credentials) Resolve(explicit string) (string, string, error) {
	if k := strings.TrimSpace(explicit); k != "" {
		return k, SourceFlag, nil
	}
	if c.getenv != nil {
		if k := strings.TrimSpace(c.getenv(APIKeyEnv)); k != "" {
			return k, SourceEnv, nil
		}
	}
	k, err := keyring.Get(keyringService, keyringUser)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", "", ErrNoAPIKey
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to read keyring: %w", err)
	}
	if strings.TrimSpace(k) == "" {
		return "", "", ErrNoAPIKey
	}
	return k, SourceKeyring, nil
}

// Store saves key in the keyring.
func (c Credentials) Store(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("API key must not be empty")
	}
	if err := keyring.Set(keyringService, keyringUser, key); err != nil {
		return fmt.Errorf("failed to store API key: %w", err)
	}
	return nil
}

// Delete removes the stored key. Deleting a missing key is not an error.
func (c Credentials) Delete() error {
	err := keyring.Delete(keyringService, keyringUser)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete API key: %w", err)
	}
	return nil
}

// Mask hides all but the last four characters of key.
func Mask(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", 8) + key[len(key)-4:]
}
