package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aicompanion/companion/internal/pipeline"
	"github.com/aicompanion/companion/internal/settings"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// BaseURLEnv overrides the stored base URL.
const BaseURLEnv = "COMPANION_BASE_URL"

// Completer submits one completion request.
type Completer interface {
	Submit(ctx context.Context, body pipeline.RequestBody) (*pipeline.CompletionResult, error)
}

// getCompleter builds a completion client from the stored settings, the
// resolved API key and the environment.
func getCompleter(cmd *cobra.Command, s settings.Settings) (*pipeline.Client, error) {
	apiKeyFlag, _ := cmd.Flags().GetString("api-key")
	key, source, err := settings.NewCredentials().Resolve(apiKeyFlag)
	if err != nil {
		return nil, err
	}

	baseURL := s.BaseURL
	if u := strings.TrimSpace(os.Getenv(BaseURLEnv)); u != "" {
		baseURL = u
	}

	logger := getLogger(cmd)
	logger.Debug("resolved credentials", logger.Args("source", source, "key", settings.Mask(key), "base_url", baseURL))

	return pipeline.NewClient(pipeline.Config{
		APIKey:  key,
		BaseURL: baseURL,
		Logger:  logger,
	})
}

// describeSubmitError prints a hint for the failure and returns the error to
// report. Provider messages are passed through unchanged.
func describeSubmitError(err error, quiet bool) error {
	var (
		apiErr    *pipeline.APIError
		netErr    *pipeline.NetworkError
		malformed *pipeline.MalformedResponseError
	)
	switch {
	case errors.As(err, &apiErr):
		if apiErr.StatusCode == 401 {
			notice(pterm.Info, quiet).Println("Check the stored key with `companion auth status`.")
		}
		return fmt.Errorf("the provider returned an error: %s", apiErr.Message)
	case errors.As(err, &netErr):
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("request timed out: %w", netErr.Err)
		}
		return fmt.Errorf("could not reach the completion endpoint: %w", netErr.Err)
	case errors.As(err, &malformed):
		return fmt.Errorf("unexpected response from the provider: %s", malformed.Reason)
	default:
		return err
	}
}
