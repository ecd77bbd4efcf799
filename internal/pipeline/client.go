package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pterm/pterm"
)

// DefaultBaseURL is the completion provider used when none is configured.
const DefaultBaseURL = "https://api.openai.com"

// Config holds configuration for a completion Client.
type Config struct {
	APIKey string
	// BaseURL defaults to DefaultBaseURL. A trailing "/v1" is accepted.
	BaseURL string
	// HTTPClient defaults to http.DefaultClient. Its timeout, if any, is the
	// only timeout applied to a submission besides the caller's context.
	HTTPClient *http.Client
	// Logger receives debug output about each call. Nil disables logging.
	Logger *pterm.Logger
}

// Client submits completion requests. It keeps no per-request state, so
// concurrent Submit calls proceed independently.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *pterm.Logger
}

// NewClient creates a Client from cfg.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
	}, nil
}

func (c *Client) completionsURL() string {
	if strings.HasSuffix(c.baseURL, "/v1") {
		return c.baseURL + "/completions"
	}
	return c.baseURL + "/v1/completions"
}

// Submit posts body to the completions endpoint once and interprets the
// response. Transport failures are returned as *NetworkError, provider
// errors as *APIError and unexpected shapes as *MalformedResponseError.
func (c *Client) Submit(ctx context.Context, body RequestBody) (*CompletionResult, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.completionsURL(), bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.debug("submitting completion",
		"url", req.URL.String(),
		"model", body.Model,
		"temperature", body.Temperature,
		"max_tokens", body.MaxTokens,
		"prompt_chars", len(body.Prompt),
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.debug("completion response",
		"status", resp.StatusCode,
		"bytes", len(raw),
		"duration", time.Since(start).Round(time.Millisecond).String(),
	)

	return InterpretResponse(resp.StatusCode, raw)
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Debug(msg, c.logger.Args(args...))
}
