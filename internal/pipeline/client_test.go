package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	c, err := NewClient(Config{
		APIKey:     "test-key",
		BaseURL:    ts.URL,
		HTTPClient: ts.Client(),
	})
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = NewClient(Config{APIKey: "   "})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestNewClient_CompletionsURL(t *testing.T) {
	tests := []struct {
		baseURL  string
		expected string
	}{
		{"", "https://api.openai.com/v1/completions"},
		{"https://example.test", "https://example.test/v1/completions"},
		{"https://example.test/", "https://example.test/v1/completions"},
		{"https://example.test/v1", "https://example.test/v1/completions"},
		{"https://example.test/v1/", "https://example.test/v1/completions"},
	}
	for _, tt := range tests {
		t.Run(tt.baseURL, func(t *testing.T) {
			c, err := NewClient(Config{APIKey: "k", BaseURL: tt.baseURL})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, c.completionsURL())
		})
	}
}

func TestSubmit_SendsRequestAndCleansResult(t *testing.T) {
	var recorded map[string]any

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&recorded))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"text":"\n\nline1\n\nline2\n","finish_reason":"stop"}]}`)
	})

	body := BuildRequestBody("Summarize: {SELECTION}", "hello world", GenerationParameters{
		Model:       "text-davinci-002",
		Temperature: 0.2,
		MaxTokens:   128,
	})
	res, err := c.Submit(context.Background(), body)
	require.NoError(t, err)

	assert.Equal(t, "\n\nline1\n\nline2\n", res.RawText)
	assert.Equal(t, "line1\nline2", res.CleanedText)

	assert.Equal(t, "Summarize: hello world", recorded["prompt"])
	assert.Equal(t, "text-davinci-002", recorded["model"])
	assert.Equal(t, 0.2, recorded["temperature"])
	assert.Equal(t, float64(128), recorded["max_tokens"])
	assert.Equal(t, float64(1), recorded["top_p"])
	assert.Equal(t, float64(0), recorded["frequency_penalty"])
	assert.Equal(t, float64(0), recorded["presence_penalty"])
}

func TestSubmit_SurfacesProviderErrorWithoutRetry(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`)
	})

	res, err := c.Submit(context.Background(), BuildRequestBody("{SELECTION}", "x", DefaultParameters()))
	assert.Nil(t, res)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Incorrect API key provided", apiErr.Message)
	assert.Equal(t, "invalid_request_error", apiErr.Type)
	assert.Equal(t, "invalid_api_key", apiErr.Code)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSubmit_MalformedResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	})

	res, err := c.Submit(context.Background(), BuildRequestBody("{SELECTION}", "x", DefaultParameters()))
	assert.Nil(t, res)

	var malformed *MalformedResponseError
	require.True(t, errors.As(err, &malformed))
	assert.Contains(t, malformed.Reason, "empty")
}

func TestSubmit_NetworkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	c, err := NewClient(Config{APIKey: "k", BaseURL: url})
	require.NoError(t, err)

	res, err := c.Submit(context.Background(), BuildRequestBody("{SELECTION}", "x", DefaultParameters()))
	assert.Nil(t, res)

	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.NotNil(t, netErr.Unwrap())
}

func TestSubmit_CanceledContextIsNetworkError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[{"text":"late"}]}`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Submit(ctx, BuildRequestBody("{SELECTION}", "x", DefaultParameters()))
	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSubmit_IndependentConcurrentCalls(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body RequestBody
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		fmt.Fprintf(w, `{"choices":[{"text":%q}]}`, "echo: "+body.Prompt)
	})

	results := make(chan string, 2)
	for _, sel := range []string{"first", "second"} {
		go func(sel string) {
			res, err := c.Submit(context.Background(), BuildRequestBody("{SELECTION}", sel, DefaultParameters()))
			if err != nil {
				results <- err.Error()
				return
			}
			results <- res.CleanedText
		}(sel)
	}

	got := []string{<-results, <-results}
	assert.ElementsMatch(t, []string{"echo: first", "echo: second"}, got)
}
