package pipeline

import (
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// RequestBody is the JSON body posted to the completions endpoint. Every
// field is always serialized, including zero values.
type RequestBody struct {
	Model            string  `json:"model"`
	Prompt           string  `json:"prompt"`
	Temperature      float64 `json:"temperature"`
	MaxTokens        int     `json:"max_tokens"`
	TopP             float64 `json:"top_p"`
	FrequencyPenalty float64 `json:"frequency_penalty"`
	PresencePenalty  float64 `json:"presence_penalty"`
}

// CompletionResult is the outcome of one successful submission.
type CompletionResult struct {
	RawText     string `json:"raw_text"`
	CleanedText string `json:"cleaned_text"`
}

// InterpretResponse maps an HTTP status and body to a CompletionResult or one
// of APIError and MalformedResponseError. An "error" member always wins over
// "choices".
func InterpretResponse(status int, body []byte) (*CompletionResult, error) {
	if !gjson.ValidBytes(body) {
		if status < 200 || status >= 300 {
			return nil, &APIError{Message: statusMessage(status), StatusCode: status}
		}
		return nil, &MalformedResponseError{Reason: "body is not valid JSON", Body: string(body)}
	}

	if apiErr := providerError(body); apiErr != nil {
		apiErr.StatusCode = status
		return nil, apiErr
	}
	if status < 200 || status >= 300 {
		return nil, &APIError{Message: statusMessage(status), StatusCode: status, Raw: string(body)}
	}

	choices := gjson.GetBytes(body, "choices")
	if !choices.IsArray() {
		return nil, &MalformedResponseError{Reason: "choices is missing", Body: string(body)}
	}
	items := choices.Array()
	if len(items) == 0 {
		return nil, &MalformedResponseError{Reason: "choices is empty", Body: string(body)}
	}
	text := items[0].Get("text")
	if text.Type != gjson.String {
		return nil, &MalformedResponseError{Reason: "choices[0].text is not a string", Body: string(body)}
	}

	raw := text.String()
	return &CompletionResult{RawText: raw, CleanedText: CleanText(raw)}, nil
}

// providerError extracts the "error" member, which providers send either as a
// plain string or as an object with message/type/code.
func providerError(body []byte) *APIError {
	e := gjson.GetBytes(body, "error")
	if !e.Exists() || e.Type == gjson.Null {
		return nil
	}
	if e.IsObject() {
		msg := e.Get("message").String()
		if msg == "" {
			msg = e.Raw
		}
		return &APIError{
			Message: msg,
			Type:    e.Get("type").String(),
			Code:    e.Get("code").String(),
			Raw:     e.Raw,
		}
	}
	return &APIError{Message: e.String(), Raw: e.Raw}
}

func statusMessage(status int) string {
	if text := http.StatusText(status); text != "" {
		return fmt.Sprintf("http status %d: %s", status, text)
	}
	return fmt.Sprintf("http status %d", status)
}
