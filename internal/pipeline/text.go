package pipeline

import (
	"regexp"
	"strings"
)

// lineBreak also swallows stray carriage returns before a newline so that a
// cleaned line never ends in "\r".
var lineBreak = regexp.MustCompile(`\r*\n`)

// BuildRequestBody substitutes every occurrence of Placeholder in template
// with selection and merges the result with params and the fixed sampling
// fields. The selection is inserted verbatim.
func BuildRequestBody(template, selection string, params GenerationParameters) RequestBody {
	return RequestBody{
		Model:            params.Model,
		Prompt:           strings.ReplaceAll(template, Placeholder, selection),
		Temperature:      params.Temperature,
		MaxTokens:        params.MaxTokens,
		TopP:             TopP,
		FrequencyPenalty: FrequencyPenalty,
		PresencePenalty:  PresencePenalty,
	}
}

// CleanText removes empty and whitespace-only lines from raw and joins the
// remaining lines with "\n".
func CleanText(raw string) string {
	lines := lineBreak.Split(raw, -1)
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// AppendHistory returns a new history with cleaned in front of the existing
// entries. The input slice is not modified.
func AppendHistory(history []string, cleaned string) []string {
	out := make([]string, 0, len(history)+1)
	out = append(out, cleaned)
	return append(out, history...)
}
