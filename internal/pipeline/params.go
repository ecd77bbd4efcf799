// Package pipeline turns a prompt template, the current selection and the
// stored generation settings into a completion request, submits it, and
// normalizes the provider response into display text.
package pipeline

const (
	// Placeholder is the reserved token substituted with the selection.
	Placeholder = "{SELECTION}"

	// DefaultTemplate is used when the user has not written a prompt yet.
	DefaultTemplate = Placeholder

	// DefaultModel is the completion model used when none is configured.
	DefaultModel = "text-davinci-002"

	// DefaultTemperature is the sampling temperature used when none is configured.
	DefaultTemperature = 0.0

	// DefaultMaxTokens is the completion length used when none is configured.
	DefaultMaxTokens = 256

	// Ranges exposed to users. Values outside them are clamped or rejected by
	// callers; the pipeline sends whatever it is given.
	MinTemperature  = 0.0
	MaxTemperature  = 1.0
	TemperatureStep = 0.1
	MinMaxTokens    = 64
	MaxMaxTokens    = 512
	MaxTokensStep   = 32

	// Fixed auxiliary sampling fields.
	TopP             = 1.0
	FrequencyPenalty = 0.0
	PresencePenalty  = 0.0
)

// KnownModels lists the completion models offered for selection.
var KnownModels = []string{
	"code-davinci-002",
	"text-curie-001",
	"text-davinci-001",
	"text-davinci-002",
}

// GenerationParameters holds the user-tunable parts of a completion request.
type GenerationParameters struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// DefaultParameters returns the documented defaults.
func DefaultParameters() GenerationParameters {
	return GenerationParameters{
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	}
}

// InRange reports whether temperature and max tokens fall within the ranges
// exposed to users.
func (p GenerationParameters) InRange() bool {
	return p.Temperature >= MinTemperature && p.Temperature <= MaxTemperature &&
		p.MaxTokens >= MinMaxTokens && p.MaxTokens <= MaxMaxTokens
}
