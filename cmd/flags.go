package cmd

import (
	"fmt"
	"strings"

	"github.com/aicompanion/companion/internal/pipeline"
	"github.com/aicompanion/companion/internal/settings"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ParamOverrides are per-invocation replacements for stored settings. Nil
// and empty fields keep the stored value.
type ParamOverrides struct {
	Model       string
	Temperature *float64
	MaxTokens   *int
}

// Apply returns p with the overrides applied.
func (o ParamOverrides) Apply(p pipeline.GenerationParameters) pipeline.GenerationParameters {
	if o.Model != "" {
		p.Model = o.Model
	}
	if o.Temperature != nil {
		p.Temperature = *o.Temperature
	}
	if o.MaxTokens != nil {
		p.MaxTokens = *o.MaxTokens
	}
	return p
}

func addGenerationFlags(fs *pflag.FlagSet) {
	fs.StringP("prompt", "p", pipeline.DefaultTemplate, "Prompt template; "+pipeline.Placeholder+" is replaced with the selection")
	fs.StringP("model", "m", "", "Model to use (default: stored setting)")
	fs.Float64P("temperature", "t", 0, fmt.Sprintf("Sampling temperature %.1f-%.1f in steps of %.1f (default: stored setting)", pipeline.MinTemperature, pipeline.MaxTemperature, pipeline.TemperatureStep))
	fs.Int("max-tokens", 0, fmt.Sprintf("Maximum tokens %d-%d in steps of %d (default: stored setting)", pipeline.MinMaxTokens, pipeline.MaxMaxTokens, pipeline.MaxTokensStep))
	fs.Bool("no-history", false, "Do not add the result to the history")
}

// readGenerationFlags returns the template and the overrides the user set
// explicitly. Out-of-range values are rejected here, before any request.
func readGenerationFlags(fs *pflag.FlagSet) (string, ParamOverrides, error) {
	template, _ := fs.GetString("prompt")

	var o ParamOverrides
	o.Model, _ = fs.GetString("model")
	o.Model = strings.TrimSpace(o.Model)

	if fs.Changed("temperature") {
		raw := fs.Lookup("temperature").Value.String()
		t, err := settings.ParseTemperature(raw)
		if err != nil {
			return "", ParamOverrides{}, err
		}
		o.Temperature = &t
	}
	if fs.Changed("max-tokens") {
		raw := fs.Lookup("max-tokens").Value.String()
		n, err := settings.ParseMaxTokens(raw)
		if err != nil {
			return "", ParamOverrides{}, err
		}
		o.MaxTokens = &n
	}
	return template, o, nil
}

func completeModels(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return pipeline.KnownModels, cobra.ShellCompDirectiveNoFileComp
}
