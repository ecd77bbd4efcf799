package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/aicompanion/companion/internal/settings"
	"github.com/aicompanion/companion/pkg/table"
	"github.com/aicompanion/companion/pkg/util"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and change generation settings",
	Long: `View and change the stored generation settings.

Keys:
  model         completion model
  temperature   0.0 to 1.0 in steps of 0.1
  max_tokens    64 to 512 in steps of 32
  base_url      endpoint root, e.g. https://api.openai.com`,
}

var configGetCmd = &cobra.Command{
	Use:               "get <key>",
	Short:             "Print one setting",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeSettingKeys,
	RunE:              runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:               "set <key> <value>",
	Short:             "Change one setting",
	Example:           "  companion config set temperature 0.7\n  companion config set model text-curie-001",
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completeSettingValues,
	RunE:              runConfigSet,
}

var configListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Print all settings",
	Args:    cobra.NoArgs,
	RunE:    runConfigList,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default settings (history is kept)",
	Args:  cobra.NoArgs,
	RunE:  runConfigReset,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configResetCmd)

	configListCmd.Flags().StringP("output", "o", "", "Output format (json)")
	configResetCmd.Flags().BoolP("yes", "y", false, "Skip confirmation prompt")
}

// ConfigCmd reads and writes settings through a Store.
type ConfigCmd struct {
	store settings.Store
	out   io.Writer
}

func (c ConfigCmd) Get(key string) error {
	s, err := c.store.Load()
	if err != nil {
		return err
	}
	v, err := s.Value(key)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.out, v)
	return err
}

// Set validates value before anything is written, so a rejected value leaves
// the file untouched.
func (c ConfigCmd) Set(key, value string) error {
	s, err := c.store.Load()
	if err != nil {
		return err
	}
	if err := s.SetValue(key, value); err != nil {
		return err
	}
	if err := c.store.Save(s); err != nil {
		return err
	}
	v, _ := s.Value(key)
	pterm.Success.Printf("Set %s to %s\n", key, util.OrDash(v))
	return nil
}

func (c ConfigCmd) List(output string) error {
	if output != "" && output != "json" {
		return fmt.Errorf("unsupported --output value: use 'json'")
	}
	s, err := c.store.Load()
	if err != nil {
		return err
	}

	if output == "json" {
		values := make(map[string]string, len(settings.Keys()))
		for _, k := range settings.Keys() {
			values[k], _ = s.Value(k)
		}
		return util.WriteJSON(c.out, values)
	}

	rows := pterm.TableData{{"Key", "Value"}}
	for _, k := range settings.Keys() {
		v, _ := s.Value(k)
		rows = append(rows, []string{k, util.OrDash(v)})
	}
	table.PrintTableNoPad(rows, true)
	return nil
}

func (c ConfigCmd) Reset(skipConfirm bool) error {
	if !skipConfirm {
		pterm.DefaultInteractiveConfirm.DefaultText = "Restore the default settings?"
		ok, _ := pterm.DefaultInteractiveConfirm.Show()
		if !ok {
			pterm.Info.Println("Reset cancelled")
			return nil
		}
	}
	if err := c.store.Save(settings.Defaults()); err != nil {
		return err
	}
	pterm.Success.Println("Settings restored to defaults")
	return nil
}

func newConfigCmd(cmd *cobra.Command) (ConfigCmd, error) {
	store, err := openStore(cmd)
	if err != nil {
		return ConfigCmd{}, err
	}
	return ConfigCmd{store: store, out: os.Stdout}, nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	c, err := newConfigCmd(cmd)
	if err != nil {
		return err
	}
	return c.Get(args[0])
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	c, err := newConfigCmd(cmd)
	if err != nil {
		return err
	}
	return c.Set(args[0], args[1])
}

func runConfigList(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	c, err := newConfigCmd(cmd)
	if err != nil {
		return err
	}
	return c.List(output)
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	c, err := newConfigCmd(cmd)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.out, c.store.Path())
	return err
}

func runConfigReset(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")
	c, err := newConfigCmd(cmd)
	if err != nil {
		return err
	}
	return c.Reset(yes)
}

func completeSettingKeys(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return settings.Keys(), cobra.ShellCompDirectiveNoFileComp
}

func completeSettingValues(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 0:
		return settings.Keys(), cobra.ShellCompDirectiveNoFileComp
	case 1:
		if args[0] == settings.KeyModel {
			return completeModels(cmd, args, toComplete)
		}
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}
