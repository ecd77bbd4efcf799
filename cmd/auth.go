package cmd

import (
	"fmt"
	"strings"

	"github.com/aicompanion/companion/internal/settings"
	"github.com/pkg/browser"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// APIKeysURL is where the provider lets users create API keys.
const APIKeysURL = "https://platform.openai.com/account/api-keys"

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the API key",
	Long: `Manage the API key used for completions.

The key is looked up in this order: --api-key, $` + settings.APIKeyEnv + `, then
the OS keyring entry written by 'companion auth login'.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store an API key in the OS keyring",
	Args:  cobra.NoArgs,
	RunE:  runAuthLogin,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored API key",
	Args:  cobra.NoArgs,
	RunE:  runAuthLogout,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which API key would be used",
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)

	authLoginCmd.Flags().String("key", "", "API key to store (prompted for when omitted)")
	authLoginCmd.Flags().Bool("open", false, "Open the API keys page in the browser first")
}

// CredentialStore resolves, stores and deletes the API key.
type CredentialStore interface {
	Resolve(explicit string) (string, string, error)
	Store(key string) error
	Delete() error
}

// AuthCmd handles API key management independent of cobra.
type AuthCmd struct {
	creds   CredentialStore
	openURL func(string) error
	prompt  func() (string, error)
}

type AuthLoginInput struct {
	Key  string
	Open bool
}

func (a AuthCmd) Login(in AuthLoginInput) error {
	if in.Open {
		if err := a.openURL(APIKeysURL); err != nil {
			pterm.Warning.Printf("Could not open a browser: %v\n", err)
		}
		pterm.Info.Printf("Create a key at %s\n", APIKeysURL)
	}

	key := strings.TrimSpace(in.Key)
	if key == "" {
		var err error
		if key, err = a.prompt(); err != nil {
			return fmt.Errorf("failed to read API key: %w", err)
		}
		key = strings.TrimSpace(key)
	}
	if key == "" {
		return fmt.Errorf("no API key entered")
	}

	if err := a.creds.Store(key); err != nil {
		return err
	}
	pterm.Success.Printf("Stored API key %s in the keyring\n", settings.Mask(key))
	return nil
}

func (a AuthCmd) Logout() error {
	if err := a.creds.Delete(); err != nil {
		return err
	}
	pterm.Success.Println("Removed the stored API key")
	return nil
}

func (a AuthCmd) Status(explicit string) error {
	key, source, err := a.creds.Resolve(explicit)
	if err != nil {
		pterm.Warning.Println("No API key configured")
		pterm.Info.Println("Run `companion auth login` or set " + settings.APIKeyEnv)
		return nil
	}
	pterm.Success.Printf("Using API key %s (from %s)\n", settings.Mask(key), source)
	return nil
}

func promptAPIKey() (string, error) {
	return pterm.DefaultInteractiveTextInput.WithMask("*").Show("API key")
}

func newAuthCmd() AuthCmd {
	return AuthCmd{creds: settings.NewCredentials(), openURL: browser.OpenURL, prompt: promptAPIKey}
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	key, _ := cmd.Flags().GetString("key")
	open, _ := cmd.Flags().GetBool("open")
	return newAuthCmd().Login(AuthLoginInput{Key: key, Open: open})
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	return newAuthCmd().Logout()
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	apiKey, _ := cmd.Flags().GetString("api-key")
	return newAuthCmd().Status(apiKey)
}
