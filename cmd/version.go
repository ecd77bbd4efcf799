package cmd

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/aicompanion/companion/pkg/update"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the companion version",
	Long: `Print the companion version.

With --check, the latest GitHub release is compared against the running
build and the upgrade command for the detected installation method is shown.`,
	Args: cobra.NoArgs,
	RunE: runVersion,
}

func init() {
	versionCmd.Flags().Bool("check", false, "Check GitHub for a newer release")
}

func runVersion(cmd *cobra.Command, args []string) error {
	check, _ := cmd.Flags().GetBool("check")

	current := strings.TrimPrefix(metadata.Version, "v")
	pterm.Printf("companion %s (%s/%s)\n", current, runtime.GOOS, runtime.GOARCH)
	if metadata.Commit != "" {
		pterm.Printf("commit %s", metadata.Commit)
		if metadata.Date != "" {
			pterm.Printf(", built %s", metadata.Date)
		}
		pterm.Println()
	}
	if !check {
		return nil
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	latestTag, releaseURL, err := update.FetchLatest(ctx)
	if err != nil {
		return fmt.Errorf("failed to check for updates: %w", err)
	}

	isNewer, err := update.IsNewerVersion(metadata.Version, latestTag)
	if err != nil {
		// dev builds have no comparable version
		pterm.Warning.Printf("Could not compare versions (%s vs %s): %v\n", current, latestTag, err)
		return nil
	}
	if !isNewer {
		pterm.Success.Printf("You are on the latest version (%s)\n", current)
		return nil
	}

	pterm.Info.Printf("New version available: %s → %s\n", current, strings.TrimPrefix(latestTag, "v"))
	if releaseURL != "" {
		pterm.Info.Printf("Release notes: %s\n", releaseURL)
	}

	method, binaryPath := update.DetectInstallMethod()
	if method == update.InstallMethodUnknown {
		pterm.Info.Printf("Download the release and replace %s\n", binaryPath)
		return nil
	}
	pterm.Info.Printf("To upgrade, run: %s\n", update.SuggestUpgradeCommand(method))
	return nil
}
