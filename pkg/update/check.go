// Package update checks GitHub releases for a newer companion version.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Repo is the GitHub repository releases are published to.
const Repo = "aicompanion/companion"

var releasesURL = "https://api.github.com/repos/" + Repo + "/releases/latest"

// InstallMethod identifies how the running binary was installed.
type InstallMethod string

const (
	InstallMethodBrew    InstallMethod = "brew"
	InstallMethodGo      InstallMethod = "go"
	InstallMethodUnknown InstallMethod = "unknown"
)

type release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// FetchLatest returns the latest release tag and its release page URL.
func FetchLatest(ctx context.Context) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, releasesURL, nil)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("unexpected status from GitHub: %s", resp.Status)
	}

	var r release
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return "", "", fmt.Errorf("invalid release response: %w", err)
	}
	if r.TagName == "" {
		return "", "", fmt.Errorf("release has no tag")
	}
	return r.TagName, r.HTMLURL, nil
}

// IsNewerVersion reports whether latest is a higher semantic version than
// current. Both may carry a "v" prefix.
func IsNewerVersion(current, latest string) (bool, error) {
	cur, err := semver.NewVersion(strings.TrimPrefix(current, "v"))
	if err != nil {
		return false, fmt.Errorf("invalid current version %q: %w", current, err)
	}
	lat, err := semver.NewVersion(strings.TrimPrefix(latest, "v"))
	if err != nil {
		return false, fmt.Errorf("invalid latest version %q: %w", latest, err)
	}
	return lat.GreaterThan(cur), nil
}

type installRule struct {
	method InstallMethod
	check  func(path string) bool
}

func installMethodRules() []installRule {
	return []installRule{
		{InstallMethodBrew, pathMatchesHomebrew},
		{InstallMethodGo, pathMatchesGoBin},
	}
}

// DetectInstallMethod inspects the executable path to guess how companion
// was installed. It also returns the resolved path.
func DetectInstallMethod() (InstallMethod, string) {
	exe, err := os.Executable()
	if err != nil {
		return InstallMethodUnknown, ""
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	for _, r := range installMethodRules() {
		if r.check(exe) {
			return r.method, exe
		}
	}
	return InstallMethodUnknown, exe
}

// SuggestUpgradeCommand returns the shell command that upgrades an install.
func SuggestUpgradeCommand(method InstallMethod) string {
	return suggestUpgradeCommandForMethod(method)
}

func suggestUpgradeCommandForMethod(method InstallMethod) string {
	switch method {
	case InstallMethodGo:
		return "go install github.com/" + Repo + "@latest"
	default:
		return "brew upgrade aicompanion/tap/companion"
	}
}

func pathMatchesHomebrew(path string) bool {
	p := filepath.ToSlash(path)
	return strings.Contains(p, "/Cellar/") || strings.HasPrefix(p, "/opt/homebrew/") || strings.Contains(p, "/.linuxbrew/")
}

func pathMatchesGoBin(path string) bool {
	p := filepath.ToSlash(path)
	if gobin := os.Getenv("GOBIN"); gobin != "" && strings.HasPrefix(p, filepath.ToSlash(gobin)+"/") {
		return true
	}
	return strings.Contains(p, "/go/bin/")
}
