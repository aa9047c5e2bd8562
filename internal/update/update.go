// Package update checks GitHub releases for a newer gitvis version.
package update

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/angrygoose0/gitvis-sub000/internal/version"
)

// DefaultReleaseURL is the endpoint for fetching the latest release info.
const DefaultReleaseURL = "https://api.github.com/repos/angrygoose0/gitvis/releases/latest"

// httpTimeout is the timeout for all HTTP operations.
const httpTimeout = 30 * time.Second

var httpClient = &http.Client{Timeout: httpTimeout}

// Status is the outcome of an update check.
type Status struct {
	Current string
	Latest  string
	// Newer is true when Latest is a higher semantic version than
	// Current.
	Newer bool
}

// Check fetches the latest released version and compares it with the
// running build. Dev builds never report an available update.
func Check(releaseURL string) (*Status, error) {
	current := version.Version
	if current == "dev" {
		return &Status{Current: current}, nil
	}
	if releaseURL == "" {
		releaseURL = DefaultReleaseURL
	}

	latest, err := fetchLatestVersion(releaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to check for updates: %w", err)
	}

	vLatest, err := semver.NewVersion("v" + latest)
	if err != nil {
		return nil, fmt.Errorf("failed to parse latest version %q: %w", latest, err)
	}
	vCurrent, err := semver.NewVersion("v" + current)
	if err != nil {
		return nil, fmt.Errorf("failed to parse current version %q: %w", current, err)
	}

	return &Status{
		Current: current,
		Latest:  latest,
		Newer:   vLatest.GreaterThan(vCurrent),
	}, nil
}

// fetchLatestVersion returns the latest release tag without its "v"
// prefix.
func fetchLatestVersion(releaseURL string) (string, error) {
	resp, err := httpClient.Get(releaseURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("release API returned status %d", resp.StatusCode)
	}

	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", fmt.Errorf("failed to decode release info: %w", err)
	}
	if release.TagName == "" {
		return "", fmt.Errorf("release has no tag name")
	}
	return strings.TrimPrefix(release.TagName, "v"), nil
}
