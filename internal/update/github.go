package update

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

const (
	// LatestReleaseURL is the GitHub API endpoint for the newest release.
	LatestReleaseURL = "https://api.github.com/repos/quicksilver-zone/qs-stake/releases/latest"

	httpTimeout = 15 * time.Second
)

// ErrNoReleases is returned when the repository has no published release.
var ErrNoReleases = errors.New("no releases found")

// FetchLatestRelease gets the latest release from url.
func FetchLatestRelease(ctx context.Context, client *http.Client, url string) (*Release, error) {
	if client == nil {
		client = &http.Client{Timeout: httpTimeout}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "qs-stake")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch release: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNoReleases
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API error: %s", resp.Status)
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("failed to parse release: %w", err)
	}
	return &release, nil
}

// IsNewerVersion returns true if latest is newer than current. Builds
// without a semver version (dev) are always behind.
func IsNewerVersion(current, latest string) bool {
	current, latest = withV(current), withV(latest)
	if !semver.IsValid(latest) {
		return false
	}
	if !semver.IsValid(current) {
		return true
	}
	return semver.Compare(latest, current) > 0
}

func withV(v string) string {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
