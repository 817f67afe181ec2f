package update

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const (
	cacheFileName = ".update-check"
	cacheDuration = 6 * time.Hour
)

// CacheEntry stores the last update check result
type CacheEntry struct {
	CheckedAt     time.Time `json:"checked_at"`
	LatestVersion string    `json:"latest_version"`
	URL           string    `json:"url,omitempty"`
}

// LoadCache loads the cached check from homeDir.
func LoadCache(homeDir string) (*CacheEntry, error) {
	data, err := os.ReadFile(filepath.Join(homeDir, cacheFileName))
	if err != nil {
		return nil, err
	}
	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// SaveCache writes entry under homeDir, creating it if needed.
func SaveCache(homeDir string, entry *CacheEntry) error {
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(homeDir, cacheFileName), data, 0o644)
}

// Checker compares the running version with the latest release.
type Checker struct {
	HomeDir string // cache location; empty disables the cache
	URL     string // defaults to LatestReleaseURL
	Client  *http.Client
	Now     func() time.Time
}

// Check returns the cached result when it is fresh, otherwise asks GitHub
// and refreshes the cache. force skips the cache read.
func (c Checker) Check(ctx context.Context, current string, force bool) (CheckResult, error) {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	if !force && c.HomeDir != "" {
		if e, err := LoadCache(c.HomeDir); err == nil && now().Sub(e.CheckedAt) < cacheDuration {
			return result(current, e.LatestVersion, e.URL, true), nil
		}
	}

	url := c.URL
	if url == "" {
		url = LatestReleaseURL
	}
	rel, err := FetchLatestRelease(ctx, c.Client, url)
	if err != nil {
		return CheckResult{CurrentVersion: current}, err
	}
	if c.HomeDir != "" {
		_ = SaveCache(c.HomeDir, &CacheEntry{CheckedAt: now(), LatestVersion: rel.TagName, URL: rel.HTMLURL})
	}
	return result(current, rel.TagName, rel.HTMLURL, false), nil
}

func result(current, latest, url string, cached bool) CheckResult {
	return CheckResult{
		CurrentVersion:  current,
		LatestVersion:   latest,
		UpdateAvailable: IsNewerVersion(current, latest),
		URL:             url,
		Cached:          cached,
	}
}
