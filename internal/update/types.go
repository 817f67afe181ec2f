// Package update checks GitHub for newer qs-stake releases.
package update

import "time"

// Release is the subset of the GitHub release payload we read.
type Release struct {
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	Draft       bool      `json:"draft"`
	Prerelease  bool      `json:"prerelease"`
	PublishedAt time.Time `json:"published_at"`
	HTMLURL     string    `json:"html_url"`
}

// CheckResult holds the result of an update check
type CheckResult struct {
	CurrentVersion  string `json:"current_version" yaml:"current_version"`
	LatestVersion   string `json:"latest_version" yaml:"latest_version"`
	UpdateAvailable bool   `json:"update_available" yaml:"update_available"`
	URL             string `json:"url,omitempty" yaml:"url,omitempty"`
	Cached          bool   `json:"cached" yaml:"cached"`
}
