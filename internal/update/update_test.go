package update

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIsNewerVersion(t *testing.T) {
	tests := []struct {
		current, latest string
		want            bool
	}{
		{"v1.0.0", "v1.1.0", true},
		{"1.1.0", "v1.1.0", false},
		{"v1.2.0", "1.1.9", false},
		{"dev", "v0.1.0", true},
		{"v1.0.0", "nightly", false},
		{"v1.0.0-rc1", "v1.0.0", true},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, IsNewerVersion(tt.current, tt.latest), "%s -> %s", tt.current, tt.latest)
	}
}

func releaseServer(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		require.Equal(t, "qs-stake", r.Header.Get("User-Agent"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestChecker_CachesResult(t *testing.T) {
	srv, hits := releaseServer(t, http.StatusOK, `{"tag_name":"v0.3.0","html_url":"https://example/rel"}`)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c := Checker{HomeDir: t.TempDir(), URL: srv.URL, Now: func() time.Time { return now }}

	res, err := c.Check(context.Background(), "v0.2.0", false)
	require.NoError(t, err)
	require.True(t, res.UpdateAvailable)
	require.False(t, res.Cached)
	require.Equal(t, "https://example/rel", res.URL)

	res, err = c.Check(context.Background(), "v0.3.0", false)
	require.NoError(t, err)
	require.True(t, res.Cached)
	require.False(t, res.UpdateAvailable)
	require.EqualValues(t, 1, atomic.LoadInt32(hits))

	now = now.Add(7 * time.Hour)
	_, err = c.Check(context.Background(), "v0.3.0", false)
	require.NoError(t, err)
	require.EqualValues(t, 2, atomic.LoadInt32(hits))

	_, err = c.Check(context.Background(), "v0.3.0", true)
	require.NoError(t, err)
	require.EqualValues(t, 3, atomic.LoadInt32(hits))
}

func TestChecker_Errors(t *testing.T) {
	srv, _ := releaseServer(t, http.StatusNotFound, `{}`)
	_, err := Checker{URL: srv.URL}.Check(context.Background(), "v1.0.0", false)
	require.True(t, errors.Is(err, ErrNoReleases))

	bad, _ := releaseServer(t, http.StatusInternalServerError, `oops`)
	_, err = Checker{URL: bad.URL}.Check(context.Background(), "v1.0.0", false)
	require.ErrorContains(t, err, "GitHub API error")

	garbled, _ := releaseServer(t, http.StatusOK, `{`)
	_, err = Checker{URL: garbled.URL}.Check(context.Background(), "v1.0.0", false)
	require.ErrorContains(t, err, "failed to parse release")
}
