package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/pixwall/internal/catalog"
	"github.com/pders01/pixwall/internal/config"
	"github.com/pders01/pixwall/internal/feed"
	"github.com/pders01/pixwall/internal/provider"
)

func resetFlags() {
	configPath, dbPath, logLevel, logFile = "", "", "", ""
	quiet = false
	searchPage, searchCategory, searchFilters = 1, "", nil
	warmPages, historyLimit = 1, 20
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	err := rootCmd.Execute()
	return out.String(), err
}

var imageBytes = []byte("\xff\xd8\xff\xe0 not really a jpeg")

type apiServer struct {
	*httptest.Server
	requests atomic.Int32
	last     atomic.Value
}

func newAPIServer(t *testing.T) *apiServer {
	t.Helper()
	s := &apiServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/img/") {
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write(imageBytes)
			return
		}
		s.requests.Add(1)
		s.last.Store(r.URL.Query().Encode())
		hits := []provider.ImageRecord{
			{ID: 101, Tags: "sunset, beach", User: "ana", Likes: 12, ImageWidth: 1920, ImageHeight: 1080,
				WebformatURL: s.URL + "/img/101_640.jpg"},
			{ID: 102, Tags: "sunset, sky", User: "ben", Likes: 7, ImageWidth: 1080, ImageHeight: 1920,
				WebformatURL: s.URL + "/img/102_640.jpg"},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(provider.ResponseData{Total: 2, TotalHits: 2, Hits: hits})
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *apiServer) lastQuery() string {
	v, _ := s.last.Load().(string)
	return v
}

func writeConfig(t *testing.T, baseURL string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := fmt.Sprintf(`
[provider]
base_url = %q
api_key = "cli-test"
retry_max = 0
cache_ttl = "1h"

[database]
path = %q

[downloads]
dir = %q
allow_private_hosts = true

[log]
level = "off"
`, baseURL, filepath.Join(dir, "data", "pixwall.db"), filepath.Join(dir, "pics"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)

	assert.Contains(t, out, "pixwall dev")
	assert.Contains(t, out, "Terminal wallpaper browser")
	assert.Contains(t, out, "github.com/pders01/pixwall")
}

func TestGenerateConfigCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	out, err := execute(t, "generate-config", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "pixabay", cfg.Provider.Name)
}

func TestParseFilters(t *testing.T) {
	c := catalog.Default()

	got, err := parseFilters(c, []string{"order=popular", " colors = red "})
	require.NoError(t, err)
	assert.Equal(t, feed.FilterSet{"order": "popular", "colors": "red"}, got)

	for _, bad := range []string{"order", "order=", "=red", "order=random", "size=big"} {
		_, err := parseFilters(c, []string{bad})
		assert.Error(t, err, bad)
	}
}

func TestSearchCommand(t *testing.T) {
	srv := newAPIServer(t)
	cfgPath := writeConfig(t, srv.URL+"/api/")

	out, err := execute(t, "--config", cfgPath, "search", "-c", "nature", "-f", "order=popular", "-f", "type=photo", "golden", "hour")
	require.NoError(t, err)

	assert.Contains(t, out, "101")
	assert.Contains(t, out, "1080x1920")
	assert.Contains(t, out, "2 of 2 hits")

	q := srv.lastQuery()
	assert.Contains(t, q, "q=golden+hour")
	assert.Contains(t, q, "category=nature")
	assert.Contains(t, q, "order=popular")
	assert.Contains(t, q, "image_type=photo")
	assert.Contains(t, q, "key=cli-test")

	// The same search is answered from the cache.
	_, err = execute(t, "--config", cfgPath, "search", "-c", "nature", "-f", "order=popular", "-f", "type=photo", "golden", "hour")
	require.NoError(t, err)
	assert.Equal(t, int32(1), srv.requests.Load())
}

func TestSearchCommandRejectsUnknownCategory(t *testing.T) {
	_, err := execute(t, "search", "--category", "spaceships")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown category")
}

func TestSearchCommandMissingKey(t *testing.T) {
	srv := newAPIServer(t)
	cfgPath := writeConfig(t, srv.URL+"/api/")
	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(cfgPath, []byte(strings.Replace(string(data), `api_key = "cli-test"`, `api_key = ""`, 1)), 0o644))
	t.Setenv("PIXABAY_API_KEY", "")
	t.Setenv("PIXWALL_PROVIDER_API_KEY", "")

	_, err = execute(t, "--config", cfgPath, "search", "sunset")
	assert.ErrorIs(t, err, provider.ErrMissingAPIKey)
}

func TestWarmAndCacheCommands(t *testing.T) {
	srv := newAPIServer(t)
	cfgPath := writeConfig(t, srv.URL+"/api/")
	categories := len(catalog.Default().Categories)

	out, err := execute(t, "--config", cfgPath, "warm")
	require.NoError(t, err)
	assert.Contains(t, out, fmt.Sprintf("Warmed %d of %d queries", categories, categories))
	assert.Equal(t, int32(categories), srv.requests.Load())

	out, err = execute(t, "--config", cfgPath, "cache", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, fmt.Sprintf("%d cached responses", categories))
	assert.Contains(t, out, "Last purge: ")
	assert.NotContains(t, out, "Last purge: never", "opening a session purges a fresh database")

	out, err = execute(t, "--config", cfgPath, "cache", "purge")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 0 expired entries")
}

func TestMissingKeyHintNamesBothVariables(t *testing.T) {
	assert.Contains(t, missingKeyHint, "PIXWALL_PROVIDER_API_KEY")
	assert.Contains(t, missingKeyHint, "PIXABAY_API_KEY")
}

func TestHistoryCommandEmpty(t *testing.T) {
	srv := newAPIServer(t)
	cfgPath := writeConfig(t, srv.URL+"/api/")

	out, err := execute(t, "--config", cfgPath, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No downloads yet")
}

func TestDownloadCommand(t *testing.T) {
	srv := newAPIServer(t)
	cfgPath := writeConfig(t, srv.URL+"/api/")
	pics := filepath.Join(filepath.Dir(cfgPath), "pics")

	out, err := execute(t, "--config", cfgPath, "download", "101")
	require.NoError(t, err)
	assert.Contains(t, out, "Image downloaded successfully")
	assert.Contains(t, srv.lastQuery(), "id=101")

	entries, err := os.ReadDir(pics)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "101_640.jpg", entries[0].Name())
	data, err := os.ReadFile(filepath.Join(pics, entries[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, imageBytes, data)

	out, err = execute(t, "--config", cfgPath, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "101")
	assert.NotContains(t, out, "No downloads yet")
}

func TestDownloadCommandRejectsBadID(t *testing.T) {
	_, err := execute(t, "download", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid image id")
}

func TestHumanBytes(t *testing.T) {
	assert.Equal(t, "512 B", humanBytes(512))
	assert.Equal(t, "1.5 KiB", humanBytes(1536))
	assert.Equal(t, "2.0 MiB", humanBytes(2<<20))
}
