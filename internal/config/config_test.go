package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func TestGetDefaultOpener(t *testing.T) {
	expected := map[string]string{
		"darwin":  "open",
		"linux":   "xdg-open",
		"windows": "start",
	}

	opener := getDefaultOpener()

	if expectedOpener, ok := expected[runtime.GOOS]; ok {
		if opener != expectedOpener {
			t.Errorf("getDefaultOpener() = %s, want %s for %s", opener, expectedOpener, runtime.GOOS)
		}
	} else if opener != "open" {
		t.Errorf("getDefaultOpener() = %s, want 'open' for unknown OS", opener)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Provider.Name != "pixabay" {
		t.Errorf("Provider.Name = %s, want pixabay", cfg.Provider.Name)
	}
	if cfg.Provider.BaseURL != "https://pixabay.com/api/" {
		t.Errorf("Provider.BaseURL = %s", cfg.Provider.BaseURL)
	}
	if cfg.Provider.PerPage != 25 {
		t.Errorf("Provider.PerPage = %d, want 25", cfg.Provider.PerPage)
	}
	if cfg.Provider.UserAgent == "" {
		t.Error("Provider.UserAgent should not be empty")
	}

	if cfg.Feed.SearchDebounce != 400*time.Millisecond {
		t.Errorf("Feed.SearchDebounce = %v, want 400ms", cfg.Feed.SearchDebounce)
	}

	if cfg.Database.PurgeInterval != 6*time.Hour {
		t.Errorf("Database.PurgeInterval = %v, want 6h", cfg.Database.PurgeInterval)
	}

	if cfg.UI.ModalCloseDelay != 200*time.Millisecond {
		t.Errorf("UI.ModalCloseDelay = %v, want 200ms", cfg.UI.ModalCloseDelay)
	}
	if cfg.UI.ToastDuration != 2500*time.Millisecond {
		t.Errorf("UI.ToastDuration = %v, want 2.5s", cfg.UI.ToastDuration)
	}

	if cfg.Media.DefaultOpener == "" {
		t.Error("Media.DefaultOpener should not be empty")
	}

	if cfg.Log.Level != "off" {
		t.Errorf("Log.Level = %s, want off", cfg.Log.Level)
	}
}

func TestLoad_DefaultConfig(t *testing.T) {
	// Load from an empty directory so a developer's config is not picked up.
	tmpDir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if chErr := os.Chdir(tmpDir); chErr != nil {
		t.Fatal(chErr)
	}
	defer func() { _ = os.Chdir(wd) }()
	t.Setenv("HOME", tmpDir)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}

	if cfg.Feed.SearchDebounce != 400*time.Millisecond {
		t.Errorf("Feed.SearchDebounce = %v, want 400ms", cfg.Feed.SearchDebounce)
	}
	if !filepath.IsAbs(cfg.Database.Path) {
		t.Errorf("Database.Path should be absolute, got %s", cfg.Database.Path)
	}
}

func TestLoad_FromFile(t *testing.T) {
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "test-config.toml")
	configContent := `
[provider]
api_key = "abc123"
per_page = 50
http_timeout = "60s"
user_agent = "test-agent"

[feed]
search_debounce = "250ms"

[database]
path = "/tmp/test.db"
timeout = "10s"

[ui.colors]
primary = "#FF0000"
`

	if writeErr := os.WriteFile(configPath, []byte(configContent), 0o644); writeErr != nil {
		t.Fatal(writeErr)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Provider.APIKey != "abc123" {
		t.Errorf("Provider.APIKey = %s, want abc123", cfg.Provider.APIKey)
	}
	if cfg.Provider.PerPage != 50 {
		t.Errorf("Provider.PerPage = %d, want 50", cfg.Provider.PerPage)
	}
	if cfg.Provider.HTTPTimeout != 60*time.Second {
		t.Errorf("Provider.HTTPTimeout = %v, want 60s", cfg.Provider.HTTPTimeout)
	}
	if cfg.Provider.UserAgent != "test-agent" {
		t.Errorf("Provider.UserAgent = %s, want 'test-agent'", cfg.Provider.UserAgent)
	}
	if cfg.Feed.SearchDebounce != 250*time.Millisecond {
		t.Errorf("Feed.SearchDebounce = %v, want 250ms", cfg.Feed.SearchDebounce)
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %s, want '/tmp/test.db'", cfg.Database.Path)
	}
	if cfg.Database.Timeout != 10*time.Second {
		t.Errorf("Database.Timeout = %v, want 10s", cfg.Database.Timeout)
	}
	if cfg.UI.Colors.Primary != "#FF0000" {
		t.Errorf("UI.Colors.Primary = %s, want '#FF0000'", cfg.UI.Colors.Primary)
	}
}

func TestLoad_APIKeyFromEnv(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "env.toml")
	if err := os.WriteFile(configPath, []byte("[provider]\nper_page = 20\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PIXWALL_PROVIDER_API_KEY", "from-env")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Provider.APIKey != "from-env" {
		t.Errorf("Provider.APIKey = %s, want from-env", cfg.Provider.APIKey)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	if got := expandPath("~/pics"); got != filepath.Join(home, "pics") {
		t.Errorf("expandPath(~/pics) = %s", got)
	}
	if got := expandPath(""); got != "" {
		t.Errorf("expandPath(\"\") = %s, want empty", got)
	}
	if got := expandPath("rel/dir"); !filepath.IsAbs(got) {
		t.Errorf("expandPath(rel/dir) = %s, want absolute", got)
	}
}

func TestSave(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := defaultConfig()
	cfg.Database.Path = "/test/path.db"
	cfg.Database.Timeout = 10 * time.Second
	cfg.Database.PurgeInterval = 90 * time.Minute
	cfg.Provider.UserAgent = "test-save-agent"
	cfg.Provider.HTTPTimeout = 45 * time.Second
	cfg.Feed.SearchDebounce = time.Second
	cfg.UI.ModalCloseDelay = 300 * time.Millisecond
	cfg.Downloads.Dir = "/test/downloads"
	cfg.Downloads.AllowPrivateHosts = true

	savePath := filepath.Join(tmpDir, "saved-config.toml")
	if saveErr := Save(cfg, savePath); saveErr != nil {
		t.Fatalf("Save() error = %v", saveErr)
	}

	if _, statErr := os.Stat(savePath); os.IsNotExist(statErr) {
		t.Fatal("Save() did not create config file")
	}

	loaded, err := Load(savePath)
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}

	if loaded.Database.Path != cfg.Database.Path {
		t.Errorf("Loaded Database.Path = %s, want %s", loaded.Database.Path, cfg.Database.Path)
	}
	if loaded.Database.PurgeInterval != 90*time.Minute {
		t.Errorf("Loaded Database.PurgeInterval = %v, want 1h30m", loaded.Database.PurgeInterval)
	}
	if loaded.Provider.UserAgent != cfg.Provider.UserAgent {
		t.Errorf("Loaded Provider.UserAgent = %s, want %s", loaded.Provider.UserAgent, cfg.Provider.UserAgent)
	}
	if loaded.Provider.HTTPTimeout != cfg.Provider.HTTPTimeout {
		t.Errorf("Loaded Provider.HTTPTimeout = %v, want %v", loaded.Provider.HTTPTimeout, cfg.Provider.HTTPTimeout)
	}
	if loaded.Feed.SearchDebounce != time.Second {
		t.Errorf("Loaded Feed.SearchDebounce = %v, want 1s", loaded.Feed.SearchDebounce)
	}
	if loaded.UI.ModalCloseDelay != 300*time.Millisecond {
		t.Errorf("Loaded UI.ModalCloseDelay = %v, want 300ms", loaded.UI.ModalCloseDelay)
	}
	if loaded.Downloads.Dir != "/test/downloads" {
		t.Errorf("Loaded Downloads.Dir = %s", loaded.Downloads.Dir)
	}
	if !loaded.Downloads.AllowPrivateHosts {
		t.Error("Loaded Downloads.AllowPrivateHosts = false, want true")
	}
}

func TestGenerateDefaultConfig(t *testing.T) {
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "generated.toml")
	if genErr := GenerateDefaultConfig(configPath); genErr != nil {
		t.Fatalf("GenerateDefaultConfig() error = %v", genErr)
	}

	if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
		t.Fatal("GenerateDefaultConfig() did not create file")
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load generated config: %v", err)
	}

	if cfg.Provider.Name != "pixabay" {
		t.Errorf("Generated config has Provider.Name = %s, want 'pixabay'", cfg.Provider.Name)
	}
	if cfg.Feed.SearchDebounce != 400*time.Millisecond {
		t.Errorf("Generated config has Feed.SearchDebounce = %v", cfg.Feed.SearchDebounce)
	}
}

func TestTestConfig(t *testing.T) {
	cfg := TestConfig()

	if cfg == nil {
		t.Fatal("TestConfig() returned nil")
	}

	if cfg.Database.Path != ":memory:" {
		t.Errorf("TestConfig Database.Path = %s, want ':memory:'", cfg.Database.Path)
	}
	if cfg.Provider.UserAgent != "pixwall-test/1.0" {
		t.Errorf("TestConfig Provider.UserAgent = %s, want 'pixwall-test/1.0'", cfg.Provider.UserAgent)
	}
}
