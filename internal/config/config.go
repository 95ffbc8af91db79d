package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

type Config struct {
	Provider  ProviderConfig  `mapstructure:"provider"`
	Feed      FeedConfig      `mapstructure:"feed"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Downloads DownloadsConfig `mapstructure:"downloads"`
	UI        UIConfig        `mapstructure:"ui"`
	Media     MediaConfig     `mapstructure:"media"`
	Log       LogConfig       `mapstructure:"log"`
}

type ProviderConfig struct {
	Name        string        `mapstructure:"name"`
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	PerPage     int           `mapstructure:"per_page"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	RetryMax    int           `mapstructure:"retry_max"`
	UserAgent   string        `mapstructure:"user_agent"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
	SafeSearch  bool          `mapstructure:"safe_search"`
}

type FeedConfig struct {
	SearchDebounce time.Duration `mapstructure:"search_debounce"`
	FetchTimeout   time.Duration `mapstructure:"fetch_timeout"`
}

type DatabaseConfig struct {
	Path          string        `mapstructure:"path"`
	Timeout       time.Duration `mapstructure:"timeout"`
	PurgeInterval time.Duration `mapstructure:"purge_interval"`
}

type DownloadsConfig struct {
	Dir string `mapstructure:"dir"`
	// AllowPrivateHosts permits image URLs on loopback and private networks.
	AllowPrivateHosts bool `mapstructure:"allow_private_hosts"`
}

type UIConfig struct {
	Colors          UIColors      `mapstructure:"colors"`
	ModalCloseDelay time.Duration `mapstructure:"modal_close_delay"`
	ToastDuration   time.Duration `mapstructure:"toast_duration"`
}

type UIColors struct {
	Primary    string `mapstructure:"primary"`
	Secondary  string `mapstructure:"secondary"`
	Accent     string `mapstructure:"accent"`
	Background string `mapstructure:"background"`
	Surface    string `mapstructure:"surface"`
	Text       string `mapstructure:"text"`
	Muted      string `mapstructure:"muted"`
	Error      string `mapstructure:"error"`
	Success    string `mapstructure:"success"`
}

type MediaConfig struct {
	Darwin        []string `mapstructure:"darwin"`
	Linux         []string `mapstructure:"linux"`
	Windows       []string `mapstructure:"windows"`
	DefaultOpener string   `mapstructure:"default_opener"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Provider: ProviderConfig{
			Name:        "pixabay",
			BaseURL:     "https://pixabay.com/api/",
			PerPage:     25,
			HTTPTimeout: 15 * time.Second,
			RetryMax:    3,
			UserAgent:   "pixwall/1.0 (https://github.com/pders01/pixwall)",
			CacheTTL:    24 * time.Hour,
			SafeSearch:  true,
		},
		Feed: FeedConfig{
			SearchDebounce: 400 * time.Millisecond,
			FetchTimeout:   20 * time.Second,
		},
		Database: DatabaseConfig{
			Path:          filepath.Join(homeDir, ".pixwall", "pixwall.db"),
			Timeout:       1 * time.Second,
			PurgeInterval: 6 * time.Hour,
		},
		Downloads: DownloadsConfig{
			Dir: filepath.Join(homeDir, "Pictures", "pixwall"),
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:    "#FF6B6B",
				Secondary:  "#4ECDC4",
				Accent:     "#95E1D3",
				Background: "#1A1A2E",
				Surface:    "#16213E",
				Text:       "#EAEAEA",
				Muted:      "#94A3B8",
				Error:      "#F87171",
				Success:    "#4ADE80",
			},
			ModalCloseDelay: 200 * time.Millisecond,
			ToastDuration:   2500 * time.Millisecond,
		},
		Media: MediaConfig{
			Darwin:        []string{"preview", "open"},
			Linux:         []string{"sxiv", "feh", "eog", "xdg-open"},
			Windows:       []string{"start"},
			DefaultOpener: getDefaultOpener(),
		},
		Log: LogConfig{
			Level: "off",
			File:  filepath.Join(homeDir, ".pixwall", "pixwall.log"),
		},
	}
}

func getDefaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "linux":
		return "xdg-open"
	case "windows":
		return "start"
	default:
		return "open"
	}
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v, defaultConfig())

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		homeDir, _ := os.UserHomeDir()
		configDir := filepath.Join(homeDir, ".config", "pixwall")

		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("PIXWALL")
	v.AutomaticEnv()
	// Nested keys are not picked up by AutomaticEnv unless bound.
	_ = v.BindEnv("provider.api_key", "PIXWALL_PROVIDER_API_KEY", "PIXABAY_API_KEY")
	_ = v.BindEnv("log.level", "PIXWALL_LOG_LEVEL")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	expandPaths(&config)

	return &config, nil
}

// setDefaults registers every leaf key so a partial section in the file
// only overrides the keys it names.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("provider.name", cfg.Provider.Name)
	v.SetDefault("provider.base_url", cfg.Provider.BaseURL)
	v.SetDefault("provider.api_key", cfg.Provider.APIKey)
	v.SetDefault("provider.per_page", cfg.Provider.PerPage)
	v.SetDefault("provider.http_timeout", cfg.Provider.HTTPTimeout)
	v.SetDefault("provider.retry_max", cfg.Provider.RetryMax)
	v.SetDefault("provider.user_agent", cfg.Provider.UserAgent)
	v.SetDefault("provider.cache_ttl", cfg.Provider.CacheTTL)
	v.SetDefault("provider.safe_search", cfg.Provider.SafeSearch)

	v.SetDefault("feed.search_debounce", cfg.Feed.SearchDebounce)
	v.SetDefault("feed.fetch_timeout", cfg.Feed.FetchTimeout)

	v.SetDefault("database.path", cfg.Database.Path)
	v.SetDefault("database.timeout", cfg.Database.Timeout)
	v.SetDefault("database.purge_interval", cfg.Database.PurgeInterval)

	v.SetDefault("downloads.dir", cfg.Downloads.Dir)
	v.SetDefault("downloads.allow_private_hosts", cfg.Downloads.AllowPrivateHosts)

	v.SetDefault("ui.colors.primary", cfg.UI.Colors.Primary)
	v.SetDefault("ui.colors.secondary", cfg.UI.Colors.Secondary)
	v.SetDefault("ui.colors.accent", cfg.UI.Colors.Accent)
	v.SetDefault("ui.colors.background", cfg.UI.Colors.Background)
	v.SetDefault("ui.colors.surface", cfg.UI.Colors.Surface)
	v.SetDefault("ui.colors.text", cfg.UI.Colors.Text)
	v.SetDefault("ui.colors.muted", cfg.UI.Colors.Muted)
	v.SetDefault("ui.colors.error", cfg.UI.Colors.Error)
	v.SetDefault("ui.colors.success", cfg.UI.Colors.Success)
	v.SetDefault("ui.modal_close_delay", cfg.UI.ModalCloseDelay)
	v.SetDefault("ui.toast_duration", cfg.UI.ToastDuration)

	v.SetDefault("media.darwin", cfg.Media.Darwin)
	v.SetDefault("media.linux", cfg.Media.Linux)
	v.SetDefault("media.windows", cfg.Media.Windows)
	v.SetDefault("media.default_opener", cfg.Media.DefaultOpener)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.file", cfg.Log.File)
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if expanded, err := homedir.Expand(path); err == nil {
		path = expanded
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Downloads.Dir = expandPath(cfg.Downloads.Dir)
	cfg.Log.File = expandPath(cfg.Log.File)
}

func Save(config *Config, path string) error {
	v := viper.New()

	// Durations as strings keep the TOML readable.
	providerCfg := map[string]interface{}{
		"name":         config.Provider.Name,
		"base_url":     config.Provider.BaseURL,
		"api_key":      config.Provider.APIKey,
		"per_page":     config.Provider.PerPage,
		"http_timeout": config.Provider.HTTPTimeout.String(),
		"retry_max":    config.Provider.RetryMax,
		"user_agent":   config.Provider.UserAgent,
		"cache_ttl":    config.Provider.CacheTTL.String(),
		"safe_search":  config.Provider.SafeSearch,
	}

	feedCfg := map[string]interface{}{
		"search_debounce": config.Feed.SearchDebounce.String(),
		"fetch_timeout":   config.Feed.FetchTimeout.String(),
	}

	dbCfg := map[string]interface{}{
		"path":           config.Database.Path,
		"timeout":        config.Database.Timeout.String(),
		"purge_interval": config.Database.PurgeInterval.String(),
	}

	uiCfg := map[string]interface{}{
		"colors":            config.UI.Colors,
		"modal_close_delay": config.UI.ModalCloseDelay.String(),
		"toast_duration":    config.UI.ToastDuration.String(),
	}

	v.Set("provider", providerCfg)
	v.Set("feed", feedCfg)
	v.Set("database", dbCfg)
	v.Set("downloads", map[string]interface{}{
		"dir":                 config.Downloads.Dir,
		"allow_private_hosts": config.Downloads.AllowPrivateHosts,
	})
	v.Set("ui", uiCfg)
	v.Set("media", map[string]interface{}{
		"darwin":         config.Media.Darwin,
		"linux":          config.Media.Linux,
		"windows":        config.Media.Windows,
		"default_opener": config.Media.DefaultOpener,
	})
	v.Set("log", config.Log)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}

// DefaultConfigPath is where GenerateDefaultConfig writes when no path is given.
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "pixwall", "config.toml")
}
