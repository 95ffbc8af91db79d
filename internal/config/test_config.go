package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	d := defaultConfig()
	return &Config{
		Provider: ProviderConfig{
			Name:        "pixabay",
			BaseURL:     "http://127.0.0.1/api/",
			APIKey:      "test-key",
			PerPage:     10,
			HTTPTimeout: 5 * time.Second,
			RetryMax:    0,
			UserAgent:   "pixwall-test/1.0",
			CacheTTL:    time.Minute,
			SafeSearch:  true,
		},
		Feed: FeedConfig{
			SearchDebounce: 400 * time.Millisecond,
			FetchTimeout:   5 * time.Second,
		},
		Database: DatabaseConfig{
			Path:          ":memory:",
			Timeout:       1 * time.Second,
			PurgeInterval: time.Hour,
		},
		Downloads: DownloadsConfig{Dir: ""},
		UI:        d.UI,
		Media:     d.Media,
		Log:       LogConfig{Level: "off"},
	}
}
