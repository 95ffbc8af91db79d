package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/pixwall/internal/config"
	"github.com/pders01/pixwall/internal/debuglog"
	"github.com/pders01/pixwall/internal/feed"
	"github.com/pders01/pixwall/internal/media"
	"github.com/pders01/pixwall/internal/provider"
	"github.com/pders01/pixwall/internal/storage"
	"github.com/pders01/pixwall/internal/tui"
	"github.com/pders01/pixwall/internal/validation"
)

// Version is the version of the application, set at build time
var Version = "dev"

var (
	configPath string
	dbPath     string
	logLevel   string
	logFile    string
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:           "pixwall",
	Short:         "Browse and download wallpapers from the terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runBrowser,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n", tui.AppName, Version)
		fmt.Fprintln(out, "Terminal wallpaper browser")
		fmt.Fprintln(out, "github.com/pders01/pixwall")
	},
}

var generateConfigCmd = &cobra.Command{
	Use:   "generate-config [path]",
	Short: "Write the default configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultConfigPath()
		if len(args) == 1 {
			path = args[0]
		}
		if err := config.GenerateDefaultConfig(path); err != nil {
			return fmt.Errorf("failed to generate config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Generated default configuration at: %s\n", path)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to configuration file")
	pf.StringVar(&dbPath, "db", "", "Path to database file (overrides config)")
	pf.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error, off (overrides config)")
	pf.StringVar(&logFile, "log-file", "", "Log file path (overrides config)")
	rootCmd.Flags().BoolVar(&quiet, "quiet", false, "Skip startup banner")

	rootCmd.AddCommand(versionCmd, generateConfigCmd)
	addCLICommands(rootCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, provider.ErrMissingAPIKey) {
			fmt.Fprintln(os.Stderr, missingKeyHint)
		}
		os.Exit(1)
	}
}

const missingKeyHint = "Set PIXWALL_PROVIDER_API_KEY (or PIXABAY_API_KEY), or provider.api_key in the config file (pixwall generate-config)."

// session holds what every command needs: config, store, provider.
type session struct {
	cfg      *config.Config
	store    *storage.Store
	provider provider.Provider
}

func openSession() (*session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFile != "" {
		cfg.Log.File = logFile
	}

	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.File); err != nil {
		return nil, err
	}

	if _, err := validation.EnsureDir(filepath.Dir(cfg.Database.Path)); err != nil {
		debuglog.Close()
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	store, err := storage.NewStore(cfg.Database.Path, cfg.Database.Timeout)
	if err != nil {
		debuglog.Close()
		return nil, err
	}
	if n, ran, err := store.PurgeIfDue(cfg.Database.PurgeInterval); err != nil {
		debuglog.Warnf("purging cache: %v", err)
	} else if ran {
		debuglog.Infof("purged %d expired cache entries", n)
	}

	p, err := provider.New(cfg.Provider, store)
	if err != nil {
		store.Close()
		debuglog.Close()
		return nil, err
	}

	return &session{cfg: cfg, store: store, provider: p}, nil
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		debuglog.Warnf("closing store: %v", err)
	}
	_ = debuglog.Close()
}

func (s *session) loader() *feed.Loader {
	return feed.NewLoader(s.provider, s.cfg.Feed.FetchTimeout)
}

// signalContext is cancelled on interrupt.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runBrowser(cmd *cobra.Command, _ []string) error {
	if !quiet {
		tui.ShowBanner(Version)
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	downloader, err := media.NewDownloader(s.cfg, s.store)
	if err != nil {
		return err
	}

	app := tui.NewApp(s.cfg, s.loader(), tui.Actions{
		Downloader: downloader,
		Sharer:     media.NewSharer(),
		Opener:     media.NewLauncher(s.cfg),
	})
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = p.Run()
	return err
}
