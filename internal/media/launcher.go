package media

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/mitchellh/go-homedir"
	"github.com/pders01/pixwall/internal/config"
)

// UserViewersFile is merged over the built-in viewer definitions.
const UserViewersFile = "~/.config/pixwall/viewers.toml"

// Launcher opens downloaded images in an external viewer.
type Launcher struct {
	viewer        string
	defaultOpener string
	registry      *ViewerRegistry
	detector      *FormatDetector
	start         func(*exec.Cmd) error
}

func NewLauncher(cfg *config.Config) *Launcher {
	var userFiles []string
	if p, err := homedir.Expand(UserViewersFile); err == nil {
		userFiles = append(userFiles, p)
	}

	registry, err := NewViewerRegistry(userFiles...)
	if err != nil {
		// Fall back to running viewers without arguments.
		registry = &ViewerRegistry{viewers: make(map[string]ViewerDefinition), goos: runtime.GOOS}
	}

	detector, err := NewFormatDetector()
	if err != nil {
		detector = &FormatDetector{config: &FormatsConfig{}}
	}

	defaultOpener := cfg.Media.DefaultOpener
	if defaultOpener == "" {
		defaultOpener = detector.DefaultOpener()
	}

	var viewers []string
	switch runtime.GOOS {
	case "darwin":
		viewers = cfg.Media.Darwin
	case "linux":
		viewers = cfg.Media.Linux
	case "windows":
		viewers = cfg.Media.Windows
	default:
		viewers = cfg.Media.Linux
	}

	viewer := registry.FindAvailable(viewers)
	if viewer == "" {
		viewer = defaultOpener
	}

	return &Launcher{
		viewer:        viewer,
		defaultOpener: defaultOpener,
		registry:      registry,
		detector:      detector,
		start:         startDetached,
	}
}

// Viewer is the viewer Open will use.
func (l *Launcher) Viewer() string {
	return l.viewer
}

// Open shows an image file.
func (l *Launcher) Open(file string) error {
	if file == "" {
		return fmt.Errorf("nothing downloaded yet")
	}
	if _, err := os.Stat(file); err != nil {
		return fmt.Errorf("cannot open %s: %w", file, err)
	}
	if !l.detector.IsImage(file) {
		return fmt.Errorf("%s is not an image", file)
	}

	viewer := l.viewer
	if viewer == "" {
		viewer = l.defaultOpener
	}
	if viewer == "" {
		return fmt.Errorf("no image viewer found")
	}

	cmd, err := l.registry.Command(viewer, file)
	if err != nil {
		cmd = exec.Command(l.defaultOpener, file)
		viewer = l.defaultOpener
	}

	if err := l.start(cmd); err != nil {
		return fmt.Errorf("failed to start %s: %w", viewer, err)
	}
	return nil
}

func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}
