package media

import (
	_ "embed"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/pelletier/go-toml/v2"
)

//go:embed viewers.toml
var viewersTOML []byte

// ViewerDefinition defines how an image viewer is invoked.
type ViewerDefinition struct {
	Description string   `toml:"description"`
	Platforms   []string `toml:"platforms"`
	// Command overrides the executable when it differs from the viewer name.
	Command     string   `toml:"command,omitempty"`
	Args        []string `toml:"args,omitempty"`
	ArgsDarwin  []string `toml:"args_darwin,omitempty"`
	ArgsLinux   []string `toml:"args_linux,omitempty"`
	ArgsWindows []string `toml:"args_windows,omitempty"`
}

type ViewersConfig struct {
	Viewers map[string]ViewerDefinition `toml:"viewers"`
}

// ViewerRegistry resolves viewer names to commands.
type ViewerRegistry struct {
	viewers map[string]ViewerDefinition
	goos    string
}

// NewViewerRegistry loads the built-in definitions, then merges any of
// userFiles that exist. User entries override built-ins.
func NewViewerRegistry(userFiles ...string) (*ViewerRegistry, error) {
	var config ViewersConfig
	if err := toml.Unmarshal(viewersTOML, &config); err != nil {
		return nil, fmt.Errorf("parsing viewers.toml: %w", err)
	}

	r := &ViewerRegistry{viewers: config.Viewers, goos: runtime.GOOS}
	if r.viewers == nil {
		r.viewers = make(map[string]ViewerDefinition)
	}

	for _, path := range userFiles {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var user ViewersConfig
		if err := toml.Unmarshal(data, &user); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		for name, def := range user.Viewers {
			r.viewers[name] = def
		}
	}

	return r, nil
}

// Command builds the invocation of viewer for file.
func (r *ViewerRegistry) Command(viewer, file string) (*exec.Cmd, error) {
	def, ok := r.viewers[viewer]
	if !ok {
		return exec.Command(viewer, file), nil
	}

	if !r.supports(def) {
		return nil, fmt.Errorf("%s not supported on %s", viewer, r.goos)
	}

	name := viewer
	if def.Command != "" {
		name = def.Command
	}
	args := append(append([]string(nil), r.args(def)...), file)
	return exec.Command(name, args...), nil
}

func (r *ViewerRegistry) supports(def ViewerDefinition) bool {
	if len(def.Platforms) == 0 {
		return true
	}
	for _, p := range def.Platforms {
		if p == r.goos {
			return true
		}
	}
	return false
}

func (r *ViewerRegistry) args(def ViewerDefinition) []string {
	switch r.goos {
	case "darwin":
		if len(def.ArgsDarwin) > 0 {
			return def.ArgsDarwin
		}
	case "linux":
		if len(def.ArgsLinux) > 0 {
			return def.ArgsLinux
		}
	case "windows":
		if len(def.ArgsWindows) > 0 {
			return def.ArgsWindows
		}
	}
	return def.Args
}

// Executable is the program Command would run for viewer.
func (r *ViewerRegistry) Executable(viewer string) string {
	if def, ok := r.viewers[viewer]; ok && def.Command != "" {
		return def.Command
	}
	return viewer
}

// FindAvailable returns the first viewer whose executable is installed.
func (r *ViewerRegistry) FindAvailable(viewers []string) string {
	for _, v := range viewers {
		def, known := r.viewers[v]
		if known && !r.supports(def) {
			continue
		}
		if _, err := exec.LookPath(r.Executable(v)); err == nil {
			return v
		}
	}
	return ""
}
