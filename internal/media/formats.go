package media

import (
	_ "embed"
	"mime"
	"path"
	"runtime"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed formats.toml
var formatsTOML []byte

type FormatConfig struct {
	Extensions   []string `toml:"extensions"`
	ContentTypes []string `toml:"content_types"`
}

type PlatformConfig struct {
	DefaultOpener string `toml:"default_opener"`
}

type FormatsConfig struct {
	Formats   map[string]FormatConfig   `toml:"formats"`
	Platforms map[string]PlatformConfig `toml:"platforms"`
}

// FormatDetector recognizes image files by extension or content type.
type FormatDetector struct {
	config *FormatsConfig
}

func NewFormatDetector() (*FormatDetector, error) {
	var config FormatsConfig
	if err := toml.Unmarshal(formatsTOML, &config); err != nil {
		return nil, err
	}
	return &FormatDetector{config: &config}, nil
}

// Detect returns the format name for a path or URL, or "".
func (d *FormatDetector) Detect(name string) string {
	ext := extension(name)
	if ext == "" {
		return ""
	}
	for format, fc := range d.config.Formats {
		for _, e := range fc.Extensions {
			if e == ext {
				return format
			}
		}
	}
	return ""
}

// IsImage reports whether name has a known image extension.
func (d *FormatDetector) IsImage(name string) bool {
	return d.Detect(name) != ""
}

// ExtensionFor maps a Content-Type header to a file extension with a dot,
// or "" when the type is not a known image.
func (d *FormatDetector) ExtensionFor(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	names := make([]string, 0, len(d.config.Formats))
	for name := range d.config.Formats {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fc := d.config.Formats[name]
		for _, ct := range fc.ContentTypes {
			if ct == mt && len(fc.Extensions) > 0 {
				return "." + fc.Extensions[0]
			}
		}
	}
	return ""
}

func (d *FormatDetector) DefaultOpener() string {
	if pc, ok := d.config.Platforms[runtime.GOOS]; ok {
		return pc.DefaultOpener
	}
	if fallback, ok := d.config.Platforms["fallback"]; ok {
		return fallback.DefaultOpener
	}
	return "open"
}

func extension(name string) string {
	lower := strings.ToLower(name)
	if i := strings.IndexAny(lower, "?#"); i >= 0 {
		lower = lower[:i]
	}
	ext := path.Ext(lower)
	return strings.TrimPrefix(ext, ".")
}
