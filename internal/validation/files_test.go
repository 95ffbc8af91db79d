package validation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"mountain-lake_640.jpg", "mountain-lake_640.jpg"},
		{"/photo/2024/01/02/sunset_1280.png", "sunset_1280.png"},
		{"a_640.jpg?token=1", "a_640.jpg"},
		{"..\\..\\evil.jpg", "evil.jpg"},
		{"../../etc/passwd", "passwd"},
		{"we<ird>:na|me*.jpg", "we_ird__na_me_.jpg"},
		{"tab\tname.jpg", "tabname.jpg"},
		{"..", ""},
		{"", ""},
		{"/", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFilename(tt.in), "input %q", tt.in)
	}
}

func TestSanitizeFilename_Truncates(t *testing.T) {
	name := strings.Repeat("x", 300) + ".jpg"

	got := SanitizeFilename(name)
	assert.Len(t, []rune(got), MaxFilenameLength)
	assert.True(t, strings.HasSuffix(got, ".jpg"))
}

func TestEnsureDir(t *testing.T) {
	base := t.TempDir()

	dir, err := EnsureDir(filepath.Join(base, "a", "b"))
	require.NoError(t, err)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Existing directory is fine.
	again, err := EnsureDir(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, again)
}

func TestEnsureDir_Errors(t *testing.T) {
	_, err := EnsureDir("")
	assert.Error(t, err)

	_, err = EnsureDir("bad\x00dir")
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = EnsureDir(file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}
