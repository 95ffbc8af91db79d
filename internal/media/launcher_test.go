package media

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/pders01/pixwall/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLauncher(t *testing.T) (*Launcher, *[]*exec.Cmd) {
	t.Helper()
	cfg := config.TestConfig()
	cfg.Media.Darwin = []string{"no-such-viewer"}
	cfg.Media.Linux = []string{"no-such-viewer"}
	cfg.Media.Windows = []string{"no-such-viewer"}
	cfg.Media.DefaultOpener = "fallback-opener"

	l := NewLauncher(cfg)
	var started []*exec.Cmd
	l.start = func(cmd *exec.Cmd) error {
		started = append(started, cmd)
		return nil
	}
	return l, &started
}

func TestNewLauncher_FallsBackToDefaultOpener(t *testing.T) {
	l, _ := testLauncher(t)
	assert.Equal(t, "fallback-opener", l.Viewer())
}

func TestLauncher_Open(t *testing.T) {
	l, started := testLauncher(t)
	file := filepath.Join(t.TempDir(), "a_640.jpg")
	require.NoError(t, os.WriteFile(file, []byte("jpeg"), 0o644))

	require.NoError(t, l.Open(file))
	require.Len(t, *started, 1)
	assert.Equal(t, []string{"fallback-opener", file}, (*started)[0].Args)
}

func TestLauncher_OpenErrors(t *testing.T) {
	l, started := testLauncher(t)
	dir := t.TempDir()

	assert.Error(t, l.Open(""))
	assert.Error(t, l.Open(filepath.Join(dir, "missing.jpg")))

	notImage := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notImage, []byte("x"), 0o644))
	assert.Error(t, l.Open(notImage))
	assert.Empty(t, *started)

	img := filepath.Join(dir, "b.png")
	require.NoError(t, os.WriteFile(img, []byte("png"), 0o644))
	l.start = func(*exec.Cmd) error { return errors.New("exec failed") }
	err := l.Open(img)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fallback-opener")
}
