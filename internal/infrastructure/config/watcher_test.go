package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.cfg")
	require.NoError(t, os.WriteFile(path, []byte("width=800\n"), 0o644))

	w, err := NewWatcher(path)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	// Unrelated files in the same directory are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("width=640\n"), 0o644))

	abs, err := filepath.Abs(path)
	require.NoError(t, err)

	select {
	case name := <-w.Events:
		assert.Equal(t, abs, name)
	case <-time.After(2 * time.Second):
		t.Fatal("no event for settings file")
	}
}

func TestWatcher_CloseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.cfg")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	w, err := NewWatcher(path)
	require.NoError(t, err)

	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())

	_, ok := <-w.Events
	assert.False(t, ok, "Events is closed")
}

func TestNewWatcher_MissingDirectory(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "missing", "game.cfg"))
	assert.Error(t, err)
}

func TestWatcher_ReportsEndOfBurst(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.cfg")
	require.NoError(t, os.WriteFile(path, []byte("width=800\n"), 0o644))

	w, err := NewWatcher(path)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("width=640\n"), 0o644))
		time.Sleep(20 * time.Millisecond)
	}
	lastWrite := time.Now()

	select {
	case <-w.Events:
		assert.False(t, time.Now().Before(lastWrite), "event is reported after the last write")
	case <-time.After(2 * time.Second):
		t.Fatal("no event for settings file")
	}

	select {
	case name := <-w.Events:
		t.Fatalf("burst reported twice: %s", name)
	case <-time.After(3 * debounce):
	}
}

func TestWatcher_ReportsFileReplacedByEditor(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.cfg")
	require.NoError(t, os.WriteFile(path, []byte("width=800\n"), 0o644))

	w, err := NewWatcher(path)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	require.NoError(t, os.Rename(path, path+"~"))
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("width=640\n"), 0o644))

	select {
	case <-w.Events:
		s, err := NewLoader(dir).LoadSettings("game.cfg")
		require.NoError(t, err, "the file is back in place when the event arrives")
		assert.Equal(t, 640, s.Width)
	case <-time.After(2 * time.Second):
		t.Fatal("no event for replaced settings file")
	}
}
