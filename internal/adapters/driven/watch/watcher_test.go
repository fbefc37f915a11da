package watch

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchFiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "paper.txt")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0600))

	var changes atomic.Int32
	cancel, err := NewWatcher().Watch(path, func() { changes.Add(1) })
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0600))

	assert.Eventually(t, func() bool {
		return changes.Load() >= 1
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatchDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "paper.txt")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0600))

	var changes atomic.Int32
	cancel, err := NewWatcher().Watch(path, func() { changes.Add(1) })
	require.NoError(t, err)
	defer cancel()

	// A save burst inside the debounce window yields one notification.
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("v"), 0600))
		time.Sleep(10 * time.Millisecond)
	}

	assert.Eventually(t, func() bool {
		return changes.Load() >= 1
	}, 5*time.Second, 20*time.Millisecond)

	time.Sleep(2 * debounceWindow)
	assert.Equal(t, int32(1), changes.Load())
}

func TestWatchIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "paper.txt")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0600))

	var changes atomic.Int32
	cancel, err := NewWatcher().Watch(path, func() { changes.Add(1) })
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0600))

	time.Sleep(2 * debounceWindow)
	assert.Equal(t, int32(0), changes.Load())
}

func TestWatchCancelStopsNotifications(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "paper.txt")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0600))

	var changes atomic.Int32
	cancel, err := NewWatcher().Watch(path, func() { changes.Add(1) })
	require.NoError(t, err)

	cancel()
	// Cancel twice is safe.
	cancel()

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0600))
	time.Sleep(2 * debounceWindow)
	assert.Equal(t, int32(0), changes.Load())
}

func TestWatchMissingDirectory(t *testing.T) {
	_, err := NewWatcher().Watch(filepath.Join(t.TempDir(), "nope", "paper.txt"), func() {})
	assert.Error(t, err)
}
