package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-hub/internal/logger"
)

func startReloader(t *testing.T, dirs []string, rebuild func(context.Context) error) *Reloader {
	t.Helper()
	r, err := New(dirs, 50*time.Millisecond, rebuild, logger.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return r
}

func TestReloadsOnceForABurst(t *testing.T) {
	dir := t.TempDir()
	var calls atomic.Int32
	r := startReloader(t, []string{dir}, func(context.Context) error {
		calls.Add(1)
		return nil
	})

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "content.json"), []byte(`{"courses":[]}`), 0o644))
	}

	require.Eventually(t, func() bool { return r.Reloads() == 1 }, 3*time.Second, 20*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestIgnoresNonContentFiles(t *testing.T) {
	dir := t.TempDir()
	r := startReloader(t, []string{dir}, func(context.Context) error { return nil })

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 0, r.Reloads())
}

func TestWatchesSubdirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "learn-ai", "data"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "learn-ai", "node_modules"), 0o755))

	r := startReloader(t, []string{dir, filepath.Join(dir, "missing")}, func(context.Context) error { return nil })

	watched := r.Watched()
	assert.Contains(t, watched, filepath.Join(dir, "learn-ai", "data"))
	assert.NotContains(t, watched, filepath.Join(dir, "learn-ai", "node_modules"))
	assert.NotContains(t, watched, filepath.Join(dir, "missing"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "learn-ai", "data", "lessons.yaml"), []byte("- id: l1\n"), 0o644))
	require.Eventually(t, func() bool { return r.Reloads() == 1 }, 3*time.Second, 20*time.Millisecond)
}

func TestFailedRebuildIsNotCounted(t *testing.T) {
	dir := t.TempDir()
	var calls atomic.Int32
	r := startReloader(t, []string{dir}, func(context.Context) error {
		calls.Add(1)
		return errors.New("boom")
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "courses.json"), []byte(`[]`), 0o644))
	require.Eventually(t, func() bool { return calls.Load() == 1 }, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, 0, r.Reloads())
}
