package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "flow.yaml")
	other := filepath.Join(dir, "other.yaml")
	require.NoError(t, os.WriteFile(target, []byte("name: a\n"), 0o644))

	changed := make(chan string, 10)
	w, err := New([]string{target}, func(p string) { changed <- p }, WithWindow(50*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	var stopped atomic.Bool
	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, w.Run(ctx))
		stopped.Store(true)
	}()
	// Let Run register the directory before writing.
	time.Sleep(100 * time.Millisecond)

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(target, []byte("name: b\n"), 0o644))
	}
	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))

	select {
	case p := <-changed:
		assert.Equal(t, target, p)
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported")
	}

	select {
	case p := <-changed:
		t.Fatalf("unexpected second report for %s", p)
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	<-done
	assert.True(t, stopped.Load())
}

func TestNew_NoFiles(t *testing.T) {
	_, err := New(nil, func(string) {})
	require.Error(t, err)
}
