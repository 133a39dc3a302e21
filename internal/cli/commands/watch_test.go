package commands

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/bloodline/internal/testutil"
)

func TestWatchFiles(t *testing.T) {
	paths := testutil.WriteSQLFiles(t, map[string]string{
		"watched.sql": "SELECT a FROM t1;",
	})

	ctx, cancel := context.WithCancel(context.Background())
	changed := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		// Late timer callbacks may log after the test ends.
		done <- watchFiles(ctx, paths, slog.New(slog.DiscardHandler), func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(paths[0], []byte("SELECT b FROM t2;"), 0o600))

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("expected a change notification")
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}

func TestWatchFiles_MissingDir(t *testing.T) {
	err := watchFiles(context.Background(), []string{"/does/not/exist/q.sql"}, testutil.NewTestLogger(t), func() {})
	require.Error(t, err)
}
