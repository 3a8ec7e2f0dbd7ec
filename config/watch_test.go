package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatch(t *testing.T, path string) (<-chan *Config, <-chan error) {
	t.Helper()
	changes := make(chan *Config, 64)
	errs := make(chan error, 64)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path,
			func(cfg *Config) {
				select {
				case changes <- cfg:
				default:
				}
			},
			func(err error) {
				select {
				case errs <- err:
				default:
				}
			})
	}()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})
	return changes, errs
}

// rewrite keeps writing content until the watcher reports on ch, since the
// watch may not be registered before the first write.
func rewrite[T any](t *testing.T, path, content string, ch <-chan T) T {
	t.Helper()
	var got T
	require.Eventually(t, func() bool {
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			return false
		}
		select {
		case got = <-ch:
			return true
		case <-time.After(20 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 30*time.Millisecond)
	return got
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: info\n"), 0o600))
	changes, _ := startWatch(t, path)

	cfg := rewrite(t, path, "log:\n  level: debug\n", changes)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 8000, cfg.Http.Port)
}

func TestWatchReportsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: info\n"), 0o600))
	_, errs := startWatch(t, path)

	err := rewrite(t, path, "log: [unterminated\n", errs)
	assert.Error(t, err)
}

func TestWatchMissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "gone", "config.yaml"), func(*Config) {}, func(error) {})
	assert.Error(t, err)
}
