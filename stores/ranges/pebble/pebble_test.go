package pebble

import (
	"context"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/kodemon/sats/settings"
	"github.com/kodemon/sats/stores/ranges"
	"github.com/kodemon/sats/stores/ranges/tests"
	"github.com/kodemon/sats/ulogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func open(t *testing.T, rawURL string, dataFolder string) *Store {
	storeURL, err := url.Parse(rawURL)
	require.NoError(t, err)

	s, err := New(ulogger.TestLogger{}, &settings.Settings{DataFolder: dataFolder}, storeURL)
	require.NoError(t, err)

	return s
}

func TestPebble(t *testing.T) {
	tests.All(t, func(t *testing.T) ranges.Store {
		return open(t, "pebble://./ranges", t.TempDir())
	})
}

func TestPebbleAbsolutePathReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "abs")

	tests.Reopen(t, func(t *testing.T) ranges.Store {
		return open(t, "pebble://"+path, "unused")
	})
}

func TestPebbleHealth(t *testing.T) {
	s := open(t, "pebble://./ranges", t.TempDir())
	defer func() {
		_ = s.Close(context.Background())
	}()

	status, details, err := s.Health(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 200, status)
	assert.Contains(t, details, "ranges")
}
