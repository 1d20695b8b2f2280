package cmdutil

import (
	"flag"
	"testing"

	"github.com/kodemon/sats/errors"
	"github.com/kodemon/sats/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func newContext(t *testing.T, args ...string) *cli.Context {
	t.Helper()

	set := flag.NewFlagSet("test", flag.ContinueOnError)

	for _, f := range StoreFlags() {
		require.NoError(t, f.Apply(set))
	}

	require.NoError(t, set.Parse(args))

	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestSettingsOverrides(t *testing.T) {
	tSettings := &settings.Settings{DataFolder: "data", LogLevel: "INFO"}

	s, err := Settings(newContext(t, "--data-dir", "/var/lib/sats", "--store", "pebble:///ranges", "--log-level", "DEBUG"), tSettings)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/sats", s.DataFolder)
	assert.Equal(t, "DEBUG", s.LogLevel)
	require.NotNil(t, s.Indexer.StoreURL)
	assert.Equal(t, "pebble", s.Indexer.StoreURL.Scheme)
	assert.Equal(t, "/ranges", s.Indexer.StoreURL.Path)
}

func TestSettingsDefaults(t *testing.T) {
	tSettings := &settings.Settings{DataFolder: "data", LogLevel: "WARN"}

	s, err := Settings(newContext(t), tSettings)
	require.NoError(t, err)

	assert.Equal(t, "data", s.DataFolder)
	assert.Equal(t, "WARN", s.LogLevel)
	assert.Nil(t, s.Indexer.StoreURL)
}

func TestSettingsErrors(t *testing.T) {
	_, err := Settings(newContext(t), &settings.Settings{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfiguration))

	_, err = Settings(newContext(t, "--store", "://bad"), &settings.Settings{DataFolder: "data"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfiguration))
}
