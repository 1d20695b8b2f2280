package settings

import (
	"bytes"
	"net/url"
	"testing"
	"time"

	satssettings "github.com/kodemon/sats/settings"
	"github.com/stretchr/testify/assert"
)

func TestPrint(t *testing.T) {
	storeURL, _ := url.Parse("postgres://sats:hunter2@db:5432/sats")

	s := &satssettings.Settings{
		Network:    "mainnet",
		DataFolder: "data",
		RPC:        satssettings.RPCSettings{Host: "node:8332", User: "rpc", Password: "topsecret"},
		Indexer: satssettings.IndexerSettings{
			StoreURL:           storeURL,
			CheckpointInterval: 5000,
			PollInterval:       10 * time.Second,
		},
	}

	var buf bytes.Buffer

	Print(&buf, s)

	out := buf.String()
	assert.Contains(t, out, "node:8332")
	assert.Contains(t, out, "postgres://sats:xxxxx@db:5432/sats")
	assert.Contains(t, out, "5000")
	assert.NotContains(t, out, "topsecret")
	assert.NotContains(t, out, "hunter2")
}
