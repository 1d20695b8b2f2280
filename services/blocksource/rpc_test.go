package blocksource

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kodemon/sats/errors"
	"github.com/kodemon/sats/model"
	"github.com/kodemon/sats/settings"
	"github.com/kodemon/sats/ulogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcRequest struct {
	ID     interface{}   `json:"id"`
	Method string        `json:"method"`
	Params []interface{} `json:"params"`
}

// fakeNode answers the JSON-RPC calls the block source makes from an in-memory chain.
type fakeNode struct {
	blocks []*model.Block
	calls  atomic.Int32
}

func (f *fakeNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.calls.Add(1)

	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var (
		result interface{}
		rpcErr interface{}
	)

	switch req.Method {
	case "getblockchaininfo":
		tip := f.blocks[len(f.blocks)-1]
		result = map[string]interface{}{
			"chain":         "regtest",
			"blocks":        len(f.blocks) - 1,
			"headers":       len(f.blocks) - 1,
			"bestblockhash": tip.Hash().String(),
		}

	case "getblockhash":
		height := int(req.Params[0].(float64))
		if height >= len(f.blocks) {
			rpcErr = map[string]interface{}{"code": -8, "message": "Block height out of range"}
			break
		}

		result = f.blocks[height].Hash().String()

	case "getblock":
		hash, _ := req.Params[0].(string)

		for _, b := range f.blocks {
			if b.Hash().String() == hash {
				result = hex.EncodeToString(b.Bytes())
			}
		}

		if result == nil {
			rpcErr = map[string]interface{}{"code": -5, "message": "Block not found"}
		}

	default:
		rpcErr = map[string]interface{}{"code": -32601, "message": "Method not found"}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"result": result,
		"error":  rpcErr,
		"id":     req.ID,
	})
}

func testChain() []*model.Block {
	genesis := model.NewTestBlock(0, nil, model.NewTestCoinbaseTx(0, 5_000_000_000))
	block1 := model.NewTestBlock(1, genesis.Hash(), model.NewTestCoinbaseTx(1, 5_000_000_000))

	return []*model.Block{genesis, block1}
}

func newTestRPC(t *testing.T, handler http.Handler) *RPC {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	tSettings := &settings.Settings{
		RPC: settings.RPCSettings{
			Host:     strings.TrimPrefix(server.URL, "http://"),
			User:     "bitcoin",
			Password: "bitcoin",
		},
	}

	r, err := NewRPC(ulogger.TestLogger{}, tSettings)
	require.NoError(t, err)

	r.retryBackoff = time.Millisecond

	return r
}

func TestRPCGetChainHeight(t *testing.T) {
	r := newTestRPC(t, &fakeNode{blocks: testChain()})

	height, err := r.GetChainHeight(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), height)
}

func TestRPCGetBlock(t *testing.T) {
	chain := testChain()
	r := newTestRPC(t, &fakeNode{blocks: chain})

	block, err := r.GetBlock(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), block.Height)
	assert.Equal(t, chain[1].Hash().String(), block.Hash().String())
	require.Len(t, block.Transactions, 1)
	assert.True(t, block.Transactions[0].IsCoinbase())
}

func TestRPCGetBlockBeyondTip(t *testing.T) {
	node := &fakeNode{blocks: testChain()}
	r := newTestRPC(t, node)

	_, err := r.GetBlock(context.Background(), 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrBlockNotFound))

	// not retryable, so a single call
	assert.Equal(t, int32(1), node.calls.Load())
}

func TestRPCUnreachableIsRetried(t *testing.T) {
	r := newTestRPC(t, &fakeNode{blocks: testChain()})

	// point at a port nothing listens on
	server := httptest.NewServer(http.NotFoundHandler())
	host := strings.TrimPrefix(server.URL, "http://")
	server.Close()

	tSettings := &settings.Settings{RPC: settings.RPCSettings{Host: host}}

	dead, err := NewRPC(ulogger.TestLogger{}, tSettings)
	require.NoError(t, err)

	dead.retryBackoff = time.Millisecond
	dead.retryCount = 2

	_, err = dead.GetChainHeight(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsNetworkError(err))

	status, _, err := r.Health(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)

	status, _, err = dead.Health(context.Background(), false)
	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestRPCCancelledContext(t *testing.T) {
	r := newTestRPC(t, &fakeNode{blocks: testChain()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.GetBlock(ctx, 0)
	require.Error(t, err)
	assert.True(t, errors.IsContextError(err))
}

func TestSplitHostPort(t *testing.T) {
	host, port, err := splitHostPort("localhost:18332")
	require.NoError(t, err)
	assert.Equal(t, "localhost", host)
	assert.Equal(t, 18332, port)

	host, port, err = splitHostPort("node")
	require.NoError(t, err)
	assert.Equal(t, "node", host)
	assert.Equal(t, defaultRPCPort, port)

	_, _, err = splitHostPort("")
	require.Error(t, err)

	_, _, err = splitHostPort("node:notaport")
	require.Error(t, err)
}
