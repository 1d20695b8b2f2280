package ranges

import (
	"bytes"
	"context"
	"testing"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/kodemon/sats/errors"
	"github.com/kodemon/sats/model"
	rangesstore "github.com/kodemon/sats/stores/ranges"
	"github.com/kodemon/sats/stores/ranges/memory"
	"github.com/kodemon/sats/ulogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrint(t *testing.T) {
	ctx := context.Background()
	store := memory.New(ulogger.TestLogger{})

	var buf bytes.Buffer

	err := Print(ctx, store, "4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b:0", &buf)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	txID, err := chainhash.NewHashFromStr("4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b")
	require.NoError(t, err)

	batch := rangesstore.NewBatch(7, 1, 0)
	batch.Insert(model.NewOutPoint(txID, 0), model.EncodeSatRanges([]model.SatRange{{Start: 0, End: 10}, {Start: 20, End: 25}}))
	require.NoError(t, store.Commit(ctx, batch))

	require.NoError(t, Print(ctx, store, "4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b:0", &buf))

	assert.Equal(t, "0 10\n20 25\n4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b:0: 15 sats in 2 ranges at height 7\n", buf.String())

	err = Print(ctx, store, "4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b:1", &buf)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	err = Print(ctx, store, "nonsense", &buf)
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
}
