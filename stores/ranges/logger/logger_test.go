package logger

import (
	"context"
	"fmt"
	"testing"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/kodemon/sats/errors"
	"github.com/kodemon/sats/model"
	"github.com/kodemon/sats/stores/ranges"
	"github.com/kodemon/sats/stores/ranges/memory"
	"github.com/kodemon/sats/ulogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	ulogger.TestLogger
	lines []string
}

func (l *recordingLogger) Debugf(format string, args ...interface{}) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func TestLogger(t *testing.T) {
	ctx := context.Background()
	rec := &recordingLogger{}

	store := New(rec, memory.New(ulogger.TestLogger{}))

	hash := chainhash.DoubleHashH([]byte("tx"))
	op := model.NewOutPoint(&hash, 1)

	_, err := store.GetRanges(ctx, &op)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	batch := ranges.NewBatch(3, 1, 0)
	batch.Insert(op, model.EncodeSatRanges([]model.SatRange{{Start: 0, End: 10}}))
	require.NoError(t, store.Commit(ctx, batch))

	b, err := store.GetRanges(ctx, &op)
	require.NoError(t, err)
	assert.Len(t, b, model.SatRangeSize)

	height, found, err := store.GetLastCommittedHeight(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, uint64(3), height)

	require.NoError(t, store.Checkpoint(ctx))

	status, _, err := store.Health(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 200, status)

	require.Len(t, rec.lines, 6)
	assert.Contains(t, rec.lines[0], "[RangesStore][logger][GetRanges]")
	assert.Contains(t, rec.lines[0], hash.String()+":1")
	assert.Contains(t, rec.lines[1], "inserts 1, deletes 0")
	assert.Contains(t, rec.lines[2], "ranges 1")
	assert.Contains(t, rec.lines[3], "height 3, found true")
	assert.Contains(t, rec.lines[4], "[RangesStore][logger][Checkpoint]")
	assert.Contains(t, rec.lines[5], "called from")
}
