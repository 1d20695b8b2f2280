// Package tests holds behaviour checks every ranges.Store implementation must pass.
package tests

import (
	"context"
	"testing"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/kodemon/sats/errors"
	"github.com/kodemon/sats/model"
	"github.com/kodemon/sats/stores/ranges"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	txA = chainhash.DoubleHashH([]byte("a"))
	txB = chainhash.DoubleHashH([]byte("b"))

	opA0 = model.NewOutPoint(&txA, 0)
	opA1 = model.NewOutPoint(&txA, 1)
	opB0 = model.NewOutPoint(&txB, 0)

	rangesA0 = model.EncodeSatRanges([]model.SatRange{{Start: 0, End: 5_000_000_000}})
	rangesA1 = model.EncodeSatRanges([]model.SatRange{{Start: 10, End: 20}, {Start: 100, End: 150}})
	rangesB0 = model.EncodeSatRanges([]model.SatRange{{Start: 7, End: 8}})
)

// Empty checks a store that never saw a commit.
func Empty(t *testing.T, db ranges.Store) {
	ctx := context.Background()

	_, found, err := db.GetLastCommittedHeight(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = db.GetRanges(ctx, &opA0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

// Commit checks inserts, deletes and the height are applied together.
func Commit(t *testing.T, db ranges.Store) {
	ctx := context.Background()

	batch := ranges.NewBatch(0, 2, 0)
	batch.Insert(opA0, rangesA0)
	batch.Insert(opA1, rangesA1)
	require.NoError(t, db.Commit(ctx, batch))

	height, found, err := db.GetLastCommittedHeight(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, uint64(0), height)

	b, err := db.GetRanges(ctx, &opA1)
	require.NoError(t, err)
	assert.Equal(t, rangesA1, b)

	batch = ranges.NewBatch(5000, 1, 1)
	batch.Delete(opA0)
	batch.Insert(opB0, rangesB0)
	require.NoError(t, db.Commit(ctx, batch))

	height, found, err = db.GetLastCommittedHeight(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, uint64(5000), height)

	_, err = db.GetRanges(ctx, &opA0)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	b, err = db.GetRanges(ctx, &opB0)
	require.NoError(t, err)
	assert.Equal(t, rangesB0, b)

	b, err = db.GetRanges(ctx, &opA1)
	require.NoError(t, err)
	assert.Equal(t, rangesA1, b)
}

// DeleteThenInsert checks deletes are applied before inserts of the same batch.
func DeleteThenInsert(t *testing.T, db ranges.Store) {
	ctx := context.Background()

	batch := ranges.NewBatch(1, 1, 0)
	batch.Insert(opA0, rangesA0)
	require.NoError(t, db.Commit(ctx, batch))

	batch = ranges.NewBatch(2, 1, 1)
	batch.Delete(opA0)
	batch.Insert(opA0, rangesB0)
	require.NoError(t, db.Commit(ctx, batch))

	b, err := db.GetRanges(ctx, &opA0)
	require.NoError(t, err)
	assert.Equal(t, rangesB0, b)
}

// Overwrite checks a second insert of the same outpoint replaces the first.
func Overwrite(t *testing.T, db ranges.Store) {
	ctx := context.Background()

	batch := ranges.NewBatch(1, 1, 0)
	batch.Insert(opA0, rangesA0)
	require.NoError(t, db.Commit(ctx, batch))

	batch = ranges.NewBatch(2, 1, 0)
	batch.Insert(opA0, rangesA1)
	require.NoError(t, db.Commit(ctx, batch))

	b, err := db.GetRanges(ctx, &opA0)
	require.NoError(t, err)
	assert.Equal(t, rangesA1, b)
}

// EmptyRanges checks a zero value output is stored with no ranges.
func EmptyRanges(t *testing.T, db ranges.Store) {
	ctx := context.Background()

	batch := ranges.NewBatch(3, 1, 0)
	batch.Insert(opB0, []byte{})
	require.NoError(t, db.Commit(ctx, batch))

	b, err := db.GetRanges(ctx, &opB0)
	require.NoError(t, err)
	assert.Empty(t, b)

	decoded, err := model.DecodeSatRanges(b)
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

// EmptyBatch checks a batch without entries still moves the height.
func EmptyBatch(t *testing.T, db ranges.Store) {
	ctx := context.Background()

	require.NoError(t, db.Commit(ctx, ranges.NewBatch(10000, 0, 0)))

	height, found, err := db.GetLastCommittedHeight(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, uint64(10000), height)
}

func Checkpoint(t *testing.T, db ranges.Store) {
	ctx := context.Background()

	batch := ranges.NewBatch(1, 1, 0)
	batch.Insert(opA0, rangesA0)
	require.NoError(t, db.Commit(ctx, batch))

	require.NoError(t, db.Checkpoint(ctx))

	b, err := db.GetRanges(ctx, &opA0)
	require.NoError(t, err)
	assert.Equal(t, rangesA0, b)
}

func Health(t *testing.T, db ranges.Store) {
	status, _, err := db.Health(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 200, status)
}

// All runs every check, each against a fresh store from newStore.
func All(t *testing.T, newStore func(t *testing.T) ranges.Store) {
	checks := []struct {
		name string
		fn   func(t *testing.T, db ranges.Store)
	}{
		{"Empty", Empty},
		{"Commit", Commit},
		{"DeleteThenInsert", DeleteThenInsert},
		{"Overwrite", Overwrite},
		{"EmptyRanges", EmptyRanges},
		{"EmptyBatch", EmptyBatch},
		{"Checkpoint", Checkpoint},
		{"Health", Health},
	}

	for _, check := range checks {
		t.Run(check.name, func(t *testing.T) {
			db := newStore(t)

			t.Cleanup(func() {
				_ = db.Close(context.Background())
			})

			check.fn(t, db)
		})
	}
}

// Reopen checks committed state survives closing and reopening the store.
func Reopen(t *testing.T, open func(t *testing.T) ranges.Store) {
	ctx := context.Background()

	db := open(t)

	batch := ranges.NewBatch(2413341, 2, 0)
	batch.Insert(opA0, rangesA0)
	batch.Insert(opA1, rangesA1)
	require.NoError(t, db.Commit(ctx, batch))
	require.NoError(t, db.Checkpoint(ctx))
	require.NoError(t, db.Close(ctx))

	db = open(t)

	defer func() {
		_ = db.Close(ctx)
	}()

	height, found, err := db.GetLastCommittedHeight(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, uint64(2413341), height)

	b, err := db.GetRanges(ctx, &opA1)
	require.NoError(t, err)
	assert.Equal(t, rangesA1, b)
}
