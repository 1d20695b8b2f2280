package indexer

import (
	"testing"

	"github.com/kodemon/sats/errors"
	"github.com/kodemon/sats/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeQueue(t *testing.T) {
	q := newRangeQueue(2)

	_, ok := q.PopFront()
	require.False(t, ok)

	q.PushBack(model.SatRange{Start: 0, End: 10}, model.SatRange{Start: 20, End: 30})
	assert.Equal(t, 2, q.Len())

	r, ok := q.PopFront()
	require.True(t, ok)
	assert.Equal(t, model.SatRange{Start: 0, End: 10}, r)

	front, rest := r.Split(4)
	assert.Equal(t, model.SatRange{Start: 0, End: 4}, front)

	q.PushFront(rest)
	assert.Equal(t, []model.SatRange{{Start: 4, End: 10}, {Start: 20, End: 30}}, q.Remaining())

	q.Reset()
	assert.Equal(t, 0, q.Len())

	// pushing onto the front of a queue nothing was popped from
	q.PushBack(model.SatRange{Start: 1, End: 2})
	q.PushFront(model.SatRange{Start: 0, End: 1})
	assert.Equal(t, []model.SatRange{{Start: 0, End: 1}, {Start: 1, End: 2}}, q.Remaining())
}

func TestRangeQueueAppendDecoded(t *testing.T) {
	q := newRangeQueue(0)

	ranges := []model.SatRange{{Start: 100, End: 150}, {Start: 200, End: 260}}
	require.NoError(t, q.AppendDecoded(model.EncodeSatRanges(ranges)))
	require.NoError(t, q.AppendDecoded(nil))

	assert.Equal(t, ranges, q.Remaining())

	require.Error(t, q.AppendDecoded([]byte{1, 2, 3}))
	assert.Equal(t, 2, q.Len())

	empty := model.EncodeSatRanges([]model.SatRange{{Start: 300, End: 310}, {Start: 400, End: 400}})
	err := q.AppendDecoded(empty)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrDataCorrupt))
	assert.Equal(t, ranges, q.Remaining())
}
