package indexer

import (
	"context"
	"testing"

	"github.com/kodemon/sats/errors"
	"github.com/kodemon/sats/model"
	"github.com/kodemon/sats/services/blocksource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPrefetcherOrder(t *testing.T) {
	chain := newTestChain()
	for i := uint64(0); i < 10; i++ {
		chain.add(model.NewTestCoinbaseTx(i, 50*coin))
	}

	for _, depth := range []int{0, 1, 3, 16} {
		p := newPrefetcher(context.Background(), chain.source, 2, 8, depth)

		for height := uint64(2); height <= 8; height++ {
			block, err := p.Next(context.Background())
			require.NoError(t, err)
			require.NotNil(t, block)
			assert.Equal(t, height, block.Height, "depth %d", depth)
		}

		block, err := p.Next(context.Background())
		require.NoError(t, err)
		assert.Nil(t, block)

		p.Close()
	}
}

func TestPrefetcherError(t *testing.T) {
	block := model.NewTestBlock(0, nil, model.NewTestCoinbaseTx(0, 50*coin))

	source := &blocksource.Mock{}
	source.On("GetBlock", mock.Anything, uint64(0)).Return(block, nil)
	source.On("GetBlock", mock.Anything, uint64(1)).Return(nil, errors.NewServiceUnavailableError("node down"))
	source.On("GetBlock", mock.Anything, mock.Anything).Return(nil, errors.NewBlockNotFoundError("not found")).Maybe()

	p := newPrefetcher(context.Background(), source, 0, 3, 2)
	defer p.Close()

	b, err := p.Next(context.Background())
	require.NoError(t, err)
	assert.Same(t, block, b)

	_, err = p.Next(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrServiceUnavailable))
}

func TestPrefetcherCancel(t *testing.T) {
	chain := newTestChain()
	for i := uint64(0); i < 6; i++ {
		chain.add(model.NewTestCoinbaseTx(i, 50*coin))
	}

	ctx, cancel := context.WithCancel(context.Background())

	p := newPrefetcher(ctx, chain.source, 0, 5, 2)
	defer p.Close()

	cancel()

	// blocks fetched before the cancel may still be handed out
	for i := 0; i < 6; i++ {
		block, err := p.Next(ctx)
		if err != nil {
			assert.True(t, errors.IsContextError(err))
			return
		}

		if block == nil {
			return
		}
	}
}
