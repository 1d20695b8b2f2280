// Package blocksource provides the blocks the indexer consumes, by height.
package blocksource

import (
	"context"

	"github.com/kodemon/sats/model"
)

type Source interface {
	Health(ctx context.Context, checkLiveness bool) (int, string, error)

	// GetChainHeight returns the height of the current chain tip.
	GetChainHeight(ctx context.Context) (uint64, error)

	// GetBlock returns the fully parsed block at height on the active chain.
	GetBlock(ctx context.Context, height uint64) (*model.Block, error)
}
