package blocksource

import (
	"context"
	"net/http"
	"sync"

	"github.com/kodemon/sats/errors"
	"github.com/kodemon/sats/model"
)

// Memory serves blocks held in memory. Blocks must be appended in height order.
type Memory struct {
	mu     sync.RWMutex
	blocks []*model.Block
}

func NewMemory(blocks ...*model.Block) *Memory {
	return &Memory{
		blocks: blocks,
	}
}

// Append extends the chain by one block.
func (m *Memory) Append(block *model.Block) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blocks = append(m.blocks, block)
}

func (m *Memory) Health(_ context.Context, _ bool) (int, string, error) {
	return http.StatusOK, "Memory block source", nil
}

func (m *Memory) GetChainHeight(_ context.Context) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.blocks) == 0 {
		return 0, errors.NewBlockNotFoundError("[BlockSource] memory chain is empty")
	}

	return uint64(len(m.blocks) - 1), nil
}

func (m *Memory) GetBlock(ctx context.Context, height uint64) (*model.Block, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewContextCanceledError("[BlockSource][GetBlock][%d]", height, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if height >= uint64(len(m.blocks)) {
		return nil, errors.NewBlockNotFoundError("[BlockSource][GetBlock][%d] beyond tip %d", height, len(m.blocks)-1)
	}

	return m.blocks[height], nil
}
