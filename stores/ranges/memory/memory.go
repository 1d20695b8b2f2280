// Package memory is an in-process ranges.Store, used in tests and for short lived runs.
package memory

import (
	"context"
	"net/http"
	"sync"

	"github.com/dolthub/swiss"
	"github.com/kodemon/sats/errors"
	"github.com/kodemon/sats/model"
	"github.com/kodemon/sats/stores/ranges"
	"github.com/kodemon/sats/ulogger"
)

type Memory struct {
	logger      ulogger.Logger
	mu          sync.RWMutex
	ranges      *swiss.Map[model.OutPoint, []byte]
	height      uint64
	heightFound bool
	closed      bool
}

func New(logger ulogger.Logger) *Memory {
	return &Memory{
		logger: logger,
		ranges: swiss.NewMap[model.OutPoint, []byte](1024),
	}
}

func (m *Memory) Health(_ context.Context, _ bool) (int, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return http.StatusServiceUnavailable, "Memory Store closed", errors.ErrStorageNotStarted
	}

	return http.StatusOK, "Memory Store available", nil
}

func (m *Memory) GetLastCommittedHeight(_ context.Context) (uint64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.height, m.heightFound, nil
}

func (m *Memory) GetRanges(_ context.Context, outpoint *model.OutPoint) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.ranges.Get(*outpoint)
	if !ok {
		return nil, errors.NewNotFoundError("[Memory][GetRanges] %s not found", outpoint)
	}

	return b, nil
}

func (m *Memory) Commit(ctx context.Context, batch *ranges.Batch) error {
	if err := ctx.Err(); err != nil {
		return errors.NewStorageError("[Memory][Commit] context done before commit of height %d", batch.Height, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return errors.NewStorageError("[Memory][Commit] store is closed")
	}

	for _, outpoint := range batch.Deletes {
		m.ranges.Delete(outpoint)
	}

	for _, entry := range batch.Inserts {
		// copy, the caller may reuse the slice
		m.ranges.Put(entry.OutPoint, append([]byte(nil), entry.Ranges...))
	}

	m.height = batch.Height
	m.heightFound = true

	return nil
}

func (m *Memory) Checkpoint(_ context.Context) error {
	return nil
}

func (m *Memory) Close(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true

	return nil
}

// Count returns the number of stored outputs.
func (m *Memory) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.ranges.Count()
}

// Iter calls fn for every stored output until fn returns true.
func (m *Memory) Iter(fn func(outpoint model.OutPoint, ranges []byte) (stop bool)) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	m.ranges.Iter(fn)
}
