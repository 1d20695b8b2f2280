package blocksource

import (
	"context"

	"github.com/kodemon/sats/model"
	"github.com/stretchr/testify/mock"
)

// Mock implements the Source interface for testing purposes
type Mock struct {
	mock.Mock
}

// Health mocks the Health method
func (m *Mock) Health(ctx context.Context, checkLiveness bool) (int, string, error) {
	args := m.Called(ctx, checkLiveness)

	if args.Error(2) != nil {
		return 0, "", args.Error(2)
	}

	return args.Int(0), args.String(1), args.Error(2)
}

// GetChainHeight mocks the GetChainHeight method
func (m *Mock) GetChainHeight(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)

	if args.Error(1) != nil {
		return 0, args.Error(1)
	}

	return args.Get(0).(uint64), nil
}

// GetBlock mocks the GetBlock method
func (m *Mock) GetBlock(ctx context.Context, height uint64) (*model.Block, error) {
	args := m.Called(ctx, height)

	if args.Error(1) != nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*model.Block), nil
}
