package indexer

import (
	"context"

	"github.com/kodemon/sats/errors"
	"github.com/kodemon/sats/model"
	"github.com/kodemon/sats/services/blocksource"
	"golang.org/x/sync/errgroup"
)

type fetchResult struct {
	block *model.Block
	err   error
}

// prefetcher fetches up to depth blocks ahead of the one being indexed and hands
// them out strictly in height order.
type prefetcher struct {
	pending chan chan fetchResult
	cancel  context.CancelFunc
	g       *errgroup.Group
}

func newPrefetcher(ctx context.Context, source blocksource.Source, from, to uint64, depth int) *prefetcher {
	if depth < 1 {
		depth = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	g, gCtx := errgroup.WithContext(ctx)

	p := &prefetcher{
		pending: make(chan chan fetchResult, depth),
		cancel:  cancel,
		g:       g,
	}

	g.Go(func() error {
		defer close(p.pending)

		for height := from; height <= to; height++ {
			slot := make(chan fetchResult, 1)

			select {
			case p.pending <- slot:
			case <-gCtx.Done():
				return nil
			}

			h := height

			g.Go(func() error {
				block, err := source.GetBlock(gCtx, h)
				slot <- fetchResult{block: block, err: err}

				return nil
			})

			if height == to {
				// to may be the maximum uint64
				break
			}
		}

		return nil
	})

	return p
}

// Next returns the next block, or nil once all heights have been handed out.
func (p *prefetcher) Next(ctx context.Context) (*model.Block, error) {
	select {
	case slot, ok := <-p.pending:
		if !ok {
			return nil, nil
		}

		select {
		case r := <-slot:
			return r.block, r.err
		case <-ctx.Done():
			return nil, errors.NewContextCanceledError("[prefetcher] waiting for block", ctx.Err())
		}

	case <-ctx.Done():
		return nil, errors.NewContextCanceledError("[prefetcher] waiting for block", ctx.Err())
	}
}

// Close stops outstanding fetches and waits for them to return.
func (p *prefetcher) Close() {
	p.cancel()
	_ = p.g.Wait()
}
