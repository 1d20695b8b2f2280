// Package ranges defines the checkpointed store that persists the sat ranges of
// unspent outputs together with the height of the last committed block.
package ranges

import (
	"context"

	"github.com/kodemon/sats/model"
)

// Store persists two things: the OutPoint -> encoded ranges table and the
// height of the last block whose effects are fully contained in it.
type Store interface {
	Health(ctx context.Context, checkLiveness bool) (int, string, error)

	// GetLastCommittedHeight returns found=false when nothing was ever committed.
	GetLastCommittedHeight(ctx context.Context) (height uint64, found bool, err error)

	// GetRanges returns the encoded ranges of outpoint, errors.ErrNotFound if absent.
	GetRanges(ctx context.Context, outpoint *model.OutPoint) ([]byte, error)

	// Commit applies the batch deletes, then its inserts, then stores the batch
	// height, all in one transaction. Either everything is applied or nothing is.
	Commit(ctx context.Context, batch *Batch) error

	// Checkpoint runs the backend's durability maintenance, e.g. truncating a write ahead log.
	Checkpoint(ctx context.Context) error

	Close(ctx context.Context) error
}

type Entry struct {
	OutPoint model.OutPoint
	Ranges   []byte
}

// Batch is the unit of a checkpoint commit.
type Batch struct {
	Height  uint64
	Inserts []Entry
	Deletes []model.OutPoint
}

func NewBatch(height uint64, insertHint, deleteHint int) *Batch {
	return &Batch{
		Height:  height,
		Inserts: make([]Entry, 0, insertHint),
		Deletes: make([]model.OutPoint, 0, deleteHint),
	}
}

func (b *Batch) Insert(outpoint model.OutPoint, ranges []byte) {
	b.Inserts = append(b.Inserts, Entry{OutPoint: outpoint, Ranges: ranges})
}

func (b *Batch) Delete(outpoint model.OutPoint) {
	b.Deletes = append(b.Deletes, outpoint)
}

func (b *Batch) Size() int {
	return len(b.Inserts) + len(b.Deletes)
}
