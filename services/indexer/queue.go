package indexer

import (
	"github.com/kodemon/sats/errors"
	"github.com/kodemon/sats/model"
)

// rangeQueue is a FIFO of sat ranges that also allows pushing back onto the front.
type rangeQueue struct {
	ranges []model.SatRange
	head   int
}

func newRangeQueue(capacity int) *rangeQueue {
	return &rangeQueue{
		ranges: make([]model.SatRange, 0, capacity),
	}
}

func (q *rangeQueue) Len() int {
	return len(q.ranges) - q.head
}

func (q *rangeQueue) PushBack(r ...model.SatRange) {
	q.ranges = append(q.ranges, r...)
}

func (q *rangeQueue) PushFront(r model.SatRange) {
	if q.head > 0 {
		q.head--
		q.ranges[q.head] = r

		return
	}

	q.ranges = append(q.ranges, model.SatRange{})
	copy(q.ranges[1:], q.ranges)
	q.ranges[0] = r
}

func (q *rangeQueue) PopFront() (model.SatRange, bool) {
	if q.head == len(q.ranges) {
		return model.SatRange{}, false
	}

	r := q.ranges[q.head]
	q.head++

	return r, true
}

// Remaining returns the ranges still queued, in order. The slice aliases the queue.
func (q *rangeQueue) Remaining() []model.SatRange {
	return q.ranges[q.head:]
}

// AppendDecoded decodes encoded range bytes onto the back of the queue. The
// queue is left unchanged if any decoded range is invalid.
func (q *rangeQueue) AppendDecoded(b []byte) error {
	n := len(q.ranges)

	ranges, err := model.AppendDecodedSatRanges(q.ranges, b)
	if err != nil {
		return err
	}

	for _, r := range ranges[n:] {
		if err = r.Validate(); err != nil {
			q.ranges = ranges[:n]
			return errors.NewDataCorruptError("stored range %s", r, err)
		}
	}

	q.ranges = ranges

	return nil
}

func (q *rangeQueue) Reset() {
	q.ranges = q.ranges[:0]
	q.head = 0
}
