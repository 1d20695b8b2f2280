// Package indexer replays the chain block by block and assigns every minted sat
// to the output currently holding it, as ordered lists of half-open ranges.
//
// Ranges of outputs created since the last checkpoint live in a write-back cache.
// Every checkpoint moves the cache and the set of store-resident outputs spent
// since into the ranges store in one atomic commit, together with the height.
package indexer

import (
	"context"
	"net/http"
	"time"

	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/dolthub/swiss"
	"github.com/kodemon/sats/errors"
	"github.com/kodemon/sats/model"
	"github.com/kodemon/sats/services/blocksource"
	"github.com/kodemon/sats/settings"
	"github.com/kodemon/sats/stores/ranges"
	"github.com/kodemon/sats/ulogger"
	"github.com/kodemon/sats/util/health"
	"github.com/ordishs/gocore"
)

var stat = gocore.NewStat("indexer")

// Stats counts the work done by an Indexer since it was created.
type Stats struct {
	BlocksIndexed uint64
	Outputs       uint64
	Ranges        uint64
	Inputs        uint64
	LostSats      uint64
	Commits       uint64
}

type Indexer struct {
	logger   ulogger.Logger
	settings *settings.Settings
	store    ranges.Store
	source   blocksource.Source
	subsidy  *model.SubsidySchedule

	// state since the last checkpoint, owned by the goroutine running Update
	cache *swiss.Map[model.OutPoint, []byte]
	spent []model.OutPoint

	// dirty is set while a block is partially applied to the cache
	dirty bool

	coinbaseQueue *rangeQueue
	inputQueue    *rangeQueue
	assigned      []model.SatRange

	stats Stats
}

func New(logger ulogger.Logger, tSettings *settings.Settings, store ranges.Store, source blocksource.Source) *Indexer {
	initPrometheusMetrics()

	cacheSizeHint := tSettings.Indexer.CacheSizeHint
	if cacheSizeHint <= 0 {
		cacheSizeHint = 1024
	}

	return &Indexer{
		logger:        logger,
		settings:      tSettings,
		store:         store,
		source:        source,
		subsidy:       model.NewSubsidySchedule(tSettings.ChainCfgParams),
		cache:         swiss.NewMap[model.OutPoint, []byte](uint32(cacheSizeHint)),
		spent:         make([]model.OutPoint, 0, 1024),
		coinbaseQueue: newRangeQueue(64),
		inputQueue:    newRangeQueue(64),
		assigned:      make([]model.SatRange, 0, 16),
	}
}

func (idx *Indexer) Health(ctx context.Context, checkLiveness bool) (int, string, error) {
	if checkLiveness {
		return http.StatusOK, "OK", nil
	}

	var checks []health.Check

	if idx.store != nil {
		checks = append(checks, health.Check{Name: "RangesStore", Check: idx.store.Health})
	}

	if idx.source != nil {
		checks = append(checks, health.Check{Name: "BlockSource", Check: idx.source.Health})
	}

	return health.CheckAll(ctx, checkLiveness, checks)
}

// Stats returns the counters of the work done so far.
func (idx *Indexer) Stats() Stats {
	return idx.stats
}

// Start indexes up to the chain tip. When following, it keeps polling the block
// source for new blocks until ctx is cancelled.
func (idx *Indexer) Start(ctx context.Context) error {
	pollInterval := idx.settings.Indexer.PollInterval
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}

	for {
		if err := idx.Update(ctx); err != nil {
			if ctx.Err() != nil && errors.IsContextError(err) {
				idx.logger.Infof("[Start] stopped: %v", err)
				return nil
			}

			category := errors.GetErrorCategory(err)
			prometheusIndexerErrors.WithLabelValues(category).Inc()

			if errors.IsIntegrityError(err) {
				idx.logger.Errorf("[Start] the ranges store no longer agrees with the chain, it has to be rebuilt from scratch: %v", err)
			}

			return err
		}

		if !idx.settings.Indexer.Follow {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(pollInterval):
		}
	}
}

// Update indexes every block from the one after the last committed height up to
// the chain tip, checkpointing on the way, and finishes with a final commit.
func (idx *Indexer) Update(ctx context.Context) error {
	// anything not committed by a previous run is recomputed from the store
	idx.reset()

	lastHeight, found, err := idx.store.GetLastCommittedHeight(ctx)
	if err != nil {
		return err
	}

	var (
		nextHeight    uint64
		lastProcessed uint64
		processed     bool
	)

	if found {
		nextHeight = lastHeight + 1
		prometheusIndexerCommittedHeight.Set(float64(lastHeight))
	}

	for {
		tip, err := idx.source.GetChainHeight(ctx)
		if err != nil {
			return errors.NewServiceUnavailableError("[Update] failed to get chain height", err)
		}

		prometheusIndexerChainTip.Set(float64(tip))

		if nextHeight > tip {
			break
		}

		idx.logger.Infof("[Update] indexing blocks %d to %d", nextHeight, tip)

		last, n, err := idx.indexRange(ctx, nextHeight, tip)
		if n > 0 {
			lastProcessed = last
			processed = true
			nextHeight = last + 1
		}

		if err != nil {
			if processed && !idx.dirty && errors.IsContextError(err) {
				// blocks fully processed before the interruption are still consistent
				if commitErr := idx.commit(context.WithoutCancel(ctx), lastProcessed); commitErr != nil {
					return errors.Join(err, commitErr)
				}
			}

			return err
		}
	}

	switch {
	case processed:
		return idx.commit(ctx, lastProcessed)
	case found:
		return idx.commit(ctx, lastHeight)
	default:
		return nil
	}
}

// indexRange indexes blocks from..to and returns the last height fully processed
// and the number of blocks processed.
func (idx *Indexer) indexRange(ctx context.Context, from, to uint64) (uint64, uint64, error) {
	p := newPrefetcher(ctx, idx.source, from, to, idx.settings.Indexer.PrefetchBlocks)
	defer p.Close()

	var (
		last     uint64
		n        uint64
		prevHash string
	)

	for height := from; height <= to; height++ {
		if err := ctx.Err(); err != nil {
			return last, n, errors.NewContextCanceledError("[Update] interrupted before block %d", height, err)
		}

		block, err := p.Next(ctx)
		if err != nil {
			return last, n, err
		}

		if block == nil {
			return last, n, errors.NewBlockNotFoundError("[Update] block source returned no block %d", height)
		}

		if block.Height != height {
			return last, n, errors.NewBlockInvalidError("[Update] requested block %d, got %d", height, block.Height)
		}

		if prevHash != "" && block.Header != nil && block.Header.HashPrevBlock != nil && block.Header.HashPrevBlock.String() != prevHash {
			return last, n, errors.NewBlockInvalidError("[Update] block %s does not extend %s, chain reorganizations are not supported", block, prevHash)
		}

		if err = idx.indexBlock(ctx, block); err != nil {
			return last, n, err
		}

		last = height
		n++
		prevHash = block.Hash().String()

		if height%1000 == 0 || height == to {
			idx.logger.Infof("[Update] %d / %d, %d outputs, %d ranges, cache %d", height, to, idx.stats.Outputs, idx.stats.Ranges, idx.cache.Count())
		}

		if idx.shouldCheckpoint(height) {
			if err = idx.commit(ctx, height); err != nil {
				return last, n, err
			}
		}

		if height == to {
			break
		}
	}

	return last, n, nil
}

// shouldCheckpoint reports whether the effects up to height must be committed
// before indexing the next block.
func (idx *Indexer) shouldCheckpoint(height uint64) bool {
	if height == idx.settings.Indexer.MilestoneHeight {
		return true
	}

	interval := idx.settings.Indexer.CheckpointInterval

	return interval > 0 && height > 0 && height%interval == 0
}

// commit moves the write-back cache and the spent set into the store and
// advances the durable height. The in-memory state is only cleared once the
// store has accepted the whole batch.
func (idx *Indexer) commit(ctx context.Context, height uint64) error {
	start := gocore.CurrentTime()
	defer stat.NewStat("commit").AddTime(start)

	batch := ranges.NewBatch(height, idx.cache.Count(), len(idx.spent))

	batch.Deletes = append(batch.Deletes, idx.spent...)

	idx.cache.Iter(func(outpoint model.OutPoint, b []byte) bool {
		batch.Insert(outpoint, b)
		return false
	})

	if err := idx.store.Commit(ctx, batch); err != nil {
		return errors.NewStorageError("[commit] failed to commit %d inserts and %d deletes at height %d", len(batch.Inserts), len(batch.Deletes), height, err)
	}

	idx.cache.Clear()
	idx.spent = idx.spent[:0]
	idx.stats.Commits++

	prometheusIndexerCommit.Observe(time.Since(start).Seconds())
	prometheusIndexerCommitSize.Observe(float64(batch.Size()))
	prometheusIndexerCommittedHeight.Set(float64(height))
	prometheusIndexerCacheSize.Set(0)

	idx.logger.Infof("[commit] committed height %d: %d inserts, %d deletes in %s", height, len(batch.Inserts), len(batch.Deletes), time.Since(start))

	return nil
}

// indexBlock assigns the ranges of every output created by block. Non coinbase
// transactions go first in block order, their fees join the subsidy in the
// coinbase queue and the coinbase is processed last.
func (idx *Indexer) indexBlock(ctx context.Context, block *model.Block) error {
	start := gocore.CurrentTime()
	defer func() {
		stat.NewStat("indexBlock").AddTime(start)
		prometheusIndexerIndexBlock.Observe(time.Since(start).Seconds())
	}()

	if err := block.Valid(); err != nil {
		return err
	}

	idx.dirty = true

	height := block.Height

	idx.coinbaseQueue.Reset()

	if subsidy := idx.subsidy.Subsidy(height); subsidy > 0 {
		first := idx.subsidy.FirstMintedAt(height)
		minted := model.SatRange{Start: first, End: first + subsidy}

		if err := minted.Validate(); err != nil {
			return errors.NewProcessingError("[indexBlock][%d] subsidy", height, err)
		}

		idx.coinbaseQueue.PushBack(minted)
	}

	for _, tx := range block.Transactions[1:] {
		idx.inputQueue.Reset()

		for _, input := range tx.Inputs {
			outpoint := model.NewOutPoint(input.PreviousTxIDChainHash(), input.PreviousTxOutIndex)

			b, err := idx.resolveInput(ctx, &outpoint)
			if err != nil {
				return errors.NewProcessingError("[indexBlock][%d] tx %s", height, tx.TxID(), err)
			}

			if err = idx.inputQueue.AppendDecoded(b); err != nil {
				return errors.NewDataCorruptError("[indexBlock][%d] ranges of %s", height, &outpoint, err)
			}
		}

		if err := idx.indexTransactionSats(tx, idx.inputQueue); err != nil {
			return errors.NewProcessingError("[indexBlock][%d] tx %s", height, tx.TxID(), err)
		}

		// fees
		idx.coinbaseQueue.PushBack(idx.inputQueue.Remaining()...)
	}

	coinbase := block.CoinbaseTx()

	if err := idx.indexTransactionSats(coinbase, idx.coinbaseQueue); err != nil {
		return errors.NewProcessingError("[indexBlock][%d] coinbase %s", height, coinbase.TxID(), err)
	}

	if idx.coinbaseQueue.Len() > 0 {
		lost := model.SumSatRanges(idx.coinbaseQueue.Remaining())

		idx.stats.LostSats += lost
		prometheusIndexerLostSats.Add(float64(lost))

		idx.logger.Debugf("[indexBlock][%d] coinbase left %d sats in %d ranges unclaimed", height, lost, idx.coinbaseQueue.Len())
	}

	idx.dirty = false

	idx.stats.BlocksIndexed++
	prometheusIndexerBlocks.Inc()
	prometheusIndexerTransactions.Add(float64(len(block.Transactions)))
	prometheusIndexerCacheSize.Set(float64(idx.cache.Count()))

	return nil
}

func (idx *Indexer) reset() {
	idx.cache.Clear()
	idx.spent = idx.spent[:0]
	idx.dirty = false
}

// resolveInput returns the encoded ranges of a spent output. Outputs created since
// the last checkpoint are taken out of the cache, older ones are read from the
// store and remembered for deletion at the next checkpoint.
func (idx *Indexer) resolveInput(ctx context.Context, outpoint *model.OutPoint) ([]byte, error) {
	idx.stats.Inputs++

	if b, ok := idx.cache.Get(*outpoint); ok {
		idx.cache.Delete(*outpoint)
		prometheusIndexerInputsCache.Inc()

		return b, nil
	}

	b, err := idx.store.GetRanges(ctx, outpoint)
	if err != nil {
		return nil, err
	}

	idx.spent = append(idx.spent, *outpoint)
	prometheusIndexerInputsStore.Inc()

	return b, nil
}

// indexTransactionSats hands the ranges in queue to the outputs of tx in order,
// splitting a range when an output needs less than all of it. Whatever is left
// in queue afterwards belongs to no output of tx.
func (idx *Indexer) indexTransactionSats(tx *bt.Tx, queue *rangeQueue) error {
	txID := tx.TxIDChainHash()

	for vout, output := range tx.Outputs {
		idx.assigned = idx.assigned[:0]

		remaining := output.Satoshis

		for remaining > 0 {
			r, ok := queue.PopFront()
			if !ok {
				return errors.NewConservationError("[indexTransactionSats] %s:%d needs %d more sats than the inputs carry", txID, vout, remaining)
			}

			if r.Len() > remaining {
				var rest model.SatRange

				r, rest = r.Split(remaining)
				queue.PushFront(rest)
			}

			idx.assigned = append(idx.assigned, r)
			remaining -= r.Len()
		}

		idx.cache.Put(model.NewOutPoint(txID, uint32(vout)), model.EncodeSatRanges(idx.assigned))

		idx.stats.Outputs++
		idx.stats.Ranges += uint64(len(idx.assigned))
		prometheusIndexerRanges.Add(float64(len(idx.assigned)))
	}

	prometheusIndexerOutputs.Add(float64(len(tx.Outputs)))

	return nil
}
