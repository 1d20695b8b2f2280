package model

import (
	"github.com/bsv-blockchain/go-chaincfg"
)

const (
	// SatsPerCoin is the number of sats in one coin.
	SatsPerCoin = 100_000_000

	// InitialSubsidy is the block reward of the first halving epoch.
	InitialSubsidy = 50 * SatsPerCoin

	defaultSubsidyReductionInterval = 210_000
)

// SubsidySchedule computes block subsidies and the sequence number of the
// first sat minted at a height.
type SubsidySchedule struct {
	interval uint64
}

func NewSubsidySchedule(params *chaincfg.Params) *SubsidySchedule {
	interval := uint64(defaultSubsidyReductionInterval)

	if params != nil && params.SubsidyReductionInterval > 0 {
		interval = uint64(params.SubsidyReductionInterval)
	}

	return &SubsidySchedule{interval: interval}
}

func (s *SubsidySchedule) Interval() uint64 {
	return s.interval
}

// Subsidy returns the number of sats minted by the coinbase at height.
func (s *SubsidySchedule) Subsidy(height uint64) uint64 {
	return subsidyForEpoch(height / s.interval)
}

// FirstMintedAt returns the sum of the subsidies of all blocks below height,
// which is the sequence number of the first sat minted at height.
func (s *SubsidySchedule) FirstMintedAt(height uint64) uint64 {
	var total uint64

	for epoch := uint64(0); epoch*s.interval < height; epoch++ {
		subsidy := subsidyForEpoch(epoch)
		if subsidy == 0 {
			break
		}

		blocks := height - epoch*s.interval
		if blocks > s.interval {
			blocks = s.interval
		}

		total += blocks * subsidy
	}

	return total
}

func subsidyForEpoch(epoch uint64) uint64 {
	if epoch >= 64 {
		return 0
	}

	return InitialSubsidy >> epoch
}
