package model

import (
	"testing"

	"github.com/bsv-blockchain/go-chaincfg"
	"github.com/stretchr/testify/assert"
)

func TestSubsidy(t *testing.T) {
	s := NewSubsidySchedule(&chaincfg.MainNetParams)

	tests := []struct {
		height  uint64
		subsidy uint64
	}{
		{0, 5_000_000_000},
		{209_999, 5_000_000_000},
		{210_000, 2_500_000_000},
		{420_000, 1_250_000_000},
		{32 * 210_000, 1},
		{33 * 210_000, 0},
		{64 * 210_000, 0},
		{100 * 210_000, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.subsidy, s.Subsidy(tt.height), "height %d", tt.height)
	}
}

func TestFirstMintedAt(t *testing.T) {
	s := NewSubsidySchedule(&chaincfg.MainNetParams)

	assert.Equal(t, uint64(0), s.FirstMintedAt(0))
	assert.Equal(t, uint64(5_000_000_000), s.FirstMintedAt(1))
	assert.Equal(t, uint64(1_050_000_000_000_000), s.FirstMintedAt(210_000))
	assert.Equal(t, uint64(1_050_002_500_000_000), s.FirstMintedAt(210_001))

	// total supply once the subsidy reaches zero
	assert.Equal(t, uint64(2_099_999_997_690_000), s.FirstMintedAt(40*210_000))
	assert.Equal(t, s.FirstMintedAt(40*210_000), s.FirstMintedAt(1_000*210_000))
}

func TestFirstMintedAtMatchesRunningSum(t *testing.T) {
	s := NewSubsidySchedule(&chaincfg.RegressionNetParams)
	assert.Equal(t, uint64(150), s.Interval())

	var sum uint64

	for h := uint64(0); h < 150*70; h++ {
		assert.Equal(t, sum, s.FirstMintedAt(h), "height %d", h)
		sum += s.Subsidy(h)
	}
}

func TestSubsidyScheduleDefaults(t *testing.T) {
	assert.Equal(t, uint64(210_000), NewSubsidySchedule(nil).Interval())
	assert.Equal(t, uint64(210_000), NewSubsidySchedule(&chaincfg.Params{}).Interval())
}
