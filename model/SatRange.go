package model

import (
	"encoding/binary"
	"fmt"

	"github.com/kodemon/sats/errors"
)

const (
	// SatRangeSize is the length of one encoded range.
	SatRangeSize = 11

	startBits = 51
	deltaBits = SatRangeSize*8 - startBits

	// MaxSat is the exclusive upper bound for a sat sequence number.
	MaxSat = uint64(1) << startBits

	// MaxRangeLength is the exclusive upper bound for the length of a single range.
	MaxRangeLength = uint64(1) << deltaBits

	startMask = MaxSat - 1
)

// SatRange is the half open interval [Start, End) of sat sequence numbers.
type SatRange struct {
	Start uint64
	End   uint64
}

func (r SatRange) Len() uint64 {
	return r.End - r.Start
}

func (r SatRange) Validate() error {
	if r.Start >= r.End {
		return errors.NewInvalidArgumentError("range %s is empty", r)
	}

	if r.Start >= MaxSat {
		return errors.NewInvalidArgumentError("range %s starts beyond %d", r, MaxSat)
	}

	if r.Len() >= MaxRangeLength {
		return errors.NewInvalidArgumentError("range %s is longer than %d", r, MaxRangeLength)
	}

	return nil
}

// Split cuts the range after n sats, returning [Start, Start+n) and [Start+n, End).
func (r SatRange) Split(n uint64) (SatRange, SatRange) {
	return SatRange{r.Start, r.Start + n}, SatRange{r.Start + n, r.End}
}

func (r SatRange) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}

// AppendBytes appends the 11 byte encoding of r to b. The encoding is the
// lowest 11 bytes, little endian, of start | (end-start) << 51.
func (r SatRange) AppendBytes(b []byte) []byte {
	delta := r.End - r.Start
	lo := r.Start&startMask | delta<<startBits
	hi := delta >> (64 - startBits)

	b = binary.LittleEndian.AppendUint64(b, lo)

	return append(b, byte(hi), byte(hi>>8), byte(hi>>16))
}

func (r SatRange) Bytes() []byte {
	return r.AppendBytes(make([]byte, 0, SatRangeSize))
}

// NewSatRangeFromBytes decodes exactly one 11 byte range.
func NewSatRangeFromBytes(b []byte) (SatRange, error) {
	if len(b) != SatRangeSize {
		return SatRange{}, errors.NewDataCorruptError("range should be %d bytes long, got %d", SatRangeSize, len(b))
	}

	return decodeSatRange(b), nil
}

func decodeSatRange(b []byte) SatRange {
	var start, delta uint64

	// bytes 0..6 hold the start in their lowest 51 bits
	for i := 6; i >= 0; i-- {
		start = start<<8 | uint64(b[i])
	}

	// bytes 6..10 hold the length shifted up by 3 bits
	for i := 10; i >= 6; i-- {
		delta = delta<<8 | uint64(b[i])
	}

	start &= startMask
	delta >>= startBits - 48

	return SatRange{Start: start, End: start + delta}
}

// EncodeSatRanges concatenates the encodings of ranges, preserving order.
func EncodeSatRanges(ranges []SatRange) []byte {
	b := make([]byte, 0, len(ranges)*SatRangeSize)

	for _, r := range ranges {
		b = r.AppendBytes(b)
	}

	return b
}

// DecodeSatRanges decodes a concatenation of 11 byte ranges.
func DecodeSatRanges(b []byte) ([]SatRange, error) {
	ranges := make([]SatRange, 0, len(b)/SatRangeSize)

	return AppendDecodedSatRanges(ranges, b)
}

// AppendDecodedSatRanges decodes b and appends the ranges to dst.
func AppendDecodedSatRanges(dst []SatRange, b []byte) ([]SatRange, error) {
	if len(b)%SatRangeSize != 0 {
		return dst, errors.NewDataCorruptError("range list length %d is not a multiple of %d", len(b), SatRangeSize)
	}

	for i := 0; i < len(b); i += SatRangeSize {
		dst = append(dst, decodeSatRange(b[i:i+SatRangeSize]))
	}

	return dst, nil
}

// SumSatRanges returns the total number of sats covered by ranges.
func SumSatRanges(ranges []SatRange) uint64 {
	var total uint64

	for _, r := range ranges {
		total += r.Len()
	}

	return total
}
