package ranges

import (
	"encoding/binary"

	"github.com/kodemon/sats/errors"
	"github.com/kodemon/sats/model"
)

// key layout shared by the key value backends
var (
	HeightKey       = []byte("h")
	RangesKeyPrefix = []byte("r")
)

// RangesKey returns the key under which the ranges of outpoint are stored.
func RangesKey(outpoint *model.OutPoint) []byte {
	b := make([]byte, 0, len(RangesKeyPrefix)+model.OutPointSize)
	b = append(b, RangesKeyPrefix...)

	return outpoint.AppendBytes(b)
}

func EncodeHeight(height uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, height)
}

func DecodeHeight(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, errors.NewDataCorruptError("height should be 8 bytes long, got %d", len(b))
	}

	return binary.BigEndian.Uint64(b), nil
}
