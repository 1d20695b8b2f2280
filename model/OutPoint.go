package model

import (
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/kodemon/sats/errors"
)

// OutPointSize is the length of an encoded OutPoint: 32 byte txid + 4 byte index.
const OutPointSize = 32 + 4

// OutPoint identifies a transaction output. It is the key under which the
// ranges of that output are stored.
type OutPoint struct {
	// TxID contains the transaction ID in internal byte order
	TxID chainhash.Hash

	// Index represents the output index in the transaction
	Index uint32
}

func NewOutPoint(txID *chainhash.Hash, index uint32) OutPoint {
	return OutPoint{TxID: *txID, Index: index}
}

// NewOutPointFromBytes decodes the 36 byte binary form.
// Binary format is:
// 32 bytes - txID
// 4 bytes - index (little endian)
func NewOutPointFromBytes(b []byte) (*OutPoint, error) {
	if len(b) != OutPointSize {
		return nil, errors.NewDataCorruptError("outpoint should be %d bytes long, got %d", OutPointSize, len(b))
	}

	o := &OutPoint{
		Index: binary.LittleEndian.Uint32(b[32:]),
	}

	copy(o.TxID[:], b[:32])

	return o, nil
}

func NewOutPointFromReader(r io.Reader) (*OutPoint, error) {
	b := make([]byte, OutPointSize)

	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}

	return NewOutPointFromBytes(b)
}

// NewOutPointFromString parses the txid:index notation, txid in display (reversed) hex.
func NewOutPointFromString(s string) (*OutPoint, error) {
	txIDStr, indexStr, found := strings.Cut(s, ":")
	if !found {
		return nil, errors.NewInvalidArgumentError("outpoint %q should be formatted as txid:index", s)
	}

	txID, err := chainhash.NewHashFromStr(txIDStr)
	if err != nil {
		return nil, errors.NewInvalidArgumentError("invalid txid %q", txIDStr, err)
	}

	index, err := strconv.ParseUint(indexStr, 10, 32)
	if err != nil {
		return nil, errors.NewInvalidArgumentError("invalid output index %q", indexStr, err)
	}

	return &OutPoint{TxID: *txID, Index: uint32(index)}, nil
}

// Bytes returns the 36 byte binary form.
func (o *OutPoint) Bytes() []byte {
	return o.AppendBytes(make([]byte, 0, OutPointSize))
}

func (o *OutPoint) AppendBytes(b []byte) []byte {
	b = append(b, o.TxID[:]...)
	return binary.LittleEndian.AppendUint32(b, o.Index)
}

// String formats the outpoint as txid:vout. It has a value receiver so
// OutPoint values print the same way as pointers.
func (o OutPoint) String() string {
	return fmt.Sprintf("%s:%d", o.TxID.String(), o.Index)
}
