package model

import (
	"bytes"
	"fmt"
	"io"

	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/kodemon/sats/errors"
)

const maxTxPrealloc = 1 << 16

// Block is a fully deserialized block. Transactions[0] is always the coinbase.
type Block struct {
	Header       *BlockHeader
	Height       uint64
	Transactions []*bt.Tx
}

func NewBlockFromBytes(blockBytes []byte, height uint64) (*Block, error) {
	if len(blockBytes) < BlockHeaderSize {
		return nil, errors.NewBlockInvalidError("[NewBlockFromBytes][%d] block too short: %d bytes", height, len(blockBytes))
	}

	r := bytes.NewReader(blockBytes)

	block, err := NewBlockFromReader(r, height)
	if err != nil {
		return nil, err
	}

	if r.Len() != 0 {
		return nil, errors.NewBlockInvalidError("[NewBlockFromBytes][%d] %d trailing bytes after the last transaction", height, r.Len())
	}

	return block, nil
}

// NewBlockFromReader reads an 80 byte header, a varint transaction count and
// that many transactions in wire format, with or without BIP144 witness data.
func NewBlockFromReader(r io.Reader, height uint64) (*Block, error) {
	headerBytes := make([]byte, BlockHeaderSize)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, errors.NewBlockInvalidError("[NewBlockFromReader][%d] failed to read block header", height, err)
	}

	header, err := NewBlockHeaderFromBytes(headerBytes)
	if err != nil {
		return nil, err
	}

	var txCount bt.VarInt
	if _, err = txCount.ReadFrom(r); err != nil {
		return nil, errors.NewBlockInvalidError("[NewBlockFromReader][%d] failed to read transaction count", height, err)
	}

	capacity := uint64(txCount)
	if capacity > maxTxPrealloc {
		capacity = maxTxPrealloc
	}

	block := &Block{
		Header:       header,
		Height:       height,
		Transactions: make([]*bt.Tx, 0, capacity),
	}

	for i := uint64(0); i < uint64(txCount); i++ {
		tx, err := readTx(r)
		if err != nil {
			return nil, errors.NewBlockInvalidError("[NewBlockFromReader][%d] failed to read transaction %d", height, i, err)
		}

		block.Transactions = append(block.Transactions, tx)
	}

	if err = block.Valid(); err != nil {
		return nil, err
	}

	return block, nil
}

// readTx decodes one transaction and strips its witness data. The txid of the
// returned transaction is the hash of the non-witness serialization.
func readTx(r io.Reader) (*bt.Tx, error) {
	var msgTx wire.MsgTx
	if err := msgTx.Deserialize(r); err != nil {
		return nil, err
	}

	var buf bytes.Buffer

	buf.Grow(msgTx.SerializeSizeStripped())

	if err := msgTx.SerializeNoWitness(&buf); err != nil {
		return nil, err
	}

	return bt.NewTxFromBytes(buf.Bytes())
}

// Valid checks the structural properties the indexer depends on. It does not
// validate scripts, proof of work or the merkle root.
func (b *Block) Valid() error {
	if len(b.Transactions) == 0 {
		return errors.NewBlockInvalidError("[Valid][%d] block has no transactions", b.Height)
	}

	if !b.Transactions[0].IsCoinbase() {
		return errors.NewBlockInvalidError("[Valid][%d] first transaction is not a coinbase", b.Height)
	}

	return nil
}

func (b *Block) CoinbaseTx() *bt.Tx {
	if len(b.Transactions) == 0 {
		return nil
	}

	return b.Transactions[0]
}

func (b *Block) Hash() *chainhash.Hash {
	if b.Header == nil {
		return &chainhash.Hash{}
	}

	return b.Header.Hash()
}

// Bytes serializes the block in wire format. Witness data is not retained.
func (b *Block) Bytes() []byte {
	buf := bytes.NewBuffer(b.Header.Bytes())

	buf.Write(bt.VarInt(uint64(len(b.Transactions))).Bytes())

	for _, tx := range b.Transactions {
		buf.Write(tx.Bytes())
	}

	return buf.Bytes()
}

func (b *Block) String() string {
	return fmt.Sprintf("%s (height: %d, txs: %d)", b.Hash().String(), b.Height, len(b.Transactions))
}
