package model

import (
	"encoding/binary"

	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/bsv-blockchain/go-bt/v2/bscript"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
)

// helpers below build structurally valid transactions for tests, they carry no valid scripts

var testLockingScript = bscript.NewFromBytes([]byte{0x51}) // OP_TRUE

// NewTestCoinbaseTx returns a coinbase transaction paying values. The height is
// pushed into the unlocking script so coinbases at different heights have different txids.
func NewTestCoinbaseTx(height uint64, values ...uint64) *bt.Tx {
	tx := bt.NewTx()

	heightBytes := binary.LittleEndian.AppendUint64(nil, height)
	unlocking := append([]byte{byte(len(heightBytes))}, heightBytes...)

	input := &bt.Input{
		PreviousTxOutIndex: 0xffffffff,
		SequenceNumber:     0xffffffff,
		UnlockingScript:    bscript.NewFromBytes(unlocking),
	}
	_ = input.PreviousTxIDAdd(&chainhash.Hash{})

	tx.Inputs = append(tx.Inputs, input)

	addTestOutputs(tx, values)

	return tx
}

// NewTestTx returns a transaction spending inputs and paying values.
func NewTestTx(inputs []OutPoint, values ...uint64) *bt.Tx {
	tx := bt.NewTx()

	for i := range inputs {
		input := &bt.Input{
			PreviousTxOutIndex: inputs[i].Index,
			SequenceNumber:     0xffffffff,
			UnlockingScript:    bscript.NewFromBytes([]byte{0x51}),
		}
		_ = input.PreviousTxIDAdd(&inputs[i].TxID)

		tx.Inputs = append(tx.Inputs, input)
	}

	addTestOutputs(tx, values)

	return tx
}

// NewTestBlock wraps txs in a block at height, txs[0] must be a coinbase.
func NewTestBlock(height uint64, prev *chainhash.Hash, txs ...*bt.Tx) *Block {
	if prev == nil {
		prev = &chainhash.Hash{}
	}

	return &Block{
		Header: &BlockHeader{
			Version:        1,
			HashPrevBlock:  prev,
			HashMerkleRoot: &chainhash.Hash{},
			Timestamp:      uint32(1231006505 + height*600),
			Bits:           []byte{0x1d, 0x00, 0xff, 0xff},
			Nonce:          uint32(height),
		},
		Height:       height,
		Transactions: txs,
	}
}

// TestOutPoint returns the OutPoint of output index of tx.
func TestOutPoint(tx *bt.Tx, index uint32) OutPoint {
	return NewOutPoint(tx.TxIDChainHash(), index)
}

func addTestOutputs(tx *bt.Tx, values []uint64) {
	for _, v := range values {
		tx.Outputs = append(tx.Outputs, &bt.Output{
			Satoshis:      v,
			LockingScript: testLockingScript,
		})
	}
}
