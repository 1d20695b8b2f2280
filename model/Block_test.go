package model

import (
	"bytes"
	"testing"

	"github.com/bsv-blockchain/go-bt/v2"
	btcchainhash "github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/kodemon/sats/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const coinbaseHex = "01000000010000000000000000000000000000000000000000000000000000000000000000ffffffff1703fb03002f6d322d75732f0cb6d7d459fb411ef3ac6d65ffffffff03ac505763000000001976a914c362d5af234dd4e1f2a1bfbcab90036d38b0aa9f88acaa505763000000001976a9143c22b6d9ba7b50b6d6e615c69d11ecb2ba3db14588acaa505763000000001976a914b7177c7deb43f3869eabc25cfd9f618215f34d5588ac00000000"

func TestBlockRoundTrip(t *testing.T) {
	coinbase, err := bt.NewTxFromString(coinbaseHex)
	require.NoError(t, err)
	require.True(t, coinbase.IsCoinbase())

	spend := NewTestTx([]OutPoint{TestOutPoint(coinbase, 1)}, 1000, 2000)

	block := NewTestBlock(1019, nil, coinbase, spend)
	require.NoError(t, block.Valid())

	parsed, err := NewBlockFromBytes(block.Bytes(), 1019)
	require.NoError(t, err)

	assert.Equal(t, uint64(1019), parsed.Height)
	assert.Equal(t, block.Hash(), parsed.Hash())
	require.Len(t, parsed.Transactions, 2)
	assert.Equal(t, coinbase.TxIDChainHash(), parsed.CoinbaseTx().TxIDChainHash())
	assert.Equal(t, spend.TxIDChainHash(), parsed.Transactions[1].TxIDChainHash())
	assert.Equal(t, uint64(2000), parsed.Transactions[1].Outputs[1].Satoshis)
	assert.Contains(t, parsed.String(), "height: 1019")
}

func TestBlockInvalid(t *testing.T) {
	t.Run("too short", func(t *testing.T) {
		_, err := NewBlockFromBytes(make([]byte, 79), 1)
		assert.True(t, errors.Is(err, errors.ErrBlockInvalid))
	})

	t.Run("no transactions", func(t *testing.T) {
		block := NewTestBlock(1, nil)

		_, err := NewBlockFromBytes(block.Bytes(), 1)
		assert.True(t, errors.Is(err, errors.ErrBlockInvalid))
	})

	t.Run("first tx not a coinbase", func(t *testing.T) {
		coinbase := NewTestCoinbaseTx(1, 50)
		spend := NewTestTx([]OutPoint{TestOutPoint(coinbase, 0)}, 50)

		block := NewTestBlock(2, nil, spend)
		assert.True(t, errors.Is(block.Valid(), errors.ErrBlockInvalid))
	})

	t.Run("truncated transaction", func(t *testing.T) {
		block := NewTestBlock(3, nil, NewTestCoinbaseTx(3, 50))
		b := block.Bytes()

		_, err := NewBlockFromBytes(b[:len(b)-2], 3)
		assert.True(t, errors.Is(err, errors.ErrBlockInvalid))
	})

	t.Run("trailing bytes", func(t *testing.T) {
		block := NewTestBlock(4, nil, NewTestCoinbaseTx(4, 50))
		b := append(block.Bytes(), 0xde, 0xad)

		_, err := NewBlockFromBytes(b, 4)
		assert.True(t, errors.Is(err, errors.ErrBlockInvalid))
	})
}

func TestBlockWithWitnessTransaction(t *testing.T) {
	coinbase := NewTestCoinbaseTx(500000, 50)

	prev, err := btcchainhash.NewHashFromStr(coinbase.TxID())
	require.NoError(t, err)

	msgTx := wire.NewMsgTx(2)
	msgTx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Hash: *prev, Index: 0},
		Witness:          wire.TxWitness{bytes.Repeat([]byte{0x30}, 71), bytes.Repeat([]byte{0x02}, 33)},
		Sequence:         0xffffffff,
	})
	msgTx.AddTxOut(wire.NewTxOut(100_000_000, []byte{0x00, 0x14, 0x01, 0x02}))
	require.True(t, msgTx.HasWitness())

	var witnessTx bytes.Buffer
	require.NoError(t, msgTx.Serialize(&witnessTx))

	header := NewTestBlock(500000, nil, coinbase).Header

	var raw bytes.Buffer
	raw.Write(header.Bytes())
	raw.Write(bt.VarInt(2).Bytes())
	raw.Write(coinbase.Bytes())
	raw.Write(witnessTx.Bytes())

	parsed, err := NewBlockFromBytes(raw.Bytes(), 500000)
	require.NoError(t, err)
	require.Len(t, parsed.Transactions, 2)

	tx := parsed.Transactions[1]
	require.Len(t, tx.Inputs, 1)
	require.Len(t, tx.Outputs, 1)
	assert.Equal(t, uint64(100_000_000), tx.Outputs[0].Satoshis)
	assert.Equal(t, coinbase.TxID(), tx.Inputs[0].PreviousTxIDStr())
	assert.Equal(t, msgTx.TxHash().String(), tx.TxID())
	assert.NotEqual(t, msgTx.WitnessHash().String(), tx.TxID())
}

func TestTestCoinbaseTxIDsDifferPerHeight(t *testing.T) {
	a := NewTestCoinbaseTx(1, 50)
	b := NewTestCoinbaseTx(2, 50)

	assert.True(t, a.IsCoinbase())
	assert.NotEqual(t, a.TxIDChainHash(), b.TxIDChainHash())
}
