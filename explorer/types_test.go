package explorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidAddress(t *testing.T) {
	assert.True(t, ValidAddress("0x1234567890123456789012345678901234567890"))
	assert.True(t, ValidAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7"))
	assert.False(t, ValidAddress("1234567890123456789012345678901234567890"), "missing 0x prefix")
	assert.False(t, ValidAddress("0x123"), "too short")
	assert.False(t, ValidAddress("0xGGGG567890123456789012345678901234567890"), "non-hex")
	assert.False(t, ValidAddress(""))
}

func TestValidTxHash(t *testing.T) {
	assert.True(t, ValidTxHash("0x1234567890123456789012345678901234567890123456789012345678901234"))
	assert.False(t, ValidTxHash("1234567890123456789012345678901234567890123456789012345678901234"))
	assert.False(t, ValidTxHash("0x123"))
	assert.False(t, ValidTxHash("0xzz34567890123456789012345678901234567890123456789012345678901234"))
}

func TestNormalizeAddress(t *testing.T) {
	assert.Equal(t,
		"0xdAC17F958D2ee523a2206206994597C13D831ec7",
		NormalizeAddress("0xdac17f958d2ee523a2206206994597c13d831ec7"))
}

func TestDeriveConfirmations(t *testing.T) {
	t.Run("derived from block heights", func(t *testing.T) {
		assert.Equal(t, uint64(1), DeriveConfirmations(100, 100, 0))
		assert.Equal(t, uint64(13), DeriveConfirmations(112, 100, 0))
	})

	t.Run("floored at upstream-reported count", func(t *testing.T) {
		assert.Equal(t, uint64(20), DeriveConfirmations(112, 100, 20))
		assert.Equal(t, uint64(13), DeriveConfirmations(112, 100, 5))
	})

	t.Run("never decreases on later queries", func(t *testing.T) {
		earlier := DeriveConfirmations(110, 100, 0)
		later := DeriveConfirmations(115, 100, earlier)
		assert.GreaterOrEqual(t, later, earlier)
	})

	t.Run("current behind tx block", func(t *testing.T) {
		assert.Equal(t, uint64(7), DeriveConfirmations(99, 100, 7))
	})
}

func TestTransactionConversions(t *testing.T) {
	tx := Transaction{
		Value:           "500000000000000000",
		Confirmations:   "15",
		BlockNumber:     "1000",
		IsError:         "0",
		TxReceiptStatus: "1",
	}

	assert.Equal(t, "0.5", tx.ValueEther().String())
	assert.Equal(t, uint64(15), tx.ConfirmationCount())
	assert.Equal(t, uint64(1000), tx.BlockHeight())
	assert.True(t, tx.Successful())

	tx.IsError = "1"
	assert.False(t, tx.Successful())
	tx.IsError = "0"
	tx.TxReceiptStatus = "0"
	assert.False(t, tx.Successful())
}

func TestTokenTransferConversions(t *testing.T) {
	tr := TokenTransfer{
		Value:         "2500000",
		TokenDecimal:  "6",
		Confirmations: "3",
		BlockNumber:   "2000",
	}

	assert.Equal(t, "2.5", tr.ValueTokens().String())
	assert.Equal(t, int32(6), tr.DecimalCount())
	assert.Equal(t, uint64(3), tr.ConfirmationCount())

	tr.TokenDecimal = "garbage"
	assert.Equal(t, int32(18), tr.DecimalCount(), "decimal count defaults to 18")
}

func TestBalanceConversions(t *testing.T) {
	b := Balance{Wei: "1000000000000000000"}
	assert.Equal(t, "1", b.Ether().String())

	tb := TokenBalance{Raw: "2500000"}
	assert.Equal(t, "2.5", tb.Tokens(6).String())
}

func TestReceiptStatus(t *testing.T) {
	assert.True(t, TransactionReceipt{Status: "0x1"}.Successful())
	assert.False(t, TransactionReceipt{Status: "0x0"}.Successful())
	assert.Equal(t, uint64(0x64), TransactionReceipt{BlockNumber: "0x64"}.BlockHeight())
}

func TestGasOracleGetters(t *testing.T) {
	g := GasOracle{SafeGasPrice: "10", ProposeGasPrice: "12.5", FastGasPrice: "20"}
	assert.Equal(t, "10", g.SafeGwei().String())
	assert.Equal(t, "12.5", g.ProposeGwei().String())
	assert.Equal(t, "20", g.FastGwei().String())
}
