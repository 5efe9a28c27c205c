package paywatch

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

var (
	weiPerEther = decimal.New(1, 18)
	weiPerGwei  = decimal.New(1, 9)
)

// WeiToEther converts a wei amount to ether.
func WeiToEther(wei *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(wei, 0).DivRound(weiPerEther, 18)
}

// EtherToWei converts an ether amount to wei, truncating any fraction of a
// wei.
func EtherToWei(ether decimal.Decimal) *big.Int {
	return ether.Mul(weiPerEther).BigInt()
}

// GweiToWei converts a gwei amount to wei.
func GweiToWei(gwei decimal.Decimal) *big.Int {
	return gwei.Mul(weiPerGwei).BigInt()
}

// WeiToGwei converts a wei amount to gwei.
func WeiToGwei(wei *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(wei, 0).DivRound(weiPerGwei, 9)
}

// ParseRawAmount converts a raw integer amount string (smallest currency
// unit) to a decimal amount using the given decimal count.
func ParseRawAmount(raw string, decimals int32) (decimal.Decimal, error) {
	n, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return decimal.Zero, fmt.Errorf("invalid raw amount: %q", raw)
	}
	return RawToAmount(n, decimals), nil
}

// RawToAmount converts a raw integer amount (smallest currency unit) to a
// decimal amount using the given decimal count.
func RawToAmount(raw *big.Int, decimals int32) decimal.Decimal {
	return decimal.NewFromBigInt(raw, 0).DivRound(decimal.New(1, decimals), decimals)
}

// AmountToRaw converts a decimal amount to raw integer units, truncating any
// fraction of the smallest unit.
func AmountToRaw(amount decimal.Decimal, decimals int32) *big.Int {
	return amount.Mul(decimal.New(1, decimals)).BigInt()
}

// AmountsMatch reports whether actual is within tolerancePercent of expected.
// A zero tolerance requires exact decimal equality.
func AmountsMatch(expected, actual, tolerancePercent decimal.Decimal) bool {
	if tolerancePercent.IsZero() {
		return expected.Equal(actual)
	}
	if expected.IsZero() {
		return actual.IsZero()
	}
	diff := actual.Sub(expected).Abs()
	allowed := expected.Mul(tolerancePercent).Div(decimal.NewFromInt(100))
	return diff.LessThanOrEqual(allowed)
}

// AmountSufficient reports whether actual meets or exceeds minPercent of
// expected, allowing a bounded under-payment.
func AmountSufficient(expected, actual, minPercent decimal.Decimal) bool {
	minRequired := expected.Mul(minPercent).Div(decimal.NewFromInt(100))
	return actual.GreaterThanOrEqual(minRequired)
}
