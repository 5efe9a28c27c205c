package paywatch

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// MatchMode selects how the observed amount is compared to the expected one.
type MatchMode int

const (
	// MatchExact requires exact decimal equality. This is the default:
	// amounts are compared as arbitrary-precision decimals, so a candidate
	// off by a single smallest-unit does not match.
	MatchExact MatchMode = iota
	// MatchWithinTolerance accepts |actual - expected| up to
	// TolerancePercent of the expected amount.
	MatchWithinTolerance
	// MatchSufficient accepts actual >= expected * (1 - TolerancePercent/100),
	// allowing a bounded under-payment.
	MatchSufficient
)

// MatchPolicy controls amount comparison during matching. The zero value is
// exact matching.
type MatchPolicy struct {
	Mode             MatchMode
	TolerancePercent decimal.Decimal
}

// ExactMatch returns the default zero-tolerance policy.
func ExactMatch() MatchPolicy {
	return MatchPolicy{Mode: MatchExact}
}

// accepts reports whether actual qualifies against expected under the policy.
func (p MatchPolicy) accepts(expected, actual decimal.Decimal) bool {
	switch p.Mode {
	case MatchWithinTolerance:
		return AmountsMatch(expected, actual, p.TolerancePercent)
	case MatchSufficient:
		minPercent := decimal.NewFromInt(100).Sub(p.TolerancePercent)
		return AmountSufficient(expected, actual, minPercent)
	default:
		return expected.Equal(actual)
	}
}

// Candidate is a transaction under consideration as the payment for a
// request. Values are raw integer units of the request's currency.
type Candidate struct {
	Hash          string
	From          string
	To            string
	RawValue      *big.Int
	BlockNumber   uint64
	Success       bool
	Confirmations uint64
}

// Amount returns the candidate's value normalized to the currency's decimal
// count.
func (c Candidate) Amount(currency Currency) decimal.Decimal {
	return RawToAmount(c.RawValue, currency.Decimals)
}

// FindMatch decides which candidate, if any, is the payment for a request.
//
// Candidates qualify when they pay the request's recipient (compared
// case-insensitively), succeeded on chain, and carry an amount accepted by
// the policy. Among qualifying candidates the one with the most confirmations
// wins; ties go to the higher block number, then the lexicographically
// smallest hash, giving a deterministic total order.
func FindMatch(request PaymentRequest, candidates []Candidate, policy MatchPolicy) (Candidate, bool) {
	var best Candidate
	found := false

	for _, c := range candidates {
		if !qualifies(request, c, policy) {
			continue
		}
		if !found || better(c, best) {
			best = c
			found = true
		}
	}
	return best, found
}

func qualifies(request PaymentRequest, c Candidate, policy MatchPolicy) bool {
	if !strings.EqualFold(c.To, request.Recipient) {
		return false
	}
	if !c.Success {
		return false
	}
	return policy.accepts(request.Amount, c.Amount(request.Currency))
}

// amountMatchesIgnoringSuccess is used by the verifier to recognize a
// reverted transaction that would otherwise have been the payment.
func amountMatchesIgnoringSuccess(request PaymentRequest, c Candidate, policy MatchPolicy) bool {
	if !strings.EqualFold(c.To, request.Recipient) {
		return false
	}
	return policy.accepts(request.Amount, c.Amount(request.Currency))
}

func better(a, b Candidate) bool {
	if a.Confirmations != b.Confirmations {
		return a.Confirmations > b.Confirmations
	}
	if a.BlockNumber != b.BlockNumber {
		return a.BlockNumber > b.BlockNumber
	}
	return strings.ToLower(a.Hash) < strings.ToLower(b.Hash)
}
