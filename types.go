// Package paywatch verifies and monitors cryptocurrency payments on
// EVM-compatible chains by querying an Etherscan-compatible explorer API.
// Given an expected recipient and amount it decides whether a qualifying
// transaction exists and how many confirmations it has accumulated.
package paywatch

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/paywatch/paywatch/explorer"
)

// NativeDecimals is the decimal count of the chain's native coin.
const NativeDecimals int32 = 18

// Currency identifies what a payment is denominated in: the native coin, or
// an ERC-20 token given by its contract address and decimal count.
type Currency struct {
	// Contract is the token contract address, empty for the native coin.
	Contract string `json:"contract,omitempty"`
	// Decimals is the currency's decimal count.
	Decimals int32 `json:"decimals"`
}

// Native returns the native-coin currency.
func Native() Currency {
	return Currency{Decimals: NativeDecimals}
}

// Token returns an ERC-20 currency.
func Token(contract string, decimals int32) Currency {
	return Currency{Contract: contract, Decimals: decimals}
}

// Common stablecoins on Ethereum mainnet.
func USDT() Currency { return Token("0xdAC17F958D2ee523a2206206994597C13D831ec7", 6) }
func USDC() Currency { return Token("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", 6) }
func DAI() Currency  { return Token("0x6B175474E89094C44Da98b954EedeAC495271d0F", 18) }

// IsNative reports whether the currency is the native coin.
func (c Currency) IsNative() bool {
	return c.Contract == ""
}

// PaymentRequest describes an expected payment. Construct it through
// NativePayment or TokenPayment; WithTimeout returns a modified copy, so a
// request never changes under a running verification.
type PaymentRequest struct {
	// Amount expected, in whole currency units (not wei / smallest unit).
	Amount decimal.Decimal `json:"amount"`
	// Currency the payment is denominated in.
	Currency Currency `json:"currency"`
	// Recipient address the payment must be sent to.
	Recipient string `json:"recipient"`
	// RequiredConfirmations before the payment counts as confirmed.
	RequiredConfirmations uint64 `json:"requiredConfirmations"`
	// Timeout after which an unconfirmed payment expires. Zero means the
	// request never expires.
	Timeout time.Duration `json:"timeout,omitempty"`
	// CreatedAt anchors the timeout.
	CreatedAt time.Time `json:"createdAt"`
}

// NativePayment creates a request for a native-coin payment.
func NativePayment(amount decimal.Decimal, recipient string, requiredConfirmations uint64) PaymentRequest {
	return PaymentRequest{
		Amount:                amount,
		Currency:              Native(),
		Recipient:             recipient,
		RequiredConfirmations: requiredConfirmations,
		CreatedAt:             time.Now(),
	}
}

// TokenPayment creates a request for an ERC-20 token payment.
func TokenPayment(amount decimal.Decimal, contract string, decimals int32, recipient string, requiredConfirmations uint64) PaymentRequest {
	return PaymentRequest{
		Amount:                amount,
		Currency:              Token(contract, decimals),
		Recipient:             recipient,
		RequiredConfirmations: requiredConfirmations,
		CreatedAt:             time.Now(),
	}
}

// WithTimeout returns a copy of the request that expires after d.
func (r PaymentRequest) WithTimeout(d time.Duration) PaymentRequest {
	r.Timeout = d
	return r
}

// Expired reports whether the request's timeout has elapsed at the given
// time. Requests without a timeout never expire.
func (r PaymentRequest) Expired(now time.Time) bool {
	if r.Timeout <= 0 {
		return false
	}
	return now.Sub(r.CreatedAt) >= r.Timeout
}

// Validate checks the request. Invalid requests fail locally; no remote call
// is made for them.
func (r PaymentRequest) Validate() error {
	if !explorer.ValidAddress(r.Recipient) {
		return explorer.Errorf(explorer.ErrCodeInvalidAddress, "invalid recipient address: %s", r.Recipient)
	}
	if r.Amount.IsNegative() {
		return explorer.Errorf(explorer.ErrCodeInvalidConfig, "payment amount cannot be negative")
	}
	if !r.Currency.IsNative() && !explorer.ValidAddress(r.Currency.Contract) {
		return explorer.Errorf(explorer.ErrCodeInvalidAddress, "invalid token contract address: %s", r.Currency.Contract)
	}
	if r.Currency.Decimals < 0 {
		return explorer.Errorf(explorer.ErrCodeInvalidConfig, "currency decimals cannot be negative")
	}
	return nil
}

// VerificationOutcome classifies a single verification check.
type VerificationOutcome string

const (
	// OutcomeNotFound means no qualifying transaction exists yet.
	OutcomeNotFound VerificationOutcome = "not_found"
	// OutcomePending means a qualifying transaction exists but lacks the
	// required confirmations.
	OutcomePending VerificationOutcome = "pending"
	// OutcomeConfirmed means a qualifying transaction has enough
	// confirmations.
	OutcomeConfirmed VerificationOutcome = "confirmed"
	// OutcomeFailed means the matched transaction reverted on chain.
	OutcomeFailed VerificationOutcome = "failed"
)

// VerificationResult is the outcome of one verification check. "No matching
// transaction yet" is data, not an error: errors are reserved for failures of
// the check itself.
type VerificationResult struct {
	Outcome       VerificationOutcome `json:"outcome"`
	TxHash        string              `json:"txHash,omitempty"`
	Confirmations uint64              `json:"confirmations,omitempty"`
	Reason        string              `json:"reason,omitempty"`
}

// PaymentState is the monitor's view of a payment.
type PaymentState string

const (
	// StatePending: no transaction found yet.
	StatePending PaymentState = "pending"
	// StateDetected: transaction found, not yet confirmed.
	StateDetected PaymentState = "detected"
	// StateConfirmed: terminal success.
	StateConfirmed PaymentState = "confirmed"
	// StateFailed: terminal, the transaction reverted on chain.
	StateFailed PaymentState = "failed"
	// StateExpired: terminal, the request timed out before confirmation.
	StateExpired PaymentState = "expired"
)

// PaymentStatus is the monitor's evolving view of a payment across polls.
type PaymentStatus struct {
	State         PaymentState `json:"state"`
	TxHash        string       `json:"txHash,omitempty"`
	Confirmations uint64       `json:"confirmations,omitempty"`
	Reason        string       `json:"reason,omitempty"`
}

// Final reports whether the status is terminal (confirmed, failed or expired).
func (s PaymentStatus) Final() bool {
	switch s.State {
	case StateConfirmed, StateFailed, StateExpired:
		return true
	}
	return false
}

// Successful reports whether the payment confirmed.
func (s PaymentStatus) Successful() bool {
	return s.State == StateConfirmed
}

// Payment is a complete payment record for callers that want to track
// requests alongside their status.
type Payment struct {
	ID        uuid.UUID              `json:"id"`
	Request   PaymentRequest         `json:"request"`
	Status    PaymentStatus          `json:"status"`
	CreatedAt time.Time              `json:"createdAt"`
	UpdatedAt time.Time              `json:"updatedAt"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewPayment creates a pending payment record for a request.
func NewPayment(request PaymentRequest) *Payment {
	now := time.Now()
	return &Payment{
		ID:        uuid.New(),
		Request:   request,
		Status:    PaymentStatus{State: StatePending},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// UpdateStatus sets a new status and bumps the update timestamp.
func (p *Payment) UpdateStatus(status PaymentStatus) {
	p.Status = status
	p.UpdatedAt = time.Now()
}

// Expired reports whether the payment's request has timed out.
func (p *Payment) Expired() bool {
	return p.Request.Expired(time.Now())
}
