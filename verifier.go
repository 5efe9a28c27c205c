package paywatch

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/paywatch/paywatch/explorer"
)

// Candidate window queried per verification: the most recent candidateWindow
// transactions to the recipient, newest first.
const (
	candidateWindow = 100
	startBlockAll   = 0
	endBlockLatest  = 99999999
)

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithMatchPolicy replaces the default exact-match policy.
func WithMatchPolicy(policy MatchPolicy) VerifierOption {
	return func(v *Verifier) {
		v.policy = policy
	}
}

// WithVerifierLogger sets a structured logger. Defaults to a no-op logger.
func WithVerifierLogger(logger *zap.Logger) VerifierOption {
	return func(v *Verifier) {
		v.logger = logger
	}
}

// Verifier maps a payment request to a verification outcome using the
// explorer facade and the matching engine. It is a one-shot checker; use
// Monitor for continuous polling.
type Verifier struct {
	client *explorer.Client
	policy MatchPolicy
	logger *zap.Logger
}

// NewVerifier creates a verifier over an explorer client.
func NewVerifier(client *explorer.Client, opts ...VerifierOption) *Verifier {
	v := &Verifier{
		client: client,
		policy: ExactMatch(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// VerifyPayment checks whether a qualifying transaction exists for the
// request.
//
// Outcomes: no qualifying transaction is OutcomeNotFound; a qualifying
// transaction below the required confirmation count is OutcomePending; at or
// above it, OutcomeConfirmed. OutcomeFailed is reserved for a matching
// transaction that reverted on chain. Facade errors are returned as errors,
// never folded into the result.
func (v *Verifier) VerifyPayment(ctx context.Context, request PaymentRequest) (VerificationResult, error) {
	if err := request.Validate(); err != nil {
		return VerificationResult{}, err
	}

	candidates, err := v.fetchCandidates(ctx, request)
	if err != nil {
		return VerificationResult{}, err
	}

	match, ok := FindMatch(request, candidates, v.policy)
	if !ok {
		// A reverted transaction that would otherwise have been the payment
		// is an on-chain failure, not an absence.
		for _, c := range candidates {
			if !c.Success && amountMatchesIgnoringSuccess(request, c, v.policy) {
				v.logger.Debug("matching transaction reverted", zap.String("txHash", c.Hash))
				return VerificationResult{
					Outcome: OutcomeFailed,
					TxHash:  c.Hash,
					Reason:  fmt.Sprintf("transaction %s reverted on chain", c.Hash),
				}, nil
			}
		}
		return VerificationResult{Outcome: OutcomeNotFound}, nil
	}

	v.logger.Debug("payment matched",
		zap.String("txHash", match.Hash),
		zap.Uint64("confirmations", match.Confirmations),
		zap.Uint64("required", request.RequiredConfirmations))

	if match.Confirmations >= request.RequiredConfirmations {
		return VerificationResult{
			Outcome:       OutcomeConfirmed,
			TxHash:        match.Hash,
			Confirmations: match.Confirmations,
		}, nil
	}
	return VerificationResult{
		Outcome:       OutcomePending,
		TxHash:        match.Hash,
		Confirmations: match.Confirmations,
	}, nil
}

// fetchCandidates queries the window of recent transactions to the recipient:
// the normal transaction list for native payments, the token transfer list
// filtered by contract for token payments.
func (v *Verifier) fetchCandidates(ctx context.Context, request PaymentRequest) ([]Candidate, error) {
	if request.Currency.IsNative() {
		txs, err := v.client.Transactions(ctx, request.Recipient, startBlockAll, endBlockLatest, 1, candidateWindow, "desc")
		if err != nil {
			return nil, err
		}
		candidates := make([]Candidate, 0, len(txs))
		for _, tx := range txs {
			candidates = append(candidates, Candidate{
				Hash:          tx.Hash,
				From:          tx.From,
				To:            tx.To,
				RawValue:      tx.RawValue(),
				BlockNumber:   tx.BlockHeight(),
				Success:       tx.Successful(),
				Confirmations: tx.ConfirmationCount(),
			})
		}
		return candidates, nil
	}

	transfers, err := v.client.TokenTransfers(ctx, request.Recipient, request.Currency.Contract, startBlockAll, endBlockLatest, 1, candidateWindow, "desc")
	if err != nil {
		return nil, err
	}
	candidates := make([]Candidate, 0, len(transfers))
	for _, tr := range transfers {
		// The transfer list only contains executed transfers.
		candidates = append(candidates, Candidate{
			Hash:          tr.Hash,
			From:          tr.From,
			To:            tr.To,
			RawValue:      tr.RawValue(),
			BlockNumber:   tr.BlockHeight(),
			Success:       true,
			Confirmations: tr.ConfirmationCount(),
		})
	}
	return candidates, nil
}

// CheckConfirmations returns the confirmation count of a specific
// transaction, bypassing matching.
func (v *Verifier) CheckConfirmations(ctx context.Context, txHash string) (uint64, error) {
	return v.client.Confirmations(ctx, txHash)
}

// FindMatchingTransaction returns the hash of the transaction that matches
// the request, or "" when none does yet.
func (v *Verifier) FindMatchingTransaction(ctx context.Context, request PaymentRequest) (string, error) {
	result, err := v.VerifyPayment(ctx, request)
	if err != nil {
		return "", err
	}
	switch result.Outcome {
	case OutcomePending, OutcomeConfirmed:
		return result.TxHash, nil
	}
	return "", nil
}
