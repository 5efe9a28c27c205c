package paywatch

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultPollInterval is used when no interval is configured.
const DefaultPollInterval = 10 * time.Second

// StatusSink receives payment status transitions. Each transition is
// delivered exactly once, in order, before the next poll is scheduled.
type StatusSink func(PaymentStatus)

// MonitorOption configures a Monitor.
type MonitorOption func(*Monitor)

// WithMonitorLogger sets a structured logger. Defaults to a no-op logger.
func WithMonitorLogger(logger *zap.Logger) MonitorOption {
	return func(m *Monitor) {
		m.logger = logger
	}
}

// Monitor polls a Verifier at an interval and drives a payment through its
// status state machine:
//
//	Pending  -> Detected | Expired | Failed
//	Detected -> Confirmed | Expired | Failed
//
// Confirmed, Failed and Expired are terminal. Within one monitored request
// polls are strictly sequential; different requests monitor independently,
// sharing only the explorer's gateway and cache.
type Monitor struct {
	verifier     *Verifier
	pollInterval time.Duration
	logger       *zap.Logger
}

// NewMonitor creates a monitor polling at the given interval.
func NewMonitor(verifier *Verifier, pollInterval time.Duration, opts ...MonitorOption) *Monitor {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	m := &Monitor{
		verifier:     verifier,
		pollInterval: pollInterval,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// StartMonitoring polls until the payment reaches a terminal status or ctx is
// cancelled, delivering every status change to sink. It returns the last
// status alongside any error.
//
// Expiry is checked before each poll, so a payment detected in the same
// instant its timeout elapses is reported as Expired rather than racing the
// deadline. Verification errors stop the loop and surface to the caller, who
// owns the retry policy.
func (m *Monitor) StartMonitoring(ctx context.Context, request PaymentRequest, sink StatusSink) (PaymentStatus, error) {
	if err := request.Validate(); err != nil {
		return PaymentStatus{}, err
	}

	status := PaymentStatus{State: StatePending}
	deliver := func(s PaymentStatus) {
		if sink != nil {
			sink(s)
		}
	}
	deliver(status)

	for {
		if request.Expired(time.Now()) {
			status = PaymentStatus{State: StateExpired}
			m.logger.Info("payment expired", zap.String("recipient", request.Recipient))
			deliver(status)
			return status, nil
		}

		result, err := m.verifier.VerifyPayment(ctx, request)
		if err != nil {
			return status, err
		}

		next := advance(status, result)
		if next != status {
			m.logger.Info("payment status changed",
				zap.String("from", string(status.State)),
				zap.String("to", string(next.State)),
				zap.String("txHash", next.TxHash),
				zap.Uint64("confirmations", next.Confirmations))
			status = next
			deliver(status)
		}

		if status.Final() {
			return status, nil
		}

		select {
		case <-time.After(m.pollInterval):
		case <-ctx.Done():
			return status, ctx.Err()
		}
	}
}

// CheckPaymentStatus performs a single poll, no loop. The expiry check
// applies exactly as in the monitoring loop.
func (m *Monitor) CheckPaymentStatus(ctx context.Context, request PaymentRequest) (PaymentStatus, error) {
	if err := request.Validate(); err != nil {
		return PaymentStatus{}, err
	}
	if request.Expired(time.Now()) {
		return PaymentStatus{State: StateExpired}, nil
	}

	result, err := m.verifier.VerifyPayment(ctx, request)
	if err != nil {
		return PaymentStatus{}, err
	}
	return advance(PaymentStatus{State: StatePending}, result), nil
}

// advance applies one verification result to the state machine. A NotFound
// result after a detection keeps the Detected status: the candidate window is
// remote data and may be momentarily inconsistent, and Detected has no
// backward transition.
func advance(current PaymentStatus, result VerificationResult) PaymentStatus {
	switch result.Outcome {
	case OutcomePending:
		return PaymentStatus{
			State:         StateDetected,
			TxHash:        result.TxHash,
			Confirmations: result.Confirmations,
		}
	case OutcomeConfirmed:
		return PaymentStatus{
			State:         StateConfirmed,
			TxHash:        result.TxHash,
			Confirmations: result.Confirmations,
		}
	case OutcomeFailed:
		return PaymentStatus{
			State:  StateFailed,
			TxHash: result.TxHash,
			Reason: result.Reason,
		}
	default:
		if current.State == StateDetected {
			return current
		}
		return PaymentStatus{State: StatePending}
	}
}
