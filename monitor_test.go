package paywatch

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMonitor(t *testing.T, st *scriptedTransport) *Monitor {
	t.Helper()
	return NewMonitor(newTestVerifier(t, st), time.Millisecond)
}

func collectStates(statuses []PaymentStatus) []PaymentState {
	states := make([]PaymentState, 0, len(statuses))
	for _, s := range statuses {
		states = append(states, s.State)
	}
	return states
}

func TestStartMonitoring_ExpiredBeforePoll(t *testing.T) {
	// Request created just past its timeout: expiry must win without any
	// explorer traffic.
	st := &scriptedTransport{handler: staticList()}
	m := newTestMonitor(t, st)

	req := NativePayment(dec("0.1"), recipientAddr, 12).WithTimeout(time.Hour)
	req.CreatedAt = time.Now().Add(-time.Hour - time.Second)

	var seen []PaymentStatus
	status, err := m.StartMonitoring(context.Background(), req, func(s PaymentStatus) {
		seen = append(seen, s)
	})
	require.NoError(t, err)
	assert.Equal(t, StateExpired, status.State)
	assert.Equal(t, []PaymentState{StatePending, StateExpired}, collectStates(seen))
	assert.Equal(t, 0, st.callCount())
}

func TestStartMonitoring_FullLifecycle(t *testing.T) {
	// Poll 1: nothing. Poll 2: matched with 3 confirmations. Poll 3: 15.
	st := &scriptedTransport{handler: func(call int, _ url.Values) ([]byte, error) {
		switch call {
		case 1:
			return listEnvelope(), nil
		case 2:
			return listEnvelope(txJSON("0xaa", recipientAddr, "100000000000000000", 100, 3, true)), nil
		default:
			return listEnvelope(txJSON("0xaa", recipientAddr, "100000000000000000", 100, 15, true)), nil
		}
	}}
	m := newTestMonitor(t, st)

	var seen []PaymentStatus
	status, err := m.StartMonitoring(context.Background(), NativePayment(dec("0.1"), recipientAddr, 12), func(s PaymentStatus) {
		seen = append(seen, s)
	})
	require.NoError(t, err)

	assert.Equal(t, StateConfirmed, status.State)
	assert.Equal(t, "0xaa", status.TxHash)
	assert.Equal(t, uint64(15), status.Confirmations)

	require.Equal(t, []PaymentState{StatePending, StateDetected, StateConfirmed}, collectStates(seen))
	assert.Equal(t, uint64(3), seen[1].Confirmations)
	assert.Equal(t, 3, st.callCount())
}

func TestStartMonitoring_DetectedSurvivesNotFound(t *testing.T) {
	// The transaction disappears from the window on poll 2; Detected must not
	// regress to Pending.
	st := &scriptedTransport{handler: func(call int, _ url.Values) ([]byte, error) {
		switch call {
		case 1:
			return listEnvelope(txJSON("0xaa", recipientAddr, "100000000000000000", 100, 3, true)), nil
		case 2:
			return listEnvelope(), nil
		default:
			return listEnvelope(txJSON("0xaa", recipientAddr, "100000000000000000", 100, 15, true)), nil
		}
	}}
	m := newTestMonitor(t, st)

	var seen []PaymentStatus
	status, err := m.StartMonitoring(context.Background(), NativePayment(dec("0.1"), recipientAddr, 12), func(s PaymentStatus) {
		seen = append(seen, s)
	})
	require.NoError(t, err)
	assert.Equal(t, StateConfirmed, status.State)
	assert.Equal(t, []PaymentState{StatePending, StateDetected, StateConfirmed}, collectStates(seen))
}

func TestStartMonitoring_FailedTransaction(t *testing.T) {
	st := &scriptedTransport{handler: staticList(
		txJSON("0xaa", recipientAddr, "100000000000000000", 100, 15, false),
	)}
	m := newTestMonitor(t, st)

	status, err := m.StartMonitoring(context.Background(), NativePayment(dec("0.1"), recipientAddr, 12), nil)
	require.NoError(t, err)
	assert.Equal(t, StateFailed, status.State)
	assert.Equal(t, "0xaa", status.TxHash)
	assert.NotEmpty(t, status.Reason)
}

func TestStartMonitoring_ContextCancellation(t *testing.T) {
	st := &scriptedTransport{handler: staticList()}
	v := newTestVerifier(t, st)
	m := NewMonitor(v, time.Hour) // never reaches a second poll

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	status, err := m.StartMonitoring(ctx, NativePayment(dec("0.1"), recipientAddr, 12), nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatePending, status.State)
}

func TestStartMonitoring_VerificationErrorStopsLoop(t *testing.T) {
	st := &scriptedTransport{handler: func(int, url.Values) ([]byte, error) {
		return []byte(`{"status":"0","message":"NOTOK","result":"Max rate limit reached"}`), nil
	}}
	m := newTestMonitor(t, st)

	_, err := m.StartMonitoring(context.Background(), NativePayment(dec("0.1"), recipientAddr, 12), nil)
	require.Error(t, err)
	assert.Equal(t, 1, st.callCount())
}

func TestStartMonitoring_InvalidRequest(t *testing.T) {
	st := &scriptedTransport{handler: staticList()}
	m := newTestMonitor(t, st)

	_, err := m.StartMonitoring(context.Background(), NativePayment(dec("0.1"), "0xbad", 12), nil)
	require.Error(t, err)
	assert.Equal(t, 0, st.callCount())
}

func TestCheckPaymentStatus(t *testing.T) {
	t.Run("single poll maps outcome", func(t *testing.T) {
		st := &scriptedTransport{handler: staticList(
			txJSON("0xaa", recipientAddr, "100000000000000000", 100, 3, true),
		)}
		m := newTestMonitor(t, st)

		status, err := m.CheckPaymentStatus(context.Background(), NativePayment(dec("0.1"), recipientAddr, 12))
		require.NoError(t, err)
		assert.Equal(t, StateDetected, status.State)
		assert.Equal(t, uint64(3), status.Confirmations)
		assert.Equal(t, 1, st.callCount())
	})

	t.Run("expired request skips the poll", func(t *testing.T) {
		st := &scriptedTransport{handler: staticList()}
		m := newTestMonitor(t, st)

		req := NativePayment(dec("0.1"), recipientAddr, 12).WithTimeout(time.Second)
		req.CreatedAt = time.Now().Add(-time.Minute)

		status, err := m.CheckPaymentStatus(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, StateExpired, status.State)
		assert.Equal(t, 0, st.callCount())
	})
}

func TestAdvance(t *testing.T) {
	pending := PaymentStatus{State: StatePending}
	detected := PaymentStatus{State: StateDetected, TxHash: "0xaa", Confirmations: 3}

	assert.Equal(t, StatePending, advance(pending, VerificationResult{Outcome: OutcomeNotFound}).State)
	assert.Equal(t, StateDetected, advance(pending, VerificationResult{Outcome: OutcomePending, TxHash: "0xaa"}).State)
	assert.Equal(t, detected, advance(detected, VerificationResult{Outcome: OutcomeNotFound}))
	assert.Equal(t, StateConfirmed, advance(detected, VerificationResult{Outcome: OutcomeConfirmed, TxHash: "0xaa"}).State)
	assert.Equal(t, StateFailed, advance(detected, VerificationResult{Outcome: OutcomeFailed, TxHash: "0xaa"}).State)
}
