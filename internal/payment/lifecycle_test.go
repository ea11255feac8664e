package payment

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateRefund(t *testing.T) {
	var tests = []struct {
		name        string
		payment     Payment
		amount      int64
		expectedErr string
	}{
		{
			name:    "captured payment accepts full refund",
			payment: Payment{ID: "p1", Amount: 5000, Status: StatusCaptured},
			amount:  5000,
		},
		{
			name:    "settled payment accepts partial refund",
			payment: Payment{ID: "p1", Amount: 5000, Status: StatusSettled},
			amount:  2000,
		},
		{
			name:    "partially refunded payment accepts remaining balance",
			payment: Payment{ID: "p1", Amount: 5000, Status: StatusPartiallyRefunded, RefundedAmount: 2000, RefundCount: 1},
			amount:  3000,
		},
		{
			name:        "voided payment",
			payment:     Payment{ID: "p1", Amount: 5000, Status: StatusVoided},
			amount:      1000,
			expectedErr: "payment p1 was voided and never charged",
		},
		{
			name:        "fully refunded payment",
			payment:     Payment{ID: "p1", Amount: 5000, Status: StatusRefunded, RefundedAmount: 5000},
			amount:      1000,
			expectedErr: "payment p1 already fully refunded",
		},
		{
			name:        "failed payment",
			payment:     Payment{ID: "p1", Amount: 5000, Status: StatusFailed},
			amount:      1000,
			expectedErr: "payment p1 failed and was never captured",
		},
		{
			name:        "pending payment",
			payment:     Payment{ID: "p1", Amount: 5000, Status: StatusPending},
			amount:      1000,
			expectedErr: "payment p1 is not captured yet (status pending)",
		},
		{
			name:        "zero amount",
			payment:     Payment{ID: "p1", Amount: 5000, Status: StatusCaptured},
			amount:      0,
			expectedErr: "refund amount must be positive, got 0",
		},
		{
			name:        "negative amount",
			payment:     Payment{ID: "p1", Amount: 5000, Status: StatusCaptured},
			amount:      -100,
			expectedErr: "refund amount must be positive, got -100",
		},
		{
			name:        "exceeds refundable balance",
			payment:     Payment{ID: "p1", Amount: 5000, Status: StatusPartiallyRefunded, RefundedAmount: 2000},
			amount:      4000,
			expectedErr: "refund amount 4000 exceeds refundable balance 3000",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateRefund(tt.payment, tt.amount)

			if tt.expectedErr != "" {
				require.EqualError(t, err, tt.expectedErr)
				require.True(t, IsValidation(err))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestApplyRefund(t *testing.T) {
	p := Payment{ID: "p1", Amount: 5000, Status: StatusCaptured}

	p = ApplyRefund(p, 2000)
	require.Equal(t, StatusPartiallyRefunded, p.Status)
	require.Equal(t, int64(2000), p.RefundedAmount)
	require.Equal(t, 1, p.RefundCount)
	require.Equal(t, int64(3000), p.RefundableAmount())

	p = ApplyRefund(p, 3000)
	require.Equal(t, StatusRefunded, p.Status)
	require.Equal(t, int64(5000), p.RefundedAmount)
	require.Equal(t, 2, p.RefundCount)
	require.Equal(t, int64(0), p.RefundableAmount())
	require.True(t, p.Status.Terminal())
}

func TestValidateCancel(t *testing.T) {
	var tests = []struct {
		name        string
		payment     Payment
		expectedErr string
	}{
		{
			name:    "pending payment is cancellable",
			payment: Payment{ID: "p1", Status: StatusPending},
		},
		{
			name:    "authorized payment is cancellable",
			payment: Payment{ID: "p1", Status: StatusAuthorized},
		},
		{
			name:        "voided payment",
			payment:     Payment{ID: "p1", Status: StatusVoided},
			expectedErr: "payment p1 already voided",
		},
		{
			name:        "failed payment",
			payment:     Payment{ID: "p1", Status: StatusFailed},
			expectedErr: "payment p1 already failed",
		},
		{
			name:        "refunded payment",
			payment:     Payment{ID: "p1", Status: StatusRefunded},
			expectedErr: "payment p1 already refunded, nothing to cancel",
		},
		{
			name:        "captured payment",
			payment:     Payment{ID: "p1", Status: StatusCaptured},
			expectedErr: "payment p1 already captured, refund it instead",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateCancel(tt.payment)

			if tt.expectedErr != "" {
				require.EqualError(t, err, tt.expectedErr)
				require.True(t, IsValidation(err))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestCaptureAndSettle(t *testing.T) {
	p := Payment{ID: "p1", Amount: 5000, Status: StatusPending}

	require.NoError(t, ValidateCapture(p))
	p = ApplyCapture(p, "txn-1")
	require.Equal(t, StatusCaptured, p.Status)
	require.Equal(t, "txn-1", p.ProcessorTxnID)

	require.Error(t, ValidateCapture(p))

	require.NoError(t, ValidateSettle(p))
	p = ApplySettle(p)
	require.Equal(t, StatusSettled, p.Status)

	// settle of a partially refunded payment keeps the refund status
	partial := Payment{ID: "p2", Amount: 5000, Status: StatusPartiallyRefunded, RefundedAmount: 1000}
	require.NoError(t, ValidateSettle(partial))
	partial = ApplySettle(partial)
	require.Equal(t, StatusPartiallyRefunded, partial.Status)
}

func TestApplyFailure(t *testing.T) {
	p := Payment{ID: "p1", Amount: 5000, Status: StatusPending}

	p = ApplyFailure(p, "card declined")

	require.Equal(t, StatusFailed, p.Status)
	require.Equal(t, "card declined", p.Reason)
	require.True(t, p.Status.Terminal())
}
