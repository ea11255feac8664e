package payment

// Pure lifecycle rules: no I/O, no clocks. Callers are responsible for the
// read-validate-apply-persist sequence being done under a per-payment lock.

// IsRefundable reports whether a payment in status s holds captured funds.
func IsRefundable(s Status) bool {
	return s == StatusCaptured || s == StatusSettled
}

// IsCancellable reports whether a payment in status s can still be voided.
func IsCancellable(s Status) bool {
	return s == StatusPending || s == StatusAuthorized
}

// ValidateRefund checks that amount can be refunded against p. Each illegal
// state produces its own message so callers can tell a voided payment from
// an exhausted one.
func ValidateRefund(p Payment, amount int64) error {
	if !IsRefundable(p.Status) && p.Status != StatusPartiallyRefunded {
		switch p.Status {
		case StatusVoided:
			return NewValidationError("payment %s was voided and never charged", p.ID)
		case StatusRefunded:
			return NewValidationError("payment %s already fully refunded", p.ID)
		case StatusFailed:
			return NewValidationError("payment %s failed and was never captured", p.ID)
		default:
			return NewValidationError("payment %s is not captured yet (status %s)", p.ID, p.Status)
		}
	}
	if amount <= 0 {
		return NewValidationError("refund amount must be positive, got %d", amount)
	}
	if remaining := p.RefundableAmount(); amount > remaining {
		if remaining == 0 {
			return NewValidationError("payment %s already fully refunded", p.ID)
		}
		return NewValidationError("refund amount %d exceeds refundable balance %d", amount, remaining)
	}
	return nil
}

// ApplyRefund assumes ValidateRefund passed.
func ApplyRefund(p Payment, amount int64) Payment {
	p.RefundedAmount += amount
	p.RefundCount++
	if p.RefundedAmount == p.Amount {
		p.Status = StatusRefunded
	} else {
		p.Status = StatusPartiallyRefunded
	}
	return p
}

func ValidateCancel(p Payment) error {
	if IsCancellable(p.Status) {
		return nil
	}
	switch p.Status {
	case StatusVoided:
		return NewValidationError("payment %s already voided", p.ID)
	case StatusFailed:
		return NewValidationError("payment %s already failed", p.ID)
	case StatusRefunded, StatusPartiallyRefunded:
		return NewValidationError("payment %s already refunded, nothing to cancel", p.ID)
	default:
		return NewValidationError("payment %s already captured, refund it instead", p.ID)
	}
}

func ApplyCancel(p Payment) Payment {
	p.Status = StatusVoided
	return p
}

func ValidateCapture(p Payment) error {
	if p.Status == StatusPending || p.Status == StatusAuthorized {
		return nil
	}
	return NewValidationError("payment %s cannot be captured from status %s", p.ID, p.Status)
}

func ApplyCapture(p Payment, transactionID string) Payment {
	p.Status = StatusCaptured
	p.ProcessorTxnID = transactionID
	return p
}

func ValidateSettle(p Payment) error {
	if p.Status == StatusCaptured || p.Status == StatusPartiallyRefunded {
		return nil
	}
	return NewValidationError("payment %s cannot settle from status %s", p.ID, p.Status)
}

func ApplySettle(p Payment) Payment {
	if p.Status == StatusCaptured {
		p.Status = StatusSettled
	}
	return p
}

func ApplyFailure(p Payment, reason string) Payment {
	p.Status = StatusFailed
	p.Reason = reason
	return p
}
