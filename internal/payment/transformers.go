package payment

import (
	"time"

	"paygate/internal/events"
)

func ToPaymentCreatedEvent(p Payment) events.PaymentCreated {
	return events.PaymentCreated{PaymentID: p.ID, Amount: p.Amount, Currency: p.Currency, At: time.Now().UTC()}
}

func ToPaymentCapturedEvent(p Payment) events.PaymentCaptured {
	return events.PaymentCaptured{PaymentID: p.ID, Amount: p.Amount, TransactionID: p.ProcessorTxnID, At: time.Now().UTC()}
}

func ToPaymentSettledEvent(p Payment) events.PaymentSettled {
	return events.PaymentSettled{PaymentID: p.ID, At: time.Now().UTC()}
}

func ToPaymentFailedEvent(p Payment, code string) events.PaymentFailed {
	return events.PaymentFailed{PaymentID: p.ID, Reason: p.Reason, Code: code, At: time.Now().UTC()}
}

func ToPaymentRefundedEvent(p Payment, amount int64) events.PaymentRefunded {
	return events.PaymentRefunded{
		PaymentID:      p.ID,
		Amount:         amount,
		RefundedAmount: p.RefundedAmount,
		Full:           p.Status == StatusRefunded,
		At:             time.Now().UTC(),
	}
}

func ToPaymentVoidedEvent(p Payment) events.PaymentVoided {
	return events.PaymentVoided{PaymentID: p.ID, At: time.Now().UTC()}
}
