package payment

type Status string

const (
	StatusPending           Status = "pending"
	StatusAuthorized        Status = "authorized"
	StatusCaptured          Status = "captured"
	StatusSettled           Status = "settled"
	StatusVoided            Status = "voided"
	StatusRefunded          Status = "refunded"
	StatusPartiallyRefunded Status = "partially_refunded"
	StatusFailed            Status = "failed"
)

// Terminal reports whether no further transition can leave s.
func (s Status) Terminal() bool {
	return s == StatusVoided || s == StatusRefunded || s == StatusFailed
}

// Payment carries the authoritative fields of the resilience core. Amounts
// are in minor units (cents).
type Payment struct {
	ID             string
	Amount         int64
	Currency       string
	Status         Status
	RefundedAmount int64
	RefundCount    int
	ProcessorTxnID string
	Reason         string
}

// RefundableAmount is the ceiling for any further refund.
func (p Payment) RefundableAmount() int64 {
	return p.Amount - p.RefundedAmount
}
