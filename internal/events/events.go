package events

import "time"

type PaymentCreated struct {
	PaymentID string    `json:"payment_id"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	At        time.Time `json:"at"`
}

func (PaymentCreated) Name() string { return "payment.created" }

func (e PaymentCreated) PartitionKey() string { return e.PaymentID }

type PaymentCaptured struct {
	PaymentID     string    `json:"payment_id"`
	Amount        int64     `json:"amount"`
	TransactionID string    `json:"transaction_id"`
	At            time.Time `json:"at"`
}

func (PaymentCaptured) Name() string { return "payment.captured" }

func (e PaymentCaptured) PartitionKey() string { return e.PaymentID }

type PaymentSettled struct {
	PaymentID string    `json:"payment_id"`
	At        time.Time `json:"at"`
}

func (PaymentSettled) Name() string { return "payment.settled" }

func (e PaymentSettled) PartitionKey() string { return e.PaymentID }

type PaymentFailed struct {
	PaymentID string    `json:"payment_id"`
	Reason    string    `json:"reason"`
	Code      string    `json:"code"`
	At        time.Time `json:"at"`
}

func (PaymentFailed) Name() string { return "payment.failed" }

func (e PaymentFailed) PartitionKey() string { return e.PaymentID }

type PaymentRefunded struct {
	PaymentID      string    `json:"payment_id"`
	Amount         int64     `json:"amount"`
	RefundedAmount int64     `json:"refunded_amount"`
	Full           bool      `json:"full"`
	At             time.Time `json:"at"`
}

func (PaymentRefunded) Name() string { return "payment.refunded" }

func (e PaymentRefunded) PartitionKey() string { return e.PaymentID }

type PaymentVoided struct {
	PaymentID string    `json:"payment_id"`
	At        time.Time `json:"at"`
}

func (PaymentVoided) Name() string { return "payment.voided" }

func (e PaymentVoided) PartitionKey() string { return e.PaymentID }

type WebhookReceived struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	At        time.Time `json:"at"`
}

func (WebhookReceived) Name() string { return "webhook.received" }

func (e WebhookReceived) PartitionKey() string { return e.EventID }

type WebhookDuplicate struct {
	EventID string    `json:"event_id"`
	At      time.Time `json:"at"`
}

func (WebhookDuplicate) Name() string { return "webhook.duplicate" }

func (e WebhookDuplicate) PartitionKey() string { return e.EventID }

type WebhookRejected struct {
	Reason string    `json:"reason"`
	At     time.Time `json:"at"`
}

func (WebhookRejected) Name() string { return "webhook.rejected" }

func (e WebhookRejected) PartitionKey() string { return "" }

type WebhookReplayed struct {
	EventID string    `json:"event_id"`
	At      time.Time `json:"at"`
}

func (WebhookReplayed) Name() string { return "webhook.replayed" }

func (e WebhookReplayed) PartitionKey() string { return e.EventID }
