package webhook

import (
	"encoding/json"
	"time"
)

// Event is one webhook delivery from the processor. EventID is the
// deduplication key; once processed the event is immutable except for
// explicit replay, which re-runs processing without creating a second
// logical event.
type Event struct {
	EventID    string
	EventType  string
	Payload    json.RawMessage
	Signature  string
	ReceivedAt time.Time
	Processed  bool
}

// Envelope is the JSON body of an inbound delivery.
type Envelope struct {
	EventID   string          `json:"eventId"`
	EventType string          `json:"eventType"`
	Payload   json.RawMessage `json:"payload"`
}

// PaymentPayload is the inner payload for payment-scoped event types.
type PaymentPayload struct {
	PaymentID     string `json:"payment_id"`
	Amount        int64  `json:"amount,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
}

// Outcome reports what Receive did with a delivery.
type Outcome struct {
	EventID   string
	Duplicate bool
}
