package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"paygate/internal/payment"
	"paygate/internal/webhook"
	"paygate/kit/db"
)

const maxWebhookBody = 1 << 20

type WebhookServiceContract interface {
	Receive(ctx context.Context, rawBody []byte, signature string) (webhook.Outcome, error)
	Replay(ctx context.Context, eventID string) error
}

type Webhook struct {
	intake WebhookServiceContract
}

func NewWebhook(intake WebhookServiceContract) *Webhook {
	return &Webhook{intake: intake}
}

// Receive passes the exact raw body to the intake so the signature is
// verified over the bytes the processor signed, not a re-serialization.
func (h *Webhook) Receive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		log.Printf("layer=handler component=webhook method=Receive err=%v", err)
		http.Error(w, "cannot read body", http.StatusBadRequest)
		return
	}

	outcome, err := h.intake.Receive(r.Context(), body, r.Header.Get("X-Webhook-Signature"))
	if err != nil {
		log.Printf("layer=handler component=webhook method=Receive event_id=%s err=%v", outcome.EventID, err)
		switch {
		case errors.Is(err, webhook.ErrBadSignature):
			http.Error(w, "invalid signature", http.StatusUnauthorized)
		case payment.IsValidation(err):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case db.IsNotFound(err):
			http.Error(w, "unknown payment", http.StatusNotFound)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"event_id":  outcome.EventID,
		"duplicate": outcome.Duplicate,
	}); err != nil {
		log.Printf("layer=handler component=webhook method=Receive event_id=%s err=%v", outcome.EventID, err)
	}
}

func (h *Webhook) Replay(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	if eventID == "" {
		http.Error(w, "missing event_id", http.StatusBadRequest)
		return
	}

	if err := h.intake.Replay(r.Context(), eventID); err != nil {
		log.Printf("layer=handler component=webhook method=Replay event_id=%s err=%v", eventID, err)
		switch {
		case db.IsNotFound(err):
			http.Error(w, "unknown event", http.StatusNotFound)
		case payment.IsValidation(err):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"event_id": eventID, "replayed": true}); err != nil {
		log.Printf("layer=handler component=webhook method=Replay event_id=%s err=%v", eventID, err)
	}
}
