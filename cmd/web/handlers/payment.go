package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"paygate/cmd/web/validator"
	"paygate/internal/payment"
	"paygate/kit/breaker"
	"paygate/kit/db"
	"paygate/kit/processor"
)

type PaymentServiceContract interface {
	Create(ctx context.Context, req payment.CreateRequest) (payment.OperationResult, error)
	Refund(ctx context.Context, req payment.RefundRequest) (payment.OperationResult, error)
	Cancel(ctx context.Context, req payment.CancelRequest) (payment.OperationResult, error)
	Get(ctx context.Context, paymentID string) (*payment.Payment, error)
}

type Payment struct {
	json    *validator.JSON
	payment PaymentServiceContract
}

func NewPayment(jsonV *validator.JSON, paymentSvc PaymentServiceContract) *Payment {
	return &Payment{json: jsonV, payment: paymentSvc}
}

type createPaymentReq struct {
	PaymentID   string `json:"payment_id"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	MethodToken string `json:"method_token"`
}

type refundPaymentReq struct {
	Amount int64 `json:"amount"`
}

func (h *Payment) Create(w http.ResponseWriter, r *http.Request) {
	var req createPaymentReq
	if err := h.json.Decode(w, r, &req); err != nil {
		log.Printf("layer=handler component=payment method=Create err=%v", err)
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	res, err := h.payment.Create(r.Context(), payment.CreateRequest{
		PaymentID:      req.PaymentID,
		Amount:         req.Amount,
		Currency:       req.Currency,
		MethodToken:    req.MethodToken,
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		log.Printf("layer=handler component=payment method=Create payment_id=%s err=%v", req.PaymentID, err)
		writePaymentError(w, err)
		return
	}

	code := http.StatusCreated
	if res.Replayed {
		code = http.StatusOK
	}
	writePayment(w, code, res)
}

func (h *Payment) Get(w http.ResponseWriter, r *http.Request) {
	paymentID := r.PathValue("id")
	if paymentID == "" {
		log.Printf("layer=handler component=payment method=Get err=missing payment_id")
		http.Error(w, "missing payment_id", http.StatusBadRequest)
		return
	}

	p, err := h.payment.Get(r.Context(), paymentID)
	if err != nil {
		log.Printf("layer=handler component=payment method=Get payment_id=%s err=%v", paymentID, err)
		writePaymentError(w, err)
		return
	}
	writePayment(w, http.StatusOK, payment.OperationResult{Payment: *p})
}

func (h *Payment) Refund(w http.ResponseWriter, r *http.Request) {
	paymentID := r.PathValue("id")
	if paymentID == "" {
		http.Error(w, "missing payment_id", http.StatusBadRequest)
		return
	}
	var req refundPaymentReq
	if err := h.json.Decode(w, r, &req); err != nil {
		log.Printf("layer=handler component=payment method=Refund payment_id=%s err=%v", paymentID, err)
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	res, err := h.payment.Refund(r.Context(), payment.RefundRequest{
		PaymentID:      paymentID,
		Amount:         req.Amount,
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		log.Printf("layer=handler component=payment method=Refund payment_id=%s err=%v", paymentID, err)
		writePaymentError(w, err)
		return
	}
	writePayment(w, http.StatusOK, res)
}

func (h *Payment) Cancel(w http.ResponseWriter, r *http.Request) {
	paymentID := r.PathValue("id")
	if paymentID == "" {
		http.Error(w, "missing payment_id", http.StatusBadRequest)
		return
	}

	res, err := h.payment.Cancel(r.Context(), payment.CancelRequest{
		PaymentID:      paymentID,
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		log.Printf("layer=handler component=payment method=Cancel payment_id=%s err=%v", paymentID, err)
		writePaymentError(w, err)
		return
	}
	writePayment(w, http.StatusOK, res)
}

func writePayment(w http.ResponseWriter, code int, res payment.OperationResult) {
	w.Header().Set("Content-Type", "application/json")
	if res.Replayed {
		w.Header().Set("Idempotent-Replay", "true")
	}
	w.WriteHeader(code)
	p := res.Payment
	if err := json.NewEncoder(w).Encode(map[string]any{
		"payment_id":      p.ID,
		"amount":          p.Amount,
		"currency":        p.Currency,
		"status":          string(p.Status),
		"refunded_amount": p.RefundedAmount,
		"refund_count":    p.RefundCount,
		"reason":          p.Reason,
	}); err != nil {
		log.Printf("layer=handler component=payment payment_id=%s err=%v", p.ID, err)
	}
}

func writePaymentError(w http.ResponseWriter, err error) {
	switch {
	case payment.IsValidation(err) || db.IsInvalid(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case db.IsNotFound(err):
		http.Error(w, "not found", http.StatusNotFound)
	case breaker.IsOpen(err):
		http.Error(w, "processor unavailable", http.StatusServiceUnavailable)
	case errors.Is(err, processor.ErrDeclined) || errors.Is(err, processor.ErrFraudBlocked):
		http.Error(w, strings.TrimPrefix(err.Error(), "processor: "), http.StatusPaymentRequired)
	case errors.Is(err, processor.ErrTimeout) || errors.Is(err, processor.ErrServer) || errors.Is(err, context.DeadlineExceeded):
		http.Error(w, "processor timeout", http.StatusGatewayTimeout)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
