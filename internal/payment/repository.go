package payment

import (
	"context"
	"log"
	"sync"

	"paygate/kit/db"
)

type SQLRepository struct {
	db db.Client
}

func NewSQLRepository(dbClient db.Client) *SQLRepository {
	return &SQLRepository{db: dbClient}
}

const (
	qPaymentUpsert = "INSERT INTO payments (payment_id, amount, currency, status, refunded_amount, refund_count, processor_txn_id, reason) VALUES (?, ?, ?, ?, ?, ?, ?, ?) ON DUPLICATE KEY UPDATE amount=?, currency=?, status=?, refunded_amount=?, refund_count=?, processor_txn_id=?, reason=?"
	qPaymentGet    = "SELECT payment_id, amount, currency, status, refunded_amount, refund_count, processor_txn_id, reason FROM payments WHERE payment_id = ?"
)

func (r *SQLRepository) Save(ctx context.Context, p *Payment) error {
	if err := r.db.Exec(
		ctx,
		qPaymentUpsert,
		p.ID,
		p.Amount,
		p.Currency,
		p.Status,
		p.RefundedAmount,
		p.RefundCount,
		p.ProcessorTxnID,
		p.Reason,
		p.Amount,
		p.Currency,
		p.Status,
		p.RefundedAmount,
		p.RefundCount,
		p.ProcessorTxnID,
		p.Reason,
	); err != nil {
		log.Printf("layer=repo component=payment repo=SQLRepository method=Save payment_id=%s err=%v", p.ID, err)
		return err
	}
	return nil
}

func (r *SQLRepository) Get(ctx context.Context, paymentID string) (*Payment, error) {
	row, err := r.db.QueryRow(ctx, qPaymentGet, paymentID)
	if err != nil {
		log.Printf("layer=repo component=payment repo=SQLRepository method=Get payment_id=%s err=%v", paymentID, err)
		return nil, err
	}
	var p Payment
	if err := row.Scan(&p.ID, &p.Amount, &p.Currency, &p.Status, &p.RefundedAmount, &p.RefundCount, &p.ProcessorTxnID, &p.Reason); err != nil {
		log.Printf("layer=repo component=payment repo=SQLRepository method=Get payment_id=%s err=%v", paymentID, err)
		return nil, err
	}
	return &p, nil
}

type InMemoryRepository struct {
	mu   sync.Mutex
	data map[string]*Payment
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{data: make(map[string]*Payment)}
}

func (r *InMemoryRepository) Save(ctx context.Context, p *Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cpy := *p
	r.data[p.ID] = &cpy
	return nil
}

func (r *InMemoryRepository) Get(ctx context.Context, paymentID string) (*Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.data[paymentID]
	if !ok {
		log.Printf("layer=repo component=payment repo=InMemoryRepository method=Get payment_id=%s err=%v", paymentID, db.ErrNotFound)
		return nil, db.ErrNotFound
	}
	cpy := *p
	return &cpy, nil
}
