package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"multichain-settlement/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const paymentColumns = `id, kind, payer_id, merchant_id, chain_id, amount_usd::text, idempotency_key,
		plan, bundle, status, bundle_id, tx_hash, block_number, error_code, error_message,
		confirmation_code, poll_attempts, created_at, updated_at`

// PaymentRepo implements ports.PaymentRepository.
type PaymentRepo struct {
	pool Pool
}

// NewPaymentRepo creates a new PaymentRepo.
func NewPaymentRepo(pool Pool) *PaymentRepo {
	return &PaymentRepo{pool: pool}
}

// Create inserts a new payment within a database transaction.
func (r *PaymentRepo) Create(ctx context.Context, tx pgx.Tx, p *domain.Payment) error {
	plan, err := json.Marshal(p.Plan)
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	bundle, err := json.Marshal(p.Bundle)
	if err != nil {
		return fmt.Errorf("marshal bundle: %w", err)
	}

	query := `INSERT INTO payments (id, kind, payer_id, merchant_id, chain_id, amount_usd, idempotency_key,
		plan, bundle, status, poll_attempts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8, $9, $10, $11, $12, $13)`

	_, err = tx.Exec(ctx, query,
		p.ID, p.Kind, p.PayerID, p.MerchantID, p.ChainID,
		p.AmountUSD.String(), p.IdempotencyKey, plan, bundle,
		p.Status, p.PollAttempts, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetByID fetches a payment by UUID.
func (r *PaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	p, err := scanPayment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment by id: %w", err)
	}
	return p, nil
}

// ListByStatus fetches payments in any of the given statuses, oldest first.
func (r *PaymentRepo) ListByStatus(ctx context.Context, statuses []domain.PaymentStatus, limit int) ([]domain.Payment, error) {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}

	query := `SELECT ` + paymentColumns + ` FROM payments
		WHERE status = ANY($1) ORDER BY created_at ASC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, names, limit)
	if err != nil {
		return nil, fmt.Errorf("list payments by status: %w", err)
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment row: %w", err)
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payment rows: %w", err)
	}
	return payments, nil
}

// UpdateStatus applies upd if the stored status is still from. The status
// column doubles as a compare-and-set guard, so a terminal row is never
// overwritten.
func (r *PaymentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from domain.PaymentStatus, upd domain.StatusUpdate) (bool, error) {
	if !from.CanTransitionTo(upd.Status) {
		return false, fmt.Errorf("invalid payment transition %s -> %s", from, upd.Status)
	}

	query := `UPDATE payments SET status = $1,
		bundle_id = COALESCE($2, bundle_id),
		tx_hash = COALESCE($3, tx_hash),
		block_number = COALESCE($4, block_number),
		error_code = COALESCE($5, error_code),
		error_message = COALESCE($6, error_message),
		confirmation_code = COALESCE($7, confirmation_code),
		poll_attempts = $8,
		updated_at = $9
		WHERE id = $10 AND status = $11`

	tag, err := r.pool.Exec(ctx, query,
		upd.Status, upd.BundleID, upd.TxHash, upd.BlockNumber,
		upd.ErrorCode, upd.ErrorMessage, upd.ConfirmationCode,
		upd.PollAttempts, time.Now().UTC(), id, from,
	)
	if err != nil {
		return false, fmt.Errorf("update payment status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// AttachBundle records bundleID on a payment that has none yet, whatever its
// status.
func (r *PaymentRepo) AttachBundle(ctx context.Context, id uuid.UUID, bundleID string) (bool, error) {
	query := `UPDATE payments SET bundle_id = $1, updated_at = $2
		WHERE id = $3 AND bundle_id IS NULL`

	tag, err := r.pool.Exec(ctx, query, bundleID, time.Now().UTC(), id)
	if err != nil {
		return false, fmt.Errorf("attach bundle: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var (
		p          domain.Payment
		amount     string
		plan       []byte
		bundle     []byte
		merchantID *uuid.UUID
	)
	err := row.Scan(
		&p.ID, &p.Kind, &p.PayerID, &merchantID, &p.ChainID, &amount, &p.IdempotencyKey,
		&plan, &bundle, &p.Status, &p.BundleID, &p.TxHash, &p.BlockNumber, &p.ErrorCode, &p.ErrorMessage,
		&p.ConfirmationCode, &p.PollAttempts, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.MerchantID = merchantID

	if p.AmountUSD, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("parse amount_usd: %w", err)
	}
	if len(plan) > 0 {
		if err := json.Unmarshal(plan, &p.Plan); err != nil {
			return nil, fmt.Errorf("unmarshal plan: %w", err)
		}
	}
	if len(bundle) > 0 {
		if err := json.Unmarshal(bundle, &p.Bundle); err != nil {
			return nil, fmt.Errorf("unmarshal bundle: %w", err)
		}
	}
	return &p, nil
}
