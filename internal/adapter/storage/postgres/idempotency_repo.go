package postgres

import (
	"context"
	"errors"
	"fmt"

	"multichain-settlement/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// IdempotencyRepo implements ports.IdempotencyRepository. A log row only
// names the payment a key created; the payment row is the source of truth.
type IdempotencyRepo struct {
	pool Pool
}

// NewIdempotencyRepo creates a new IdempotencyRepo.
func NewIdempotencyRepo(pool Pool) *IdempotencyRepo {
	return &IdempotencyRepo{pool: pool}
}

// Create records the key inside the transaction that creates the payment. A
// second payment under the same key fails with a unique violation.
func (r *IdempotencyRepo) Create(ctx context.Context, tx pgx.Tx, entry *domain.IdempotencyLog) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO idempotency_logs (key, payment_id, created_at) VALUES ($1, $2, $3)`,
		entry.Key, entry.PaymentID, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert idempotency log %q: %w", entry.Key, err)
	}
	return nil
}

// Get returns the log recorded under key, or nil if there is none.
func (r *IdempotencyRepo) Get(ctx context.Context, key string) (*domain.IdempotencyLog, error) {
	entry := &domain.IdempotencyLog{}
	err := r.pool.QueryRow(ctx,
		`SELECT key, payment_id, created_at FROM idempotency_logs WHERE key = $1`, key).
		Scan(&entry.Key, &entry.PaymentID, &entry.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get idempotency log: %w", err)
	}
	return entry, nil
}
