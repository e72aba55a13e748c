package ports

//go:generate mockgen -source=repositories.go -destination=mocks/repositories_mock.go -package=mocks

import (
	"context"

	"multichain-settlement/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PaymentRepository defines persistence operations for payments.
type PaymentRepository interface {
	Create(ctx context.Context, tx pgx.Tx, payment *domain.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	// ListByStatus returns payments in any of statuses, oldest first.
	ListByStatus(ctx context.Context, statuses []domain.PaymentStatus, limit int) ([]domain.Payment, error)
	// UpdateStatus applies upd only if the stored status still equals from.
	// It returns false when another writer got there first.
	UpdateStatus(ctx context.Context, id uuid.UUID, from domain.PaymentStatus, upd domain.StatusUpdate) (bool, error)
	// AttachBundle sets the bundle id of a payment that has none, in any
	// status. It returns false when a bundle id was already recorded.
	AttachBundle(ctx context.Context, id uuid.UUID, bundleID string) (bool, error)
}

// IdempotencyRepository defines persistence for idempotency logs (DB backup).
type IdempotencyRepository interface {
	Create(ctx context.Context, tx pgx.Tx, log *domain.IdempotencyLog) error
	Get(ctx context.Context, key string) (*domain.IdempotencyLog, error)
}

// BalanceRepository reads token balances synced by other services.
type BalanceRepository interface {
	ListByOwner(ctx context.Context, ownerID uuid.UUID, chainID int64) ([]domain.TokenBalance, error)
}

// MerchantRepository defines read operations for merchant stores.
type MerchantRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Merchant, error)
}

// SmartAccountRepository caches derived smart accounts.
type SmartAccountRepository interface {
	Get(ctx context.Context, userID uuid.UUID, chainID int64) (*domain.SmartAccount, error)
	// Create inserts the account; an existing row is left untouched.
	Create(ctx context.Context, account *domain.SmartAccount) error
}

// SigningKeyRepository reads encrypted user signing keys.
type SigningKeyRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.SigningKey, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
