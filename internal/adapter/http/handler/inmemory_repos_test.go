package handler_test

import (
	"context"
	"slices"
	"sync"
	"time"

	"multichain-settlement/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory Merchant Repo ---

type inMemoryMerchantRepo struct {
	mu        sync.RWMutex
	merchants map[uuid.UUID]*domain.Merchant
}

func newInMemoryMerchantRepo(merchants ...*domain.Merchant) *inMemoryMerchantRepo {
	r := &inMemoryMerchantRepo{merchants: make(map[uuid.UUID]*domain.Merchant)}
	for _, m := range merchants {
		r.merchants[m.ID] = m
	}
	return r
}

func (r *inMemoryMerchantRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.merchants[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

// --- In-Memory Payment Repo ---

type inMemoryPaymentRepo struct {
	mu       sync.RWMutex
	payments map[uuid.UUID]domain.Payment
}

func newInMemoryPaymentRepo() *inMemoryPaymentRepo {
	return &inMemoryPaymentRepo{payments: make(map[uuid.UUID]domain.Payment)}
}

// Create enforces UNIQUE (payer_id, idempotency_key) like the real table.
func (r *inMemoryPaymentRepo) Create(ctx context.Context, tx pgx.Tx, p *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.payments {
		if existing.PayerID == p.PayerID && existing.IdempotencyKey == p.IdempotencyKey {
			return &pgconn.PgError{Code: "23505", ConstraintName: "payments_payer_id_idempotency_key_key"}
		}
	}
	r.payments[p.ID] = *p
	return nil
}

func (r *inMemoryPaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *inMemoryPaymentRepo) ListByStatus(ctx context.Context, statuses []domain.PaymentStatus, limit int) ([]domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Payment
	for _, p := range r.payments {
		if slices.Contains(statuses, p.Status) {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b domain.Payment) int { return a.CreatedAt.Compare(b.CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *inMemoryPaymentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from domain.PaymentStatus, upd domain.StatusUpdate) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok || p.Status != from {
		return false, nil
	}
	upd.Apply(&p)
	p.UpdatedAt = time.Now().UTC()
	r.payments[id] = p
	return true, nil
}

func (r *inMemoryPaymentRepo) AttachBundle(ctx context.Context, id uuid.UUID, bundleID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok || p.BundleID != nil {
		return false, nil
	}
	p.BundleID = &bundleID
	p.UpdatedAt = time.Now().UTC()
	r.payments[id] = p
	return true, nil
}

func (r *inMemoryPaymentRepo) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.payments)
}

// --- In-Memory Balance Repo ---

type inMemoryBalanceRepo struct {
	mu       sync.RWMutex
	balances []domain.TokenBalance
}

func (r *inMemoryBalanceRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, chainID int64) ([]domain.TokenBalance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.TokenBalance
	for _, b := range r.balances {
		if b.OwnerID == ownerID && b.ChainID == chainID {
			out = append(out, b)
		}
	}
	return out, nil
}

// --- In-Memory Signing Key Repo ---

type inMemorySigningKeyRepo struct {
	mu   sync.RWMutex
	keys map[uuid.UUID]*domain.SigningKey
}

func newInMemorySigningKeyRepo() *inMemorySigningKeyRepo {
	return &inMemorySigningKeyRepo{keys: make(map[uuid.UUID]*domain.SigningKey)}
}

func (r *inMemorySigningKeyRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.SigningKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.keys[userID], nil
}

func (r *inMemorySigningKeyRepo) put(k *domain.SigningKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys[k.UserID] = k
}

// --- In-Memory Smart Account Repo ---

type accountKey struct {
	userID  uuid.UUID
	chainID int64
}

type inMemorySmartAccountRepo struct {
	mu       sync.RWMutex
	accounts map[accountKey]domain.SmartAccount
}

func newInMemorySmartAccountRepo() *inMemorySmartAccountRepo {
	return &inMemorySmartAccountRepo{accounts: make(map[accountKey]domain.SmartAccount)}
}

func (r *inMemorySmartAccountRepo) Get(ctx context.Context, userID uuid.UUID, chainID int64) (*domain.SmartAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[accountKey{userID, chainID}]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *inMemorySmartAccountRepo) Create(ctx context.Context, a *domain.SmartAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := accountKey{a.UserID, a.ChainID}
	if _, exists := r.accounts[k]; !exists {
		r.accounts[k] = *a
	}
	return nil
}

// --- In-Memory Idempotency Repo ---

type inMemoryIdempotencyRepo struct {
	mu   sync.RWMutex
	logs map[string]*domain.IdempotencyLog
}

func newInMemoryIdempotencyRepo() *inMemoryIdempotencyRepo {
	return &inMemoryIdempotencyRepo{logs: make(map[string]*domain.IdempotencyLog)}
}

func (r *inMemoryIdempotencyRepo) Create(ctx context.Context, tx pgx.Tx, log *domain.IdempotencyLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs[log.Key] = log
	return nil
}

func (r *inMemoryIdempotencyRepo) Get(ctx context.Context, key string) (*domain.IdempotencyLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.logs[key], nil
}

// --- In-Memory Transactor (no-op tx) ---

type inMemoryTransactor struct{}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &noopTx{}, nil
}

// noopTx is a no-op pgx.Tx; the in-memory repos ignore it.
type noopTx struct {
	pgx.Tx
}

func (t *noopTx) Commit(ctx context.Context) error   { return nil }
func (t *noopTx) Rollback(ctx context.Context) error { return nil }
