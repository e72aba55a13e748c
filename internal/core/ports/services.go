package ports

//go:generate mockgen -source=services.go -destination=mocks/services_mock.go -package=mocks

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"time"

	"multichain-settlement/internal/core/domain"
	"multichain-settlement/pkg/eip712"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EncryptionService seals secrets with AES-256-GCM. associatedData binds a
// ciphertext to its owner; decrypting with different data fails.
type EncryptionService interface {
	Encrypt(plaintext, associatedData []byte) (string, error)
	Decrypt(ciphertext string, associatedData []byte) ([]byte, error)
}

// TokenService verifies bearer tokens issued by the auth service.
type TokenService interface {
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID uuid.UUID
}

// IdempotencyCache is the Redis-layer idempotency check (fast path). It maps
// a scoped idempotency key to the payment the key first created.
type IdempotencyCache interface {
	Get(ctx context.Context, key string) (*uuid.UUID, error) // nil when the key is unknown
	Set(ctx context.Context, key string, paymentID uuid.UUID, ttl time.Duration) error
}

// PollLock guards a bundle's poll sequence across processes. owner is a
// token unique to the sequence holding the lock.
type PollLock interface {
	Acquire(ctx context.Context, bundleID, owner string, ttl time.Duration) (bool, error)
	Refresh(ctx context.Context, bundleID, owner string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, bundleID, owner string) error
}

// --- Outbound collaborators ---

// RelayerClient talks to the multi-chain bundle relayer.
type RelayerClient interface {
	SubmitBundle(ctx context.Context, calls []domain.BundleCall) (*domain.BundleReceipt, error)
	BundleStatus(ctx context.Context, bundleID string) ([]domain.TxReport, error)
}

// NonceReader reads the forwarder nonce of a signer on a chain.
type NonceReader interface {
	ForwarderNonce(ctx context.Context, chainID int64, owner common.Address) (*big.Int, error)
}

// Scheduler runs keyed tasks after a delay. Schedule returns false when a
// task with the same key is already pending.
type Scheduler interface {
	Schedule(key string, delay time.Duration, task func(ctx context.Context)) bool
}

// EventPublisher announces terminal payment states.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.PaymentEvent) error
}

// --- Service Ports (Business Logic) ---

// KeyService gives scoped access to a user's decrypted signing key.
type KeyService interface {
	// WithKey decrypts the key, passes it to fn and wipes it afterwards.
	WithKey(ctx context.Context, userID uuid.UUID, fn func(key *ecdsa.PrivateKey) error) error
	Address(ctx context.Context, userID uuid.UUID) (common.Address, error)
}

// SmartAccountService resolves a user's smart account on a chain.
type SmartAccountService interface {
	Resolve(ctx context.Context, userID uuid.UUID, chainID int64) (*domain.SmartAccount, error)
}

// AllocationService decides which tokens pay for an amount.
type AllocationService interface {
	Plan(amount decimal.Decimal, merchantID *uuid.UUID, balances []domain.TokenBalance) (domain.SpendPlan, error)
}

// BundleService builds, signs and submits bundles. Outcomes are recorded on
// the payment, so neither method returns an error.
type BundleService interface {
	// Abandon fails a payment whose bundle was never handed to the relayer.
	Abandon(ctx context.Context, payment *domain.Payment, reason string)
	ExecuteManaged(ctx context.Context, payment *domain.Payment, calls []domain.Call)
	ExecuteSigned(ctx context.Context, payment *domain.Payment, bundle []domain.BundleCall)
}

// ConfirmationService drives submitted bundles to a terminal state.
type ConfirmationService interface {
	Start(ctx context.Context, payment *domain.Payment) error
	Resume(ctx context.Context, payment *domain.Payment)
}

// PaymentService is the entry point for settlement requests.
type PaymentService interface {
	CreatePayment(ctx context.Context, req PaymentRequest) (*domain.Payment, error)
	RequestLoan(ctx context.Context, req LoanRequest) (*domain.Payment, error)
	SubmitSignedBundle(ctx context.Context, req SignedBundleRequest) (*domain.Payment, error)
	GetPayment(ctx context.Context, payerID, paymentID uuid.UUID) (*domain.Payment, error)
	RecoverInFlight(ctx context.Context) (int, error)
}

// PaymentRequest holds validated input for a managed payment.
type PaymentRequest struct {
	PayerID        uuid.UUID
	MerchantID     uuid.UUID
	ChainID        int64
	AmountUSD      decimal.Decimal
	IdempotencyKey string
}

// LoanRequest holds validated input for a managed borrowFrom.
type LoanRequest struct {
	PayerID         uuid.UUID
	ChainID         int64
	RevnetID        *big.Int
	SourceToken     common.Address
	MinBorrowAmount *big.Int
	CollateralCount *big.Int
	Beneficiary     *common.Address // nil = payer's smart account
	IdempotencyKey  string
}

// SignedRequest is a caller-signed forward request for one chain.
type SignedRequest struct {
	ChainID int64
	Signed  eip712.SignedForwardRequest
}

// SignedBundleRequest holds pre-signed forward requests for the
// self-custody path.
type SignedBundleRequest struct {
	PayerID        uuid.UUID
	IdempotencyKey string
	Requests       []SignedRequest
}
