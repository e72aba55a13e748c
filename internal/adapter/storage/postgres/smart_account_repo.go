package postgres

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"multichain-settlement/internal/core/domain"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SmartAccountRepo implements ports.SmartAccountRepository.
type SmartAccountRepo struct {
	pool Pool
}

// NewSmartAccountRepo creates a new SmartAccountRepo.
func NewSmartAccountRepo(pool Pool) *SmartAccountRepo {
	return &SmartAccountRepo{pool: pool}
}

// Get fetches the cached account for a user on a chain.
func (r *SmartAccountRepo) Get(ctx context.Context, userID uuid.UUID, chainID int64) (*domain.SmartAccount, error) {
	query := `SELECT user_id, chain_id, address, salt::text, owner_address, deployed, created_at
		FROM smart_accounts WHERE user_id = $1 AND chain_id = $2`

	var (
		a       domain.SmartAccount
		address string
		salt    string
		owner   string
	)
	err := r.pool.QueryRow(ctx, query, userID, chainID).Scan(
		&a.UserID, &a.ChainID, &address, &salt, &owner, &a.Deployed, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get smart account: %w", err)
	}

	a.Address = common.HexToAddress(address)
	a.OwnerAddress = common.HexToAddress(owner)
	var ok bool
	if a.Salt, ok = new(big.Int).SetString(salt, 10); !ok {
		return nil, fmt.Errorf("parse smart account salt %q", salt)
	}
	return &a, nil
}

// Create stores a derived account. A row already present for the user and
// chain wins; derivation is deterministic so both writers agree.
func (r *SmartAccountRepo) Create(ctx context.Context, a *domain.SmartAccount) error {
	query := `INSERT INTO smart_accounts (user_id, chain_id, address, salt, owner_address, deployed, created_at)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7)
		ON CONFLICT (user_id, chain_id) DO NOTHING`

	_, err := r.pool.Exec(ctx, query,
		a.UserID, a.ChainID, a.Address.Hex(), a.Salt.String(),
		a.OwnerAddress.Hex(), a.Deployed, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert smart account: %w", err)
	}
	return nil
}
