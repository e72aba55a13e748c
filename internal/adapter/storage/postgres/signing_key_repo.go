package postgres

import (
	"context"
	"errors"
	"fmt"

	"multichain-settlement/internal/core/domain"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SigningKeyRepo implements ports.SigningKeyRepository.
type SigningKeyRepo struct {
	pool Pool
}

// NewSigningKeyRepo creates a new SigningKeyRepo.
func NewSigningKeyRepo(pool Pool) *SigningKeyRepo {
	return &SigningKeyRepo{pool: pool}
}

// GetByUserID fetches the user's encrypted signing key.
func (r *SigningKeyRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.SigningKey, error) {
	query := `SELECT user_id, address, encrypted_key, created_at FROM signing_keys WHERE user_id = $1`

	var (
		k       domain.SigningKey
		address string
	)
	err := r.pool.QueryRow(ctx, query, userID).Scan(&k.UserID, &address, &k.EncryptedKey, &k.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get signing key: %w", err)
	}
	k.Address = common.HexToAddress(address)
	return &k, nil
}
