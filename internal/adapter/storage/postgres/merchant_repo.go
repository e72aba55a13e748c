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

// MerchantRepo implements ports.MerchantRepository.
type MerchantRepo struct {
	pool Pool
}

// NewMerchantRepo creates a new MerchantRepo.
func NewMerchantRepo(pool Pool) *MerchantRepo {
	return &MerchantRepo{pool: pool}
}

// GetByID fetches a merchant store by its UUID.
func (r *MerchantRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Merchant, error) {
	query := `SELECT id, name, project_id, payout_address, status, created_at, updated_at
		FROM merchants WHERE id = $1`

	var (
		m      domain.Merchant
		payout string
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.Name, &m.ProjectID, &payout, &m.Status, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get merchant by id: %w", err)
	}
	if !common.IsHexAddress(payout) {
		return nil, fmt.Errorf("merchant %s has malformed payout address %q", id, payout)
	}
	m.PayoutAddress = common.HexToAddress(payout)
	return &m, nil
}
