package postgres

import (
	"context"
	"fmt"
	"math/big"

	"multichain-settlement/internal/core/domain"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceRepo implements ports.BalanceRepository. Rows are written by the
// balance sync job; this side only reads them.
type BalanceRepo struct {
	pool Pool
}

// NewBalanceRepo creates a new BalanceRepo.
func NewBalanceRepo(pool Pool) *BalanceRepo {
	return &BalanceRepo{pool: pool}
}

// ListByOwner returns the owner's balances on a chain in wallet order.
func (r *BalanceRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, chainID int64) ([]domain.TokenBalance, error) {
	query := `SELECT owner_id, store_id, project_id, chain_id, token_address, balance_usd::text, raw_balance::text
		FROM token_balances WHERE owner_id = $1 AND chain_id = $2 ORDER BY position ASC`

	rows, err := r.pool.Query(ctx, query, ownerID, chainID)
	if err != nil {
		return nil, fmt.Errorf("list balances by owner: %w", err)
	}
	defer rows.Close()

	var balances []domain.TokenBalance
	for rows.Next() {
		var (
			b            domain.TokenBalance
			tokenAddress *string
			balanceUSD   string
			raw          string
		)
		if err := rows.Scan(&b.OwnerID, &b.StoreID, &b.ProjectID, &b.ChainID,
			&tokenAddress, &balanceUSD, &raw); err != nil {
			return nil, fmt.Errorf("scan balance row: %w", err)
		}

		if tokenAddress != nil {
			if !common.IsHexAddress(*tokenAddress) {
				return nil, fmt.Errorf("malformed token address %q", *tokenAddress)
			}
			addr := common.HexToAddress(*tokenAddress)
			b.TokenAddress = &addr
		}
		if b.BalanceUSD, err = decimal.NewFromString(balanceUSD); err != nil {
			return nil, fmt.Errorf("parse balance_usd: %w", err)
		}
		var ok bool
		if b.RawBalance, ok = new(big.Int).SetString(raw, 10); !ok {
			return nil, fmt.Errorf("parse raw_balance %q", raw)
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate balance rows: %w", err)
	}
	return balances, nil
}
