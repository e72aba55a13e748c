package service

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"multichain-settlement/internal/core/domain"
	"multichain-settlement/internal/core/ports"
	"multichain-settlement/pkg/apperror"
	"multichain-settlement/pkg/create2"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SmartAccountServiceImpl implements ports.SmartAccountService.
type SmartAccountServiceImpl struct {
	accountRepo ports.SmartAccountRepository
	keySvc      ports.KeyService
	deriver     *create2.Deriver
	defaultSalt *big.Int
	log         zerolog.Logger
}

// NewSmartAccountService creates a new SmartAccountServiceImpl. New accounts
// use salt 0.
func NewSmartAccountService(
	accountRepo ports.SmartAccountRepository,
	keySvc ports.KeyService,
	deriver *create2.Deriver,
	log zerolog.Logger,
) *SmartAccountServiceImpl {
	return &SmartAccountServiceImpl{
		accountRepo: accountRepo,
		keySvc:      keySvc,
		deriver:     deriver,
		defaultSalt: big.NewInt(0),
		log:         log,
	}
}

// Resolve returns the user's account on chainID, deriving and caching it on
// first use. A cached row that disagrees with derivation is never returned.
func (s *SmartAccountServiceImpl) Resolve(ctx context.Context, userID uuid.UUID, chainID int64) (*domain.SmartAccount, error) {
	owner, err := s.keySvc.Address(ctx, userID)
	if err != nil {
		return nil, err
	}

	cached, err := s.accountRepo.Get(ctx, userID, chainID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get smart account: %w", err))
	}
	if cached != nil {
		if cached.OwnerAddress != owner {
			return nil, apperror.InternalError(fmt.Errorf(
				"smart account of %s on chain %d is owned by %s, signer is %s",
				userID, chainID, cached.OwnerAddress.Hex(), owner.Hex()))
		}
		derived, err := s.deriver.Derive(cached.OwnerAddress, cached.Salt)
		if err != nil {
			return nil, apperror.InternalError(err)
		}
		if derived != cached.Address {
			return nil, apperror.InternalError(fmt.Errorf(
				"cached smart account %s of %s on chain %d does not match derived %s",
				cached.Address.Hex(), userID, chainID, derived.Hex()))
		}
		return cached, nil
	}

	addr, err := s.deriver.Derive(owner, s.defaultSalt)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	account := &domain.SmartAccount{
		UserID:       userID,
		ChainID:      chainID,
		Address:      addr,
		Salt:         new(big.Int).Set(s.defaultSalt),
		OwnerAddress: owner,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("cache smart account: %w", err))
	}

	s.log.Info().
		Str("user_id", userID.String()).
		Int64("chain_id", chainID).
		Str("address", addr.Hex()).
		Msg("smart account derived")

	return account, nil
}
