package service

import (
	"math/big"

	"multichain-settlement/internal/core/domain"
	"multichain-settlement/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllocationServiceImpl implements ports.AllocationService with a fixed
// priority greedy planner: merchant token, other store tokens in the given
// order, then the stablecoin only if it covers the whole remainder.
type AllocationServiceImpl struct {
	feeRate decimal.Decimal
}

// NewAllocationService creates a new AllocationServiceImpl.
func NewAllocationService() *AllocationServiceImpl {
	return &AllocationServiceImpl{feeRate: domain.CashOutFeeRate}
}

// Plan selects the balances that pay amount to merchantID. A nil merchantID
// skips the merchant-token step. Zero amount yields an empty plan.
func (s *AllocationServiceImpl) Plan(amount decimal.Decimal, merchantID *uuid.UUID, balances []domain.TokenBalance) (domain.SpendPlan, error) {
	plan := domain.SpendPlan{Allocations: []domain.TokenAllocation{}}
	if amount.IsNegative() {
		return plan, apperror.ErrInvalidAmount()
	}
	remaining := amount
	if remaining.IsZero() {
		return plan, nil
	}

	// 1. Merchant's own token, fee free.
	if merchantID != nil {
		for _, b := range balances {
			if b.IsStablecoin() || b.StoreID == nil || *b.StoreID != *merchantID {
				continue
			}
			if !b.BalanceUSD.IsPositive() {
				continue
			}
			use := decimal.Min(b.BalanceUSD, remaining)
			plan.Allocations = append(plan.Allocations, allocate(domain.SourceMerchantToken, b, use, decimal.Zero))
			remaining = remaining.Sub(use)
			break
		}
	}

	// 2. Other stores' tokens, each cashed out at the fee rate.
	for _, b := range balances {
		if !remaining.IsPositive() {
			break
		}
		if b.IsStablecoin() || !b.BalanceUSD.IsPositive() {
			continue
		}
		if merchantID != nil && b.StoreID != nil && *b.StoreID == *merchantID {
			continue
		}
		use := decimal.Min(b.BalanceUSD, remaining)
		plan.Allocations = append(plan.Allocations, allocate(domain.SourceStoreToken, b, use, use.Mul(s.feeRate)))
		remaining = remaining.Sub(use)
	}

	// 3. Stablecoin, all or nothing.
	if remaining.IsPositive() {
		for _, b := range balances {
			if !b.IsStablecoin() {
				continue
			}
			if b.BalanceUSD.GreaterThanOrEqual(remaining) {
				plan.Allocations = append(plan.Allocations, allocate(domain.SourceStablecoin, b, remaining, decimal.Zero))
				remaining = decimal.Zero
			}
			break
		}
	}

	if remaining.IsPositive() {
		return plan, apperror.ErrInsufficientFunds()
	}
	return plan, nil
}

func allocate(kind domain.SourceKind, b domain.TokenBalance, use, fee decimal.Decimal) domain.TokenAllocation {
	return domain.TokenAllocation{
		Kind:         kind,
		StoreID:      b.StoreID,
		ProjectID:    b.ProjectID,
		TokenAddress: b.TokenAddress,
		AmountUSD:    use,
		FeeUSD:       fee,
		RawAmount:    rawAmount(b.RawBalance, b.BalanceUSD, use),
	}
}

// rawAmount returns floor(raw * use / balance) in token units, or raw itself
// when the whole balance is used.
func rawAmount(raw *big.Int, balance, use decimal.Decimal) *big.Int {
	if raw == nil {
		return new(big.Int)
	}
	if use.Equal(balance) {
		return new(big.Int).Set(raw)
	}

	num := new(big.Int).Mul(raw, use.Coefficient())
	den := balance.Coefficient()

	// Align exponents so the ratio is taken between integers.
	switch ue, be := use.Exponent(), balance.Exponent(); {
	case ue > be:
		num.Mul(num, pow10(ue-be))
	case be > ue:
		den = new(big.Int).Mul(den, pow10(be-ue))
	}
	if den.Sign() == 0 {
		return new(big.Int)
	}
	return num.Quo(num, den)
}

func pow10(n int32) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
