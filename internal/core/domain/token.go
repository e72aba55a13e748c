package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashOutFeeRate is charged on the USD amount taken from another store's token.
var CashOutFeeRate = decimal.RequireFromString("0.001")

// SourceKind says where an allocation's funds come from, relative to the
// merchant being paid.
type SourceKind string

const (
	SourceMerchantToken SourceKind = "MERCHANT_TOKEN"
	SourceStoreToken    SourceKind = "STORE_TOKEN"
	SourceStablecoin    SourceKind = "STABLECOIN"
)

// TokenBalance is a payer's holding of one token on one chain. A nil
// TokenAddress is the reference stablecoin. Balances are synced externally
// and only read here.
type TokenBalance struct {
	OwnerID      uuid.UUID       `json:"owner_id"`
	StoreID      *uuid.UUID      `json:"store_id,omitempty"`
	ProjectID    int64           `json:"project_id"`
	ChainID      int64           `json:"chain_id"`
	TokenAddress *common.Address `json:"token_address,omitempty"`
	BalanceUSD   decimal.Decimal `json:"balance_usd"`
	RawBalance   *big.Int        `json:"raw_balance"`
}

// IsStablecoin returns true for the reference stablecoin balance.
func (b TokenBalance) IsStablecoin() bool {
	return b.TokenAddress == nil
}

// TokenAllocation is one step of a spend plan.
type TokenAllocation struct {
	Kind         SourceKind      `json:"kind"`
	StoreID      *uuid.UUID      `json:"store_id,omitempty"`
	ProjectID    int64           `json:"project_id"`
	TokenAddress *common.Address `json:"token_address,omitempty"`
	AmountUSD    decimal.Decimal `json:"amount_usd"`
	FeeUSD       decimal.Decimal `json:"fee_usd"`
	RawAmount    *big.Int        `json:"raw_amount"`
}

// SpendPlan is the ordered list of allocations covering a payment.
type SpendPlan struct {
	Allocations []TokenAllocation `json:"allocations"`
}

// Total returns the USD amount spent across all allocations, fees excluded.
func (p SpendPlan) Total() decimal.Decimal {
	total := decimal.Zero
	for _, a := range p.Allocations {
		total = total.Add(a.AmountUSD)
	}
	return total
}

// TotalFees returns the summed cash-out fees.
func (p SpendPlan) TotalFees() decimal.Decimal {
	total := decimal.Zero
	for _, a := range p.Allocations {
		total = total.Add(a.FeeUSD)
	}
	return total
}

// IsEmpty returns true when nothing is spent.
func (p SpendPlan) IsEmpty() bool {
	return len(p.Allocations) == 0
}
