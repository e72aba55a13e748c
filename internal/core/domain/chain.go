package domain

import "github.com/ethereum/go-ethereum/common"

// Chain holds the contract addresses the settlement pipeline calls on one
// chain. Loans is zero when borrowing is not offered there.
type Chain struct {
	ID         int64
	Stablecoin common.Address
	Terminal   common.Address
	Loans      common.Address

	StablecoinDecimals int32
}

// SupportsLoans reports whether a loans contract is configured.
func (c Chain) SupportsLoans() bool {
	return c.Loans != (common.Address{})
}
