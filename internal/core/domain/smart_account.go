package domain

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// SmartAccount is a user's counterfactual account on one chain. Address is
// fixed by (OwnerAddress, Salt) and never changes once stored.
type SmartAccount struct {
	UserID       uuid.UUID      `json:"user_id"`
	ChainID      int64          `json:"chain_id"`
	Address      common.Address `json:"address"`
	Salt         *big.Int       `json:"salt"`
	OwnerAddress common.Address `json:"owner_address"`
	Deployed     bool           `json:"deployed"`
	CreatedAt    time.Time      `json:"created_at"`
}

// SigningKey is a user's encrypted EOA key. It owns the smart accounts and
// signs forward requests on the managed path.
type SigningKey struct {
	UserID       uuid.UUID      `json:"user_id"`
	Address      common.Address `json:"address"`
	EncryptedKey string         `json:"-"` // AES-256-GCM, hex
	CreatedAt    time.Time      `json:"created_at"`
}
