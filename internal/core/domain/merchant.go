package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// MerchantStatus represents the state of a merchant store.
type MerchantStatus string

const (
	MerchantStatusActive      MerchantStatus = "ACTIVE"
	MerchantStatusSuspended   MerchantStatus = "SUSPENDED"
	MerchantStatusDeactivated MerchantStatus = "DEACTIVATED"
)

// Merchant is a store that accepts payments. Its token is the one spent
// first, fee free, when paying it.
type Merchant struct {
	ID            uuid.UUID      `json:"id"`
	Name          string         `json:"name"`
	ProjectID     int64          `json:"project_id"`
	PayoutAddress common.Address `json:"payout_address"`
	Status        MerchantStatus `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// IsActive returns true if the merchant accepts payments.
func (m *Merchant) IsActive() bool {
	return m.Status == MerchantStatusActive
}
