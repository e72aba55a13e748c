package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentKind distinguishes what produced the bundle.
type PaymentKind string

const (
	PaymentKindPayment      PaymentKind = "PAYMENT"
	PaymentKindLoan         PaymentKind = "LOAN"
	PaymentKindSignedBundle PaymentKind = "SIGNED_BUNDLE"
)

// PaymentStatus represents the lifecycle state of a payment's bundle.
type PaymentStatus string

const (
	PaymentStatusBuilding  PaymentStatus = "BUILDING"
	PaymentStatusSubmitted PaymentStatus = "SUBMITTED"
	PaymentStatusPolling   PaymentStatus = "POLLING"
	PaymentStatusConfirmed PaymentStatus = "CONFIRMED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusTimedOut  PaymentStatus = "TIMED_OUT"
)

var transitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusBuilding:  {PaymentStatusSubmitted, PaymentStatusFailed},
	PaymentStatusSubmitted: {PaymentStatusPolling},
	PaymentStatusPolling: {
		PaymentStatusPolling,
		PaymentStatusConfirmed,
		PaymentStatusFailed,
		PaymentStatusTimedOut,
	},
}

// IsTerminal returns true for the absorbing states.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusConfirmed ||
		s == PaymentStatusFailed ||
		s == PaymentStatusTimedOut
}

// CanTransitionTo reports whether next is reachable from s in one step.
// Nothing leaves a terminal state.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// InFlight reports whether a bundle was handed to the relayer and still
// awaits resolution.
func (s PaymentStatus) InFlight() bool {
	return s == PaymentStatusSubmitted || s == PaymentStatusPolling
}

// Payment is the persisted record of one settlement request. Everything but
// the status fields is immutable after submission.
type Payment struct {
	ID               uuid.UUID       `json:"id"`
	Kind             PaymentKind     `json:"kind"`
	PayerID          uuid.UUID       `json:"payer_id"`
	MerchantID       *uuid.UUID      `json:"merchant_id,omitempty"`
	ChainID          int64           `json:"chain_id"`
	AmountUSD        decimal.Decimal `json:"amount_usd"`
	IdempotencyKey   string          `json:"idempotency_key"`
	Plan             SpendPlan       `json:"plan"`
	Bundle           []BundleCall    `json:"bundle,omitempty"`
	Status           PaymentStatus   `json:"status"`
	BundleID         *string         `json:"bundle_id,omitempty"`
	TxHash           *string         `json:"tx_hash,omitempty"`
	BlockNumber      *int64          `json:"block_number,omitempty"`
	ErrorCode        *string         `json:"error_code,omitempty"`
	ErrorMessage     *string         `json:"error_message,omitempty"`
	ConfirmationCode *string         `json:"confirmation_code,omitempty"`
	PollAttempts     int             `json:"poll_attempts"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// IsTerminal returns true if the payment reached a final state.
func (p *Payment) IsTerminal() bool {
	return p.Status.IsTerminal()
}

// StatusUpdate is the only mutation applied to a payment after creation.
// Nil fields keep their stored value.
type StatusUpdate struct {
	Status           PaymentStatus
	BundleID         *string
	TxHash           *string
	BlockNumber      *int64
	ErrorCode        *string
	ErrorMessage     *string
	ConfirmationCode *string
	PollAttempts     int
}

// Apply copies the update onto p.
func (u StatusUpdate) Apply(p *Payment) {
	p.Status = u.Status
	p.PollAttempts = u.PollAttempts
	if u.BundleID != nil {
		p.BundleID = u.BundleID
	}
	if u.TxHash != nil {
		p.TxHash = u.TxHash
	}
	if u.BlockNumber != nil {
		p.BlockNumber = u.BlockNumber
	}
	if u.ErrorCode != nil {
		p.ErrorCode = u.ErrorCode
	}
	if u.ErrorMessage != nil {
		p.ErrorMessage = u.ErrorMessage
	}
	if u.ConfirmationCode != nil {
		p.ConfirmationCode = u.ConfirmationCode
	}
}
