package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentEvent announces a terminal payment state to downstream consumers.
type PaymentEvent struct {
	PaymentID        uuid.UUID     `json:"payment_id"`
	Kind             PaymentKind   `json:"kind"`
	PayerID          uuid.UUID     `json:"payer_id"`
	MerchantID       *uuid.UUID    `json:"merchant_id,omitempty"`
	Status           PaymentStatus `json:"status"`
	BundleID         *string       `json:"bundle_id,omitempty"`
	TxHash           *string       `json:"tx_hash,omitempty"`
	BlockNumber      *int64        `json:"block_number,omitempty"`
	ErrorCode        *string       `json:"error_code,omitempty"`
	ErrorMessage     *string       `json:"error_message,omitempty"`
	ConfirmationCode *string       `json:"confirmation_code,omitempty"`
	OccurredAt       time.Time     `json:"occurred_at"`
}

// NewPaymentEvent snapshots p.
func NewPaymentEvent(p *Payment, at time.Time) PaymentEvent {
	return PaymentEvent{
		PaymentID:        p.ID,
		Kind:             p.Kind,
		PayerID:          p.PayerID,
		MerchantID:       p.MerchantID,
		Status:           p.Status,
		BundleID:         p.BundleID,
		TxHash:           p.TxHash,
		BlockNumber:      p.BlockNumber,
		ErrorCode:        p.ErrorCode,
		ErrorMessage:     p.ErrorMessage,
		ConfirmationCode: p.ConfirmationCode,
		OccurredAt:       at,
	}
}
