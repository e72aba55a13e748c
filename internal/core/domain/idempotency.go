package domain

import (
	"time"

	"github.com/google/uuid"
)

// IdempotencyLog maps a payer's idempotency key to the payment it created.
type IdempotencyLog struct {
	Key       string    `json:"key"` // Format: "payer_id:idempotency_key"
	PaymentID uuid.UUID `json:"payment_id"`
	CreatedAt time.Time `json:"created_at"`
}

// BuildIdempotencyKey scopes a client key to its payer.
func BuildIdempotencyKey(payerID uuid.UUID, key string) string {
	return payerID.String() + ":" + key
}
