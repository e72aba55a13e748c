package dto

// PaymentRequest is the request body for a managed payment.
type PaymentRequest struct {
	MerchantID     string `json:"merchant_id" binding:"required,uuid"`
	ChainID        int64  `json:"chain_id" binding:"required,gt=0"`
	AmountUSD      string `json:"amount_usd" binding:"required,usd_amount"`
	IdempotencyKey string `json:"idempotency_key" binding:"required,max=100,safe_id"`
}

// LoanRequest is the request body for a managed borrowFrom.
type LoanRequest struct {
	ChainID         int64   `json:"chain_id" binding:"required,gt=0"`
	RevnetID        string  `json:"revnet_id" binding:"required,uint256"`
	SourceToken     string  `json:"source_token" binding:"required,eth_address"`
	MinBorrowAmount string  `json:"min_borrow_amount,omitempty" binding:"omitempty,uint256"`
	CollateralCount string  `json:"collateral_count" binding:"required,uint256"`
	Beneficiary     *string `json:"beneficiary,omitempty" binding:"omitempty,eth_address"`
	IdempotencyKey  string  `json:"idempotency_key" binding:"required,max=100,safe_id"`
}

// SignedForwardRequest is one caller-signed forwarder request.
type SignedForwardRequest struct {
	ChainID   int64  `json:"chain_id" binding:"required,gt=0"`
	From      string `json:"from" binding:"required,eth_address"`
	To        string `json:"to" binding:"required,eth_address"`
	Value     string `json:"value,omitempty" binding:"omitempty,uint256"`
	Gas       string `json:"gas" binding:"required,uint256"`
	Nonce     string `json:"nonce" binding:"required,uint256"`
	Deadline  uint64 `json:"deadline" binding:"required,gt=0"`
	Data      string `json:"data" binding:"required,hexdata"`
	Signature string `json:"signature" binding:"required,hexdata"`
}

// SignedBundleRequest is the request body for self-custody submission.
type SignedBundleRequest struct {
	IdempotencyKey string                 `json:"idempotency_key" binding:"required,max=100,safe_id"`
	Requests       []SignedForwardRequest `json:"requests" binding:"required,min=1,max=16,dive"`
}

// AllocationResponse is one step of the spend plan.
type AllocationResponse struct {
	Kind         string  `json:"kind"`
	StoreID      *string `json:"store_id,omitempty"`
	ProjectID    int64   `json:"project_id,omitempty"`
	TokenAddress *string `json:"token_address,omitempty"`
	AmountUSD    string  `json:"amount_usd"`
	FeeUSD       string  `json:"fee_usd"`
	RawAmount    string  `json:"raw_amount"`
}

// PaymentResponse is the response body for payment state.
type PaymentResponse struct {
	ID               string               `json:"id"`
	Kind             string               `json:"kind"`
	Status           string               `json:"status"`
	ChainID          int64                `json:"chain_id"`
	MerchantID       *string              `json:"merchant_id,omitempty"`
	AmountUSD        string               `json:"amount_usd"`
	FeesUSD          string               `json:"fees_usd"`
	Allocations      []AllocationResponse `json:"allocations"`
	BundleID         *string              `json:"bundle_id,omitempty"`
	TxHash           *string              `json:"tx_hash,omitempty"`
	BlockNumber      *int64               `json:"block_number,omitempty"`
	ErrorCode        *string              `json:"error_code,omitempty"`
	ErrorMessage     *string              `json:"error_message,omitempty"`
	ConfirmationCode *string              `json:"confirmation_code,omitempty"`
	PollAttempts     int                  `json:"poll_attempts"`
	CreatedAt        string               `json:"created_at"`
	UpdatedAt        string               `json:"updated_at"`
}
