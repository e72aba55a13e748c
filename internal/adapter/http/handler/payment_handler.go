package handler

import (
	"fmt"
	"math/big"
	"time"

	"multichain-settlement/internal/adapter/http/dto"
	"multichain-settlement/internal/adapter/http/middleware"
	"multichain-settlement/internal/core/domain"
	"multichain-settlement/internal/core/ports"
	"multichain-settlement/pkg/apperror"
	"multichain-settlement/pkg/eip712"
	"multichain-settlement/pkg/response"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentHandler handles settlement endpoints. Submission is asynchronous:
// POSTs answer 202 with the payment in BUILDING and clients poll GET.
type PaymentHandler struct {
	paymentSvc ports.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentSvc ports.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentSvc: paymentSvc}
}

// CreatePayment handles POST /api/v1/payments.
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	payerID, ok := payerFrom(c)
	if !ok {
		return
	}

	var req dto.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	p, err := h.paymentSvc.CreatePayment(c.Request.Context(), ports.PaymentRequest{
		PayerID:        payerID,
		MerchantID:     uuid.MustParse(req.MerchantID),
		ChainID:        req.ChainID,
		AmountUSD:      decimal.RequireFromString(req.AmountUSD),
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Accepted(c, toPaymentResponse(p))
}

// RequestLoan handles POST /api/v1/loans.
func (h *PaymentHandler) RequestLoan(c *gin.Context) {
	payerID, ok := payerFrom(c)
	if !ok {
		return
	}

	var req dto.LoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	revnetID, _ := dto.ParseUint256(req.RevnetID)
	minBorrow, _ := dto.ParseUint256(req.MinBorrowAmount)
	collateral, _ := dto.ParseUint256(req.CollateralCount)

	loan := ports.LoanRequest{
		PayerID:         payerID,
		ChainID:         req.ChainID,
		RevnetID:        revnetID,
		SourceToken:     common.HexToAddress(req.SourceToken),
		MinBorrowAmount: minBorrow,
		CollateralCount: collateral,
		IdempotencyKey:  req.IdempotencyKey,
	}
	if req.Beneficiary != nil {
		addr := common.HexToAddress(*req.Beneficiary)
		loan.Beneficiary = &addr
	}

	p, err := h.paymentSvc.RequestLoan(c.Request.Context(), loan)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Accepted(c, toPaymentResponse(p))
}

// SubmitSignedBundle handles POST /api/v1/bundles/signed.
func (h *PaymentHandler) SubmitSignedBundle(c *gin.Context) {
	payerID, ok := payerFrom(c)
	if !ok {
		return
	}

	var req dto.SignedBundleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	requests := make([]ports.SignedRequest, len(req.Requests))
	for i, fr := range req.Requests {
		signed, err := toSignedRequest(fr)
		if err != nil {
			response.Error(c, apperror.Validation(fmt.Sprintf("requests[%d]: %v", i, err)))
			return
		}
		requests[i] = signed
	}

	p, err := h.paymentSvc.SubmitSignedBundle(c.Request.Context(), ports.SignedBundleRequest{
		PayerID:        payerID,
		IdempotencyKey: req.IdempotencyKey,
		Requests:       requests,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Accepted(c, toPaymentResponse(p))
}

// GetPayment handles GET /api/v1/payments/:id.
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	payerID, ok := payerFrom(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrNotFound("Payment"))
		return
	}

	p, err := h.paymentSvc.GetPayment(c.Request.Context(), payerID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toPaymentResponse(p))
}

func payerFrom(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(middleware.CtxPayerID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return uuid.Nil, false
	}
	return id, true
}

// toSignedRequest converts a bound request. Field formats were checked by
// the binding tags, so only decoding errors remain.
func toSignedRequest(fr dto.SignedForwardRequest) (ports.SignedRequest, error) {
	data, err := hexutil.Decode(fr.Data)
	if err != nil {
		return ports.SignedRequest{}, fmt.Errorf("data: %w", err)
	}
	sig, err := hexutil.Decode(fr.Signature)
	if err != nil {
		return ports.SignedRequest{}, fmt.Errorf("signature: %w", err)
	}
	value, _ := dto.ParseUint256(fr.Value)
	gas, _ := dto.ParseUint256(fr.Gas)
	nonce, _ := dto.ParseUint256(fr.Nonce)

	return ports.SignedRequest{
		ChainID: fr.ChainID,
		Signed: eip712.SignedForwardRequest{
			Request: eip712.ForwardRequest{
				From:     common.HexToAddress(fr.From),
				To:       common.HexToAddress(fr.To),
				Value:    value,
				Gas:      gas,
				Nonce:    nonce,
				Deadline: fr.Deadline,
				Data:     data,
			},
			Signature: sig,
		},
	}, nil
}

// toPaymentResponse converts domain.Payment to DTO. USD values are rounded
// to cents here and nowhere else.
func toPaymentResponse(p *domain.Payment) dto.PaymentResponse {
	resp := dto.PaymentResponse{
		ID:               p.ID.String(),
		Kind:             string(p.Kind),
		Status:           string(p.Status),
		ChainID:          p.ChainID,
		AmountUSD:        p.AmountUSD.StringFixed(2),
		FeesUSD:          p.Plan.TotalFees().StringFixed(2),
		Allocations:      make([]dto.AllocationResponse, len(p.Plan.Allocations)),
		BundleID:         p.BundleID,
		TxHash:           p.TxHash,
		BlockNumber:      p.BlockNumber,
		ErrorCode:        p.ErrorCode,
		ErrorMessage:     p.ErrorMessage,
		ConfirmationCode: p.ConfirmationCode,
		PollAttempts:     p.PollAttempts,
		CreatedAt:        p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        p.UpdatedAt.Format(time.RFC3339),
	}
	if p.MerchantID != nil {
		s := p.MerchantID.String()
		resp.MerchantID = &s
	}
	for i, a := range p.Plan.Allocations {
		resp.Allocations[i] = dto.AllocationResponse{
			Kind:      string(a.Kind),
			ProjectID: a.ProjectID,
			AmountUSD: a.AmountUSD.StringFixed(2),
			FeeUSD:    a.FeeUSD.StringFixed(2),
			RawAmount: bigString(a.RawAmount),
		}
		if a.StoreID != nil {
			s := a.StoreID.String()
			resp.Allocations[i].StoreID = &s
		}
		if a.TokenAddress != nil {
			s := a.TokenAddress.Hex()
			resp.Allocations[i].TokenAddress = &s
		}
	}
	return resp
}

func bigString(n *big.Int) string {
	if n == nil {
		return "0"
	}
	return n.String()
}
