package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"multichain-settlement/internal/core/domain"
	"multichain-settlement/internal/core/ports"
	"multichain-settlement/pkg/apperror"
	"multichain-settlement/pkg/calldata"
	"multichain-settlement/pkg/eip712"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	idempotencyTTL   = 24 * time.Hour
	recoverBatchSize = 1000
)

// PaymentConfig holds the chain and forwarder settings payments are built
// against.
type PaymentConfig struct {
	Chains            []domain.Chain
	Forwarder         common.Address
	ForwarderName     string
	ForwarderVersion  string
	PrepaidFeePercent int64
	BuildGrace        time.Duration
	CashOutSlippage   int64 // basis points off a cash-out's net value
}

// PaymentServiceImpl implements ports.PaymentService.
type PaymentServiceImpl struct {
	paymentRepo  ports.PaymentRepository
	merchantRepo ports.MerchantRepository
	balanceRepo  ports.BalanceRepository
	idempRepo    ports.IdempotencyRepository
	idempCache   ports.IdempotencyCache
	transactor   ports.DBTransactor
	accountSvc   ports.SmartAccountService
	allocSvc     ports.AllocationService
	bundleSvc    ports.BundleService
	confirmSvc   ports.ConfirmationService
	scheduler    ports.Scheduler
	chains       map[int64]domain.Chain
	forwarder    common.Address
	domain       eip712.Domain
	prepaidFee   *big.Int
	buildGrace   time.Duration
	cashOutKeep  decimal.Decimal
	now          func() time.Time
	log          zerolog.Logger
}

// NewPaymentService creates a new PaymentServiceImpl.
func NewPaymentService(
	paymentRepo ports.PaymentRepository,
	merchantRepo ports.MerchantRepository,
	balanceRepo ports.BalanceRepository,
	idempRepo ports.IdempotencyRepository,
	idempCache ports.IdempotencyCache,
	transactor ports.DBTransactor,
	accountSvc ports.SmartAccountService,
	allocSvc ports.AllocationService,
	bundleSvc ports.BundleService,
	confirmSvc ports.ConfirmationService,
	scheduler ports.Scheduler,
	cfg PaymentConfig,
	log zerolog.Logger,
) *PaymentServiceImpl {
	chains := make(map[int64]domain.Chain, len(cfg.Chains))
	for _, c := range cfg.Chains {
		chains[c.ID] = c
	}
	return &PaymentServiceImpl{
		paymentRepo:  paymentRepo,
		merchantRepo: merchantRepo,
		balanceRepo:  balanceRepo,
		idempRepo:    idempRepo,
		idempCache:   idempCache,
		transactor:   transactor,
		accountSvc:   accountSvc,
		allocSvc:     allocSvc,
		bundleSvc:    bundleSvc,
		confirmSvc:   confirmSvc,
		scheduler:    scheduler,
		chains:       chains,
		forwarder:    cfg.Forwarder,
		domain:       eip712.NewDomain(cfg.ForwarderName, cfg.ForwarderVersion, cfg.Forwarder),
		prepaidFee:   big.NewInt(cfg.PrepaidFeePercent),
		buildGrace:   cfg.BuildGrace,
		cashOutKeep:  decimal.NewFromInt(10_000 - cfg.CashOutSlippage).Shift(-4),
		now:          time.Now,
		log:          log,
	}
}

// BuildKey is the scheduler key of a payment's build task.
func BuildKey(paymentID uuid.UUID) string {
	return "build:" + paymentID.String()
}

// CreatePayment plans, records and schedules a managed payment to a merchant.
// A repeated idempotency key returns the existing payment unchanged.
func (s *PaymentServiceImpl) CreatePayment(ctx context.Context, req ports.PaymentRequest) (*domain.Payment, error) {
	if !req.AmountUSD.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}
	chain, err := s.validateCommon(req.ChainID, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	idempKey := domain.BuildIdempotencyKey(req.PayerID, req.IdempotencyKey)
	if existing, err := s.replay(ctx, idempKey); err != nil || existing != nil {
		return existing, err
	}

	merchant, err := s.merchantRepo.GetByID(ctx, req.MerchantID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get merchant: %w", err))
	}
	if merchant == nil {
		return nil, apperror.ErrNotFound("Merchant")
	}
	if !merchant.IsActive() {
		return nil, apperror.Validation("Merchant is not accepting payments")
	}

	balances, err := s.balanceRepo.ListByOwner(ctx, req.PayerID, req.ChainID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list balances: %w", err))
	}
	plan, err := s.allocSvc.Plan(req.AmountUSD, &merchant.ID, balances)
	if err != nil {
		return nil, err
	}

	account, err := s.accountSvc.Resolve(ctx, req.PayerID, req.ChainID)
	if err != nil {
		return nil, err
	}
	calls, err := paymentCalls(chain, merchant.PayoutAddress, account.Address, plan, s.cashOutKeep)
	if err != nil {
		return nil, apperror.InternalError(err)
	}

	payment := s.newPayment(domain.PaymentKindPayment, req.PayerID, req.ChainID, req.IdempotencyKey)
	payment.MerchantID = &merchant.ID
	payment.AmountUSD = req.AmountUSD
	payment.Plan = plan

	stored, err := s.persist(ctx, idempKey, payment)
	if err != nil || stored != payment {
		return stored, err
	}

	s.log.Info().
		Str("payment_id", payment.ID.String()).
		Str("merchant_id", merchant.ID.String()).
		Str("amount_usd", req.AmountUSD.String()).
		Int("allocations", len(plan.Allocations)).
		Msg("payment accepted")

	task := *payment
	s.schedule(payment.ID, func(ctx context.Context) {
		s.bundleSvc.ExecuteManaged(ctx, &task, calls)
	})
	return payment, nil
}

// RequestLoan records and schedules a managed borrowFrom against the loans
// contract of the chain. The loan goes to the payer's smart account unless
// a beneficiary is given.
func (s *PaymentServiceImpl) RequestLoan(ctx context.Context, req ports.LoanRequest) (*domain.Payment, error) {
	chain, err := s.validateCommon(req.ChainID, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	if !chain.SupportsLoans() {
		return nil, apperror.Validation(fmt.Sprintf("Loans are not offered on chain %d", req.ChainID))
	}
	if req.RevnetID == nil || req.RevnetID.Sign() <= 0 {
		return nil, apperror.Validation("revnet_id must be positive")
	}
	if req.CollateralCount == nil || req.CollateralCount.Sign() <= 0 {
		return nil, apperror.Validation("collateral_count must be positive")
	}
	minBorrow := req.MinBorrowAmount
	if minBorrow == nil {
		minBorrow = new(big.Int)
	}
	if minBorrow.Sign() < 0 {
		return nil, apperror.Validation("min_borrow_amount must not be negative")
	}

	idempKey := domain.BuildIdempotencyKey(req.PayerID, req.IdempotencyKey)
	if existing, err := s.replay(ctx, idempKey); err != nil || existing != nil {
		return existing, err
	}

	account, err := s.accountSvc.Resolve(ctx, req.PayerID, req.ChainID)
	if err != nil {
		return nil, err
	}
	beneficiary := account.Address
	if req.Beneficiary != nil {
		beneficiary = *req.Beneficiary
	}

	data, err := calldata.BorrowFrom(calldata.BorrowParams{
		RevnetID:          req.RevnetID,
		SourceToken:       req.SourceToken,
		SourceTerminal:    chain.Terminal,
		MinBorrowAmount:   minBorrow,
		CollateralCount:   req.CollateralCount,
		Beneficiary:       beneficiary,
		PrepaidFeePercent: s.prepaidFee,
	})
	if err != nil {
		return nil, apperror.Validation(err.Error())
	}
	raw, err := hexutil.Decode(data)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	calls := []domain.Call{{ChainID: chain.ID, Target: chain.Loans, Value: new(big.Int), Data: raw}}

	payment := s.newPayment(domain.PaymentKindLoan, req.PayerID, req.ChainID, req.IdempotencyKey)
	stored, err := s.persist(ctx, idempKey, payment)
	if err != nil || stored != payment {
		return stored, err
	}

	s.log.Info().
		Str("payment_id", payment.ID.String()).
		Str("revnet_id", req.RevnetID.String()).
		Str("beneficiary", beneficiary.Hex()).
		Msg("loan accepted")

	task := *payment
	s.schedule(payment.ID, func(ctx context.Context) {
		s.bundleSvc.ExecuteManaged(ctx, &task, calls)
	})
	return payment, nil
}

// SubmitSignedBundle relays forward requests the payer signed themselves.
// Requests are never re-signed; each signature must recover to its from.
func (s *PaymentServiceImpl) SubmitSignedBundle(ctx context.Context, req ports.SignedBundleRequest) (*domain.Payment, error) {
	if len(req.Requests) == 0 {
		return nil, apperror.Validation("At least one signed request is required")
	}
	if _, err := s.validateCommon(req.Requests[0].ChainID, req.IdempotencyKey); err != nil {
		return nil, err
	}
	for _, r := range req.Requests {
		if _, ok := s.chains[r.ChainID]; !ok {
			return nil, apperror.Validation(fmt.Sprintf("Unsupported chain %d", r.ChainID))
		}
	}

	idempKey := domain.BuildIdempotencyKey(req.PayerID, req.IdempotencyKey)
	if existing, err := s.replay(ctx, idempKey); err != nil || existing != nil {
		return existing, err
	}

	now := uint64(s.now().Unix())
	bundle := make([]domain.BundleCall, 0, len(req.Requests))
	for i, r := range req.Requests {
		call, err := s.verifySigned(r, now)
		if err != nil {
			s.log.Warn().Err(err).Int("index", i).Str("payer_id", req.PayerID.String()).Msg("signed request rejected")
			return nil, err
		}
		bundle = append(bundle, call)
	}

	payment := s.newPayment(domain.PaymentKindSignedBundle, req.PayerID, req.Requests[0].ChainID, req.IdempotencyKey)
	payment.Bundle = bundle
	stored, err := s.persist(ctx, idempKey, payment)
	if err != nil || stored != payment {
		return stored, err
	}

	s.log.Info().
		Str("payment_id", payment.ID.String()).
		Int("transactions", len(bundle)).
		Msg("signed bundle accepted")

	task := *payment
	s.schedule(payment.ID, func(ctx context.Context) {
		s.bundleSvc.ExecuteSigned(ctx, &task, bundle)
	})
	return payment, nil
}

func (s *PaymentServiceImpl) verifySigned(r ports.SignedRequest, now uint64) (domain.BundleCall, error) {
	fr := r.Signed.Request
	if len(r.Signed.Signature) != eip712.SignatureLength {
		return domain.BundleCall{}, apperror.ErrInvalidSignature()
	}
	if fr.Deadline <= now {
		return domain.BundleCall{}, apperror.Validation("Forward request deadline has passed")
	}
	if fr.Value == nil {
		fr.Value = new(big.Int)
	}
	if fr.Gas == nil || fr.Nonce == nil {
		return domain.BundleCall{}, apperror.Validation("Forward request gas and nonce are required")
	}

	hash, err := s.domain.SigningHash(big.NewInt(r.ChainID), fr)
	if err != nil {
		return domain.BundleCall{}, apperror.Validation(err.Error())
	}
	signer, err := eip712.Recover(hash, r.Signed.Signature)
	if err != nil || signer != fr.From {
		return domain.BundleCall{}, apperror.ErrInvalidSignature()
	}

	signed := eip712.SignedForwardRequest{Request: fr, Signature: r.Signed.Signature}
	data, err := calldata.ForwarderExecute(signed.ExecuteData())
	if err != nil {
		return domain.BundleCall{}, apperror.Validation(err.Error())
	}
	return domain.BundleCall{
		ChainID: r.ChainID,
		Target:  s.forwarder,
		Data:    data,
		Value:   new(big.Int).Set(fr.Value),
	}, nil
}

// GetPayment returns the payment if it belongs to payerID.
func (s *PaymentServiceImpl) GetPayment(ctx context.Context, payerID, paymentID uuid.UUID) (*domain.Payment, error) {
	p, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get payment: %w", err))
	}
	if p == nil || p.PayerID != payerID {
		return nil, apperror.ErrNotFound("Payment")
	}
	return p, nil
}

// RecoverInFlight runs at startup. Submitted payments resume polling.
// BUILDING payments older than the build grace lost their calls with the
// previous process and are failed; younger ones may still be building on
// another instance and are looked at again when the grace runs out.
func (s *PaymentServiceImpl) RecoverInFlight(ctx context.Context) (int, error) {
	payments, err := s.paymentRepo.ListByStatus(ctx, []domain.PaymentStatus{
		domain.PaymentStatusBuilding,
		domain.PaymentStatusSubmitted,
		domain.PaymentStatusPolling,
	}, recoverBatchSize)
	if err != nil {
		return 0, apperror.ErrDatabaseError(fmt.Errorf("list in-flight payments: %w", err))
	}

	for i := range payments {
		p := &payments[i]
		if p.Status != domain.PaymentStatusBuilding {
			s.confirmSvc.Resume(ctx, p)
			continue
		}
		if wait := p.CreatedAt.Add(s.buildGrace).Sub(s.now()); wait > 0 {
			s.abandonAfter(p.ID, wait)
			continue
		}
		s.bundleSvc.Abandon(ctx, p, "interrupted before submission")
	}

	if len(payments) > 0 {
		s.log.Info().Int("count", len(payments)).Msg("in-flight payments recovered")
	}
	return len(payments), nil
}

// abandonAfter fails the payment after wait unless it has left BUILDING by
// then.
func (s *PaymentServiceImpl) abandonAfter(paymentID uuid.UUID, wait time.Duration) {
	scheduled := s.scheduler.Schedule(BuildKey(paymentID), wait, func(ctx context.Context) {
		p, err := s.paymentRepo.GetByID(ctx, paymentID)
		if err != nil {
			s.log.Error().Err(err).Str("payment_id", paymentID.String()).Msg("failed to load building payment, retrying")
			s.abandonAfter(paymentID, s.buildGrace)
			return
		}
		if p == nil || p.Status != domain.PaymentStatusBuilding {
			return
		}
		s.bundleSvc.Abandon(ctx, p, "interrupted before submission")
	})
	if !scheduled {
		s.log.Debug().Str("payment_id", paymentID.String()).Msg("build task already scheduled")
	}
}

func (s *PaymentServiceImpl) validateCommon(chainID int64, idempotencyKey string) (domain.Chain, error) {
	if idempotencyKey == "" {
		return domain.Chain{}, apperror.Validation("Idempotency key is required")
	}
	chain, ok := s.chains[chainID]
	if !ok {
		return domain.Chain{}, apperror.Validation(fmt.Sprintf("Unsupported chain %d", chainID))
	}
	return chain, nil
}

func (s *PaymentServiceImpl) newPayment(kind domain.PaymentKind, payerID uuid.UUID, chainID int64, key string) *domain.Payment {
	now := s.now().UTC()
	return &domain.Payment{
		ID:             uuid.New(),
		Kind:           kind,
		PayerID:        payerID,
		ChainID:        chainID,
		AmountUSD:      decimal.Zero,
		IdempotencyKey: key,
		Plan:           domain.SpendPlan{Allocations: []domain.TokenAllocation{}},
		Status:         domain.PaymentStatusBuilding,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (s *PaymentServiceImpl) schedule(paymentID uuid.UUID, task func(ctx context.Context)) {
	if !s.scheduler.Schedule(BuildKey(paymentID), 0, task) {
		s.log.Error().Str("payment_id", paymentID.String()).Msg("build task already scheduled")
	}
}

// replay returns the payment recorded under idempKey, or nil when the key is
// new. Redis is checked first, then the database log.
func (s *PaymentServiceImpl) replay(ctx context.Context, idempKey string) (*domain.Payment, error) {
	// Layer 1: Redis idempotency check
	cached, err := s.idempCache.Get(ctx, idempKey)
	if err != nil {
		s.log.Warn().Err(err).Str("key", idempKey).Msg("redis idempotency check failed, falling through to DB")
	}
	if cached != nil {
		return s.loadRecorded(ctx, *cached)
	}

	// Layer 2: DB idempotency check
	idempLog, err := s.idempRepo.Get(ctx, idempKey)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("db idempotency check: %w", err))
	}
	if idempLog == nil {
		return nil, nil
	}

	s.cacheKey(ctx, idempKey, idempLog.PaymentID)
	return s.loadRecorded(ctx, idempLog.PaymentID)
}

// loadRecorded returns the current state of the payment an idempotency key
// recorded.
func (s *PaymentServiceImpl) loadRecorded(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error) {
	current, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get recorded payment: %w", err))
	}
	if current == nil {
		return nil, apperror.InternalError(fmt.Errorf("recorded payment %s not found", paymentID))
	}
	return current, nil
}

// cacheKey is best-effort; the database log stays authoritative.
func (s *PaymentServiceImpl) cacheKey(ctx context.Context, idempKey string, paymentID uuid.UUID) {
	if err := s.idempCache.Set(ctx, idempKey, paymentID, idempotencyTTL); err != nil {
		s.log.Warn().Err(err).Str("key", idempKey).Msg("failed to cache idempotency in redis")
	}
}

// persist stores the payment and its idempotency log in one transaction. If
// a concurrent request with the same key won, its payment is returned
// instead.
func (s *PaymentServiceImpl) persist(ctx context.Context, idempKey string, payment *domain.Payment) (*domain.Payment, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.paymentRepo.Create(ctx, dbTx, payment); err != nil {
		if isUniqueViolation(err) {
			return s.replayAfterConflict(ctx, idempKey)
		}
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create payment: %w", err))
	}

	idempLogEntry := &domain.IdempotencyLog{
		Key:       idempKey,
		PaymentID: payment.ID,
		CreatedAt: payment.CreatedAt,
	}
	if err := s.idempRepo.Create(ctx, dbTx, idempLogEntry); err != nil {
		if isUniqueViolation(err) {
			return s.replayAfterConflict(ctx, idempKey)
		}
		return nil, apperror.ErrDatabaseError(fmt.Errorf("save idempotency log: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("commit tx: %w", err))
	}

	s.cacheKey(ctx, idempKey, payment.ID)
	return payment, nil
}

func (s *PaymentServiceImpl) replayAfterConflict(ctx context.Context, idempKey string) (*domain.Payment, error) {
	idempLog, err := s.idempRepo.Get(ctx, idempKey)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("db idempotency check: %w", err))
	}
	if idempLog == nil {
		return nil, apperror.ErrDatabaseError(errors.New("idempotency conflict without a recorded payment"))
	}
	return s.loadRecorded(ctx, idempLog.PaymentID)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// paymentCalls maps each allocation to the contract call that moves its
// value to the merchant. A cash-out must reclaim at least keep times its
// value net of fees.
func paymentCalls(chain domain.Chain, payout, account common.Address, plan domain.SpendPlan, keep decimal.Decimal) ([]domain.Call, error) {
	calls := make([]domain.Call, 0, len(plan.Allocations))
	for _, a := range plan.Allocations {
		var (
			target common.Address
			data   string
			err    error
		)
		switch a.Kind {
		case domain.SourceMerchantToken:
			target = *a.TokenAddress
			data, err = calldata.ERC20Transfer(payout, a.RawAmount)
		case domain.SourceStoreToken:
			target = chain.Terminal
			data, err = calldata.CashOutTokensOf(calldata.CashOutParams{
				Holder:             account,
				ProjectID:          big.NewInt(a.ProjectID),
				CashOutCount:       a.RawAmount,
				TokenToReclaim:     chain.Stablecoin,
				MinTokensReclaimed: minReclaimed(a, chain.StablecoinDecimals, keep),
				Beneficiary:        payout,
			})
		case domain.SourceStablecoin:
			target = chain.Stablecoin
			data, err = calldata.ERC20Transfer(payout, a.RawAmount)
		default:
			return nil, fmt.Errorf("unknown allocation kind %q", a.Kind)
		}
		if err != nil {
			return nil, fmt.Errorf("encode %s allocation: %w", a.Kind, err)
		}
		raw, err := hexutil.Decode(data)
		if err != nil {
			return nil, err
		}
		calls = append(calls, domain.Call{ChainID: chain.ID, Target: target, Value: new(big.Int), Data: raw})
	}
	return calls, nil
}

// minReclaimed is the allocation's net USD value times keep, in stablecoin
// units rounded down.
func minReclaimed(a domain.TokenAllocation, decimals int32, keep decimal.Decimal) *big.Int {
	net := a.AmountUSD.Sub(a.FeeUSD).Mul(keep)
	if !net.IsPositive() {
		return new(big.Int)
	}
	return net.Shift(decimals).Floor().BigInt()
}
