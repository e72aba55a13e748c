package service

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"time"

	"multichain-settlement/internal/core/domain"
	"multichain-settlement/internal/core/ports"
	"multichain-settlement/internal/metrics"
	"multichain-settlement/pkg/apperror"
	"multichain-settlement/pkg/calldata"
	"multichain-settlement/pkg/eip712"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const recordSubmittedAttempts = 5

// BundleConfig describes the forwarder every managed request goes through.
type BundleConfig struct {
	Forwarder   common.Address
	Name        string
	Version     string
	Gas         uint64
	DeadlineTTL time.Duration
}

// BundleServiceImpl implements ports.BundleService.
type BundleServiceImpl struct {
	accountSvc  ports.SmartAccountService
	keySvc      ports.KeyService
	nonces      ports.NonceReader
	relayer     ports.RelayerClient
	confirmSvc  ports.ConfirmationService
	paymentRepo ports.PaymentRepository
	outcome     *outcomeRecorder
	domain      eip712.Domain
	forwarder   common.Address
	gas         *big.Int
	ttl         time.Duration
	now         func() time.Time
	log         zerolog.Logger

	recordBackoff time.Duration
}

// NewBundleService creates a new BundleServiceImpl.
func NewBundleService(
	accountSvc ports.SmartAccountService,
	keySvc ports.KeyService,
	nonces ports.NonceReader,
	relayer ports.RelayerClient,
	confirmSvc ports.ConfirmationService,
	paymentRepo ports.PaymentRepository,
	publisher ports.EventPublisher,
	cfg BundleConfig,
	log zerolog.Logger,
) *BundleServiceImpl {
	return &BundleServiceImpl{
		accountSvc:  accountSvc,
		keySvc:      keySvc,
		nonces:      nonces,
		relayer:     relayer,
		confirmSvc:  confirmSvc,
		paymentRepo: paymentRepo,
		outcome:     newOutcomeRecorder(paymentRepo, publisher, log),
		domain:      eip712.NewDomain(cfg.Name, cfg.Version, cfg.Forwarder),
		forwarder:   cfg.Forwarder,
		gas:         new(big.Int).SetUint64(cfg.Gas),
		ttl:         cfg.DeadlineTTL,
		now:         time.Now,
		log:         log,

		recordBackoff: 250 * time.Millisecond,
	}
}

// ExecuteManaged wraps each call for the payer's smart account, signs one
// forward request per call with the payer's key and submits the bundle.
func (s *BundleServiceImpl) ExecuteManaged(ctx context.Context, payment *domain.Payment, calls []domain.Call) {
	bundle, err := s.build(ctx, payment, calls)
	if err != nil {
		s.log.Error().Err(err).Str("payment_id", payment.ID.String()).Msg("Bundle build failed")
		s.outcome.fail(ctx, payment, 0, apperror.ErrExecutionFailed(err))
		return
	}
	s.submit(ctx, payment, bundle)
}

// ExecuteSigned submits caller-signed calls as they are.
func (s *BundleServiceImpl) ExecuteSigned(ctx context.Context, payment *domain.Payment, bundle []domain.BundleCall) {
	s.submit(ctx, payment, bundle)
}

// Abandon fails a BUILDING payment that will never be submitted.
func (s *BundleServiceImpl) Abandon(ctx context.Context, payment *domain.Payment, reason string) {
	s.outcome.fail(ctx, payment, 0, apperror.ErrExecutionFailed(errors.New(reason)))
}

type unsignedCall struct {
	chainID int64
	req     eip712.ForwardRequest
}

func (s *BundleServiceImpl) build(ctx context.Context, payment *domain.Payment, calls []domain.Call) ([]domain.BundleCall, error) {
	if len(calls) == 0 {
		return nil, errors.New("empty bundle")
	}

	accounts := make(map[int64]*domain.SmartAccount)
	nonces := make(map[int64]*big.Int)
	deadline := uint64(s.now().Add(s.ttl).Unix())

	pending := make([]unsignedCall, 0, len(calls))
	for _, call := range calls {
		account, ok := accounts[call.ChainID]
		if !ok {
			var err error
			account, err = s.accountSvc.Resolve(ctx, payment.PayerID, call.ChainID)
			if err != nil {
				return nil, fmt.Errorf("resolve smart account on chain %d: %w", call.ChainID, err)
			}
			accounts[call.ChainID] = account
		}

		// One read per chain; later requests on the same chain take the next nonce.
		nonce, ok := nonces[call.ChainID]
		if !ok {
			var err error
			nonce, err = s.nonces.ForwarderNonce(ctx, call.ChainID, account.OwnerAddress)
			if err != nil {
				return nil, fmt.Errorf("read forwarder nonce on chain %d: %w", call.ChainID, err)
			}
		}
		nonces[call.ChainID] = new(big.Int).Add(nonce, big.NewInt(1))

		wrapped, err := calldata.AccountExecute(call.Target, call.Value, call.Data)
		if err != nil {
			return nil, fmt.Errorf("encode account execute: %w", err)
		}
		inner, err := hexutil.Decode(wrapped)
		if err != nil {
			return nil, err
		}

		pending = append(pending, unsignedCall{
			chainID: call.ChainID,
			req: eip712.ForwardRequest{
				From:     account.OwnerAddress,
				To:       account.Address,
				Value:    new(big.Int),
				Gas:      s.gas,
				Nonce:    nonce,
				Deadline: deadline,
				Data:     inner,
			},
		})
	}

	bundle := make([]domain.BundleCall, 0, len(pending))
	err := s.keySvc.WithKey(ctx, payment.PayerID, func(key *ecdsa.PrivateKey) error {
		for _, u := range pending {
			call, err := s.sign(key, u)
			if err != nil {
				return err
			}
			bundle = append(bundle, call)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return bundle, nil
}

func (s *BundleServiceImpl) sign(key *ecdsa.PrivateKey, u unsignedCall) (domain.BundleCall, error) {
	hash, err := s.domain.SigningHash(big.NewInt(u.chainID), u.req)
	if err != nil {
		return domain.BundleCall{}, err
	}
	sig, err := eip712.Sign(key, hash)
	if err != nil {
		return domain.BundleCall{}, err
	}
	signed := eip712.SignedForwardRequest{Request: u.req, Signature: sig}
	data, err := calldata.ForwarderExecute(signed.ExecuteData())
	if err != nil {
		return domain.BundleCall{}, fmt.Errorf("encode forwarder execute: %w", err)
	}
	return domain.BundleCall{
		ChainID: u.chainID,
		Target:  s.forwarder,
		Data:    data,
		Value:   new(big.Int),
	}, nil
}

// submit hands the bundle to the relayer exactly once. A rejected submission
// fails the payment; it is never retried.
func (s *BundleServiceImpl) submit(ctx context.Context, payment *domain.Payment, bundle []domain.BundleCall) {
	receipt, err := s.relayer.SubmitBundle(ctx, bundle)
	if err != nil {
		s.log.Error().Err(err).Str("payment_id", payment.ID.String()).Msg("Bundle submission failed")
		s.outcome.fail(ctx, payment, 0, apperror.ErrExecutionFailed(err))
		return
	}

	bundleID := receipt.BundleID
	log := s.log.With().Str("payment_id", payment.ID.String()).Str("bundle_id", bundleID).Logger()

	upd := domain.StatusUpdate{Status: domain.PaymentStatusSubmitted, BundleID: &bundleID}
	ok, err := s.recordSubmitted(ctx, payment.ID, upd)
	if err != nil {
		log.Error().Err(err).Msg("Submitted bundle could not be recorded")
		return
	}
	if !ok {
		// The payment left BUILDING while the relayer accepted the bundle;
		// keep the bundle id on the row so it can be reconciled.
		if _, err := s.paymentRepo.AttachBundle(context.WithoutCancel(ctx), payment.ID, bundleID); err != nil {
			log.Error().Err(err).Msg("Failed to attach bundle to payment")
		}
		log.Error().Msg("Payment left BUILDING concurrently, submitted bundle is not polled")
		return
	}
	upd.Apply(payment)
	metrics.BundlesSubmitted.WithLabelValues(string(payment.Kind)).Inc()

	log.Info().Int("transactions", len(bundle)).Msg("Bundle submitted")

	if err := s.confirmSvc.Start(ctx, payment); err != nil {
		log.Error().Err(err).Msg("Failed to start confirmation")
	}
}

// recordSubmitted moves the payment to SUBMITTED. The relayer already holds
// the bundle at this point, so the write ignores cancellation of ctx and is
// retried with backoff.
func (s *BundleServiceImpl) recordSubmitted(ctx context.Context, paymentID uuid.UUID, upd domain.StatusUpdate) (bool, error) {
	ctx = context.WithoutCancel(ctx)
	backoff := s.recordBackoff

	var err error
	for attempt := 1; attempt <= recordSubmittedAttempts; attempt++ {
		var ok bool
		ok, err = s.paymentRepo.UpdateStatus(ctx, paymentID, domain.PaymentStatusBuilding, upd)
		if err == nil {
			return ok, nil
		}
		s.log.Warn().Err(err).
			Str("payment_id", paymentID.String()).
			Int("attempt", attempt).
			Msg("Recording submitted bundle failed")
		if attempt < recordSubmittedAttempts {
			time.Sleep(backoff)
			backoff *= 2
		}
	}
	return false, err
}
