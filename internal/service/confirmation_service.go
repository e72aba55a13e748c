package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"multichain-settlement/internal/core/domain"
	"multichain-settlement/internal/core/ports"
	"multichain-settlement/internal/metrics"
	"multichain-settlement/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ConfirmationConfig controls the poll loop.
type ConfirmationConfig struct {
	Interval    time.Duration
	MaxAttempts int
	LockTTL     time.Duration
}

// ConfirmationServiceImpl implements ports.ConfirmationService. Each poll
// attempt runs as a scheduled task and schedules at most one successor.
type ConfirmationServiceImpl struct {
	paymentRepo ports.PaymentRepository
	relayer     ports.RelayerClient
	lock        ports.PollLock
	scheduler   ports.Scheduler
	outcome     *outcomeRecorder
	cfg         ConfirmationConfig
	owner       string
	log         zerolog.Logger
}

// NewConfirmationService creates a new ConfirmationServiceImpl.
func NewConfirmationService(
	paymentRepo ports.PaymentRepository,
	relayer ports.RelayerClient,
	lock ports.PollLock,
	scheduler ports.Scheduler,
	publisher ports.EventPublisher,
	cfg ConfirmationConfig,
	log zerolog.Logger,
) *ConfirmationServiceImpl {
	return &ConfirmationServiceImpl{
		paymentRepo: paymentRepo,
		relayer:     relayer,
		lock:        lock,
		scheduler:   scheduler,
		outcome:     newOutcomeRecorder(paymentRepo, publisher, log),
		cfg:         cfg,
		owner:       uuid.NewString(),
		log:         log,
	}
}

// pollSequence is the state of one bundle's polling, owned by its tasks.
type pollSequence struct {
	paymentID uuid.UUID
	bundleID  string
	attempt   int
	locked    bool
}

// PollKey is the scheduler key of a bundle's poll task.
func PollKey(bundleID string) string {
	return "poll:" + bundleID
}

// Start moves a submitted payment to POLLING and schedules the first check.
func (s *ConfirmationServiceImpl) Start(ctx context.Context, payment *domain.Payment) error {
	if payment.Status != domain.PaymentStatusSubmitted || payment.BundleID == nil {
		return apperror.InternalError(fmt.Errorf("payment %s is %s, cannot start polling", payment.ID, payment.Status))
	}

	upd := domain.StatusUpdate{Status: domain.PaymentStatusPolling, PollAttempts: 0}
	ok, err := s.paymentRepo.UpdateStatus(ctx, payment.ID, domain.PaymentStatusSubmitted, upd)
	if err != nil {
		return apperror.ErrDatabaseError(err)
	}
	if !ok {
		s.log.Warn().Str("payment_id", payment.ID.String()).Msg("Payment left SUBMITTED concurrently, not polling")
		return nil
	}
	upd.Apply(payment)

	seq := &pollSequence{paymentID: payment.ID, bundleID: *payment.BundleID}
	locked, err := s.lock.Acquire(ctx, seq.bundleID, s.owner, s.cfg.LockTTL)
	if err != nil {
		s.log.Warn().Err(err).Str("bundle_id", seq.bundleID).Msg("Poll lock unavailable, retrying on first attempt")
	}
	seq.locked = locked

	s.schedule(seq)
	return nil
}

// Resume continues polling an in-flight payment found at startup. The
// attempt budget carries over from the stored count.
func (s *ConfirmationServiceImpl) Resume(ctx context.Context, payment *domain.Payment) {
	switch payment.Status {
	case domain.PaymentStatusSubmitted:
		if err := s.Start(ctx, payment); err != nil {
			s.log.Error().Err(err).Str("payment_id", payment.ID.String()).Msg("Failed to resume submitted payment")
		}
	case domain.PaymentStatusPolling:
		if payment.BundleID == nil {
			s.log.Error().Str("payment_id", payment.ID.String()).Msg("Polling payment has no bundle id")
			return
		}
		s.schedule(&pollSequence{
			paymentID: payment.ID,
			bundleID:  *payment.BundleID,
			attempt:   payment.PollAttempts,
		})
	}
}

func (s *ConfirmationServiceImpl) schedule(seq *pollSequence) {
	if !s.scheduler.Schedule(PollKey(seq.bundleID), s.cfg.Interval, func(ctx context.Context) {
		s.poll(ctx, seq)
	}) {
		s.log.Debug().Str("bundle_id", seq.bundleID).Msg("Poll already scheduled")
	}
}

// poll runs one attempt.
func (s *ConfirmationServiceImpl) poll(ctx context.Context, seq *pollSequence) {
	log := s.log.With().
		Str("payment_id", seq.paymentID.String()).
		Str("bundle_id", seq.bundleID).
		Logger()

	payment, err := s.paymentRepo.GetByID(ctx, seq.paymentID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load payment, retrying")
		s.schedule(seq)
		return
	}
	if payment == nil || payment.Status != domain.PaymentStatusPolling {
		s.release(ctx, seq)
		return
	}

	proceed, lockErr := s.holdLock(ctx, seq, log)
	if !proceed {
		return
	}

	seq.attempt++
	var reports []domain.TxReport
	pollErr := lockErr
	if lockErr == nil {
		reports, pollErr = s.relayer.BundleStatus(ctx, seq.bundleID)
	}
	decision := domain.EvaluatePoll(reports, pollErr, seq.attempt, s.cfg.MaxAttempts)

	switch {
	case lockErr != nil:
		metrics.PollAttempts.WithLabelValues("lock_error").Inc()
		log.Warn().Err(lockErr).Int("attempt", seq.attempt).Msg("Poll lock store unavailable, relayer not queried")
	case pollErr != nil:
		metrics.PollAttempts.WithLabelValues("error").Inc()
		log.Warn().Err(pollErr).Int("attempt", seq.attempt).Msg("Bundle status check failed")
	case len(reports) == 0:
		metrics.PollAttempts.WithLabelValues("empty").Inc()
		log.Warn().Int("attempt", seq.attempt).Msg("Relayer returned no transactions")
	default:
		metrics.PollAttempts.WithLabelValues("ok").Inc()
	}

	if !decision.Terminal() {
		upd := domain.StatusUpdate{Status: domain.PaymentStatusPolling, PollAttempts: seq.attempt}
		ok, err := s.paymentRepo.UpdateStatus(ctx, seq.paymentID, domain.PaymentStatusPolling, upd)
		if err != nil {
			log.Error().Err(err).Msg("Failed to record poll attempt")
		} else if !ok {
			s.release(ctx, seq)
			return
		}
		s.schedule(seq)
		return
	}

	upd := s.terminalUpdate(decision, seq.attempt, pollErr)
	if _, err := s.outcome.finish(ctx, payment, upd); err != nil {
		log.Error().Err(err).Msg("Failed to record bundle outcome, retrying")
		seq.attempt--
		s.schedule(seq)
		return
	}
	s.release(ctx, seq)
}

// holdLock acquires or refreshes the poll lock. proceed is false when this
// attempt must not run: a busy lock reschedules without using an attempt and
// a lock taken over by another poller ends the sequence. A lock store error
// is returned with proceed set; the attempt is spent without asking the
// relayer, so a store outage still runs into the attempt budget.
func (s *ConfirmationServiceImpl) holdLock(ctx context.Context, seq *pollSequence, log zerolog.Logger) (bool, error) {
	held := seq.locked
	if held {
		ok, err := s.lock.Refresh(ctx, seq.bundleID, s.owner, s.cfg.LockTTL)
		if err != nil {
			return true, fmt.Errorf("refresh poll lock: %w", err)
		}
		if ok {
			return true, nil
		}
		// Expired; take it back unless another poller already has.
		seq.locked = false
	}

	ok, err := s.lock.Acquire(ctx, seq.bundleID, s.owner, s.cfg.LockTTL)
	if err != nil {
		return true, fmt.Errorf("acquire poll lock: %w", err)
	}
	if ok {
		seq.locked = true
		return true, nil
	}
	if held {
		log.Warn().Msg("Poll lock lost, another poller owns this bundle")
		return false, nil
	}
	metrics.PollAttempts.WithLabelValues("lock_busy").Inc()
	s.schedule(seq)
	return false, nil
}

func (s *ConfirmationServiceImpl) release(ctx context.Context, seq *pollSequence) {
	if !seq.locked {
		return
	}
	if err := s.lock.Release(ctx, seq.bundleID, s.owner); err != nil {
		s.log.Warn().Err(err).Str("bundle_id", seq.bundleID).Msg("Poll lock release failed")
	}
	seq.locked = false
}

func (s *ConfirmationServiceImpl) terminalUpdate(d domain.PollDecision, attempts int, pollErr error) domain.StatusUpdate {
	upd := domain.StatusUpdate{PollAttempts: attempts}

	var appErr *apperror.AppError
	switch d.Action {
	case domain.PollConfirm:
		upd.Status = domain.PaymentStatusConfirmed
		txHash, block := d.Report.TxHash, d.Report.BlockNumber
		code := newConfirmationCode()
		upd.TxHash, upd.BlockNumber, upd.ConfirmationCode = &txHash, &block, &code
		return upd
	case domain.PollFail:
		upd.Status = domain.PaymentStatusFailed
		appErr = apperror.ErrBundleFailed(string(d.Report.Status), d.Report.Error)
		if d.Report.TxHash != "" {
			txHash := d.Report.TxHash
			upd.TxHash = &txHash
		}
	case domain.PollTimeout:
		upd.Status = domain.PaymentStatusTimedOut
		appErr = apperror.ErrBundleTimeout(attempts)
	default:
		upd.Status = domain.PaymentStatusFailed
		if pollErr == nil {
			pollErr = errors.New("relayer returned no transactions")
		}
		appErr = apperror.ErrStatusCheckFailed(pollErr)
	}

	code, msg := errorFields(appErr)
	upd.ErrorCode, upd.ErrorMessage = &code, &msg
	return upd
}

// newConfirmationCode returns a short human-readable receipt code.
func newConfirmationCode() string {
	return rand.Text()[:10]
}
