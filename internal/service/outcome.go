package service

import (
	"context"
	"errors"
	"time"

	"multichain-settlement/internal/core/domain"
	"multichain-settlement/internal/core/ports"
	"multichain-settlement/internal/metrics"
	"multichain-settlement/pkg/apperror"

	"github.com/rs/zerolog"
)

// outcomeRecorder persists terminal payment states and announces them.
// Shared by the bundle and confirmation services.
type outcomeRecorder struct {
	paymentRepo ports.PaymentRepository
	publisher   ports.EventPublisher
	now         func() time.Time
	log         zerolog.Logger
}

func newOutcomeRecorder(paymentRepo ports.PaymentRepository, publisher ports.EventPublisher, log zerolog.Logger) *outcomeRecorder {
	return &outcomeRecorder{
		paymentRepo: paymentRepo,
		publisher:   publisher,
		now:         time.Now,
		log:         log,
	}
}

// finish moves p from its current status to the terminal state in upd. It
// returns false when another writer already moved the payment.
func (r *outcomeRecorder) finish(ctx context.Context, p *domain.Payment, upd domain.StatusUpdate) (bool, error) {
	from := p.Status
	ok, err := r.paymentRepo.UpdateStatus(ctx, p.ID, from, upd)
	if err != nil {
		return false, apperror.ErrDatabaseError(err)
	}
	if !ok {
		r.log.Warn().
			Str("payment_id", p.ID.String()).
			Str("from", string(from)).
			Str("to", string(upd.Status)).
			Msg("Payment moved concurrently, outcome dropped")
		return false, nil
	}
	upd.Apply(p)

	code := ""
	if p.ErrorCode != nil {
		code = *p.ErrorCode
	}
	metrics.PaymentsTerminal.WithLabelValues(string(p.Status), code).Inc()

	logEvent := r.log.Info()
	if p.Status != domain.PaymentStatusConfirmed {
		logEvent = r.log.Warn()
	}
	logEvent.
		Str("payment_id", p.ID.String()).
		Str("status", string(p.Status)).
		Str("error_code", code).
		Msg("Payment finished")

	if err := r.publisher.Publish(ctx, domain.NewPaymentEvent(p, r.now().UTC())); err != nil {
		r.log.Error().Err(err).Str("payment_id", p.ID.String()).Msg("Failed to publish payment event")
	}
	return true, nil
}

// fail records a FAILED outcome carrying err's code and public message.
func (r *outcomeRecorder) fail(ctx context.Context, p *domain.Payment, attempts int, err error) {
	code, msg := errorFields(err)
	upd := domain.StatusUpdate{
		Status:       domain.PaymentStatusFailed,
		ErrorCode:    &code,
		ErrorMessage: &msg,
		PollAttempts: attempts,
	}
	if _, ferr := r.finish(ctx, p, upd); ferr != nil {
		r.log.Error().Err(ferr).Str("payment_id", p.ID.String()).Msg("Failed to record payment failure")
	}
}

// errorFields returns the code and client-facing message of err.
func errorFields(err error) (string, string) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		msg := appErr.Message
		if appErr.Err != nil {
			msg += ": " + appErr.Err.Error()
		}
		return appErr.Code, msg
	}
	return apperror.CodeInternal, err.Error()
}
