package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"multichain-settlement/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var idempotencyColumns = []string{"key", "payment_id", "created_at"}

func TestIdempotencyRepo_Create(t *testing.T) {
	entry := &domain.IdempotencyLog{
		Key:       "payer-id:ORDER-001",
		PaymentID: uuid.New(),
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name    string
		execErr error
		wantErr bool
	}{
		{name: "recorded"},
		{name: "key taken", execErr: &pgconn.PgError{Code: "23505"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			mock.ExpectBegin()
			exec := mock.ExpectExec("INSERT INTO idempotency_logs").
				WithArgs(entry.Key, entry.PaymentID, entry.CreatedAt)
			if tt.execErr != nil {
				exec.WillReturnError(tt.execErr)
			} else {
				exec.WillReturnResult(pgxmock.NewResult("INSERT", 1))
			}

			tx, err := mock.Begin(context.Background())
			require.NoError(t, err)

			err = NewIdempotencyRepo(mock).Create(context.Background(), tx, entry)
			if tt.wantErr {
				var pgErr *pgconn.PgError
				assert.True(t, errors.As(err, &pgErr), "unique violation must stay inspectable")
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestIdempotencyRepo_Get(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	paymentID := uuid.New()
	createdAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT key, payment_id, created_at FROM idempotency_logs WHERE key").
		WithArgs("payer-id:ORDER-001").
		WillReturnRows(pgxmock.NewRows(idempotencyColumns).
			AddRow("payer-id:ORDER-001", paymentID, createdAt))

	result, err := NewIdempotencyRepo(mock).Get(context.Background(), "payer-id:ORDER-001")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, paymentID, result.PaymentID)
	assert.Equal(t, createdAt, result.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyRepo_Get_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM idempotency_logs WHERE key").
		WithArgs("nonexistent-key").
		WillReturnRows(pgxmock.NewRows(idempotencyColumns))

	result, err := NewIdempotencyRepo(mock).Get(context.Background(), "nonexistent-key")
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}
