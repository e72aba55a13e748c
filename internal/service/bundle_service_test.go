package service

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"multichain-settlement/internal/core/domain"
	"multichain-settlement/internal/core/ports/mocks"
	"multichain-settlement/pkg/apperror"
	"multichain-settlement/pkg/calldata"
	"multichain-settlement/pkg/eip712"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	testForwarder = common.HexToAddress("0x4444444444444444444444444444444444444444")
	testAccount   = common.HexToAddress("0x5c61f48f9f3651fb7ac70d4750177377814a14c3")
	testToken     = common.HexToAddress("0x6666666666666666666666666666666666666666")
	testPayout    = common.HexToAddress("0x7777777777777777777777777777777777777777")
)

type bundleTestDeps struct {
	svc         *BundleServiceImpl
	accountSvc  *mocks.MockSmartAccountService
	keySvc      *mocks.MockKeyService
	nonces      *mocks.MockNonceReader
	relayer     *mocks.MockRelayerClient
	confirmSvc  *mocks.MockConfirmationService
	paymentRepo *mocks.MockPaymentRepository
	publisher   *mocks.MockEventPublisher
	key         *ecdsa.PrivateKey
	owner       common.Address
	now         time.Time
}

func setupBundleService(t *testing.T) *bundleTestDeps {
	ctrl := gomock.NewController(t)
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	d := &bundleTestDeps{
		accountSvc:  mocks.NewMockSmartAccountService(ctrl),
		keySvc:      mocks.NewMockKeyService(ctrl),
		nonces:      mocks.NewMockNonceReader(ctrl),
		relayer:     mocks.NewMockRelayerClient(ctrl),
		confirmSvc:  mocks.NewMockConfirmationService(ctrl),
		paymentRepo: mocks.NewMockPaymentRepository(ctrl),
		publisher:   mocks.NewMockEventPublisher(ctrl),
		key:         key,
		owner:       crypto.PubkeyToAddress(key.PublicKey),
		now:         time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	d.svc = NewBundleService(d.accountSvc, d.keySvc, d.nonces, d.relayer, d.confirmSvc, d.paymentRepo, d.publisher,
		BundleConfig{
			Forwarder:   testForwarder,
			Name:        "ERC2771Forwarder",
			Version:     "1",
			Gas:         1_000_000,
			DeadlineTTL: time.Hour,
		}, zerolog.Nop())
	d.svc.now = func() time.Time { return d.now }
	return d
}

func (d *bundleTestDeps) expectSigning() {
	d.keySvc.EXPECT().WithKey(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ uuid.UUID, fn func(*ecdsa.PrivateKey) error) error {
			return fn(d.key)
		})
}

func (d *bundleTestDeps) account(userID uuid.UUID, chainID int64) *domain.SmartAccount {
	return &domain.SmartAccount{UserID: userID, ChainID: chainID, Address: testAccount, Salt: big.NewInt(0), OwnerAddress: d.owner}
}

// expectedCall signs the request the service should produce for call.
func (d *bundleTestDeps) expectedCall(t *testing.T, call domain.Call, nonce int64) domain.BundleCall {
	t.Helper()
	wrapped, err := calldata.AccountExecute(call.Target, call.Value, call.Data)
	require.NoError(t, err)
	out, err := d.svc.sign(d.key, unsignedCall{
		chainID: call.ChainID,
		req: eip712.ForwardRequest{
			From:     d.owner,
			To:       testAccount,
			Value:    new(big.Int),
			Gas:      big.NewInt(1_000_000),
			Nonce:    big.NewInt(nonce),
			Deadline: uint64(d.now.Add(time.Hour).Unix()),
			Data:     hexutil.MustDecode(wrapped),
		},
	})
	require.NoError(t, err)
	return out
}

func buildingPayment() *domain.Payment {
	merchantID := uuid.New()
	return &domain.Payment{
		ID:         uuid.New(),
		Kind:       domain.PaymentKindPayment,
		PayerID:    uuid.New(),
		MerchantID: &merchantID,
		ChainID:    1,
		AmountUSD:  decimal.NewFromInt(10),
		Status:     domain.PaymentStatusBuilding,
	}
}

func transferCall(t *testing.T, chainID int64, amount int64) domain.Call {
	t.Helper()
	data, err := calldata.ERC20Transfer(testPayout, big.NewInt(amount))
	require.NoError(t, err)
	return domain.Call{ChainID: chainID, Target: testToken, Value: new(big.Int), Data: hexutil.MustDecode(data)}
}

func TestBundleService_ExecuteManaged(t *testing.T) {
	d := setupBundleService(t)
	ctx := context.Background()
	p := buildingPayment()

	calls := []domain.Call{
		transferCall(t, 1, 100),
		transferCall(t, 8453, 200),
		transferCall(t, 1, 300),
	}

	d.accountSvc.EXPECT().Resolve(ctx, p.PayerID, int64(1)).Return(d.account(p.PayerID, 1), nil)
	d.accountSvc.EXPECT().Resolve(ctx, p.PayerID, int64(8453)).Return(d.account(p.PayerID, 8453), nil)
	d.nonces.EXPECT().ForwarderNonce(ctx, int64(1), d.owner).Return(big.NewInt(5), nil)
	d.nonces.EXPECT().ForwarderNonce(ctx, int64(8453), d.owner).Return(big.NewInt(0), nil)
	d.expectSigning()

	want := []domain.BundleCall{
		d.expectedCall(t, calls[0], 5),
		d.expectedCall(t, calls[1], 0),
		d.expectedCall(t, calls[2], 6),
	}

	d.relayer.EXPECT().SubmitBundle(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, got []domain.BundleCall) (*domain.BundleReceipt, error) {
			assert.Equal(t, want, got)
			for _, c := range got {
				assert.Equal(t, testForwarder, c.Target)
				assert.True(t, strings.HasPrefix(c.Data, "0xdf905caf"))
			}
			return &domain.BundleReceipt{BundleID: "b-1"}, nil
		})
	d.paymentRepo.EXPECT().UpdateStatus(gomock.Any(), p.ID, domain.PaymentStatusBuilding, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ uuid.UUID, _ domain.PaymentStatus, upd domain.StatusUpdate) (bool, error) {
			assert.Equal(t, domain.PaymentStatusSubmitted, upd.Status)
			assert.Equal(t, "b-1", *upd.BundleID)
			return true, nil
		})
	d.confirmSvc.EXPECT().Start(ctx, p).DoAndReturn(func(_ context.Context, got *domain.Payment) error {
		assert.Equal(t, domain.PaymentStatusSubmitted, got.Status)
		return nil
	})

	d.svc.ExecuteManaged(ctx, p, calls)
	assert.Equal(t, "b-1", *p.BundleID)
}

func TestBundleService_ForwardRequestTargetsSmartAccount(t *testing.T) {
	d := setupBundleService(t)
	call := transferCall(t, 1, 100)
	got := d.expectedCall(t, call, 9)

	// selector, tuple offset, then the tuple head.
	raw := hexutil.MustDecode(got.Data)
	require.Greater(t, len(raw), 4+32*8)
	assert.Equal(t, d.owner, common.BytesToAddress(raw[4+32:4+64]))
	assert.Equal(t, testAccount, common.BytesToAddress(raw[4+64:4+96]))

	// The trailing signature recovers to the owner.
	sig := raw[len(raw)-96 : len(raw)-31]
	hash, err := d.svc.domain.SigningHash(big.NewInt(1), eip712.ForwardRequest{
		From:     d.owner,
		To:       testAccount,
		Value:    new(big.Int),
		Gas:      big.NewInt(1_000_000),
		Nonce:    big.NewInt(9),
		Deadline: uint64(d.now.Add(time.Hour).Unix()),
		Data:     hexutil.MustDecode(mustAccountExecute(t, call)),
	})
	require.NoError(t, err)
	signer, err := eip712.Recover(hash, sig)
	require.NoError(t, err)
	assert.Equal(t, d.owner, signer)
}

func mustAccountExecute(t *testing.T, call domain.Call) string {
	t.Helper()
	wrapped, err := calldata.AccountExecute(call.Target, call.Value, call.Data)
	require.NoError(t, err)
	return wrapped
}

func TestBundleService_ExecuteManaged_SubmitRejected(t *testing.T) {
	d := setupBundleService(t)
	ctx := context.Background()
	p := buildingPayment()

	d.accountSvc.EXPECT().Resolve(ctx, p.PayerID, int64(1)).Return(d.account(p.PayerID, 1), nil)
	d.nonces.EXPECT().ForwarderNonce(ctx, int64(1), d.owner).Return(big.NewInt(0), nil)
	d.expectSigning()
	d.relayer.EXPECT().SubmitBundle(ctx, gomock.Any()).Return(nil, errors.New("relayer submit returned 400: simulation reverted"))
	d.paymentRepo.EXPECT().UpdateStatus(ctx, p.ID, domain.PaymentStatusBuilding, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ uuid.UUID, _ domain.PaymentStatus, upd domain.StatusUpdate) (bool, error) {
			assert.Equal(t, domain.PaymentStatusFailed, upd.Status)
			assert.Equal(t, apperror.CodeExecutionFailed, *upd.ErrorCode)
			assert.Contains(t, *upd.ErrorMessage, "simulation reverted")
			return true, nil
		})
	d.publisher.EXPECT().Publish(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, e domain.PaymentEvent) error {
		assert.Equal(t, p.ID, e.PaymentID)
		assert.Equal(t, domain.PaymentStatusFailed, e.Status)
		return nil
	})

	d.svc.ExecuteManaged(ctx, p, []domain.Call{transferCall(t, 1, 100)})
	assert.Equal(t, domain.PaymentStatusFailed, p.Status)
	assert.Nil(t, p.BundleID)
}

func TestBundleService_ExecuteManaged_BuildFailures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(d *bundleTestDeps, p *domain.Payment)
	}{
		{"account resolution", func(d *bundleTestDeps, p *domain.Payment) {
			d.accountSvc.EXPECT().Resolve(gomock.Any(), p.PayerID, int64(1)).Return(nil, apperror.ErrNotFound("Signing key"))
		}},
		{"nonce read", func(d *bundleTestDeps, p *domain.Payment) {
			d.accountSvc.EXPECT().Resolve(gomock.Any(), p.PayerID, int64(1)).Return(d.account(p.PayerID, 1), nil)
			d.nonces.EXPECT().ForwarderNonce(gomock.Any(), int64(1), d.owner).Return(nil, errors.New("rpc timeout"))
		}},
		{"key unavailable", func(d *bundleTestDeps, p *domain.Payment) {
			d.accountSvc.EXPECT().Resolve(gomock.Any(), p.PayerID, int64(1)).Return(d.account(p.PayerID, 1), nil)
			d.nonces.EXPECT().ForwarderNonce(gomock.Any(), int64(1), d.owner).Return(big.NewInt(0), nil)
			d.keySvc.EXPECT().WithKey(gomock.Any(), p.PayerID, gomock.Any()).Return(apperror.ErrEncryptionFailure(errors.New("auth failed")))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := setupBundleService(t)
			p := buildingPayment()
			tt.setup(d, p)

			d.paymentRepo.EXPECT().UpdateStatus(gomock.Any(), p.ID, domain.PaymentStatusBuilding, gomock.Any()).DoAndReturn(
				func(_ context.Context, _ uuid.UUID, _ domain.PaymentStatus, upd domain.StatusUpdate) (bool, error) {
					assert.Equal(t, domain.PaymentStatusFailed, upd.Status)
					assert.Equal(t, apperror.CodeExecutionFailed, *upd.ErrorCode)
					return true, nil
				})
			d.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

			d.svc.ExecuteManaged(context.Background(), p, []domain.Call{transferCall(t, 1, 100)})
			assert.Equal(t, domain.PaymentStatusFailed, p.Status)
		})
	}
}

func TestBundleService_ExecuteManaged_EmptyCalls(t *testing.T) {
	d := setupBundleService(t)
	p := buildingPayment()

	d.paymentRepo.EXPECT().UpdateStatus(gomock.Any(), p.ID, domain.PaymentStatusBuilding, gomock.Any()).Return(true, nil)
	d.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	d.svc.ExecuteManaged(context.Background(), p, nil)
	assert.Equal(t, domain.PaymentStatusFailed, p.Status)
}

func TestBundleService_ExecuteSigned(t *testing.T) {
	d := setupBundleService(t)
	ctx := context.Background()
	p := buildingPayment()
	p.Kind = domain.PaymentKindSignedBundle

	bundle := []domain.BundleCall{{ChainID: 10, Target: testForwarder, Data: "0xdf905caf00", Value: big.NewInt(0)}}

	d.relayer.EXPECT().SubmitBundle(ctx, bundle).Return(&domain.BundleReceipt{BundleID: "b-9"}, nil)
	d.paymentRepo.EXPECT().UpdateStatus(gomock.Any(), p.ID, domain.PaymentStatusBuilding, gomock.Any()).Return(true, nil)
	d.confirmSvc.EXPECT().Start(ctx, p).Return(nil)

	d.svc.ExecuteSigned(ctx, p, bundle)
	assert.Equal(t, domain.PaymentStatusSubmitted, p.Status)
}

func TestBundleService_Submit_LostRace(t *testing.T) {
	d := setupBundleService(t)
	ctx := context.Background()
	p := buildingPayment()

	d.relayer.EXPECT().SubmitBundle(ctx, gomock.Any()).Return(&domain.BundleReceipt{BundleID: "b-2"}, nil)
	d.paymentRepo.EXPECT().UpdateStatus(gomock.Any(), p.ID, domain.PaymentStatusBuilding, gomock.Any()).Return(false, nil)
	d.paymentRepo.EXPECT().AttachBundle(gomock.Any(), p.ID, "b-2").Return(true, nil)

	d.svc.ExecuteSigned(ctx, p, []domain.BundleCall{{ChainID: 1, Data: "0x"}})
	assert.Equal(t, domain.PaymentStatusBuilding, p.Status)
	assert.Nil(t, p.BundleID)
}

func TestBundleService_Submit_RecordRetried(t *testing.T) {
	d := setupBundleService(t)
	d.svc.recordBackoff = time.Millisecond
	ctx := context.Background()
	p := buildingPayment()

	d.relayer.EXPECT().SubmitBundle(ctx, gomock.Any()).Return(&domain.BundleReceipt{BundleID: "b-live"}, nil)
	gomock.InOrder(
		d.paymentRepo.EXPECT().UpdateStatus(gomock.Any(), p.ID, domain.PaymentStatusBuilding, gomock.Any()).
			Return(false, errors.New("conn reset")).Times(2),
		d.paymentRepo.EXPECT().UpdateStatus(gomock.Any(), p.ID, domain.PaymentStatusBuilding, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ uuid.UUID, _ domain.PaymentStatus, upd domain.StatusUpdate) (bool, error) {
				assert.Equal(t, "b-live", *upd.BundleID)
				return true, nil
			}),
	)
	d.confirmSvc.EXPECT().Start(ctx, p).Return(nil)

	d.svc.ExecuteSigned(ctx, p, []domain.BundleCall{{ChainID: 1, Data: "0x"}})
	assert.Equal(t, domain.PaymentStatusSubmitted, p.Status)
	assert.Equal(t, "b-live", *p.BundleID)
}

func TestBundleService_Submit_RecordOutlivesCancellation(t *testing.T) {
	d := setupBundleService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := buildingPayment()

	d.relayer.EXPECT().SubmitBundle(ctx, gomock.Any()).DoAndReturn(
		func(context.Context, []domain.BundleCall) (*domain.BundleReceipt, error) {
			cancel()
			return &domain.BundleReceipt{BundleID: "b-live"}, nil
		})
	d.paymentRepo.EXPECT().UpdateStatus(gomock.Any(), p.ID, domain.PaymentStatusBuilding, gomock.Any()).DoAndReturn(
		func(writeCtx context.Context, _ uuid.UUID, _ domain.PaymentStatus, _ domain.StatusUpdate) (bool, error) {
			assert.NoError(t, writeCtx.Err())
			return true, nil
		})
	d.confirmSvc.EXPECT().Start(gomock.Any(), p).Return(nil)

	d.svc.ExecuteSigned(ctx, p, []domain.BundleCall{{ChainID: 1, Data: "0x"}})
	assert.Equal(t, "b-live", *p.BundleID)
}

func TestBundleService_Submit_RecordExhausted(t *testing.T) {
	d := setupBundleService(t)
	d.svc.recordBackoff = time.Millisecond
	ctx := context.Background()
	p := buildingPayment()

	d.relayer.EXPECT().SubmitBundle(ctx, gomock.Any()).Return(&domain.BundleReceipt{BundleID: "b-live"}, nil)
	d.paymentRepo.EXPECT().UpdateStatus(gomock.Any(), p.ID, domain.PaymentStatusBuilding, gomock.Any()).
		Return(false, errors.New("connection refused")).Times(recordSubmittedAttempts)

	d.svc.ExecuteSigned(ctx, p, []domain.BundleCall{{ChainID: 1, Data: "0x"}})
	assert.Equal(t, domain.PaymentStatusBuilding, p.Status)
	assert.Nil(t, p.BundleID)
}

func TestBundleService_Abandon(t *testing.T) {
	d := setupBundleService(t)
	p := buildingPayment()

	d.paymentRepo.EXPECT().UpdateStatus(gomock.Any(), p.ID, domain.PaymentStatusBuilding, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ uuid.UUID, _ domain.PaymentStatus, upd domain.StatusUpdate) (bool, error) {
			assert.Equal(t, apperror.CodeExecutionFailed, *upd.ErrorCode)
			assert.Contains(t, *upd.ErrorMessage, "interrupted")
			return true, nil
		})
	d.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	d.svc.Abandon(context.Background(), p, "interrupted before submission")
	assert.Equal(t, domain.PaymentStatusFailed, p.Status)
}
