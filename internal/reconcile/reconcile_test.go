package reconcile_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/webwaka/pesaflow/internal/adapter"
	"github.com/webwaka/pesaflow/internal/reconcile"
	"github.com/webwaka/pesaflow/internal/transaction"
)

func testConfig() reconcile.Config {
	return reconcile.Config{
		Interval:       time.Minute,
		Grace:          30 * time.Second,
		PendingTimeout: time.Hour,
	}
}

func mockAdapter(ctrl *gomock.Controller, sla time.Duration) *adapter.MockAdapter {
	a := adapter.NewMockAdapter(ctrl)
	a.EXPECT().ID().Return("m1").AnyTimes()
	a.EXPECT().Capability().Return(adapter.Capability{
		Currencies:     []string{"KES"},
		Directions:     []adapter.Direction{adapter.DirectionCollection},
		SupportsQuery:  true,
		SupportsNotify: true,
		StatusSLA:      sla,
	}).AnyTimes()

	return a
}

func newService(t *testing.T, repo transaction.Repository, ad adapter.Adapter, cfg reconcile.Config) *reconcile.Service {
	t.Helper()

	reg := adapter.NewRegistry()
	require.NoError(t, reg.Register(ad))

	return reconcile.New(reg, transaction.NewService(repo), cfg)
}

func openTransaction(state transaction.State, age time.Duration) *transaction.Transaction {
	now := time.Now().UTC()

	return &transaction.Transaction{
		ID:                 uuid.New(),
		AdapterID:          "m1",
		ClientReference:    "ref-1",
		ExternalID:         "ext-1",
		Amount:             decimal.RequireFromString("100.00"),
		Currency:           "KES",
		Direction:          adapter.DirectionCollection,
		Account:            "254700000001",
		State:              state,
		CreatedAt:          now.Add(-age),
		LastTransitionedAt: now.Add(-age),
	}
}

func TestReconcileOne_AdoptsRemoteOutcome(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tx := openTransaction(transaction.StatePending, 10*time.Minute)

	ad := mockAdapter(ctrl, 2*time.Minute)
	ad.EXPECT().QueryStatus(gomock.Any(), "ext-1").Return(adapter.RemoteSuccess, nil)

	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().Get(gomock.Any(), tx.ID).Return(tx, nil)
	repo.EXPECT().
		UpdateState(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, got *transaction.Transaction) error {
			assert.Equal(t, transaction.StateSuccess, got.State)
			assert.NotNil(t, got.TerminalAt)
			return nil
		})

	s := newService(t, repo, ad, testConfig())
	require.NoError(t, s.ReconcileOne(context.Background(), tx))
}

func TestReconcileOne_SkipsYoungAndSettledTransactions(t *testing.T) {
	type testCase struct {
		name string
		tx   *transaction.Transaction
	}

	tests := []testCase{
		{name: "WithinGrace", tx: openTransaction(transaction.StatePending, 5*time.Second)},
		{name: "Terminal", tx: openTransaction(transaction.StateSuccess, time.Hour)},
		{name: "NeverSubmitted", tx: openTransaction(transaction.StateCreated, time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			// No gateway call, no repository write.
			s := newService(t, transaction.NewMockRepository(ctrl), mockAdapter(ctrl, time.Minute), testConfig())
			require.NoError(t, s.ReconcileOne(context.Background(), tt.tx))
		})
	}
}

func TestReconcileOne_NotFoundWithinSLAIsStillPending(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tx := openTransaction(transaction.StateSubmitted, 2*time.Minute)

	ad := mockAdapter(ctrl, 10*time.Minute)
	ad.EXPECT().QueryStatus(gomock.Any(), "ext-1").Return(adapter.RemoteState(""), adapter.ErrNotFound)

	s := newService(t, transaction.NewMockRepository(ctrl), ad, testConfig())
	require.NoError(t, s.ReconcileOne(context.Background(), tx))
}

func TestReconcileOne_NotFoundPastSLAExpires(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tx := openTransaction(transaction.StateSubmitted, 30*time.Minute)

	ad := mockAdapter(ctrl, 10*time.Minute)
	ad.EXPECT().QueryStatus(gomock.Any(), "ext-1").Return(adapter.RemoteState(""), adapter.ErrNotFound)

	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().Get(gomock.Any(), tx.ID).Return(tx, nil)
	repo.EXPECT().
		UpdateState(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, got *transaction.Transaction) error {
			assert.Equal(t, transaction.StateExpired, got.State)
			return nil
		})

	s := newService(t, repo, ad, testConfig())
	require.NoError(t, s.ReconcileOne(context.Background(), tx))
}

func TestReconcileOne_RemotePending(t *testing.T) {
	type testCase struct {
		name       string
		age        time.Duration
		wantExpire bool
	}

	tests := []testCase{
		{name: "WithinTimeout", age: 10 * time.Minute, wantExpire: false},
		{name: "PastTimeout", age: 2 * time.Hour, wantExpire: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			tx := openTransaction(transaction.StatePending, tt.age)

			ad := mockAdapter(ctrl, time.Minute)
			ad.EXPECT().QueryStatus(gomock.Any(), "ext-1").Return(adapter.RemotePending, nil)

			repo := transaction.NewMockRepository(ctrl)
			if tt.wantExpire {
				repo.EXPECT().Get(gomock.Any(), tx.ID).Return(tx, nil)
				repo.EXPECT().
					UpdateState(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, got *transaction.Transaction) error {
						assert.Equal(t, transaction.StateExpired, got.State)
						return nil
					})
			}

			s := newService(t, repo, ad, testConfig())
			require.NoError(t, s.ReconcileOne(context.Background(), tx))
		})
	}
}

func TestReconcileOne_GatewayUnreachableLeavesStateAlone(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tx := openTransaction(transaction.StatePending, 10*time.Minute)

	ad := mockAdapter(ctrl, time.Minute)
	ad.EXPECT().QueryStatus(gomock.Any(), "ext-1").Return(adapter.RemoteState(""), adapter.ErrUnavailable)

	s := newService(t, transaction.NewMockRepository(ctrl), ad, testConfig())
	require.NoError(t, s.ReconcileOne(context.Background(), tx))
}

func TestSweep_IsolatesFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	bad := openTransaction(transaction.StatePending, 10*time.Minute)
	good := openTransaction(transaction.StatePending, 10*time.Minute)
	good.ExternalID = "ext-good"

	ad := mockAdapter(ctrl, time.Minute)
	ad.EXPECT().QueryStatus(gomock.Any(), "ext-1").Return(adapter.RemoteState(""), errors.New("boom"))
	ad.EXPECT().QueryStatus(gomock.Any(), "ext-good").Return(adapter.RemoteFailed, nil)

	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().
		ListOpen(gomock.Any(), gomock.Any()).
		Return([]*transaction.Transaction{bad, good}, nil)
	repo.EXPECT().Get(gomock.Any(), good.ID).Return(good, nil)
	repo.EXPECT().
		UpdateState(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, got *transaction.Transaction) error {
			assert.Equal(t, transaction.StateFailed, got.State)
			return nil
		})

	s := newService(t, repo, ad, testConfig())

	err := s.Sweep(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad.ID.String())
}

func TestSweep_ListError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().ListOpen(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

	s := newService(t, repo, mockAdapter(ctrl, time.Minute), testConfig())
	assert.Error(t, s.Sweep(context.Background()))
}
