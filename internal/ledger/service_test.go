package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/hangout-backend/internal/accounts"
	"github.com/angelmondragon/hangout-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/hangout-backend/pkg/errors"
	"github.com/angelmondragon/hangout-backend/pkg/metrics"
	"github.com/angelmondragon/hangout-backend/pkg/outbox"
)

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubEmitter struct{}

func (stubEmitter) Emit(context.Context, *gorm.DB, outbox.DomainEvent) error { return nil }

type stubOwners struct{}

func (stubOwners) EnsureOwner(context.Context, uuid.UUID, uuid.UUID) (*models.Business, error) {
	return &models.Business{}, nil
}

type stubAccounts struct{}

func (stubAccounts) Summaries(context.Context, []uuid.UUID) (map[uuid.UUID]accounts.Summary, error) {
	return map[uuid.UUID]accounts.Summary{}, nil
}

type failingRepo struct {
	Repository
	err error
}

func (r failingRepo) WithTx(*gorm.DB) Repository { return r }

func (r failingRepo) FindVoucher(context.Context, uuid.UUID) (*models.Voucher, error) {
	return nil, r.err
}

func validParams() ServiceParams {
	return ServiceParams{
		Tx:         stubTx{},
		Repo:       failingRepo{err: gorm.ErrRecordNotFound},
		Outbox:     stubEmitter{},
		Businesses: stubOwners{},
		Accounts:   stubAccounts{},
	}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	cases := map[string]func(*ServiceParams){
		"tx":         func(p *ServiceParams) { p.Tx = nil },
		"repo":       func(p *ServiceParams) { p.Repo = nil },
		"outbox":     func(p *ServiceParams) { p.Outbox = nil },
		"businesses": func(p *ServiceParams) { p.Businesses = nil },
		"accounts":   func(p *ServiceParams) { p.Accounts = nil },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			params := validParams()
			mutate(&params)
			_, err := NewService(params)
			require.Error(t, err)
		})
	}

	_, err := NewService(validParams())
	require.NoError(t, err)
}

func TestGrantWrapsRepositoryFailure(t *testing.T) {
	params := validParams()
	params.Repo = failingRepo{err: errors.New("connection reset")}
	svc, err := NewService(params)
	require.NoError(t, err)

	_, err = svc.Grant(context.Background(), uuid.New(), uuid.New())
	require.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())
}

func TestRedeemMissingVoucher(t *testing.T) {
	svc, err := NewService(validParams())
	require.NoError(t, err)

	_, err = svc.Redeem(context.Background(), uuid.New(), uuid.New())
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestOutcomeFor(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, metrics.OutcomeSuccess},
		{errors.New("boom"), metrics.OutcomeError},
		{alreadyReceived(), metrics.OutcomeAlreadyReported},
		{pkgerrors.New(pkgerrors.CodeNotFound, "x"), metrics.OutcomeNotFound},
		{pkgerrors.New(pkgerrors.CodeConflict, msgVoucherAlreadyUsed), metrics.OutcomeAlreadyUsed},
		{pkgerrors.New(pkgerrors.CodeConflict, msgVoucherOutOfStock), metrics.OutcomeOutOfStock},
		{pkgerrors.New(pkgerrors.CodeStateConflict, "x"), metrics.OutcomeRejected},
		{pkgerrors.New(pkgerrors.CodeDependency, "x"), metrics.OutcomeError},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, outcomeFor(tc.err))
	}
}
