package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/hangout-backend/internal/accounts"
	"github.com/angelmondragon/hangout-backend/pkg/db"
	"github.com/angelmondragon/hangout-backend/pkg/db/models"
	"github.com/angelmondragon/hangout-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/hangout-backend/pkg/errors"
	"github.com/angelmondragon/hangout-backend/pkg/logger"
	"github.com/angelmondragon/hangout-backend/pkg/metrics"
	"github.com/angelmondragon/hangout-backend/pkg/outbox"
	"github.com/angelmondragon/hangout-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/hangout-backend/pkg/pagination"
)

const grantConstraint = "ux_account_vouchers_account_voucher"

const (
	msgVoucherAlreadyUsed = "voucher already used"
	msgVoucherOutOfStock  = "voucher out of stock"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type ownerChecker interface {
	EnsureOwner(ctx context.Context, actorID, businessID uuid.UUID) (*models.Business, error)
}

type accountDirectory interface {
	Summaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]accounts.Summary, error)
}

// Service moves vouchers between the catalog and account wallets.
type Service interface {
	Grant(ctx context.Context, accountID, voucherID uuid.UUID) (*GrantDTO, error)
	Redeem(ctx context.Context, accountID, voucherID uuid.UUID) (*RedeemResult, error)
	ListForAccount(ctx context.Context, accountID uuid.UUID, params pagination.PageParams) (pagination.Page[AccountVoucherDTO], error)
	ListForBusiness(ctx context.Context, actorID, businessID uuid.UUID, emailFilter string, params pagination.PageParams) (pagination.Page[BusinessGrantDTO], error)
}

type ServiceParams struct {
	Tx         txRunner
	Repo       Repository
	Outbox     outbox.Emitter
	Businesses ownerChecker
	Accounts   accountDirectory
	Metrics    *metrics.LedgerMetrics
	Logger     *logger.Logger
	Now        func() time.Time
}

type service struct {
	tx         txRunner
	repo       Repository
	outbox     outbox.Emitter
	businesses ownerChecker
	accounts   accountDirectory
	metrics    *metrics.LedgerMetrics
	logg       *logger.Logger
	now        func() time.Time
}

// NewService builds the voucher ledger.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if params.Businesses == nil {
		return nil, fmt.Errorf("business service required")
	}
	if params.Accounts == nil {
		return nil, fmt.Errorf("account service required")
	}
	now := params.Now
	if now == nil {
		now = db.NowUTC
	}
	return &service{
		tx:         params.Tx,
		repo:       params.Repo,
		outbox:     params.Outbox,
		businesses: params.Businesses,
		accounts:   params.Accounts,
		metrics:    params.Metrics,
		logg:       params.Logger,
		now:        now,
	}, nil
}

func (s *service) Grant(ctx context.Context, accountID, voucherID uuid.UUID) (*GrantDTO, error) {
	grant, outcome, err := s.grant(ctx, accountID, voucherID)
	s.metrics.IncGrant(outcome)
	if err != nil {
		return nil, err
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"account_id": accountID.String(),
			"voucher_id": voucherID.String(),
		})
		s.logg.Info(logCtx, "voucher granted")
	}
	return grantFromModel(grant), nil
}

func (s *service) grant(ctx context.Context, accountID, voucherID uuid.UUID) (*models.AccountVoucher, string, error) {
	voucher, err := s.repo.FindVoucher(ctx, voucherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, metrics.OutcomeNotFound, pkgerrors.New(pkgerrors.CodeNotFound, "voucher not found")
		}
		return nil, metrics.OutcomeError, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load voucher")
	}
	if !voucher.Active {
		return nil, metrics.OutcomeRejected, pkgerrors.New(pkgerrors.CodeStateConflict, "voucher is not active")
	}

	if _, err := s.repo.FindGrant(ctx, accountID, voucherID); err == nil {
		return nil, metrics.OutcomeAlreadyReported, alreadyReceived()
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, metrics.OutcomeError, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load grant")
	}

	grant := &models.AccountVoucher{AccountID: accountID, VoucherID: voucherID}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).CreateGrant(ctx, grant); err != nil {
			if db.IsUniqueViolation(err, grantConstraint) {
				return alreadyReceived()
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create grant")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventVoucherGranted,
			AggregateType: enums.AggregateVoucherGrant,
			AggregateID:   grant.ID,
			Actor:         &outbox.ActorRef{AccountID: accountID},
			Data: payloads.VoucherGrantedEvent{
				GrantID:    grant.ID,
				VoucherID:  voucher.ID,
				BusinessID: voucher.BusinessID,
				AccountID:  accountID,
				GrantedAt:  grant.CreatedAt,
			},
		})
	})
	if err != nil {
		return nil, outcomeFor(err), asDomainError(err, "grant voucher")
	}
	return grant, metrics.OutcomeSuccess, nil
}

func (s *service) Redeem(ctx context.Context, accountID, voucherID uuid.UUID) (*RedeemResult, error) {
	start := time.Now()
	result, err := s.redeem(ctx, accountID, voucherID)
	s.metrics.ObserveRedeem(outcomeFor(err), time.Since(start))
	if err != nil {
		return nil, err
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"account_id":         accountID.String(),
			"voucher_id":         voucherID.String(),
			"remaining_quantity": result.RemainingQuantity,
		})
		s.logg.Info(logCtx, "voucher redeemed")
	}
	return result, nil
}

func (s *service) redeem(ctx context.Context, accountID, voucherID uuid.UUID) (*RedeemResult, error) {
	var result RedeemResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		now := s.now()

		voucher, err := repo.FindVoucher(ctx, voucherID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "voucher not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load voucher")
		}
		if !voucher.Active {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "voucher is not active")
		}
		if !voucher.ValidAt(now) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "voucher is outside its validity window").
				WithDetails(map[string]any{
					"valid_from": voucher.ValidFrom,
					"valid_to":   voucher.ValidTo,
				})
		}

		marked, err := repo.MarkGrantUsed(ctx, accountID, voucherID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark grant used")
		}
		if marked == 0 {
			if _, err := repo.FindGrant(ctx, accountID, voucherID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "voucher not received by account")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load grant")
			}
			return pkgerrors.New(pkgerrors.CodeConflict, msgVoucherAlreadyUsed)
		}

		taken, err := repo.DecrementQuantity(ctx, voucherID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement quantity")
		}
		if taken == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, msgVoucherOutOfStock)
		}

		updated, err := repo.FindVoucher(ctx, voucherID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload voucher")
		}
		grant, err := repo.FindGrant(ctx, accountID, voucherID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload grant")
		}

		result = RedeemResult{VoucherID: voucherID, RemainingQuantity: updated.Quantity}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventVoucherRedeemed,
			AggregateType: enums.AggregateVoucherGrant,
			AggregateID:   grant.ID,
			Actor:         &outbox.ActorRef{AccountID: accountID},
			OccurredAt:    now,
			Data: payloads.VoucherRedeemedEvent{
				GrantID:           grant.ID,
				VoucherID:         voucherID,
				BusinessID:        voucher.BusinessID,
				AccountID:         accountID,
				RemainingQuantity: updated.Quantity,
				RedeemedAt:        now,
			},
		})
	})
	if err != nil {
		return nil, asDomainError(err, "redeem voucher")
	}
	return &result, nil
}

func (s *service) ListForAccount(ctx context.Context, accountID uuid.UUID, params pagination.PageParams) (pagination.Page[AccountVoucherDTO], error) {
	rows, total, err := s.repo.ListForAccount(ctx, accountID, params)
	if err != nil {
		return pagination.Page[AccountVoucherDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list account vouchers")
	}
	items := make([]AccountVoucherDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toAccountDTO())
	}
	return pagination.NewPage(items, params, total), nil
}

func (s *service) ListForBusiness(ctx context.Context, actorID, businessID uuid.UUID, emailFilter string, params pagination.PageParams) (pagination.Page[BusinessGrantDTO], error) {
	if _, err := s.businesses.EnsureOwner(ctx, actorID, businessID); err != nil {
		return pagination.Page[BusinessGrantDTO]{}, err
	}

	rows, total, err := s.repo.ListForBusiness(ctx, businessID, emailFilter, params)
	if err != nil {
		return pagination.Page[BusinessGrantDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list business grants")
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.AccountID)
	}
	summaries, err := s.accounts.Summaries(ctx, ids)
	if err != nil {
		return pagination.Page[BusinessGrantDTO]{}, err
	}

	items := make([]BusinessGrantDTO, 0, len(rows))
	for _, row := range rows {
		item := BusinessGrantDTO{
			GrantID:   row.GrantID,
			VoucherID: row.VoucherID,
			Name:      row.Name,
			Percent:   row.Percent,
			ValidFrom: row.ValidFrom,
			ValidTo:   row.ValidTo,
			IsUsed:    row.IsUsed,
			AccountID: row.AccountID,
		}
		if summary, ok := summaries[row.AccountID]; ok {
			item.Email = summary.Email
			item.FullName = summary.Name
			item.Avatar = summary.AvatarURL
		}
		items = append(items, item)
	}
	return pagination.NewPage(items, params, total), nil
}

func alreadyReceived() error {
	return pkgerrors.New(pkgerrors.CodeAlreadyReported, "voucher already received")
}

func asDomainError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}

func outcomeFor(err error) string {
	if err == nil {
		return metrics.OutcomeSuccess
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		return metrics.OutcomeError
	}
	switch typed.Code() {
	case pkgerrors.CodeAlreadyReported:
		return metrics.OutcomeAlreadyReported
	case pkgerrors.CodeNotFound:
		return metrics.OutcomeNotFound
	case pkgerrors.CodeConflict:
		if typed.Message() == msgVoucherOutOfStock {
			return metrics.OutcomeOutOfStock
		}
		return metrics.OutcomeAlreadyUsed
	case pkgerrors.CodeStateConflict, pkgerrors.CodeForbidden, pkgerrors.CodeValidation:
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeError
	}
}
