package vouchers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/hangout-backend/internal/businesses"
	dbpkg "github.com/angelmondragon/hangout-backend/pkg/db"
	"github.com/angelmondragon/hangout-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/hangout-backend/pkg/errors"
	"github.com/angelmondragon/hangout-backend/pkg/pagination"
)

const (
	voucherCodeConstraint = "ux_vouchers_voucher_code"
	maxCodeAttempts       = 3
)

var hundred = decimal.NewFromInt(100)

type voucherRepository interface {
	Create(ctx context.Context, voucher *models.Voucher) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Voucher, error)
	Patch(ctx context.Context, id uuid.UUID, changes map[string]any) (*models.Voucher, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	ListActiveByBusiness(ctx context.Context, businessID uuid.UUID, params pagination.PageParams) ([]models.Voucher, int64, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, params pagination.PageParams) ([]models.Voucher, int64, error)
}

type businessResolver interface {
	ResolveOwned(ctx context.Context, ownerID uuid.UUID, businessID *uuid.UUID) (*models.Business, error)
	EnsureOwner(ctx context.Context, actorID, businessID uuid.UUID) (*models.Business, error)
	Get(ctx context.Context, id uuid.UUID) (*businesses.BusinessDTO, error)
}

// Service exposes the voucher catalog.
type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, input CreateVoucherInput) (*VoucherDTO, error)
	Edit(ctx context.Context, actorID, voucherID uuid.UUID, input EditVoucherInput) (*VoucherDTO, error)
	Delete(ctx context.Context, actorID, voucherID uuid.UUID) error
	ListByBusiness(ctx context.Context, businessID uuid.UUID, params pagination.PageParams) (pagination.Page[VoucherDTO], error)
	ListByOwnerAccount(ctx context.Context, accountID uuid.UUID, params pagination.PageParams) (pagination.Page[VoucherDTO], error)
	Get(ctx context.Context, voucherID uuid.UUID) (*VoucherDetailDTO, error)
}

type service struct {
	repo       voucherRepository
	businesses businessResolver
	codeGen    func() string
}

// NewService builds the voucher catalog service.
func NewService(repo voucherRepository, businesses businessResolver) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("voucher repository required")
	}
	if businesses == nil {
		return nil, fmt.Errorf("business service required")
	}
	return &service{repo: repo, businesses: businesses, codeGen: GenerateCode}, nil
}

func (s *service) Create(ctx context.Context, ownerID uuid.UUID, input CreateVoucherInput) (*VoucherDTO, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.ValidFrom = input.ValidFrom.UTC()
	input.ValidTo = input.ValidTo.UTC()
	if err := validateFields(input.Name, input.Percent, input.Quantity, input.ValidFrom, input.ValidTo); err != nil {
		return nil, err
	}

	business, err := s.businesses.ResolveOwned(ctx, ownerID, input.BusinessID)
	if err != nil {
		return nil, err
	}

	voucher := &models.Voucher{
		BusinessID: business.ID,
		Name:       input.Name,
		Percent:    input.Percent,
		Quantity:   input.Quantity,
		ValidFrom:  input.ValidFrom,
		ValidTo:    input.ValidTo,
		Active:     true,
	}

	if input.VoucherCode != nil && strings.TrimSpace(*input.VoucherCode) != "" {
		voucher.VoucherCode = normalizeCode(*input.VoucherCode)
		if err := s.repo.Create(ctx, voucher); err != nil {
			if dbpkg.IsUniqueViolation(err, voucherCodeConstraint) {
				return nil, pkgerrors.New(pkgerrors.CodeConflict, "voucher code already in use")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create voucher")
		}
		return FromModel(voucher), nil
	}

	for attempt := 1; ; attempt++ {
		voucher.ID = uuid.Nil
		voucher.VoucherCode = s.codeGen()
		err := s.repo.Create(ctx, voucher)
		if err == nil {
			return FromModel(voucher), nil
		}
		if !dbpkg.IsUniqueViolation(err, voucherCodeConstraint) || attempt >= maxCodeAttempts {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create voucher")
		}
	}
}

func (s *service) Edit(ctx context.Context, actorID, voucherID uuid.UUID, input EditVoucherInput) (*VoucherDTO, error) {
	voucher, err := s.load(ctx, voucherID)
	if err != nil {
		return nil, err
	}
	if _, err := s.businesses.EnsureOwner(ctx, actorID, voucher.BusinessID); err != nil {
		return nil, err
	}
	if !voucher.Active {
		return nil, inactive()
	}

	changes := map[string]any{}
	if input.Name != nil {
		voucher.Name = strings.TrimSpace(*input.Name)
		changes["name"] = voucher.Name
	}
	if input.Percent != nil {
		voucher.Percent = *input.Percent
		changes["percent"] = voucher.Percent
	}
	if input.Quantity != nil {
		voucher.Quantity = *input.Quantity
		changes["quantity"] = voucher.Quantity
	}
	if input.ValidFrom != nil {
		voucher.ValidFrom = input.ValidFrom.UTC()
		changes["valid_from"] = voucher.ValidFrom
	}
	if input.ValidTo != nil {
		voucher.ValidTo = input.ValidTo.UTC()
		changes["valid_to"] = voucher.ValidTo
	}
	if err := validateFields(voucher.Name, voucher.Percent, voucher.Quantity, voucher.ValidFrom, voucher.ValidTo); err != nil {
		return nil, err
	}

	updated, err := s.repo.Patch(ctx, voucherID, changes)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// deleted between load and write
			return nil, inactive()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update voucher")
	}
	return FromModel(updated), nil
}

func (s *service) Delete(ctx context.Context, actorID, voucherID uuid.UUID) error {
	voucher, err := s.load(ctx, voucherID)
	if err != nil {
		return err
	}
	if _, err := s.businesses.EnsureOwner(ctx, actorID, voucher.BusinessID); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, voucherID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound()
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete voucher")
	}
	return nil
}

func (s *service) ListByBusiness(ctx context.Context, businessID uuid.UUID, params pagination.PageParams) (pagination.Page[VoucherDTO], error) {
	params = params.Normalize()
	rows, total, err := s.repo.ListActiveByBusiness(ctx, businessID, params)
	if err != nil {
		return pagination.Page[VoucherDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vouchers")
	}
	return pagination.NewPage(fromModels(rows), params, total), nil
}

func (s *service) ListByOwnerAccount(ctx context.Context, accountID uuid.UUID, params pagination.PageParams) (pagination.Page[VoucherDTO], error) {
	params = params.Normalize()
	rows, total, err := s.repo.ListByOwner(ctx, accountID, params)
	if err != nil {
		return pagination.Page[VoucherDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list owner vouchers")
	}
	return pagination.NewPage(fromModels(rows), params, total), nil
}

func (s *service) Get(ctx context.Context, voucherID uuid.UUID) (*VoucherDetailDTO, error) {
	voucher, err := s.load(ctx, voucherID)
	if err != nil {
		return nil, err
	}
	business, err := s.businesses.Get(ctx, voucher.BusinessID)
	if err != nil {
		return nil, err
	}
	return &VoucherDetailDTO{
		VoucherDTO:      *FromModel(voucher),
		BusinessName:    business.Name,
		BusinessImage:   business.MainImageURL,
		BusinessAddress: business.Address,
	}, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Voucher, error) {
	voucher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load voucher")
	}
	return voucher, nil
}

func validateFields(name string, percent decimal.Decimal, quantity int, from, to time.Time) error {
	details := map[string]string{}
	if name == "" {
		details["name"] = "required"
	}
	if !percent.IsPositive() || percent.GreaterThan(hundred) {
		details["percent"] = "must be greater than 0 and at most 100"
	}
	if quantity < 0 {
		details["quantity"] = "must not be negative"
	}
	if from.IsZero() || to.IsZero() {
		details["valid_from"] = "validity window is required"
	} else if to.Before(from) {
		details["valid_to"] = "must not be before valid_from"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid voucher").WithDetails(details)
	}
	return nil
}

func notFound() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "voucher not found")
}

func inactive() error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "voucher is no longer active")
}
