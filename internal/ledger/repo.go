package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/hangout-backend/internal/repo"
	"github.com/angelmondragon/hangout-backend/pkg/db/models"
	"github.com/angelmondragon/hangout-backend/pkg/pagination"
)

const grantColumns = "account_vouchers.id AS grant_id, account_vouchers.account_id, account_vouchers.voucher_id, " +
	"vouchers.business_id, vouchers.name, vouchers.percent, vouchers.quantity, vouchers.valid_from, vouchers.valid_to, " +
	"vouchers.active, account_vouchers.is_used, account_vouchers.used_at, account_vouchers.created_at AS granted_at"

// Repository manages voucher grants.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindVoucher(ctx context.Context, id uuid.UUID) (*models.Voucher, error)
	FindGrant(ctx context.Context, accountID, voucherID uuid.UUID) (*models.AccountVoucher, error)
	CreateGrant(ctx context.Context, grant *models.AccountVoucher) error
	MarkGrantUsed(ctx context.Context, accountID, voucherID uuid.UUID, usedAt time.Time) (int64, error)
	DecrementQuantity(ctx context.Context, voucherID uuid.UUID) (int64, error)
	ListForAccount(ctx context.Context, accountID uuid.UUID, params pagination.PageParams) ([]grantRow, int64, error)
	ListForBusiness(ctx context.Context, businessID uuid.UUID, emailFilter string, params pagination.PageParams) ([]grantRow, int64, error)
}

type repository struct {
	repo.Base
}

// NewRepository returns a grant repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) FindVoucher(ctx context.Context, id uuid.UUID) (*models.Voucher, error) {
	var voucher models.Voucher
	if err := r.DB(ctx).Where("id = ?", id).First(&voucher).Error; err != nil {
		return nil, err
	}
	return &voucher, nil
}

func (r *repository) FindGrant(ctx context.Context, accountID, voucherID uuid.UUID) (*models.AccountVoucher, error) {
	var grant models.AccountVoucher
	if err := r.DB(ctx).
		Where("account_id = ? AND voucher_id = ?", accountID, voucherID).
		First(&grant).Error; err != nil {
		return nil, err
	}
	return &grant, nil
}

func (r *repository) CreateGrant(ctx context.Context, grant *models.AccountVoucher) error {
	return r.DB(ctx).Create(grant).Error
}

// MarkGrantUsed flips an unused grant to used and reports the rows changed.
func (r *repository) MarkGrantUsed(ctx context.Context, accountID, voucherID uuid.UUID, usedAt time.Time) (int64, error) {
	res := r.DB(ctx).Model(&models.AccountVoucher{}).
		Where("account_id = ? AND voucher_id = ? AND is_used = ?", accountID, voucherID, false).
		Updates(map[string]any{"is_used": true, "used_at": usedAt})
	return res.RowsAffected, res.Error
}

// DecrementQuantity takes one unit of stock when any is left.
func (r *repository) DecrementQuantity(ctx context.Context, voucherID uuid.UUID) (int64, error) {
	res := r.DB(ctx).Model(&models.Voucher{}).
		Where("id = ? AND quantity > ?", voucherID, 0).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", 1))
	return res.RowsAffected, res.Error
}

func (r *repository) ListForAccount(ctx context.Context, accountID uuid.UUID, params pagination.PageParams) ([]grantRow, int64, error) {
	query := r.DB(ctx).Table("account_vouchers").
		Where("account_vouchers.account_id = ?", accountID)
	return r.pageGrants(query, params)
}

func (r *repository) ListForBusiness(ctx context.Context, businessID uuid.UUID, emailFilter string, params pagination.PageParams) ([]grantRow, int64, error) {
	vouchers := r.DB(ctx).Model(&models.Voucher{}).Select("id").Where("business_id = ?", businessID)
	query := r.DB(ctx).Table("account_vouchers").
		Where("account_vouchers.voucher_id IN (?)", vouchers)
	if email := strings.ToLower(strings.TrimSpace(emailFilter)); email != "" {
		holders := r.DB(ctx).Model(&models.Account{}).Select("id").Where("LOWER(email) LIKE ?", "%"+email+"%")
		query = query.Where("account_vouchers.account_id IN (?)", holders)
	}
	return r.pageGrants(query, params)
}

func (r *repository) pageGrants(query *gorm.DB, params pagination.PageParams) ([]grantRow, int64, error) {
	params = params.Normalize()

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return nil, 0, nil
	}

	var rows []grantRow
	if err := query.Session(&gorm.Session{}).
		Select(grantColumns).
		Joins("JOIN vouchers ON vouchers.id = account_vouchers.voucher_id").
		Order("account_vouchers.created_at DESC").
		Order("account_vouchers.id ASC").
		Limit(params.Size).
		Offset(params.Offset()).
		Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
