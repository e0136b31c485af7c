package vouchers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/hangout-backend/internal/repo"
	"github.com/angelmondragon/hangout-backend/pkg/db/models"
	"github.com/angelmondragon/hangout-backend/pkg/pagination"
)

// Repository handles voucher persistence.
type Repository struct {
	repo.Base
}

// NewRepository binds a GORM DB to voucher operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts a voucher row.
func (r *Repository) Create(ctx context.Context, voucher *models.Voucher) error {
	if voucher == nil {
		return fmt.Errorf("voucher is required")
	}
	return r.DB(ctx).Create(voucher).Error
}

// FindByID loads a voucher regardless of its active flag.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Voucher, error) {
	var voucher models.Voucher
	if err := r.DB(ctx).Where("id = ?", id).First(&voucher).Error; err != nil {
		return nil, err
	}
	return &voucher, nil
}

// Patch writes only the given columns of an active voucher, bumps updated_at
// and returns the stored row. Columns outside changes, quantity included, keep
// whatever concurrent writers left there. It reports gorm.ErrRecordNotFound
// when no active row matched.
func (r *Repository) Patch(ctx context.Context, id uuid.UUID, changes map[string]any) (*models.Voucher, error) {
	values := make(map[string]any, len(changes)+1)
	for column, value := range changes {
		values[column] = value
	}
	values["updated_at"] = time.Now().UTC()

	res := r.DB(ctx).Model(&models.Voucher{}).
		Where("id = ? AND active = ?", id, true).
		Updates(values)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, id)
}

// Deactivate flips active off. It reports gorm.ErrRecordNotFound when no row matched.
func (r *Repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	res := r.DB(ctx).Model(&models.Voucher{}).
		Where("id = ?", id).
		Updates(map[string]any{"active": false})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListActiveByBusiness pages the active vouchers of one business.
func (r *Repository) ListActiveByBusiness(ctx context.Context, businessID uuid.UUID, params pagination.PageParams) ([]models.Voucher, int64, error) {
	query := r.DB(ctx).Model(&models.Voucher{}).
		Where("business_id = ? AND active = ?", businessID, true)
	return r.page(query, params)
}

// ListByOwner pages every voucher, in any state, of the owner's businesses.
func (r *Repository) ListByOwner(ctx context.Context, ownerID uuid.UUID, params pagination.PageParams) ([]models.Voucher, int64, error) {
	owned := r.DB(ctx).Model(&models.Business{}).Select("id").Where("account_id = ?", ownerID)
	query := r.DB(ctx).Model(&models.Voucher{}).Where("business_id IN (?)", owned)
	return r.page(query, params)
}

func (r *Repository) page(query *gorm.DB, params pagination.PageParams) ([]models.Voucher, int64, error) {
	var rows []models.Voucher
	total, err := repo.Paginate(query.Order("created_at DESC").Order("id ASC"), params, &rows)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
