package accounts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/hangout-backend/internal/repo"
	"github.com/angelmondragon/hangout-backend/pkg/db/models"
)

// Repository reads accounts and their profiles.
type Repository struct {
	repo.Base
}

// NewRepository binds a GORM DB to account lookups.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// FindByID loads one account.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var account models.Account
	if err := r.DB(ctx).Where("id = ?", id).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// FindByIDs loads every account whose id is listed. Missing ids are skipped.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Account, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Account
	if err := r.DB(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FirstProfiles returns the earliest-created profile of each listed account.
func (r *Repository) FirstProfiles(ctx context.Context, accountIDs []uuid.UUID) (map[uuid.UUID]models.UserProfile, error) {
	out := make(map[uuid.UUID]models.UserProfile, len(accountIDs))
	if len(accountIDs) == 0 {
		return out, nil
	}
	var rows []models.UserProfile
	if err := r.DB(ctx).
		Where("account_id IN ?", accountIDs).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		if _, seen := out[row.AccountID]; seen {
			continue
		}
		out[row.AccountID] = row
	}
	return out, nil
}
