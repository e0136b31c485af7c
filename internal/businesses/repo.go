package businesses

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/hangout-backend/internal/repo"
	"github.com/angelmondragon/hangout-backend/pkg/db/models"
)

// Repository handles business persistence.
type Repository struct {
	repo.Base
}

// NewRepository binds a GORM DB to business operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create persists a new business row.
func (r *Repository) Create(ctx context.Context, business *models.Business) error {
	if business == nil {
		return fmt.Errorf("business is required")
	}
	return r.DB(ctx).Create(business).Error
}

// FindByID loads a business by id regardless of its active flag.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	var business models.Business
	if err := r.DB(ctx).Where("id = ?", id).First(&business).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

// FindByOwner returns every business of the account, oldest first.
func (r *Repository) FindByOwner(ctx context.Context, ownerID uuid.UUID, activeOnly bool) ([]models.Business, error) {
	query := r.DB(ctx).Where("account_id = ?", ownerID)
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	var rows []models.Business
	if err := query.Order("created_at ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
