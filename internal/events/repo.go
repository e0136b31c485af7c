package events

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

// Repository persists events and their images.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	Patch(ctx context.Context, id uuid.UUID, changes map[string]any) error
	AddImages(ctx context.Context, images []models.EventImage) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	ListUpcoming(ctx context.Context, filter EventFilter, now time.Time, params pagination.PageParams) ([]models.Event, int64, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, params pagination.PageParams) ([]models.Event, int64, error)
}

type repository struct {
	repo.Base
}

// NewRepository binds a GORM DB to event operations.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

// Create inserts the event together with any images attached to it.
func (r *repository) Create(ctx context.Context, event *models.Event) error {
	return r.DB(ctx).Create(event).Error
}

// FindByID loads an event and its images regardless of the active flag.
func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	err := r.DB(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC").Order("id ASC")
		}).
		Where("id = ?", id).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// Patch writes only the given columns of an active event and bumps
// updated_at. It reports gorm.ErrRecordNotFound when no active row matched.
func (r *repository) Patch(ctx context.Context, id uuid.UUID, changes map[string]any) error {
	values := make(map[string]any, len(changes)+1)
	for column, value := range changes {
		values[column] = value
	}
	values["updated_at"] = time.Now().UTC()

	res := r.DB(ctx).Model(&models.Event{}).
		Where("id = ? AND active = ?", id, true).
		Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) AddImages(ctx context.Context, images []models.EventImage) error {
	if len(images) == 0 {
		return nil
	}
	return r.DB(ctx).Create(&images).Error
}

// Deactivate flips active off. It reports gorm.ErrRecordNotFound when no row matched.
func (r *repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	res := r.DB(ctx).Model(&models.Event{}).
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

// ListUpcoming returns active events starting after now, soonest first.
func (r *repository) ListUpcoming(ctx context.Context, filter EventFilter, now time.Time, params pagination.PageParams) ([]models.Event, int64, error) {
	query := r.DB(ctx).Model(&models.Event{}).
		Where("active = ? AND start_date > ?", true, now)

	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+search+"%")
	}
	if location := strings.TrimSpace(filter.Location); location != "" {
		query = query.Where("location = ?", location)
	}
	if name := strings.ToLower(strings.TrimSpace(filter.BusinessName)); name != "" {
		owners := r.DB(ctx).Model(&models.Business{}).Select("id").Where("LOWER(name) = ?", name)
		query = query.Where("business_id IN (?)", owners)
	}

	var rows []models.Event
	total, err := repo.Paginate(query.Order("start_date ASC").Order("id ASC"), params, &rows)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListByOwner returns the active events of every business the account owns,
// past ones included.
func (r *repository) ListByOwner(ctx context.Context, ownerID uuid.UUID, params pagination.PageParams) ([]models.Event, int64, error) {
	owned := r.DB(ctx).Model(&models.Business{}).Select("id").Where("account_id = ?", ownerID)
	query := r.DB(ctx).Model(&models.Event{}).
		Where("active = ? AND business_id IN (?)", true, owned).
		Order("start_date DESC").
		Order("id ASC")

	var rows []models.Event
	total, err := repo.Paginate(query, params, &rows)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
