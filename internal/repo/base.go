package repo

import (
	"context"

	"github.com/angelmondragon/hangout-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Base provides a shared foundation for domain repositories.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Paginate counts the rows matched by query and then loads the requested page
// into dest. The query must not carry a limit or offset of its own.
func Paginate(query *gorm.DB, params pagination.PageParams, dest any) (int64, error) {
	params = params.Normalize()

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}
	if err := query.Session(&gorm.Session{}).
		Limit(params.Size).
		Offset(params.Offset()).
		Find(dest).Error; err != nil {
		return 0, err
	}
	return total, nil
}
