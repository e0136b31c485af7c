package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Business is the tenant that owns events and vouchers.
type Business struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	AccountID    uuid.UUID `gorm:"column:account_id;type:uuid;not null;index"`
	Name         string    `gorm:"column:name;not null"`
	Address      *string   `gorm:"column:address"`
	MainImageURL *string   `gorm:"column:main_image_url"`
	Active       bool      `gorm:"column:active;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (b *Business) BeforeCreate(*gorm.DB) error {
	ensureID(&b.ID)
	return nil
}
