package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event is a dated happening published by a business.
type Event struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey"`
	BusinessID   uuid.UUID    `gorm:"column:business_id;type:uuid;not null;index"`
	Name         string       `gorm:"column:name;not null"`
	Description  *string      `gorm:"column:description"`
	StartDate    time.Time    `gorm:"column:start_date;not null;index"`
	DueDate      *time.Time   `gorm:"column:due_date"`
	Location     *string      `gorm:"column:location"`
	Latitude     *float64     `gorm:"column:latitude"`
	Longitude    *float64     `gorm:"column:longitude"`
	MainImageURL *string      `gorm:"column:main_image_url"`
	Active       bool         `gorm:"column:active;not null"`
	Images       []EventImage `gorm:"foreignKey:EventID"`
	CreatedAt    time.Time    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time    `gorm:"column:updated_at;autoUpdateTime"`
}

func (e *Event) BeforeCreate(*gorm.DB) error {
	ensureID(&e.ID)
	return nil
}

// EventImage is an additional picture attached to an event.
type EventImage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	EventID   uuid.UUID `gorm:"column:event_id;type:uuid;not null;index"`
	URL       string    `gorm:"column:url;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (i *EventImage) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}
