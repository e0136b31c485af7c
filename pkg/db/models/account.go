package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/hangout-backend/pkg/enums"
)

// Account is the identity row referenced by access tokens.
type Account struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey"`
	Email     string            `gorm:"column:email;type:text;not null;uniqueIndex"`
	Role      enums.AccountRole `gorm:"column:role;type:text;not null"`
	Active    bool              `gorm:"column:active;not null"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (a *Account) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

// UserProfile holds display fields. An account may have several profiles;
// the earliest one is used wherever a single name is shown.
type UserProfile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	AccountID uuid.UUID `gorm:"column:account_id;type:uuid;not null;index"`
	Name      string    `gorm:"column:name;not null"`
	AvatarURL *string   `gorm:"column:avatar_url"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (p *UserProfile) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
