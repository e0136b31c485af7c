package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Voucher is a discount offer with a finite stock.
type Voucher struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BusinessID  uuid.UUID       `gorm:"column:business_id;type:uuid;not null;index"`
	Name        string          `gorm:"column:name;not null"`
	Percent     decimal.Decimal `gorm:"column:percent;type:numeric(5,2);not null"`
	Quantity    int             `gorm:"column:quantity;not null;check:chk_vouchers_quantity_non_negative,quantity >= 0"`
	ValidFrom   time.Time       `gorm:"column:valid_from;not null"`
	ValidTo     time.Time       `gorm:"column:valid_to;not null"`
	Active      bool            `gorm:"column:active;not null"`
	VoucherCode string          `gorm:"column:voucher_code;not null;uniqueIndex:ux_vouchers_voucher_code"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (v *Voucher) BeforeCreate(*gorm.DB) error {
	ensureID(&v.ID)
	return nil
}

// ValidAt reports whether t falls inside the validity window, bounds included.
func (v Voucher) ValidAt(t time.Time) bool {
	return !t.Before(v.ValidFrom) && !t.After(v.ValidTo)
}

// AccountVoucher is one grant of a voucher to an account.
type AccountVoucher struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	AccountID uuid.UUID  `gorm:"column:account_id;type:uuid;not null;uniqueIndex:ux_account_vouchers_account_voucher"`
	VoucherID uuid.UUID  `gorm:"column:voucher_id;type:uuid;not null;uniqueIndex:ux_account_vouchers_account_voucher;index"`
	IsUsed    bool       `gorm:"column:is_used;not null"`
	UsedAt    *time.Time `gorm:"column:used_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (AccountVoucher) TableName() string {
	return "account_vouchers"
}

func (a *AccountVoucher) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}
