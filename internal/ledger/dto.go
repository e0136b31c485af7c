package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/hangout-backend/pkg/db/models"
)

// GrantDTO describes one voucher held by an account.
type GrantDTO struct {
	ID        uuid.UUID `json:"id"`
	AccountID uuid.UUID `json:"account_id"`
	VoucherID uuid.UUID `json:"voucher_id"`
	IsUsed    bool      `json:"is_used"`
	CreatedAt time.Time `json:"created_at"`
}

// RedeemResult is returned after a successful redemption.
type RedeemResult struct {
	VoucherID         uuid.UUID `json:"voucher_id"`
	RemainingQuantity int       `json:"remaining_quantity"`
}

// Message is the human readable outcome of a redemption.
func (r RedeemResult) Message() string {
	return fmt.Sprintf("Success. Quantity remaining %d", r.RemainingQuantity)
}

// AccountVoucherDTO is one entry of an account's wallet.
type AccountVoucherDTO struct {
	GrantID    uuid.UUID       `json:"grant_id"`
	VoucherID  uuid.UUID       `json:"voucher_id"`
	BusinessID uuid.UUID       `json:"business_id"`
	Name       string          `json:"name"`
	Percent    decimal.Decimal `json:"percent"`
	Quantity   int             `json:"quantity"`
	ValidFrom  time.Time       `json:"valid_from"`
	ValidTo    time.Time       `json:"valid_to"`
	Active     bool            `json:"active"`
	IsUsed     bool            `json:"is_used"`
	UsedAt     *time.Time      `json:"used_at,omitempty"`
	GrantedAt  time.Time       `json:"granted_at"`
}

// BusinessGrantDTO is one grant of a business voucher, with the holder's
// display fields.
type BusinessGrantDTO struct {
	GrantID   uuid.UUID       `json:"grant_id"`
	VoucherID uuid.UUID       `json:"voucher_id"`
	Name      string          `json:"name"`
	Percent   decimal.Decimal `json:"percent"`
	ValidFrom time.Time       `json:"valid_from"`
	ValidTo   time.Time       `json:"valid_to"`
	IsUsed    bool            `json:"is_used"`
	AccountID uuid.UUID       `json:"account_id"`
	Email     string          `json:"email"`
	FullName  *string         `json:"full_name,omitempty"`
	Avatar    *string         `json:"avatar,omitempty"`
}

// grantRow is the scan target of the grant listings.
type grantRow struct {
	GrantID    uuid.UUID       `gorm:"column:grant_id"`
	AccountID  uuid.UUID       `gorm:"column:account_id"`
	VoucherID  uuid.UUID       `gorm:"column:voucher_id"`
	BusinessID uuid.UUID       `gorm:"column:business_id"`
	Name       string          `gorm:"column:name"`
	Percent    decimal.Decimal `gorm:"column:percent"`
	Quantity   int             `gorm:"column:quantity"`
	ValidFrom  time.Time       `gorm:"column:valid_from"`
	ValidTo    time.Time       `gorm:"column:valid_to"`
	Active     bool            `gorm:"column:active"`
	IsUsed     bool            `gorm:"column:is_used"`
	UsedAt     *time.Time      `gorm:"column:used_at"`
	GrantedAt  time.Time       `gorm:"column:granted_at"`
}

func grantFromModel(m *models.AccountVoucher) *GrantDTO {
	if m == nil {
		return nil
	}
	return &GrantDTO{
		ID:        m.ID,
		AccountID: m.AccountID,
		VoucherID: m.VoucherID,
		IsUsed:    m.IsUsed,
		CreatedAt: m.CreatedAt,
	}
}

func (r grantRow) toAccountDTO() AccountVoucherDTO {
	return AccountVoucherDTO{
		GrantID:    r.GrantID,
		VoucherID:  r.VoucherID,
		BusinessID: r.BusinessID,
		Name:       r.Name,
		Percent:    r.Percent,
		Quantity:   r.Quantity,
		ValidFrom:  r.ValidFrom,
		ValidTo:    r.ValidTo,
		Active:     r.Active,
		IsUsed:     r.IsUsed,
		UsedAt:     r.UsedAt,
		GrantedAt:  r.GrantedAt,
	}
}
