package vouchers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/hangout-backend/pkg/db/models"
)

// VoucherDTO is the list view of a voucher.
type VoucherDTO struct {
	ID          uuid.UUID       `json:"id"`
	BusinessID  uuid.UUID       `json:"business_id"`
	Name        string          `json:"name"`
	Percent     decimal.Decimal `json:"percent"`
	Quantity    int             `json:"quantity"`
	VoucherCode string          `json:"voucher_code"`
	ValidFrom   time.Time       `json:"valid_from"`
	ValidTo     time.Time       `json:"valid_to"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// VoucherDetailDTO adds the owning business display fields.
type VoucherDetailDTO struct {
	VoucherDTO
	BusinessName    string  `json:"business_name"`
	BusinessImage   *string `json:"business_image,omitempty"`
	BusinessAddress *string `json:"business_address,omitempty"`
}

// CreateVoucherInput holds creation-time data. BusinessID is optional when
// the owner has a single active business.
type CreateVoucherInput struct {
	BusinessID  *uuid.UUID
	Name        string
	Percent     decimal.Decimal
	Quantity    int
	ValidFrom   time.Time
	ValidTo     time.Time
	VoucherCode *string
}

// EditVoucherInput is a patch: nil fields keep their stored value.
type EditVoucherInput struct {
	Name      *string
	Percent   *decimal.Decimal
	Quantity  *int
	ValidFrom *time.Time
	ValidTo   *time.Time
}

// FromModel maps the persisted voucher into a DTO.
func FromModel(m *models.Voucher) *VoucherDTO {
	if m == nil {
		return nil
	}
	return &VoucherDTO{
		ID:          m.ID,
		BusinessID:  m.BusinessID,
		Name:        m.Name,
		Percent:     m.Percent,
		Quantity:    m.Quantity,
		VoucherCode: m.VoucherCode,
		ValidFrom:   m.ValidFrom,
		ValidTo:     m.ValidTo,
		Active:      m.Active,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func fromModels(rows []models.Voucher) []VoucherDTO {
	out := make([]VoucherDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
