package payloads

import (
	"time"

	"github.com/google/uuid"
)

// VoucherGrantedEvent is emitted when an account receives a voucher.
type VoucherGrantedEvent struct {
	GrantID    uuid.UUID `json:"grant_id" validate:"required"`
	VoucherID  uuid.UUID `json:"voucher_id" validate:"required"`
	BusinessID uuid.UUID `json:"business_id" validate:"required"`
	AccountID  uuid.UUID `json:"account_id" validate:"required"`
	GrantedAt  time.Time `json:"granted_at" validate:"required"`
}

// VoucherRedeemedEvent is emitted after a grant is consumed and stock decremented.
type VoucherRedeemedEvent struct {
	GrantID           uuid.UUID `json:"grant_id" validate:"required"`
	VoucherID         uuid.UUID `json:"voucher_id" validate:"required"`
	BusinessID        uuid.UUID `json:"business_id" validate:"required"`
	AccountID         uuid.UUID `json:"account_id" validate:"required"`
	RemainingQuantity int       `json:"remaining_quantity" validate:"gte=0"`
	RedeemedAt        time.Time `json:"redeemed_at" validate:"required"`
}

// EventPublishedEvent is emitted once an event and its images are stored.
type EventPublishedEvent struct {
	EventID    uuid.UUID  `json:"event_id" validate:"required"`
	BusinessID uuid.UUID  `json:"business_id" validate:"required"`
	Name       string     `json:"name" validate:"required"`
	Location   *string    `json:"location,omitempty"`
	StartDate  time.Time  `json:"start_date" validate:"required"`
	DueDate    *time.Time `json:"due_date,omitempty"`
	ImageCount int        `json:"image_count" validate:"gte=0"`
}
