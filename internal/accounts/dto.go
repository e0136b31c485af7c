package accounts

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/hangout-backend/pkg/db/models"
	"github.com/angelmondragon/hangout-backend/pkg/enums"
)

// AccountDTO is the caller-facing view of an account.
type AccountDTO struct {
	ID        uuid.UUID         `json:"id"`
	Email     string            `json:"email"`
	Role      enums.AccountRole `json:"role"`
	Active    bool              `json:"active"`
	Name      *string           `json:"name,omitempty"`
	AvatarURL *string           `json:"avatar_url,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Summary carries the display fields other domains attach to their rows.
type Summary struct {
	AccountID uuid.UUID
	Email     string
	Name      *string
	AvatarURL *string
}

// FromModel maps an account and its first profile into a DTO.
func FromModel(m *models.Account, profile *models.UserProfile) *AccountDTO {
	if m == nil {
		return nil
	}
	dto := &AccountDTO{
		ID:        m.ID,
		Email:     m.Email,
		Role:      m.Role,
		Active:    m.Active,
		CreatedAt: m.CreatedAt,
	}
	if profile != nil {
		name := profile.Name
		dto.Name = &name
		dto.AvatarURL = profile.AvatarURL
	}
	return dto
}
