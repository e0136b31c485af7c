package businesses

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/hangout-backend/pkg/db/models"
)

// BusinessDTO exposes tenant data in API responses.
type BusinessDTO struct {
	ID           uuid.UUID `json:"id"`
	OwnerID      uuid.UUID `json:"owner_id"`
	Name         string    `json:"name"`
	Address      *string   `json:"address,omitempty"`
	MainImageURL *string   `json:"main_image_url,omitempty"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateBusinessInput holds creation-time data for a new business.
type CreateBusinessInput struct {
	Name         string
	Address      *string
	MainImageURL *string
}

// ToModel builds the row persisted for a new business.
func (in CreateBusinessInput) ToModel(ownerID uuid.UUID) *models.Business {
	return &models.Business{
		AccountID:    ownerID,
		Name:         in.Name,
		Address:      in.Address,
		MainImageURL: in.MainImageURL,
		Active:       true,
	}
}

// FromModel maps the persisted business into a DTO.
func FromModel(m *models.Business) *BusinessDTO {
	if m == nil {
		return nil
	}
	return &BusinessDTO{
		ID:           m.ID,
		OwnerID:      m.AccountID,
		Name:         m.Name,
		Address:      m.Address,
		MainImageURL: m.MainImageURL,
		Active:       m.Active,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
