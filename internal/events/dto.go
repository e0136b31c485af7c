package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/hangout-backend/pkg/db/models"
)

// ImageDTO is one extra picture of an event.
type ImageDTO struct {
	ID  uuid.UUID `json:"id"`
	URL string    `json:"url"`
}

// EventDTO is the detail view of an event.
type EventDTO struct {
	ID           uuid.UUID  `json:"id"`
	BusinessID   uuid.UUID  `json:"business_id"`
	Name         string     `json:"name"`
	Description  *string    `json:"description,omitempty"`
	StartDate    time.Time  `json:"start_date"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	Location     *string    `json:"location,omitempty"`
	Latitude     *float64   `json:"latitude,omitempty"`
	Longitude    *float64   `json:"longitude,omitempty"`
	MainImageURL *string    `json:"main_image_url,omitempty"`
	Active       bool       `json:"active"`
	Images       []ImageDTO `json:"images"`
	ComingDay    string     `json:"coming_day"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// EventSummaryDTO is the list view of an event.
type EventSummaryDTO struct {
	ID           uuid.UUID `json:"id"`
	BusinessID   uuid.UUID `json:"business_id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description,omitempty"`
	MainImageURL *string   `json:"main_image,omitempty"`
	Location     *string   `json:"location,omitempty"`
	StartDate    time.Time `json:"start_date"`
	ComingDay    string    `json:"coming_day"`
}

// EventFilter narrows the public listing. Every non-empty field must match.
type EventFilter struct {
	Search       string
	Location     string
	BusinessName string
}

// CreateEventInput carries a new event and its raw image payloads.
type CreateEventInput struct {
	BusinessID  *uuid.UUID
	Name        string
	Description *string
	StartDate   time.Time
	DueDate     *time.Time
	Location    *string
	Latitude    *float64
	Longitude   *float64
	MainImage   []byte
	Images      [][]byte
}

// EditEventInput patches an event. Nil fields are kept; Images are appended.
type EditEventInput struct {
	Name        *string
	Description *string
	StartDate   *time.Time
	DueDate     *time.Time
	Location    *string
	Latitude    *float64
	Longitude   *float64
	MainImage   []byte
	Images      [][]byte
}

// FromModel maps an event row and its loaded images. ComingDay is left empty.
func FromModel(m *models.Event) *EventDTO {
	if m == nil {
		return nil
	}
	images := make([]ImageDTO, 0, len(m.Images))
	for _, img := range m.Images {
		images = append(images, ImageDTO{ID: img.ID, URL: img.URL})
	}
	return &EventDTO{
		ID:           m.ID,
		BusinessID:   m.BusinessID,
		Name:         m.Name,
		Description:  m.Description,
		StartDate:    m.StartDate,
		DueDate:      m.DueDate,
		Location:     m.Location,
		Latitude:     m.Latitude,
		Longitude:    m.Longitude,
		MainImageURL: m.MainImageURL,
		Active:       m.Active,
		Images:       images,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func summaryFromModel(m models.Event, now time.Time) EventSummaryDTO {
	return EventSummaryDTO{
		ID:           m.ID,
		BusinessID:   m.BusinessID,
		Name:         m.Name,
		Description:  m.Description,
		MainImageURL: m.MainImageURL,
		Location:     m.Location,
		StartDate:    m.StartDate,
		ComingDay:    ComingDay(now, m.StartDate),
	}
}
