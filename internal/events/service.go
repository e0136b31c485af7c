package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/hangout-backend/pkg/db"
	"github.com/angelmondragon/hangout-backend/pkg/db/models"
	"github.com/angelmondragon/hangout-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/hangout-backend/pkg/errors"
	"github.com/angelmondragon/hangout-backend/pkg/logger"
	"github.com/angelmondragon/hangout-backend/pkg/outbox"
	"github.com/angelmondragon/hangout-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/hangout-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type businessResolver interface {
	ResolveOwned(ctx context.Context, ownerID uuid.UUID, businessID *uuid.UUID) (*models.Business, error)
	EnsureOwner(ctx context.Context, actorID, businessID uuid.UUID) (*models.Business, error)
}

type imageUploader interface {
	Upload(ctx context.Context, data []byte) (string, error)
}

// Service exposes the event catalog.
type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, input CreateEventInput) (*EventDTO, error)
	Edit(ctx context.Context, actorID, eventID uuid.UUID, input EditEventInput) (*EventDTO, error)
	Delete(ctx context.Context, actorID, eventID uuid.UUID) error
	Get(ctx context.Context, eventID uuid.UUID) (*EventDTO, error)
	List(ctx context.Context, filter EventFilter, params pagination.PageParams) (pagination.Page[EventSummaryDTO], error)
	ListForOwner(ctx context.Context, ownerID uuid.UUID, params pagination.PageParams) (pagination.Page[EventSummaryDTO], error)
}

type ServiceParams struct {
	Tx         txRunner
	Repo       Repository
	Businesses businessResolver
	Uploader   imageUploader
	Outbox     outbox.Emitter
	Cache      *DetailCache
	Logger     *logger.Logger
	Now        func() time.Time
}

type service struct {
	tx         txRunner
	repo       Repository
	businesses businessResolver
	uploader   imageUploader
	outbox     outbox.Emitter
	cache      *DetailCache
	logg       *logger.Logger
	now        func() time.Time
}

// NewService builds the event catalog.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("event repository required")
	}
	if params.Businesses == nil {
		return nil, fmt.Errorf("business service required")
	}
	if params.Uploader == nil {
		return nil, fmt.Errorf("media uploader required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	now := params.Now
	if now == nil {
		now = db.NowUTC
	}
	return &service{
		tx:         params.Tx,
		repo:       params.Repo,
		businesses: params.Businesses,
		uploader:   params.Uploader,
		outbox:     params.Outbox,
		cache:      params.Cache,
		logg:       params.Logger,
		now:        now,
	}, nil
}

func (s *service) Create(ctx context.Context, ownerID uuid.UUID, input CreateEventInput) (*EventDTO, error) {
	event := &models.Event{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		StartDate:   input.StartDate.UTC(),
		DueDate:     utcPtr(input.DueDate),
		Location:    input.Location,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		Active:      true,
	}
	if err := validateEvent(event); err != nil {
		return nil, err
	}

	business, err := s.businesses.ResolveOwned(ctx, ownerID, input.BusinessID)
	if err != nil {
		return nil, err
	}
	event.BusinessID = business.ID

	if len(input.MainImage) > 0 {
		url, err := s.uploader.Upload(ctx, input.MainImage)
		if err != nil {
			return nil, err
		}
		event.MainImageURL = &url
	}
	urls, err := s.uploadAll(ctx, input.Images)
	if err != nil {
		return nil, err
	}
	for _, url := range urls {
		event.Images = append(event.Images, models.EventImage{URL: url})
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create event")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventEventPublished,
			AggregateType: enums.AggregateEvent,
			AggregateID:   event.ID,
			Actor:         &outbox.ActorRef{AccountID: ownerID},
			Data: payloads.EventPublishedEvent{
				EventID:    event.ID,
				BusinessID: event.BusinessID,
				Name:       event.Name,
				Location:   event.Location,
				StartDate:  event.StartDate,
				DueDate:    event.DueDate,
				ImageCount: len(event.Images),
			},
		})
	})
	if err != nil {
		return nil, asDomainError(err, "create event")
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"event_id":    event.ID.String(),
			"business_id": event.BusinessID.String(),
			"images":      len(event.Images),
		})
		s.logg.Info(logCtx, "event created")
	}
	return s.withCountdown(FromModel(event)), nil
}

func (s *service) Edit(ctx context.Context, actorID, eventID uuid.UUID, input EditEventInput) (*EventDTO, error) {
	event, err := s.load(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if _, err := s.businesses.EnsureOwner(ctx, actorID, event.BusinessID); err != nil {
		return nil, err
	}
	if !event.Active {
		return nil, inactive()
	}

	changes := map[string]any{}
	if input.Name != nil {
		event.Name = strings.TrimSpace(*input.Name)
		changes["name"] = event.Name
	}
	if input.Description != nil {
		event.Description = input.Description
		changes["description"] = *input.Description
	}
	if input.StartDate != nil {
		event.StartDate = input.StartDate.UTC()
		changes["start_date"] = event.StartDate
	}
	if input.DueDate != nil {
		event.DueDate = utcPtr(input.DueDate)
		changes["due_date"] = *event.DueDate
	}
	if input.Location != nil {
		event.Location = input.Location
		changes["location"] = *input.Location
	}
	if input.Latitude != nil {
		event.Latitude = input.Latitude
		changes["latitude"] = *input.Latitude
	}
	if input.Longitude != nil {
		event.Longitude = input.Longitude
		changes["longitude"] = *input.Longitude
	}
	if err := validateEvent(event); err != nil {
		return nil, err
	}

	if len(input.MainImage) > 0 {
		url, err := s.uploader.Upload(ctx, input.MainImage)
		if err != nil {
			return nil, err
		}
		changes["main_image_url"] = url
	}
	urls, err := s.uploadAll(ctx, input.Images)
	if err != nil {
		return nil, err
	}
	added := make([]models.EventImage, 0, len(urls))
	for _, url := range urls {
		added = append(added, models.EventImage{EventID: event.ID, URL: url})
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Patch(ctx, eventID, changes); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return inactive()
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update event")
		}
		if err := repo.AddImages(ctx, added); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add event images")
		}
		return nil
	})
	s.cache.invalidate(eventID)
	if err != nil {
		return nil, asDomainError(err, "edit event")
	}

	updated, err := s.load(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return s.withCountdown(FromModel(updated)), nil
}

func (s *service) Delete(ctx context.Context, actorID, eventID uuid.UUID) error {
	event, err := s.load(ctx, eventID)
	if err != nil {
		return err
	}
	if _, err := s.businesses.EnsureOwner(ctx, actorID, event.BusinessID); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, eventID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound()
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete event")
	}
	s.cache.invalidate(eventID)
	return nil
}

func (s *service) Get(ctx context.Context, eventID uuid.UUID) (*EventDTO, error) {
	if dto, ok := s.cache.get(eventID); ok {
		return s.withCountdown(dto), nil
	}
	gen := s.cache.snapshot()
	event, err := s.load(ctx, eventID)
	if err != nil {
		return nil, err
	}
	dto := FromModel(event)
	s.cache.set(dto, gen)
	return s.withCountdown(dto), nil
}

func (s *service) List(ctx context.Context, filter EventFilter, params pagination.PageParams) (pagination.Page[EventSummaryDTO], error) {
	now := s.now()
	rows, total, err := s.repo.ListUpcoming(ctx, filter, now, params)
	if err != nil {
		return pagination.Page[EventSummaryDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list events")
	}
	return pagination.NewPage(summaries(rows, now), params, total), nil
}

func (s *service) ListForOwner(ctx context.Context, ownerID uuid.UUID, params pagination.PageParams) (pagination.Page[EventSummaryDTO], error) {
	rows, total, err := s.repo.ListByOwner(ctx, ownerID, params)
	if err != nil {
		return pagination.Page[EventSummaryDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list owner events")
	}
	return pagination.NewPage(summaries(rows, s.now()), params, total), nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load event")
	}
	return event, nil
}

func (s *service) uploadAll(ctx context.Context, images [][]byte) ([]string, error) {
	urls := make([]string, 0, len(images))
	for _, data := range images {
		if len(data) == 0 {
			continue
		}
		url, err := s.uploader.Upload(ctx, data)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (s *service) withCountdown(dto *EventDTO) *EventDTO {
	dto.ComingDay = ComingDay(s.now(), dto.StartDate)
	return dto
}

func summaries(rows []models.Event, now time.Time) []EventSummaryDTO {
	items := make([]EventSummaryDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, summaryFromModel(row, now))
	}
	return items
}

func validateEvent(event *models.Event) error {
	details := map[string]string{}
	if event.Name == "" {
		details["name"] = "name is required"
	}
	if event.StartDate.IsZero() {
		details["start_date"] = "start_date is required"
	}
	if event.DueDate != nil && event.DueDate.Before(event.StartDate) {
		details["due_date"] = "due_date must not precede start_date"
	}
	if event.Latitude != nil && (*event.Latitude < -90 || *event.Latitude > 90) {
		details["latitude"] = "latitude must be between -90 and 90"
	}
	if event.Longitude != nil && (*event.Longitude < -180 || *event.Longitude > 180) {
		details["longitude"] = "longitude must be between -180 and 180"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid event").WithDetails(details)
	}
	return nil
}

func notFound() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "Event not found")
}

func inactive() error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "event is no longer active")
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}

func asDomainError(err error, msg string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}
