package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/hangout-backend/api/responses"
	"github.com/angelmondragon/hangout-backend/api/validators"
	"github.com/angelmondragon/hangout-backend/internal/events"
	"github.com/angelmondragon/hangout-backend/pkg/config"
	"github.com/angelmondragon/hangout-backend/pkg/logger"
)

// eventForm is the multipart body shared by create and edit.
type eventForm struct {
	form        *validators.Form
	name        *string
	description *string
	location    *string
	start       *time.Time
	due         *time.Time
	latitude    *float64
	longitude   *float64
	mainImage   []byte
	images      [][]byte
}

func readEventForm(w http.ResponseWriter, r *http.Request, media config.MediaConfig) (*eventForm, error) {
	form, err := validators.ParseMultipartForm(w, r, media.MaxUploadBytes(), media.MaxFormImages+1)
	if err != nil {
		return nil, err
	}
	out := &eventForm{
		form:        form,
		name:        form.OptionalString("name"),
		description: form.OptionalString("description"),
		location:    form.OptionalString("location"),
	}
	if out.start, err = form.OptionalTime("start_date"); err != nil {
		return nil, err
	}
	if out.due, err = form.OptionalTime("due_date"); err != nil {
		return nil, err
	}
	if out.latitude, err = form.OptionalFloat("latitude"); err != nil {
		return nil, err
	}
	if out.longitude, err = form.OptionalFloat("longitude"); err != nil {
		return nil, err
	}
	if out.mainImage, err = form.File("main_image"); err != nil {
		return nil, err
	}
	if out.images, err = form.Files("images", media.MaxFormImages); err != nil {
		return nil, err
	}
	return out, nil
}

func (f *eventForm) createInput() (events.CreateEventInput, error) {
	businessID, err := f.form.OptionalUUID("business_id")
	if err != nil {
		return events.CreateEventInput{}, err
	}
	input := events.CreateEventInput{
		BusinessID:  businessID,
		Description: f.description,
		DueDate:     f.due,
		Location:    f.location,
		Latitude:    f.latitude,
		Longitude:   f.longitude,
		MainImage:   f.mainImage,
		Images:      f.images,
	}
	if f.name != nil {
		input.Name = *f.name
	}
	if f.start != nil {
		input.StartDate = *f.start
	}
	return input, nil
}

func (f *eventForm) editInput() events.EditEventInput {
	return events.EditEventInput{
		Name:        f.name,
		Description: f.description,
		StartDate:   f.start,
		DueDate:     f.due,
		Location:    f.location,
		Latitude:    f.latitude,
		Longitude:   f.longitude,
		MainImage:   f.mainImage,
		Images:      f.images,
	}
}

// EventCreate accepts a multipart form with main_image and repeated images files.
func EventCreate(svc events.Service, media config.MediaConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "event")
			return
		}
		accountID, ok := requireAccount(w, r, logg)
		if !ok {
			return
		}

		form, err := readEventForm(w, r, media)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := form.createInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Create(r.Context(), accountID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "Create event success", dto)
	}
}

// EventEdit patches the event; uploaded images are appended to the gallery.
func EventEdit(svc events.Service, media config.MediaConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "event")
			return
		}
		accountID, ok := requireAccount(w, r, logg)
		if !ok {
			return
		}
		eventID, err := validators.ParseUUIDParam(r, "eventId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		form, err := readEventForm(w, r, media)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Edit(r.Context(), accountID, eventID, form.editInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "Edit event success", dto)
	}
}

func EventDelete(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "event")
			return
		}
		accountID, ok := requireAccount(w, r, logg)
		if !ok {
			return
		}
		eventID, err := validators.ParseUUIDParam(r, "eventId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), accountID, eventID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "Delete success", nil)
	}
}

func EventGet(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "event")
			return
		}
		eventID, err := validators.ParseUUIDParam(r, "eventId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Get(r.Context(), eventID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "Get event success", dto)
	}
}

// EventList serves the public upcoming-events feed.
func EventList(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "event")
			return
		}
		params, err := validators.ParsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter := events.EventFilter{
			Search:       validators.QueryString(r, "search"),
			Location:     validators.QueryString(r, "location"),
			BusinessName: validators.QueryString(r, "business_name"),
		}

		page, err := svc.List(r.Context(), filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "Get events success", page)
	}
}

func OwnerEvents(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "event")
			return
		}
		accountID, ok := requireAccount(w, r, logg)
		if !ok {
			return
		}
		params, err := validators.ParsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListForOwner(r.Context(), accountID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "Get events success", page)
	}
}
