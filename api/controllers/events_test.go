package controllers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/hangout-backend/internal/events"
	pkgerrors "github.com/angelmondragon/hangout-backend/pkg/errors"
	"github.com/angelmondragon/hangout-backend/pkg/config"
	"github.com/angelmondragon/hangout-backend/pkg/pagination"
)

var testMedia = config.MediaConfig{MaxUploadMB: 1, MaxFormImages: 3}

type stubEventService struct {
	events.Service
	created *events.CreateEventInput
	edited  *events.EditEventInput
	filter  events.EventFilter
	err     error
}

func (s *stubEventService) Create(_ context.Context, _ uuid.UUID, input events.CreateEventInput) (*events.EventDTO, error) {
	s.created = &input
	return &events.EventDTO{ID: uuid.New(), Name: input.Name}, s.err
}

func (s *stubEventService) Edit(_ context.Context, _, eventID uuid.UUID, input events.EditEventInput) (*events.EventDTO, error) {
	s.edited = &input
	return &events.EventDTO{ID: eventID}, s.err
}

func (s *stubEventService) Delete(context.Context, uuid.UUID, uuid.UUID) error {
	return s.err
}

func (s *stubEventService) List(_ context.Context, filter events.EventFilter, params pagination.PageParams) (pagination.Page[events.EventSummaryDTO], error) {
	s.filter = filter
	return pagination.NewPage([]events.EventSummaryDTO{}, params, 0), s.err
}

func eventFormRequest(t *testing.T, fields map[string]string, files map[string][]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	for field, blobs := range files {
		for _, blob := range blobs {
			part, err := writer.CreateFormFile(field, field+".bin")
			require.NoError(t, err)
			_, err = part.Write([]byte(blob))
			require.NoError(t, err)
		}
	}
	require.NoError(t, writer.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestEventCreateReadsMultipart(t *testing.T) {
	businessID := uuid.New()
	svc := &stubEventService{}
	req := eventFormRequest(t,
		map[string]string{
			"business_id": businessID.String(),
			"name":        "Rooftop jazz",
			"start_date":  "2026-06-01T20:00:00Z",
			"location":    "Centro",
			"longitude":   "-99.13",
		},
		map[string][]string{"main_image": {"cover"}, "images": {"a", "b"}},
	)
	rec := httptest.NewRecorder()
	EventCreate(svc, testMedia, nil).ServeHTTP(rec, asAccount(req, uuid.New()))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Create event success", decodeEnvelope[any](t, rec).Message)
	require.Equal(t, &businessID, svc.created.BusinessID)
	require.Equal(t, "Rooftop jazz", svc.created.Name)
	require.True(t, svc.created.StartDate.Equal(time.Date(2026, 6, 1, 20, 0, 0, 0, time.UTC)))
	require.Equal(t, "cover", string(svc.created.MainImage))
	require.Len(t, svc.created.Images, 2)
	require.Nil(t, svc.created.Latitude)
	require.Equal(t, -99.13, *svc.created.Longitude)
}

func TestEventCreateRejectsTooManyImages(t *testing.T) {
	svc := &stubEventService{}
	req := eventFormRequest(t, map[string]string{"name": "x"}, map[string][]string{"images": {"1", "2", "3", "4"}})
	rec := httptest.NewRecorder()
	EventCreate(svc, testMedia, nil).ServeHTTP(rec, asAccount(req, uuid.New()))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Nil(t, svc.created)
}

func TestEventCreateUploadFailure(t *testing.T) {
	svc := &stubEventService{err: pkgerrors.New(pkgerrors.CodeUpload, "image upload failed")}
	req := eventFormRequest(t, map[string]string{"name": "x", "start_date": "2026-06-01T20:00:00Z"}, nil)
	rec := httptest.NewRecorder()
	EventCreate(svc, testMedia, nil).ServeHTTP(rec, asAccount(req, uuid.New()))

	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Equal(t, string(pkgerrors.CodeUpload), decodeEnvelope[any](t, rec).Code)
}

func TestEventEditOnlyPatchesSentFields(t *testing.T) {
	svc := &stubEventService{}
	req := eventFormRequest(t, map[string]string{"location": "Roma Norte"}, map[string][]string{"images": {"new"}})
	req = withParams(asAccount(req, uuid.New()), "eventId", uuid.NewString())
	rec := httptest.NewRecorder()
	EventEdit(svc, testMedia, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Edit event success", decodeEnvelope[any](t, rec).Message)
	require.Nil(t, svc.edited.Name)
	require.Nil(t, svc.edited.StartDate)
	require.Equal(t, "Roma Norte", *svc.edited.Location)
	require.Len(t, svc.edited.Images, 1)
	require.Nil(t, svc.edited.MainImage)
}

func TestEventDeleteNotFound(t *testing.T) {
	svc := &stubEventService{err: pkgerrors.New(pkgerrors.CodeNotFound, "Event not found")}
	req := withParams(asAccount(httptest.NewRequest(http.MethodDelete, "/", nil), uuid.New()), "eventId", uuid.NewString())
	rec := httptest.NewRecorder()
	EventDelete(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Event not found", decodeEnvelope[any](t, rec).Message)
}

func TestEventListBuildsFilter(t *testing.T) {
	svc := &stubEventService{}
	req := httptest.NewRequest(http.MethodGet, "/api/public/events?search=jazz&location=Centro&business_name=La%20Terraza", nil)
	rec := httptest.NewRecorder()
	EventList(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Get events success", decodeEnvelope[any](t, rec).Message)
	require.Equal(t, events.EventFilter{Search: "jazz", Location: "Centro", BusinessName: "La Terraza"}, svc.filter)
}
