package controllers

import (
	"net/http"

	"github.com/angelmondragon/hangout-backend/api/responses"
	"github.com/angelmondragon/hangout-backend/api/validators"
	"github.com/angelmondragon/hangout-backend/internal/businesses"
	"github.com/angelmondragon/hangout-backend/pkg/logger"
)

type createBusinessRequest struct {
	Name         string  `json:"name" validate:"required,max=200"`
	Address      *string `json:"address,omitempty" validate:"omitempty,max=500"`
	MainImageURL *string `json:"main_image_url,omitempty" validate:"omitempty,url"`
}

func BusinessCreate(svc businesses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "business")
			return
		}
		accountID, ok := requireAccount(w, r, logg)
		if !ok {
			return
		}

		var payload createBusinessRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Create(r.Context(), accountID, businesses.CreateBusinessInput{
			Name:         validators.SanitizeString(payload.Name, 200),
			Address:      payload.Address,
			MainImageURL: payload.MainImageURL,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, "Create business success", dto)
	}
}

func MyBusinesses(svc businesses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "business")
			return
		}
		accountID, ok := requireAccount(w, r, logg)
		if !ok {
			return
		}

		list, err := svc.ListMine(r.Context(), accountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "Get businesses success", list)
	}
}
