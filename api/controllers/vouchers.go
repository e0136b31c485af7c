package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/hangout-backend/api/responses"
	"github.com/angelmondragon/hangout-backend/api/validators"
	"github.com/angelmondragon/hangout-backend/internal/vouchers"
	"github.com/angelmondragon/hangout-backend/pkg/logger"
)

type createVoucherRequest struct {
	BusinessID  *uuid.UUID      `json:"business_id,omitempty"`
	Name        string          `json:"name" validate:"required,max=200"`
	Percent     decimal.Decimal `json:"percent" validate:"gt=0,lte=100"`
	Quantity    int             `json:"quantity" validate:"gte=0"`
	ValidFrom   time.Time       `json:"valid_from" validate:"required"`
	ValidTo     time.Time       `json:"valid_to" validate:"required,gtefield=ValidFrom"`
	VoucherCode *string         `json:"voucher_code,omitempty" validate:"omitempty,min=4,max=32"`
}

func (r createVoucherRequest) toInput() vouchers.CreateVoucherInput {
	return vouchers.CreateVoucherInput{
		BusinessID:  r.BusinessID,
		Name:        validators.SanitizeString(r.Name, 200),
		Percent:     r.Percent,
		Quantity:    r.Quantity,
		ValidFrom:   r.ValidFrom.UTC(),
		ValidTo:     r.ValidTo.UTC(),
		VoucherCode: r.VoucherCode,
	}
}

type editVoucherRequest struct {
	Name      *string          `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Percent   *decimal.Decimal `json:"percent,omitempty"`
	Quantity  *int             `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	ValidFrom *time.Time       `json:"valid_from,omitempty"`
	ValidTo   *time.Time       `json:"valid_to,omitempty"`
}

func (r editVoucherRequest) toInput() vouchers.EditVoucherInput {
	input := vouchers.EditVoucherInput{
		Percent:  r.Percent,
		Quantity: r.Quantity,
	}
	if r.Name != nil {
		name := validators.SanitizeString(*r.Name, 200)
		input.Name = &name
	}
	if r.ValidFrom != nil {
		from := r.ValidFrom.UTC()
		input.ValidFrom = &from
	}
	if r.ValidTo != nil {
		to := r.ValidTo.UTC()
		input.ValidTo = &to
	}
	return input
}

// VoucherCreate registers a voucher under one of the caller's businesses.
func VoucherCreate(svc vouchers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "voucher")
			return
		}
		accountID, ok := requireAccount(w, r, logg)
		if !ok {
			return
		}

		var payload createVoucherRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Create(r.Context(), accountID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "Create voucher success", dto)
	}
}

func VoucherEdit(svc vouchers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "voucher")
			return
		}
		accountID, ok := requireAccount(w, r, logg)
		if !ok {
			return
		}
		voucherID, err := validators.ParseUUIDParam(r, "voucherId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload editVoucherRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Edit(r.Context(), accountID, voucherID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "Edit Voucher Success", dto)
	}
}

func VoucherDelete(svc vouchers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "voucher")
			return
		}
		accountID, ok := requireAccount(w, r, logg)
		if !ok {
			return
		}
		voucherID, err := validators.ParseUUIDParam(r, "voucherId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), accountID, voucherID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "Delete voucher success", nil)
	}
}

// VoucherGet is public; inactive vouchers are still returned.
func VoucherGet(svc vouchers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "voucher")
			return
		}
		voucherID, err := validators.ParseUUIDParam(r, "voucherId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Get(r.Context(), voucherID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "Get voucher success", dto)
	}
}

func BusinessVouchers(svc vouchers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "voucher")
			return
		}
		businessID, err := validators.ParseUUIDParam(r, "businessId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := validators.ParsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListByBusiness(r.Context(), businessID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "Get voucher success", page)
	}
}

// OwnerVouchers lists every voucher, active or not, across the caller's businesses.
func OwnerVouchers(svc vouchers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "voucher")
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

		page, err := svc.ListByOwnerAccount(r.Context(), accountID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "Get my vouchers success", page)
	}
}
