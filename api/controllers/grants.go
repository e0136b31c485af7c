package controllers

import (
	"net/http"

	"github.com/angelmondragon/hangout-backend/api/responses"
	"github.com/angelmondragon/hangout-backend/api/validators"
	"github.com/angelmondragon/hangout-backend/internal/ledger"
	"github.com/angelmondragon/hangout-backend/pkg/logger"
)

// VoucherGrant gives the caller one copy of a voucher. A repeat grant
// answers 208 through the error envelope.
func VoucherGrant(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "ledger")
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

		grant, err := svc.Grant(r.Context(), accountID, voucherID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "Receive voucher success", grant)
	}
}

func VoucherRedeem(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "ledger")
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

		result, err := svc.Redeem(r.Context(), accountID, voucherID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result.Message(), result)
	}
}

// MyVouchers lists the caller's wallet.
func MyVouchers(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "ledger")
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

		page, err := svc.ListForAccount(r.Context(), accountID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "Get voucher success", page)
	}
}

// BusinessVoucherGrants lists who holds the business's vouchers, filtered by ?email=.
func BusinessVoucherGrants(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "ledger")
			return
		}
		accountID, ok := requireAccount(w, r, logg)
		if !ok {
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

		page, err := svc.ListForBusiness(r.Context(), accountID, businessID, validators.QueryString(r, "email"), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "Get voucher success", page)
	}
}
