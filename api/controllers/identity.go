package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/hangout-backend/api/middleware"
	"github.com/angelmondragon/hangout-backend/api/responses"
	pkgerrors "github.com/angelmondragon/hangout-backend/pkg/errors"
	"github.com/angelmondragon/hangout-backend/pkg/logger"
)

// requireAccount writes a 401 and returns false when the request carries no account.
func requireAccount(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (uuid.UUID, bool) {
	accountID, ok := middleware.AccountUUID(r.Context())
	if !ok {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "account context missing"))
		return uuid.Nil, false
	}
	return accountID, true
}

func serviceUnavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger, name string) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, name+" service unavailable"))
}
