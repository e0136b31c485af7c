package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/hangout-backend/api/middleware"
	"github.com/angelmondragon/hangout-backend/api/responses"
	pkgerrors "github.com/angelmondragon/hangout-backend/pkg/errors"
	"github.com/angelmondragon/hangout-backend/pkg/logger"
)

type tokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
}

// AuthLogout revokes the presented access token until it would have expired.
func AuthLogout(revoker tokenRevoker, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if revoker == nil {
			serviceUnavailable(w, r, logg, "session")
			return
		}

		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil || claims.ID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
			return
		}

		ttl := claims.RemainingTTL(time.Now())
		if ttl > 0 {
			if err := revoker.Revoke(r.Context(), claims.ID, ttl); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session"))
				return
			}
		}

		responses.WriteSuccess(w, "Logout success", map[string]string{"status": "logged_out"})
	}
}
