package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/hangout-backend/api/responses"
	"github.com/angelmondragon/hangout-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/hangout-backend/pkg/errors"
	"github.com/angelmondragon/hangout-backend/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// Pinger is anything the readiness check can reach.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadinessCheck names one dependency of the readiness check.
type ReadinessCheck struct {
	Name   string
	Target Pinger
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-HangOut-Env", cfg.App.Env)
		responses.WriteSuccess(w, "", map[string]string{"status": "live"})
	}
}

// HealthReady pings every dependency and fails with 503 naming the ones down.
func HealthReady(cfg *config.Config, logg *logger.Logger, checks ...ReadinessCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-HangOut-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		status := map[string]string{}
		failed := map[string]string{}
		for _, check := range checks {
			if check.Target == nil {
				continue
			}
			if err := check.Target.Ping(ctx); err != nil {
				failed[check.Name] = err.Error()
				status[check.Name] = "down"
				continue
			}
			status[check.Name] = "up"
		}

		if len(failed) > 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").WithDetails(failed))
			return
		}
		status["status"] = "ready"
		responses.WriteSuccess(w, "", status)
	}
}
