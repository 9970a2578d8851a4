package controllers

import (
	"context"
	"net/http"

	"github.com/mmattyV/scentra-backend/api/responses"
	"github.com/mmattyV/scentra-backend/pkg/config"
	pkgerrors "github.com/mmattyV/scentra-backend/pkg/errors"
	"github.com/mmattyV/scentra-backend/pkg/logger"
)

// Pinger is satisfied by the database, Redis, and GCS clients.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Scentra-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every named dependency and fails on the first broken one.
func HealthReady(cfg *config.Config, logg *logger.Logger, checks map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Scentra-Env", cfg.App.Env)
		for name, check := range checks {
			if check == nil {
				continue
			}
			if err := check.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
