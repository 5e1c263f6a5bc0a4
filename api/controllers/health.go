package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/nazorat-backend/api/responses"
	"github.com/angelmondragon/nazorat-backend/pkg/config"
	"github.com/angelmondragon/nazorat-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/nazorat-backend/pkg/errors"
	"github.com/angelmondragon/nazorat-backend/pkg/logger"
)

const (
	envHeader    = "X-Nazorat-Env"
	readyTimeout = 2 * time.Second
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the database.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if dbP != nil {
			if err := dbP.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable").
					WithDetails(map[string]any{"dependency": "database"}))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
