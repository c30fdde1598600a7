package controllers

import (
	"context"
	"net/http"

	"github.com/carplusapp/carplus-backend/api/responses"
	"github.com/carplusapp/carplus-backend/pkg/config"
	pkgerrors "github.com/carplusapp/carplus-backend/pkg/errors"
	"github.com/carplusapp/carplus-backend/pkg/logger"
)

// Pinger is the health-check surface a backing store exposes.
type Pinger interface {
	Ping(context.Context) error
}

// ReadinessDep names a dependency the readiness probe must reach.
type ReadinessDep struct {
	Name   string
	Pinger Pinger
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CarPlus-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when the backing stores answer a ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps ...ReadinessDep) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CarPlus-Env", cfg.App.Env)
		for _, dep := range deps {
			if dep.Pinger == nil {
				continue
			}
			if err := dep.Pinger.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, dep.Name+" unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
