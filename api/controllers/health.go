package controllers

import (
	"context"
	"net/http"

	"github.com/tmoreno/bulkbridge-backend/api/responses"
	"github.com/tmoreno/bulkbridge-backend/pkg/config"
	pkgerrors "github.com/tmoreno/bulkbridge-backend/pkg/errors"
	"github.com/tmoreno/bulkbridge-backend/pkg/logger"
)

// Pinger is the readiness contract the backing stores expose.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-BulkBridge-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when every backing dependency answers.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps ...Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-BulkBridge-Env", cfg.App.Env)

		for _, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "dependency unavailable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
