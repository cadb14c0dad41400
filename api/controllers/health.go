package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/tcommerce/tcommerce-backend/api/responses"
	"github.com/tcommerce/tcommerce-backend/pkg/config"
	pkgerrors "github.com/tcommerce/tcommerce-backend/pkg/errors"
	"github.com/tcommerce/tcommerce-backend/pkg/logger"
)

const readinessTimeout = 2 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

// HealthLive reports process liveness without touching dependencies.
func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-TCommerce-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady verifies the database and cache before reporting readiness.
func HealthReady(cfg *config.Config, logg *logger.Logger, database, cache pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-TCommerce-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{}
		healthy := true

		checks["database"] = "ok"
		if database == nil {
			checks["database"] = "unconfigured"
			healthy = false
		} else if err := database.Ping(ctx); err != nil {
			checks["database"] = "unreachable"
			healthy = false
			if logg != nil {
				logg.Warn(ctx, "health.database_unreachable")
			}
		}

		checks["cache"] = "ok"
		if cache == nil {
			checks["cache"] = "unconfigured"
			healthy = false
		} else if err := cache.Ping(ctx); err != nil {
			checks["cache"] = "unreachable"
			healthy = false
			if logg != nil {
				logg.Warn(ctx, "health.cache_unreachable")
			}
		}

		if !healthy {
			err := pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").WithDetails(map[string]any{"checks": checks})
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
