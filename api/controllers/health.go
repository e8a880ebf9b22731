package controllers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/ddsc-labs/community-backend/api/responses"
	"github.com/ddsc-labs/community-backend/pkg/config"
	pkgerrors "github.com/ddsc-labs/community-backend/pkg/errors"
	"github.com/ddsc-labs/community-backend/pkg/logger"
)

const readinessTimeout = 5 * time.Second

// Pinger is any dependency that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadinessDeps names the dependencies the readiness probe checks.
type ReadinessDeps struct {
	DB     Pinger
	Redis  Pinger
	PubSub Pinger
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-DDSC-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every backing service and reports the combined result.
func HealthReady(cfg *config.Config, deps ReadinessDeps, logg *logger.Logger) http.HandlerFunc {
	checks := []struct {
		name   string
		pinger Pinger
	}{
		{"database", deps.DB},
		{"redis", deps.Redis},
		{"pubsub", deps.PubSub},
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-DDSC-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		var combined error
		statuses := map[string]string{}
		for _, check := range checks {
			if check.pinger == nil {
				statuses[check.name] = "skipped"
				continue
			}
			if err := check.pinger.Ping(ctx); err != nil {
				statuses[check.name] = "down"
				combined = multierr.Append(combined, err)
				continue
			}
			statuses[check.name] = "up"
		}

		if combined != nil {
			err := pkgerrors.Wrap(pkgerrors.CodeDependency, combined, "readiness check failed").
				WithDetails(statuses)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": statuses})
	}
}
