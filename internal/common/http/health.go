package http

import (
	"context"
	"net/http"
	"time"

	"github.com/AlibekovAA/smalltalk-feed/internal/common/logger"
)

// HealthCheck is one dependency probe; a nil error means healthy.
type HealthCheck func(ctx context.Context) error

func HealthHandler(log *logger.Logger, checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		result := map[string]string{"status": "ok"}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				log.Warnf("health check %s failed: %v", name, err)
				result[name] = "down"
				result["status"] = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			result[name] = "up"
		}
		WriteJSON(w, status, result)
	}
}
