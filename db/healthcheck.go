package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type HealthCheck struct {
	Name string
	DB   *sqlx.DB
}

// Check pings the server and reads its version, returning the version string.
func (h *HealthCheck) Check(ctx context.Context) (version string, err error) {
	err = h.DB.PingContext(ctx)
	if err != nil {
		return "", fmt.Errorf("mysql health check failed on ping: %w", Translate(err))
	}

	err = h.DB.GetContext(ctx, &version, `SELECT VERSION()`)
	if err != nil {
		return "", fmt.Errorf("mysql health check failed on select: %w", Translate(err))
	}
	return version, nil
}

func (h *HealthCheck) MetricName() string {
	return h.Name
}

func (h *HealthCheck) Gauges(_ context.Context) map[string]float64 {
	stats := h.DB.Stats()
	return map[string]float64{
		"in_use":               float64(stats.InUse),
		"idle":                 float64(stats.Idle),
		"wait_count":           float64(stats.WaitCount),
		"wait_duration":        float64(stats.WaitDuration / time.Millisecond),
		"max_idle_closed":      float64(stats.MaxIdleClosed),
		"max_idle_time_closed": float64(stats.MaxIdleTimeClosed),
		"max_lifetime_closed":  float64(stats.MaxLifetimeClosed),
	}
}
