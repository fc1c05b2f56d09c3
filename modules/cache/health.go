package cache

import (
	"context"
	"time"

	"github.com/GoCodeAlone/fibonacci/app"
)

// HealthCheck implements app.HealthProvider. A memory engine over 90% of
// MaxItems reports degraded; an unreachable Redis reports unhealthy.
func (m *CacheModule) HealthCheck(ctx context.Context) ([]app.HealthReport, error) {
	now := time.Now()
	report := app.HealthReport{
		Module:    ModuleName,
		Component: m.config.Engine,
		CheckedAt: now,
		Details:   map[string]any{"engine": m.config.Engine},
	}

	if m.cacheEngine == nil {
		report.Status = app.HealthStatusUnhealthy
		report.Message = "cache engine not initialized"
		return []app.HealthReport{report}, nil
	}

	if err := m.cacheEngine.Ping(ctx); err != nil {
		report.Status = app.HealthStatusUnhealthy
		report.Message = "cache engine unreachable: " + err.Error()
		return []app.HealthReport{report}, nil
	}

	size, err := m.cacheEngine.Len(ctx)
	if err != nil {
		report.Status = app.HealthStatusDegraded
		report.Message = "cache size unavailable: " + err.Error()
		return []app.HealthReport{report}, nil
	}
	report.Details["items"] = size

	report.Status = app.HealthStatusHealthy
	report.Message = "cache operational"
	if m.config.Engine == EngineMemory && m.config.MaxItems > 0 {
		usage := float64(size) / float64(m.config.MaxItems)
		report.Details["usage"] = usage
		if usage >= 0.9 {
			report.Status = app.HealthStatusDegraded
			report.Message = "cache nearly full"
		}
	}
	return []app.HealthReport{report}, nil
}
