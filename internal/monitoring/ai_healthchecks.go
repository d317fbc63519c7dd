// Package monitoring runs background liveness probes against the optional AI
// backends. Probe results land in shared atomic flags read by the health
// endpoint; a degraded backend never blocks the pipeline itself, which has
// its own per-call fallback.
package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/spacesedan/vidinsight/internal/clients"
)

const HEALTHCHECK_TIMER = 60

// MonitorRemoteScoringHealth probes the Hugging Face zero-shot tier until ctx
// ends. The flag starts true so a slow first probe does not report a flapping
// backend at startup.
func MonitorRemoteScoringHealth(ctx context.Context, healthy *atomic.Bool) {
	if !clients.GetHuggingFaceClient().Available() {
		healthy.Store(false)
		return
	}
	healthy.Store(true)

	ticker := time.NewTicker(time.Second * HEALTHCHECK_TIMER)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			isHealthy := clients.GetHuggingFaceClient().HealthCheck(ctx)
			healthy.Store(isHealthy)
			if !isHealthy {
				slog.Warn("[HealthCheck] Remote scoring tier is unhealthy")
			}
		}
	}
}

// MonitorSummarizerHealth probes the local Ollama daemon until ctx ends.
func MonitorSummarizerHealth(ctx context.Context, healthy *atomic.Bool) {
	if !clients.GetOllamaClient().Enabled {
		healthy.Store(false)
		return
	}
	healthy.Store(clients.GetOllamaClient().HealthCheck(ctx))

	ticker := time.NewTicker(time.Second * HEALTHCHECK_TIMER)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			isHealthy := clients.GetOllamaClient().HealthCheck(ctx)
			healthy.Store(isHealthy)
			if !isHealthy {
				slog.Warn("[HealthCheck] Summarizer backend is unhealthy")
			}
		}
	}
}
