package providers

import (
	"context"
	"log/slog"
	"time"
)

// unhealthyAfter is the number of consecutive failures that marks a
// provider unhealthy.
const unhealthyAfter = 3

// HealthCheck lists the upstream models and reports whether the server
// answered with at least one. The result is folded into the provider's
// health state.
func (p *HTTPProvider) HealthCheck(ctx context.Context) error {
	start := time.Now()

	models, err := p.ListModels(ctx)
	if err == nil && len(models) == 0 {
		err = ErrNoModel
		p.updateHealth(false, err)
	}

	if err != nil {
		slog.Debug("health check failed",
			"provider", p.config.Name,
			"error", err,
			"latency", time.Since(start),
		)
		return err
	}

	slog.Debug("health check passed",
		"provider", p.config.Name,
		"latency", time.Since(start),
	)
	return nil
}

// IsHealthy returns the current health status.
func (p *HTTPProvider) IsHealthy() bool {
	p.healthMu.RLock()
	defer p.healthMu.RUnlock()
	return p.health.IsHealthy
}

// GetHealth returns detailed health information.
func (p *HTTPProvider) GetHealth() ProviderHealth {
	p.healthMu.RLock()
	defer p.healthMu.RUnlock()
	return p.health
}

// RecordOutcome folds the result of a completion request into the health
// state. Completion clients call it after every request they send.
func (p *HTTPProvider) RecordOutcome(err error) {
	p.recordRequest(err == nil)
	if err == nil {
		p.updateHealth(true, nil)
		return
	}
	if IsConnectionError(err) {
		p.updateHealth(false, err)
	}
}

// updateHealth updates the provider's health status.
func (p *HTTPProvider) updateHealth(success bool, err error) {
	p.healthMu.Lock()
	defer p.healthMu.Unlock()

	p.health.LastCheck = time.Now()

	if success {
		if !p.health.IsHealthy {
			slog.Info("provider marked healthy",
				"provider", p.config.Name,
				"previous_failures", p.health.ConsecutiveFailures,
			)
		}
		p.health.IsHealthy = true
		p.health.ConsecutiveFailures = 0
		p.health.LastError = nil
		p.health.LastSuccessfulRequest = time.Now()
		return
	}

	p.health.ConsecutiveFailures++
	p.health.LastError = err

	if p.health.ConsecutiveFailures >= unhealthyAfter && p.health.IsHealthy {
		p.health.IsHealthy = false
		slog.Warn("provider marked unhealthy",
			"provider", p.config.Name,
			"consecutive_failures", p.health.ConsecutiveFailures,
			"error", err,
		)
	}
}

// recordRequest records request counters.
func (p *HTTPProvider) recordRequest(success bool) {
	p.healthMu.Lock()
	defer p.healthMu.Unlock()

	p.health.TotalRequests++
	if !success {
		p.health.FailedRequests++
	}
}
