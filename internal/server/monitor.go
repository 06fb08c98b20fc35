package server

import (
	"sync"
	"time"

	"github.com/vietddude/ethscan/internal/infra/rpc/provider"
)

// Status is the aggregated health of the scanner's providers.
type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusDegraded Status = "degraded"
	StatusCritical Status = "critical"
)

// ProviderSource is what the monitor needs from a provider.
// *provider.HTTPProvider implements it.
type ProviderSource interface {
	Name() string
	GetHealth() provider.HealthStatus
	IsAvailable() bool
}

type statsSource interface {
	Stats() provider.MonitorStats
}

// ProviderHealth is the health report of one provider.
type ProviderHealth struct {
	Name      string  `json:"name"`
	Status    Status  `json:"status"`
	Throttle  string  `json:"throttle"`
	ErrorRate float64 `json:"error_rate"`
	LatencyMs int64   `json:"latency_ms"`
}

// Monitor aggregates health status of the configured providers.
type Monitor struct {
	providers []ProviderSource
	interval  time.Duration

	mu         sync.Mutex
	lastCheck  time.Time
	lastReport map[string]ProviderHealth
}

// NewMonitor creates a monitor that recomputes its report at most once per interval.
func NewMonitor(interval time.Duration, providers ...ProviderSource) *Monitor {
	return &Monitor{
		providers:  providers,
		interval:   interval,
		lastReport: make(map[string]ProviderHealth),
	}
}

// CheckHealth returns the per-provider report keyed by provider name.
func (m *Monitor) CheckHealth() map[string]ProviderHealth {
	m.mu.Lock()
	defer m.mu.Unlock()

	if time.Since(m.lastCheck) < m.interval && len(m.lastReport) > 0 {
		return m.lastReport
	}

	report := make(map[string]ProviderHealth, len(m.providers))
	for _, p := range m.providers {
		h := p.GetHealth()
		ph := ProviderHealth{
			Name:      p.Name(),
			Status:    StatusHealthy,
			Throttle:  "unknown",
			ErrorRate: h.ErrorRate,
			LatencyMs: h.Latency.Milliseconds(),
		}
		if s, ok := p.(statsSource); ok {
			ph.Throttle = s.Stats().Status.String()
		}

		switch {
		case !p.IsAvailable() || !h.Available:
			ph.Status = StatusCritical
		case h.ErrorRate > 0.1 || ph.Throttle == provider.StatusDegraded.String():
			ph.Status = StatusDegraded
		}

		report[ph.Name] = ph
	}

	m.lastCheck = time.Now()
	m.lastReport = report
	return report
}

// Overall aggregates a report. The worst provider wins unless another one is
// healthy, in which case failover keeps the service degraded at worst.
func Overall(report map[string]ProviderHealth) Status {
	if len(report) == 0 {
		return StatusCritical
	}

	healthy, critical := 0, 0
	for _, h := range report {
		switch h.Status {
		case StatusHealthy:
			healthy++
		case StatusCritical:
			critical++
		}
	}

	switch {
	case critical == len(report):
		return StatusCritical
	case healthy == len(report):
		return StatusHealthy
	default:
		return StatusDegraded
	}
}
