package provider

import (
	"net/http"
	"strings"
	"sync"
	"time"
)

// ProviderStatus represents the health state of a provider.
type ProviderStatus int

const (
	StatusHealthy   ProviderStatus = iota // Provider is working normally
	StatusDegraded                        // Provider is slow but working
	StatusThrottled                       // Provider is rate limiting
	StatusBlocked                         // Provider has blocked this client
)

func (s ProviderStatus) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDegraded:
		return "degraded"
	case StatusThrottled:
		return "throttled"
	case StatusBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// MonitorStats holds monitoring statistics for a provider.
type MonitorStats struct {
	Status           ProviderStatus
	AverageLatency   time.Duration
	ThrottleCount429 int
	ThrottleCount403 int
	RequestsLastHour int
}

// ProviderMonitor tracks throttling and latency of an HTTP endpoint.
type ProviderMonitor struct {
	mu sync.RWMutex

	recentLatencies  []time.Duration
	maxLatencyWindow int

	status429Count     int
	status403Count     int
	throttlePatterns   []string
	lastThrottleTime   time.Time
	retryAfterDuration time.Duration

	requestTimestamps []time.Time
	windowDuration    time.Duration

	slowResponseThreshold time.Duration
	throttledAfter429     int
}

// NewProviderMonitor creates a new monitor with default settings.
func NewProviderMonitor() *ProviderMonitor {
	return &ProviderMonitor{
		recentLatencies:  make([]time.Duration, 0, 100),
		maxLatencyWindow: 100,
		throttlePatterns: []string{
			"rate limit exceeded",
			"too many requests",
			"daily request count exceeded",
			"project rate limit",
			"monthly quota exceeded",
		},
		windowDuration:        time.Hour,
		slowResponseThreshold: 3 * time.Second,
		throttledAfter429:     5,
	}
}

// RecordRequest records a successful request with its latency.
func (pm *ProviderMonitor) RecordRequest(latency time.Duration) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	now := time.Now()

	pm.recentLatencies = append(pm.recentLatencies, latency)
	if len(pm.recentLatencies) > pm.maxLatencyWindow {
		pm.recentLatencies = pm.recentLatencies[1:]
	}

	// drop timestamps that fell out of the window, in place
	cutoff := now.Add(-pm.windowDuration)
	kept := pm.requestTimestamps[:0]
	for _, t := range pm.requestTimestamps {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	pm.requestTimestamps = append(kept, now)
}

// RecordThrottle records a rate limiting or blocking response.
func (pm *ProviderMonitor) RecordThrottle(statusCode int, retryAfter string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.lastThrottleTime = time.Now()

	switch statusCode {
	case http.StatusTooManyRequests:
		pm.status429Count++
		pm.retryAfterDuration = parseRetryAfter(retryAfter, time.Minute)
	case http.StatusForbidden:
		pm.status403Count++
		pm.retryAfterDuration = 10 * time.Minute
	}
}

func parseRetryAfter(v string, fallback time.Duration) time.Duration {
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v + "s"); err == nil && d > 0 {
		return d
	}
	return fallback
}

// DetectThrottlePattern checks if a message contains throttle patterns.
func (pm *ProviderMonitor) DetectThrottlePattern(message string) bool {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	lowerMsg := strings.ToLower(message)
	for _, pattern := range pm.throttlePatterns {
		if strings.Contains(lowerMsg, pattern) {
			return true
		}
	}
	return false
}

// CheckProviderStatus returns the current status of the provider.
func (pm *ProviderMonitor) CheckProviderStatus() ProviderStatus {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.statusLocked()
}

func (pm *ProviderMonitor) statusLocked() ProviderStatus {
	cooling := time.Since(pm.lastThrottleTime) < pm.retryAfterDuration

	if pm.status403Count > 0 && cooling {
		return StatusBlocked
	}
	if pm.status429Count > pm.throttledAfter429 && cooling {
		return StatusThrottled
	}
	if len(pm.recentLatencies) > 10 && pm.averageLocked() > pm.slowResponseThreshold {
		return StatusDegraded
	}
	return StatusHealthy
}

func (pm *ProviderMonitor) averageLocked() time.Duration {
	if len(pm.recentLatencies) == 0 {
		return 0
	}
	var total time.Duration
	for _, lat := range pm.recentLatencies {
		total += lat
	}
	return total / time.Duration(len(pm.recentLatencies))
}

// GetRetryAfter returns remaining time before retry is allowed.
func (pm *ProviderMonitor) GetRetryAfter() time.Duration {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	remaining := pm.retryAfterDuration - time.Since(pm.lastThrottleTime)
	if remaining > 0 {
		return remaining
	}
	return 0
}

// GetStats returns current monitoring statistics.
func (pm *ProviderMonitor) GetStats() MonitorStats {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	return MonitorStats{
		Status:           pm.statusLocked(),
		AverageLatency:   pm.averageLocked(),
		ThrottleCount429: pm.status429Count,
		ThrottleCount403: pm.status403Count,
		RequestsLastHour: len(pm.requestTimestamps),
	}
}
