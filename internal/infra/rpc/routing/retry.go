// Package routing wraps callers with retry and failover.
//
// Retries live here, inside the transport, so the scan engine can treat every
// error it sees as final.
package routing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vietddude/ethscan/internal/infra/rpc/provider"
)

// RetryConfig defines retry behavior.
type RetryConfig struct {
	MaxAttempts     int           `yaml:"max_attempts"`
	InitialDelay    time.Duration `yaml:"initial_delay"`
	MaxDelay        time.Duration `yaml:"max_delay"`
	BackoffMultiple float64       `yaml:"backoff_multiple"`
}

// DefaultRetryConfig provides sensible defaults.
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:     3,
	InitialDelay:    500 * time.Millisecond,
	MaxDelay:        10 * time.Second,
	BackoffMultiple: 2.0,
}

// ErrorAction determines how to handle an error.
type ErrorAction int

const (
	ActionRetry ErrorAction = iota
	ActionFailover
	ActionFatal
)

func (a ErrorAction) String() string {
	switch a {
	case ActionRetry:
		return "retry"
	case ActionFailover:
		return "failover"
	default:
		return "fatal"
	}
}

// ClassifyError determines the action for a given error.
func ClassifyError(err error) ErrorAction {
	if err == nil {
		return ActionRetry
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ActionFatal
	}

	s := err.Error()
	sLower := strings.ToLower(s)

	// Request issues and reverts will not change on another attempt.
	// -32700: Parse error, -32600: Invalid Request, -32601: Method not found, -32602: Invalid params
	if strings.Contains(s, "-32700") || strings.Contains(s, "-32600") ||
		strings.Contains(s, "-32601") || strings.Contains(s, "-32602") ||
		strings.Contains(sLower, "execution reverted") ||
		strings.Contains(sLower, "invalid opcode") {
		return ActionFatal
	}

	// Provider specific issues
	if strings.Contains(s, "429") || strings.Contains(sLower, "too many requests") ||
		strings.Contains(s, "403") || strings.Contains(sLower, "forbidden") ||
		strings.Contains(sLower, "quota") || strings.Contains(sLower, "plan limit") ||
		strings.Contains(sLower, "unauthorized") ||
		strings.Contains(sLower, "rate limit") ||
		strings.Contains(sLower, "count exceeded") ||
		strings.Contains(sLower, "throttle") {
		return ActionFailover
	}

	// Network, 5xx, etc
	return ActionRetry
}

// CallWithRetry executes a contract call with exponential backoff.
func CallWithRetry(
	ctx context.Context,
	c provider.Caller,
	contract common.Address,
	data []byte,
	config RetryConfig,
) ([]byte, error) {
	attempts := max(config.MaxAttempts, 1)
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		out, err := c.Call(ctx, contract, data)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if action := ClassifyError(err); action != ActionRetry {
			return nil, err
		}
		if attempt == attempts-1 {
			break
		}

		delay := calculateBackoff(attempt, config)
		slog.Debug("Retrying contract call",
			"provider", c.Name(), "attempt", attempt+1, "delay", delay, "error", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}

func calculateBackoff(attempt int, config RetryConfig) time.Duration {
	delay := float64(config.InitialDelay) * math.Pow(config.BackoffMultiple, float64(attempt))
	if config.MaxDelay > 0 && delay > float64(config.MaxDelay) {
		delay = float64(config.MaxDelay)
	}
	return time.Duration(delay)
}

// RetryingCaller retries transient transport failures of the wrapped caller.
type RetryingCaller struct {
	next   provider.Caller
	config RetryConfig
}

func NewRetryingCaller(next provider.Caller, config RetryConfig) *RetryingCaller {
	return &RetryingCaller{next: next, config: config}
}

func (r *RetryingCaller) Name() string { return r.next.Name() }

func (r *RetryingCaller) Call(ctx context.Context, contract common.Address, data []byte) ([]byte, error) {
	return CallWithRetry(ctx, r.next, contract, data, r.config)
}
