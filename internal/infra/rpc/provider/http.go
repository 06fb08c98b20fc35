package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// DefaultTimeout applies to HTTP providers created without an explicit timeout.
const DefaultTimeout = 30 * time.Second

// HTTPProvider implements Caller for JSON-RPC over HTTP.
type HTTPProvider struct {
	name       string
	endpoint   string
	header     http.Header
	httpClient *http.Client
	nextID     atomic.Uint64

	mu           sync.RWMutex
	health       HealthStatus
	totalLatency time.Duration
	successCount int
	failureCount int
	requestCount int

	Monitor *ProviderMonitor
}

// NewHTTPProvider creates a new HTTP-based RPC provider.
func NewHTTPProvider(name, endpoint string, timeout time.Duration) *HTTPProvider {
	return NewHTTPProviderFromEndpoint(Endpoint{Name: name, URL: endpoint, Timeout: timeout})
}

// NewHTTPProviderFromEndpoint creates a provider with custom headers.
func NewHTTPProviderFromEndpoint(e Endpoint) *HTTPProvider {
	name := e.Name
	if name == "" {
		name = "http"
	}
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &HTTPProvider{
		name:     name,
		endpoint: e.URL,
		header:   e.Header.Clone(),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		health: HealthStatus{
			Available:     true,
			LastSuccessAt: time.Now(),
		},
		Monitor: NewProviderMonitor(),
	}
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Call executes eth_call against contract and decodes the hex result.
func (p *HTTPProvider) Call(ctx context.Context, contract common.Address, data []byte) ([]byte, error) {
	result, err := p.Send(ctx, "eth_call", callParams(contract, data))
	if err != nil {
		return nil, callFailed(p.name, err)
	}

	out, err := decodeHexResult(result)
	if err != nil {
		return nil, callFailed(p.name, err)
	}
	return out, nil
}

// Send makes a single JSON-RPC 2.0 call and returns the raw result member.
func (p *HTTPProvider) Send(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	start := time.Now()

	if status := p.Monitor.CheckProviderStatus(); status == StatusThrottled || status == StatusBlocked {
		return nil, fmt.Errorf("provider throttled, retry after: %v", p.Monitor.GetRetryAfter())
	}

	reqBody := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
		"id":      p.nextID.Add(1),
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		p.recordFailure()
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		p.recordFailure()
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, vs := range p.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.recordFailure()
		return nil, fmt.Errorf("rpc call: %w", err)
	}
	defer resp.Body.Close()

	// Rate limit detection
	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := resp.Header.Get("Retry-After")
		p.Monitor.RecordThrottle(resp.StatusCode, retryAfter)
		p.recordFailure()
		return nil, fmt.Errorf("rate limited (429), retry after: %s", retryAfter)
	}

	// IP blocked detection
	if resp.StatusCode == http.StatusForbidden {
		p.Monitor.RecordThrottle(resp.StatusCode, "")
		p.recordFailure()
		return nil, fmt.Errorf("ip blocked (403)")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		p.recordFailure()
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		p.recordFailure()

		if p.Monitor.DetectThrottlePattern(string(body)) {
			return nil, fmt.Errorf("throttle detected in response: %s", string(body))
		}

		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(body))
	}

	var rpcResp struct {
		Result json.RawMessage `json:"result"`
		Error  *rpcError       `json:"error"`
	}

	if err := json.Unmarshal(body, &rpcResp); err != nil {
		p.recordFailure()
		return nil, fmt.Errorf("parse response: %w", err)
	}

	if rpcResp.Error != nil {
		p.recordFailure()

		if p.Monitor.DetectThrottlePattern(rpcResp.Error.Message) {
			return nil, fmt.Errorf("throttle in rpc error: %s", rpcResp.Error.Message)
		}

		return nil, fmt.Errorf("rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}

	latency := time.Since(start)
	p.Monitor.RecordRequest(latency)
	p.recordSuccess(latency)

	return rpcResp.Result, nil
}

// Name returns the provider's name.
func (p *HTTPProvider) Name() string {
	return p.name
}

// Endpoint returns the URL requests are posted to.
func (p *HTTPProvider) Endpoint() string {
	return p.endpoint
}

// GetHealth returns the provider's health status.
func (p *HTTPProvider) GetHealth() HealthStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.health
}

// IsAvailable checks if the provider is available.
func (p *HTTPProvider) IsAvailable() bool {
	status := p.Monitor.CheckProviderStatus()
	return status == StatusHealthy || status == StatusDegraded
}

// Stats returns the throttle monitor's view of the provider.
func (p *HTTPProvider) Stats() MonitorStats {
	return p.Monitor.GetStats()
}

// Close cleans up resources.
func (p *HTTPProvider) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}

func (p *HTTPProvider) recordSuccess(latency time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.successCount++
	p.requestCount++
	p.totalLatency += latency
	p.health.LastSuccessAt = time.Now()
	p.health.Available = true

	p.health.ErrorRate = float64(p.failureCount) / float64(p.requestCount)
	p.health.Latency = p.totalLatency / time.Duration(p.successCount)
}

func (p *HTTPProvider) recordFailure() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.failureCount++
	p.requestCount++
	p.health.LastFailureAt = time.Now()
	p.health.ErrorRate = float64(p.failureCount) / float64(p.requestCount)

	if p.health.ErrorRate > 0.5 {
		p.health.Available = false
	}
}
