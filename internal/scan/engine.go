// Package scan drives batched aggregator calls and recovers per-item failures.
//
// An Execute call splits its items into chunks, sends one aggregator call per
// chunk (concurrently, bounded), reassembles the per-item results in input
// order and then retries every failed item directly against its target.
// Transport and decode errors abort the whole execution; per-item failures
// never do.
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/vietddude/ethscan/internal/core/abi"
	"github.com/vietddude/ethscan/internal/core/batch"
	"github.com/vietddude/ethscan/internal/infra/rpc/provider"
	"github.com/vietddude/ethscan/internal/metrics"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds in-flight calls per execution.
const DefaultConcurrency = 4

// BatchEncoder builds the aggregator call data for one chunk of items.
type BatchEncoder func(chunk []string) ([]byte, error)

// ItemCall builds a direct call for a single item, bypassing the aggregator.
type ItemCall func(item string) (target common.Address, data []byte, err error)

// Request describes one batched execution.
type Request struct {
	Contract  common.Address
	Items     []string
	BatchSize int
	Encode    BatchEncoder

	// Retry is optional; nil leaves failed items as failures
	Retry ItemCall
}

// Engine executes batched requests through a single caller.
type Engine struct {
	caller      provider.Caller
	concurrency int
	log         *slog.Logger
}

type Option func(*Engine)

// WithConcurrency sets the maximum number of in-flight calls.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithLogger sets the logger; the default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

func NewEngine(caller provider.Caller, opts ...Option) *Engine {
	e := &Engine{
		caller:      caller,
		concurrency: DefaultConcurrency,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute returns one result per item, in item order.
func (e *Engine) Execute(ctx context.Context, req Request) ([]abi.Result, error) {
	chunks, err := batch.Chunk(req.Items, req.BatchSize)
	if err != nil {
		return nil, err
	}

	results := make([]abi.Result, len(req.Items))
	if len(results) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, chunk := range chunks {
		offset := i * req.BatchSize
		g.Go(func() error {
			return e.callChunk(gctx, req, offset, chunk, results[offset:offset+len(chunk)])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if req.Retry != nil {
		if err := e.retryFailed(ctx, req, results); err != nil {
			return nil, err
		}
	}

	return results, nil
}

func (e *Engine) callChunk(
	ctx context.Context,
	req Request,
	offset int,
	chunk []string,
	dst []abi.Result,
) error {
	data, err := req.Encode(chunk)
	if err != nil {
		return fmt.Errorf("encode chunk at %d: %w", offset, err)
	}

	selector := selectorOf(data)
	metrics.AggregatorCalls.WithLabelValues(e.caller.Name(), selector).Inc()
	metrics.ChunkSize.Observe(float64(len(chunk)))

	start := time.Now()
	out, err := e.caller.Call(ctx, req.Contract, data)
	latency := time.Since(start)
	metrics.AggregatorLatency.WithLabelValues(e.caller.Name(), selector).Observe(latency.Seconds())

	if err != nil {
		metrics.TransportErrors.WithLabelValues(e.caller.Name(), "transport").Inc()
		return fmt.Errorf("aggregator call for %d items at %d: %w", len(chunk), offset, err)
	}

	decoded, err := abi.DecodeResults(out)
	if err == nil && len(decoded) != len(chunk) {
		err = &abi.DecodeError{
			Types: []string{abi.ResultArray},
			Len:   len(out),
			Err:   fmt.Errorf("expected %d results, got %d", len(chunk), len(decoded)),
		}
	}
	if err != nil {
		metrics.TransportErrors.WithLabelValues(e.caller.Name(), "decode").Inc()
		return fmt.Errorf("aggregator response for %d items at %d: %w", len(chunk), offset, err)
	}

	failed := 0
	for i, r := range decoded {
		dst[i] = r
		if !Usable(r) {
			failed++
		}
	}
	if failed > 0 {
		metrics.ItemFailures.WithLabelValues(selector).Add(float64(failed))
	}

	e.log.Debug("Aggregator call done",
		"provider", e.caller.Name(),
		"selector", selector,
		"offset", offset,
		"items", len(chunk),
		"failed", failed,
		"latency", latency,
	)
	return nil
}

// retryFailed calls every failed item directly. Each goroutine owns exactly
// one slot of results. Retry errors are swallowed.
func (e *Engine) retryFailed(ctx context.Context, req Request, results []abi.Result) error {
	var g errgroup.Group
	g.SetLimit(e.concurrency)

	for i := range results {
		if Usable(results[i]) {
			continue
		}

		item := req.Items[i]
		g.Go(func() error {
			target, data, err := req.Retry(item)
			if err != nil {
				metrics.ItemRetries.WithLabelValues("skipped").Inc()
				e.log.Debug("Skipping retry", "item", item, "error", err)
				return nil
			}

			out, err := e.caller.Call(ctx, target, data)
			if err != nil || len(out) < abi.WordSize {
				metrics.ItemRetries.WithLabelValues("failed").Inc()
				e.log.Debug("Direct call failed", "item", item, "target", target.Hex(), "error", err)
				return nil
			}

			results[i] = abi.Result{Success: true, Data: out}
			metrics.ItemRetries.WithLabelValues("success").Inc()
			return nil
		})
	}
	_ = g.Wait()

	return ctx.Err()
}

// Usable reports whether a result carries a decodable uint256.
func Usable(r abi.Result) bool {
	return r.Success && len(r.Data) >= abi.WordSize
}

// Balances converts results to balances; unusable results become zero.
func Balances(results []abi.Result) []*big.Int {
	balances := make([]*big.Int, len(results))
	for i, r := range results {
		if !Usable(r) {
			balances[i] = new(big.Int)
			continue
		}
		balances[i] = new(big.Int).SetBytes(r.Data[:abi.WordSize])
	}
	return balances
}

func selectorOf(data []byte) string {
	if len(data) < abi.SelectorSize {
		return "none"
	}
	return hexutil.Encode(data[:abi.SelectorSize])
}
