package redis

import (
	"context"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vietddude/ethscan/internal/infra/rpc/provider"
)

// Store is the key/value surface the cache needs. *Client implements it.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachingCaller serves repeated identical calls from a Store. Store failures
// are logged and bypassed; only successful responses are cached.
type CachingCaller struct {
	next  provider.Caller
	store Store
	ttl   time.Duration
	log   *slog.Logger
}

// NewCachingCaller wraps next. A non-positive ttl uses DefaultTTL.
func NewCachingCaller(next provider.Caller, store Store, ttl time.Duration) *CachingCaller {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachingCaller{
		next:  next,
		store: store,
		ttl:   ttl,
		log:   slog.Default().With("component", "call-cache"),
	}
}

func (c *CachingCaller) Name() string { return c.next.Name() }

func (c *CachingCaller) Call(ctx context.Context, contract common.Address, data []byte) ([]byte, error) {
	key := callKey(contract, data)

	cached, ok, err := c.store.Get(ctx, key)
	switch {
	case err != nil:
		c.log.Warn("Cache read failed", "key", key, "error", err)
	case ok:
		c.log.Debug("Cache hit", "key", key, "bytes", len(cached))
		return cached, nil
	}

	out, err := c.next.Call(ctx, contract, data)
	if err != nil {
		return nil, err
	}

	if err := c.store.Set(ctx, key, out, c.ttl); err != nil {
		c.log.Warn("Cache write failed", "key", key, "error", err)
	}
	return out, nil
}
