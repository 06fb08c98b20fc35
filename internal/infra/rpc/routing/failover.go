package routing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vietddude/ethscan/internal/infra/rpc/provider"
)

// FailoverCaller tries providers in order, moving on when one is throttled
// or exhausts its retries. Fatal errors stop the walk.
type FailoverCaller struct {
	providers []provider.Caller
	config    RetryConfig
}

func NewFailoverCaller(config RetryConfig, providers ...provider.Caller) *FailoverCaller {
	return &FailoverCaller{providers: providers, config: config}
}

func (f *FailoverCaller) Name() string {
	names := make([]string, len(f.providers))
	for i, p := range f.providers {
		names[i] = p.Name()
	}
	return "failover(" + strings.Join(names, ",") + ")"
}

func (f *FailoverCaller) Call(ctx context.Context, contract common.Address, data []byte) ([]byte, error) {
	if len(f.providers) == 0 {
		return nil, fmt.Errorf("%w: no providers configured", provider.ErrCallFailed)
	}

	var lastErr error
	for _, p := range f.providers {
		out, err := CallWithRetry(ctx, p, contract, data, f.config)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if ClassifyError(err) == ActionFatal || ctx.Err() != nil {
			return nil, err
		}
		slog.Warn("Provider failed, trying next", "provider", p.Name(), "error", err)
	}

	return nil, fmt.Errorf("all providers failed: %w", lastErr)
}
