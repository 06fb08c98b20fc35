package cli

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/vietddude/ethscan/internal/core/config"
	redisclient "github.com/vietddude/ethscan/internal/infra/redis"
	"github.com/vietddude/ethscan/internal/infra/rpc/provider"
	"github.com/vietddude/ethscan/internal/infra/rpc/routing"
)

var errNoProviders = errors.New("no providers configured: set --rpc or the providers section")

func newHTTPProviders(cfg *config.AppConfig) []*provider.HTTPProvider {
	providers := make([]*provider.HTTPProvider, 0, len(cfg.Providers))
	for _, p := range cfg.Providers {
		header := make(http.Header, len(p.Headers))
		for k, v := range p.Headers {
			header.Set(k, v)
		}
		providers = append(providers, provider.NewHTTPProviderFromEndpoint(provider.Endpoint{
			Name:    p.Name,
			URL:     p.URL,
			Header:  header,
			Timeout: p.Timeout,
		}))
	}
	return providers
}

// newCaller builds the transport stack: HTTP providers behind retry (and
// failover when more than one is configured), optionally behind the Redis
// response cache.
func newCaller(cfg *config.AppConfig, providers []*provider.HTTPProvider, log *slog.Logger) (provider.Caller, func(), error) {
	if len(providers) == 0 {
		return nil, nil, errNoProviders
	}

	closeFn := func() {
		for _, p := range providers {
			_ = p.Close()
		}
	}

	var caller provider.Caller
	if len(providers) == 1 {
		caller = routing.NewRetryingCaller(providers[0], cfg.Retry)
	} else {
		callers := make([]provider.Caller, len(providers))
		for i, p := range providers {
			callers[i] = p
		}
		caller = routing.NewFailoverCaller(cfg.Retry, callers...)
	}

	if cfg.Redis.URL == "" {
		return caller, closeFn, nil
	}

	client, err := redisclient.NewClient(cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, response cache disabled", "error", err)
		return caller, closeFn, nil
	}
	log.Debug("Response cache enabled", "ttl", cfg.Redis.TTL)

	return redisclient.NewCachingCaller(caller, client, cfg.Redis.TTL), func() {
		closeFn()
		_ = client.Close()
	}, nil
}
