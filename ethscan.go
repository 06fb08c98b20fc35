// Package ethscan queries native and ERC-20 token balances of many addresses
// through a single on-chain balance scanner contract.
//
// Each operation splits its input into batches, calls the scanner once per
// batch and maps every input string to its balance. Items the scanner could
// not resolve are retried directly against the token contract where that
// makes sense, and resolve to zero when the retry fails too.
package ethscan

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vietddude/ethscan/internal/core/abi"
	"github.com/vietddude/ethscan/internal/infra/rpc"
	"github.com/vietddude/ethscan/internal/infra/rpc/provider"
	"github.com/vietddude/ethscan/internal/scan"
	"golang.org/x/sync/errgroup"
)

// Scanner entry points and the ERC-20 balance function.
const (
	EtherBalancesSelector = "0xdbdbb51b" // etherBalances(address[])
	TokenBalancesSelector = "0xaad33091" // tokenBalances(address[],address)
	TokensBalanceSelector = "0xe5da1b68" // tokensBalance(address,address[])
	BalanceOfSelector     = "0x70a08231" // balanceOf(address)
)

// BalanceMap maps an address string, as given by the caller, to a balance.
type BalanceMap map[string]*big.Int

// NestedBalanceMap maps a holder address to its per-token balances.
type NestedBalanceMap map[string]BalanceMap

// Caller is the transport a provider handle resolves to.
type Caller = provider.Caller

// Endpoint describes an HTTP JSON-RPC endpoint usable as a provider handle.
type Endpoint = provider.Endpoint

// RequestArguments is the payload of an EIP-1193 style request.
type RequestArguments = provider.RequestArguments

// IsProvider reports whether handle matches one of the supported provider shapes.
func IsProvider(handle any) bool {
	return rpc.IsProvider(handle)
}

// GetEtherBalances returns the native balance of every address.
func GetEtherBalances(ctx context.Context, handle any, addresses []string, opts *Options) (BalanceMap, error) {
	s, err := newSession(handle, opts)
	if err != nil {
		return nil, err
	}
	if _, err := abi.ParseAddresses(addresses); err != nil {
		return nil, err
	}

	encode := func(chunk []string) ([]byte, error) {
		return call(EtherBalancesSelector, []string{"address[]"}, chunk)
	}
	return s.balances(ctx, addresses, encode, nil)
}

// GetTokenBalances returns the balance of one token for every holder.
func GetTokenBalances(ctx context.Context, handle any, addresses []string, token string, opts *Options) (BalanceMap, error) {
	s, err := newSession(handle, opts)
	if err != nil {
		return nil, err
	}
	if _, err := abi.ParseAddresses(addresses); err != nil {
		return nil, err
	}
	tokenAddr, err := abi.ParseAddress(token)
	if err != nil {
		return nil, err
	}

	encode := func(chunk []string) ([]byte, error) {
		return call(TokenBalancesSelector, []string{"address[]", "address"}, chunk, tokenAddr)
	}
	retry := func(holder string) (common.Address, []byte, error) {
		data, err := balanceOf(holder)
		return tokenAddr, data, err
	}
	return s.balances(ctx, addresses, encode, retry)
}

// GetTokensBalance returns the balance of every token for one holder.
func GetTokensBalance(ctx context.Context, handle any, owner string, tokens []string, opts *Options) (BalanceMap, error) {
	s, err := newSession(handle, opts)
	if err != nil {
		return nil, err
	}
	if _, err := abi.ParseAddress(owner); err != nil {
		return nil, err
	}
	if _, err := abi.ParseAddresses(tokens); err != nil {
		return nil, err
	}
	return s.tokensBalance(ctx, owner, tokens)
}

// GetTokensBalances returns the balance of every token for every holder. The
// scanner is called once per holder; the first error aborts the whole query.
// Holders are scanned in parallel and each holder's batches run one at a
// time, so Concurrency still bounds the calls in flight.
func GetTokensBalances(ctx context.Context, handle any, addresses, tokens []string, opts *Options) (NestedBalanceMap, error) {
	s, err := newSession(handle, opts)
	if err != nil {
		return nil, err
	}
	if _, err := abi.ParseAddresses(addresses); err != nil {
		return nil, err
	}
	if _, err := abi.ParseAddresses(tokens); err != nil {
		return nil, err
	}

	maps := make([]BalanceMap, len(addresses))
	holder := s.serial()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, owner := range addresses {
		g.Go(func() error {
			m, err := holder.tokensBalance(gctx, owner, tokens)
			if err != nil {
				return err
			}
			maps[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(NestedBalanceMap, len(addresses))
	for i, owner := range addresses {
		out[owner] = maps[i]
	}
	return out, nil
}

// session is one resolved provider plus resolved options.
type session struct {
	settings
	caller Caller
	engine *scan.Engine
}

func newSession(handle any, opts *Options) (*session, error) {
	caller, err := rpc.Resolve(handle)
	if err != nil {
		return nil, err
	}

	s, err := opts.resolve()
	if err != nil {
		return nil, err
	}

	return &session{
		settings: s,
		caller:   caller,
		engine: scan.NewEngine(caller,
			scan.WithConcurrency(s.concurrency),
			scan.WithLogger(s.logger),
		),
	}, nil
}

// serial returns a copy of the session whose engine issues one call at a time.
func (s *session) serial() *session {
	c := *s
	c.engine = scan.NewEngine(s.caller,
		scan.WithConcurrency(1),
		scan.WithLogger(s.logger),
	)
	return &c
}

func (s *session) tokensBalance(ctx context.Context, owner string, tokens []string) (BalanceMap, error) {
	encode := func(chunk []string) ([]byte, error) {
		return call(TokensBalanceSelector, []string{"address", "address[]"}, owner, chunk)
	}
	retry := func(token string) (common.Address, []byte, error) {
		target, err := abi.ParseAddress(token)
		if err != nil {
			return common.Address{}, nil, err
		}
		data, err := balanceOf(owner)
		return target, data, err
	}
	return s.balances(ctx, tokens, encode, retry)
}

func (s *session) balances(ctx context.Context, items []string, encode scan.BatchEncoder, retry scan.ItemCall) (BalanceMap, error) {
	results, err := s.engine.Execute(ctx, scan.Request{
		Contract:  s.contract,
		Items:     items,
		BatchSize: s.batchSize,
		Encode:    encode,
		Retry:     retry,
	})
	if err != nil {
		return nil, err
	}

	out := make(BalanceMap, len(items))
	for i, b := range scan.Balances(results) {
		out[items[i]] = b
	}
	return out, nil
}

func call(selector string, types []string, values ...any) ([]byte, error) {
	body, err := abi.Encode(types, values...)
	if err != nil {
		return nil, err
	}
	return abi.WithSelector(selector, body)
}

func balanceOf(holder string) ([]byte, error) {
	return call(BalanceOfSelector, []string{"address"}, holder)
}
