// Package rpc resolves a caller-supplied provider handle to a transport.
//
// Handles are matched against a closed list of provider shapes in a fixed
// priority order; the first match wins:
//
//  1. caller          - already a provider.Caller
//  2. eip1193         - Request(ctx, provider.RequestArguments) (any, error)
//  3. contract-caller - CallContract(ctx, ethereum.CallMsg, *big.Int), e.g. *ethclient.Client
//  4. gateway         - SendCallRequest(ctx, provider.CallRequest) (string, error)
//  5. http            - URL string, *url.URL or provider.Endpoint
//  6. web3            - CurrentProvider() provider.JSONRPCSender
//  7. rpc-client      - CallContext(ctx, result, method, args...), e.g. *rpc.Client
//
// # Quick Start
//
//	caller, err := rpc.Resolve("https://eth.llamarpc.com")
//	if err != nil {
//	    return err
//	}
//	out, err := caller.Call(ctx, contract, data)
package rpc

import (
	"context"
	"errors"
	"net/url"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vietddude/ethscan/internal/infra/rpc/provider"
)

// ErrInvalidProviderType is returned when a handle matches no known shape.
var ErrInvalidProviderType = errors.New("invalid provider type")

// Caller is the transport capability the scanner needs.
type Caller = provider.Caller

// Endpoint describes an HTTP JSON-RPC endpoint.
type Endpoint = provider.Endpoint

// Variant is one supported provider shape.
type Variant struct {
	Name   string
	Detect func(handle any) bool
	Adapt  func(handle any) provider.Caller
}

var variants = []Variant{
	{
		Name:   "caller",
		Detect: is[provider.Caller],
		Adapt:  func(h any) provider.Caller { return h.(provider.Caller) },
	},
	{
		Name:   "eip1193",
		Detect: is[provider.EIP1193],
		Adapt:  func(h any) provider.Caller { return provider.NewEIP1193Caller(h.(provider.EIP1193)) },
	},
	{
		Name:   "contract-caller",
		Detect: is[provider.ContractCaller],
		Adapt: func(h any) provider.Caller {
			return provider.NewContractCallerAdapter(h.(provider.ContractCaller))
		},
	},
	{
		Name:   "gateway",
		Detect: is[provider.Gateway],
		Adapt:  func(h any) provider.Caller { return provider.NewGatewayCaller(h.(provider.Gateway)) },
	},
	{
		Name:   "http",
		Detect: func(h any) bool { _, ok := httpEndpoint(h); return ok },
		Adapt: func(h any) provider.Caller {
			e, _ := httpEndpoint(h)
			return provider.NewHTTPProviderFromEndpoint(e)
		},
	},
	{
		Name:   "web3",
		Detect: is[provider.Web3],
		Adapt:  func(h any) provider.Caller { return provider.NewWeb3Caller(h.(provider.Web3)) },
	},
	{
		Name:   "rpc-client",
		Detect: is[provider.JSONRPCSender],
		Adapt:  func(h any) provider.Caller { return provider.NewSenderCaller(h.(provider.JSONRPCSender)) },
	},
}

func is[T any](h any) bool {
	_, ok := h.(T)
	return ok
}

func httpEndpoint(h any) (provider.Endpoint, bool) {
	var raw string
	var e provider.Endpoint

	switch v := h.(type) {
	case string:
		raw = v
	case *url.URL:
		if v == nil {
			return e, false
		}
		raw = v.String()
	case provider.Endpoint:
		e, raw = v, v.URL
	case *provider.Endpoint:
		if v == nil {
			return e, false
		}
		e, raw = *v, v.URL
	default:
		return e, false
	}

	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return e, false
	}
	e.URL = raw
	return e, true
}

// Detect returns the name of the variant a handle resolves to.
func Detect(handle any) (string, bool) {
	for _, v := range variants {
		if v.Detect(handle) {
			return v.Name, true
		}
	}
	return "", false
}

// IsProvider reports whether a handle matches any supported shape.
func IsProvider(handle any) bool {
	_, ok := Detect(handle)
	return ok
}

// Resolve adapts a handle to a Caller using the first matching variant.
func Resolve(handle any) (provider.Caller, error) {
	if handle == nil {
		return nil, ErrInvalidProviderType
	}
	for _, v := range variants {
		if v.Detect(handle) {
			return v.Adapt(handle), nil
		}
	}
	return nil, ErrInvalidProviderType
}

// Call resolves handle and performs a single contract call through it.
func Call(ctx context.Context, handle any, contract common.Address, data []byte) ([]byte, error) {
	c, err := Resolve(handle)
	if err != nil {
		return nil, err
	}
	return c.Call(ctx, contract, data)
}
