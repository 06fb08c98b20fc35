// Package provider implements the transports the balance scanner calls through.
//
// This package contains:
//   - Caller: the single capability the scanner needs ("eth_call this data")
//   - HTTPProvider: JSON-RPC over HTTP implementation
//   - adapters for EIP-1193 style requesters, go-ethereum contract callers,
//     raw JSON-RPC senders and web3 style wrappers
//   - ProviderMonitor: throttle and latency tracking for HTTP endpoints
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ErrCallFailed marks a transport or RPC level failure of a contract call.
// Callers never retry it; it aborts the whole scan.
var ErrCallFailed = errors.New("contract call failed")

var errNoSender = errors.New("no current provider")

// Caller sends call data to a contract and returns the raw return data.
type Caller interface {
	// Call executes eth_call against contract at the latest block
	Call(ctx context.Context, contract common.Address, data []byte) ([]byte, error)

	// Name identifies the transport in logs and metrics
	Name() string
}

// RequestArguments is the payload of an EIP-1193 request.
type RequestArguments struct {
	Method string `json:"method"`
	Params []any  `json:"params"`
}

// EIP1193 is a provider exposing a single request method, like an injected
// wallet provider.
type EIP1193 interface {
	Request(ctx context.Context, args RequestArguments) (any, error)
}

// ContractCaller is satisfied by go-ethereum's ethclient.Client.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// JSONRPCSender is satisfied by go-ethereum's rpc.Client.
type JSONRPCSender interface {
	CallContext(ctx context.Context, result any, method string, args ...any) error
}

// Web3 wraps a nested JSON-RPC sender, like a web3 instance with a current provider.
type Web3 interface {
	CurrentProvider() JSONRPCSender
}

// CallRequest is the payload a gateway sends as eth_call.
type CallRequest struct {
	To   string `json:"to"`
	Data string `json:"data"`
}

// Gateway is a third-party gateway wrapper that performs eth_call itself and
// answers with the hex-encoded return data.
type Gateway interface {
	SendCallRequest(ctx context.Context, req CallRequest) (string, error)
}

// Endpoint describes an HTTP JSON-RPC endpoint.
type Endpoint struct {
	Name    string
	URL     string
	Header  http.Header
	Timeout time.Duration
}

// HealthStatus represents the health state of a provider.
type HealthStatus struct {
	Available     bool
	Latency       time.Duration
	ErrorRate     float64
	LastSuccessAt time.Time
	LastFailureAt time.Time
}

type callMsg struct {
	To   string `json:"to"`
	Data string `json:"data"`
}

func callParams(contract common.Address, data []byte) []any {
	return []any{
		callMsg{To: contract.Hex(), Data: hexutil.Encode(data)},
		"latest",
	}
}

func callFailed(name string, err error) error {
	return fmt.Errorf("%w (%s): %w", ErrCallFailed, name, err)
}

// decodeHexResult converts an eth_call result into bytes.
func decodeHexResult(result any) ([]byte, error) {
	switch v := result.(type) {
	case string:
		return hexutil.Decode(v)
	case []byte:
		return v, nil
	case json.RawMessage:
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, fmt.Errorf("parse result: %w", err)
		}
		return hexutil.Decode(s)
	case nil:
		return nil, errors.New("empty result")
	default:
		return nil, fmt.Errorf("unexpected result type %T", result)
	}
}
