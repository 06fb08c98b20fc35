package provider

import (
	"context"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// EIP1193Caller calls through an EIP-1193 requester.
type EIP1193Caller struct {
	p EIP1193
}

func NewEIP1193Caller(p EIP1193) *EIP1193Caller {
	return &EIP1193Caller{p: p}
}

func (c *EIP1193Caller) Name() string { return "eip1193" }

func (c *EIP1193Caller) Call(ctx context.Context, contract common.Address, data []byte) ([]byte, error) {
	result, err := c.p.Request(ctx, RequestArguments{
		Method: "eth_call",
		Params: callParams(contract, data),
	})
	if err != nil {
		return nil, callFailed(c.Name(), err)
	}

	out, err := decodeHexResult(result)
	if err != nil {
		return nil, callFailed(c.Name(), err)
	}
	return out, nil
}

// ContractCallerAdapter calls through a go-ethereum style contract caller.
type ContractCallerAdapter struct {
	c ContractCaller
}

func NewContractCallerAdapter(c ContractCaller) *ContractCallerAdapter {
	return &ContractCallerAdapter{c: c}
}

func (a *ContractCallerAdapter) Name() string { return "contract-caller" }

func (a *ContractCallerAdapter) Call(ctx context.Context, contract common.Address, data []byte) ([]byte, error) {
	out, err := a.c.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		return nil, callFailed(a.Name(), err)
	}
	return out, nil
}

// GatewayCaller calls through a gateway wrapper.
type GatewayCaller struct {
	g Gateway
}

func NewGatewayCaller(g Gateway) *GatewayCaller {
	return &GatewayCaller{g: g}
}

func (c *GatewayCaller) Name() string { return "gateway" }

func (c *GatewayCaller) Call(ctx context.Context, contract common.Address, data []byte) ([]byte, error) {
	result, err := c.g.SendCallRequest(ctx, CallRequest{
		To:   contract.Hex(),
		Data: hexutil.Encode(data),
	})
	if err != nil {
		return nil, callFailed(c.Name(), err)
	}

	out, err := decodeHexResult(result)
	if err != nil {
		return nil, callFailed(c.Name(), err)
	}
	return out, nil
}

// SenderCaller calls through a raw JSON-RPC sender.
type SenderCaller struct {
	name   string
	sender func() JSONRPCSender
}

// NewSenderCaller wraps a sender such as go-ethereum's rpc.Client.
func NewSenderCaller(s JSONRPCSender) *SenderCaller {
	return &SenderCaller{name: "rpc-client", sender: func() JSONRPCSender { return s }}
}

// NewWeb3Caller resolves the nested sender on every call, so a swapped
// current provider is picked up.
func NewWeb3Caller(w Web3) *SenderCaller {
	return &SenderCaller{name: "web3", sender: w.CurrentProvider}
}

func (c *SenderCaller) Name() string { return c.name }

func (c *SenderCaller) Call(ctx context.Context, contract common.Address, data []byte) ([]byte, error) {
	s := c.sender()
	if s == nil {
		return nil, callFailed(c.name, errNoSender)
	}

	var out hexutil.Bytes
	if err := s.CallContext(ctx, &out, "eth_call", callParams(contract, data)...); err != nil {
		return nil, callFailed(c.name, err)
	}
	return out, nil
}
