package rpc

import (
	"context"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/vietddude/ethscan/internal/infra/rpc/provider"
)

type requester struct{}

func (requester) Request(context.Context, provider.RequestArguments) (any, error) {
	return "0x01", nil
}

type contractCaller struct{}

func (contractCaller) CallContract(context.Context, ethereum.CallMsg, *big.Int) ([]byte, error) {
	return []byte{0x02}, nil
}

type sender struct{}

func (sender) CallContext(_ context.Context, result any, _ string, _ ...any) error {
	return nil
}

type gateway struct{}

func (gateway) SendCallRequest(context.Context, provider.CallRequest) (string, error) {
	return "0x05", nil
}

type web3 struct{}

func (web3) CurrentProvider() provider.JSONRPCSender { return sender{} }

// both shapes at once; the higher priority one must win
type requesterAndCaller struct {
	requester
	contractCaller
}

type directCaller struct{}

func (directCaller) Name() string { return "direct" }

func (directCaller) Call(context.Context, common.Address, []byte) ([]byte, error) {
	return []byte{0x03}, nil
}

func TestDetect(t *testing.T) {
	u, _ := url.Parse("https://rpc.example.org/v1/key")

	tests := []struct {
		name   string
		handle any
		want   string
	}{
		{"caller", directCaller{}, "caller"},
		{"http provider is a caller", provider.NewHTTPProvider("x", "http://localhost:8545", 0), "caller"},
		{"eip1193", requester{}, "eip1193"},
		{"contract caller", contractCaller{}, "contract-caller"},
		{"priority", requesterAndCaller{}, "eip1193"},
		{"gateway", gateway{}, "gateway"},
		{"url string", "http://127.0.0.1:8545", "http"},
		{"url value", u, "http"},
		{"endpoint", provider.Endpoint{URL: "https://foo"}, "http"},
		{"endpoint pointer", &provider.Endpoint{URL: "https://foo"}, "http"},
		{"web3", web3{}, "web3"},
		{"rpc client", sender{}, "rpc-client"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Detect(tt.handle)
			if !ok || got != tt.want {
				t.Errorf("Detect() = %q, %v; want %q", got, ok, tt.want)
			}
		})
	}
}

func TestResolve_Invalid(t *testing.T) {
	invalid := []any{
		nil,
		struct{}{},
		map[string]any{"foo": "bar"},
		42,
		"",
		"not a url",
		"ftp://example.org",
		provider.Endpoint{},
		(*url.URL)(nil),
	}

	for _, h := range invalid {
		if IsProvider(h) {
			t.Errorf("IsProvider(%#v) = true", h)
		}
		if _, err := Resolve(h); !errors.Is(err, ErrInvalidProviderType) {
			t.Errorf("Resolve(%#v): expected ErrInvalidProviderType, got %v", h, err)
		}
	}
}

func TestCall_HTTP(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":"0x2a"}`))
	}))
	defer server.Close()

	out, err := Call(context.Background(), server.URL, common.Address{}, []byte{0x01})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0] != 0x2a || hits != 1 {
		t.Errorf("unexpected output %x after %d hits", out, hits)
	}
}

func TestCall_InvalidBeforeIO(t *testing.T) {
	_, err := Call(context.Background(), struct{ URL int }{1}, common.Address{}, nil)
	if !errors.Is(err, ErrInvalidProviderType) {
		t.Errorf("expected ErrInvalidProviderType, got %v", err)
	}
}
