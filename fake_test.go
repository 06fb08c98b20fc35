package ethscan

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/vietddude/ethscan/internal/core/abi"
)

// fakeScanner emulates the balance scanner contract plus direct ERC-20
// balanceOf calls on token addresses.
type fakeScanner struct {
	contract common.Address

	ether  map[common.Address]*big.Int
	tokens map[common.Address]map[common.Address]*big.Int

	// broken tokens fail inside scanner batches; directOK ones still answer balanceOf
	broken   map[common.Address]bool
	directOK map[common.Address]bool

	// delay holds every call open so overlapping calls can be observed
	delay time.Duration

	mu          sync.Mutex
	batchSizes  []int
	directCalls atomic.Int64
	inflight    atomic.Int64
	peak        atomic.Int64
}

func newFakeScanner() *fakeScanner {
	return &fakeScanner{
		contract: common.HexToAddress(DefaultContractAddress),
		ether:    make(map[common.Address]*big.Int),
		tokens:   make(map[common.Address]map[common.Address]*big.Int),
		broken:   make(map[common.Address]bool),
		directOK: make(map[common.Address]bool),
	}
}

func (f *fakeScanner) Name() string { return "fake-scanner" }

func (f *fakeScanner) setToken(token, holder common.Address, v int64) {
	if f.tokens[token] == nil {
		f.tokens[token] = make(map[common.Address]*big.Int)
	}
	f.tokens[token][holder] = big.NewInt(v)
}

func (f *fakeScanner) tokenBalance(token, holder common.Address) *big.Int {
	if v := f.tokens[token][holder]; v != nil {
		return v
	}
	return new(big.Int)
}

func (f *fakeScanner) tokenResult(token, holder common.Address) abi.Result {
	if f.broken[token] {
		return abi.Result{Success: false, Data: []byte{}}
	}
	return abi.Result{Success: true, Data: word(f.tokenBalance(token, holder))}
}

func (f *fakeScanner) Call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	n := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	if len(data) < abi.SelectorSize {
		return nil, fmt.Errorf("%w (fake): empty call data", ErrCallFailed)
	}
	selector := hexutil.Encode(data[:abi.SelectorSize])

	if to != f.contract {
		f.directCalls.Add(1)
		if selector != BalanceOfSelector || !f.directOK[to] {
			return nil, fmt.Errorf("%w (fake): execution reverted", ErrCallFailed)
		}
		out, err := abi.Decode([]string{"address"}, data)
		if err != nil {
			return nil, err
		}
		return word(f.tokenBalance(to, out[0].(common.Address))), nil
	}

	var results []abi.Result
	switch selector {
	case EtherBalancesSelector:
		out, err := abi.Decode([]string{"address[]"}, data)
		if err != nil {
			return nil, err
		}
		for _, a := range out[0].([]common.Address) {
			v := f.ether[a]
			if v == nil {
				v = new(big.Int)
			}
			results = append(results, abi.Result{Success: true, Data: word(v)})
		}
	case TokenBalancesSelector:
		out, err := abi.Decode([]string{"address[]", "address"}, data)
		if err != nil {
			return nil, err
		}
		token := out[1].(common.Address)
		for _, holder := range out[0].([]common.Address) {
			results = append(results, f.tokenResult(token, holder))
		}
	case TokensBalanceSelector:
		out, err := abi.Decode([]string{"address", "address[]"}, data)
		if err != nil {
			return nil, err
		}
		owner := out[0].(common.Address)
		for _, token := range out[1].([]common.Address) {
			results = append(results, f.tokenResult(token, owner))
		}
	default:
		return nil, fmt.Errorf("%w (fake): unknown selector %s", ErrCallFailed, selector)
	}

	f.mu.Lock()
	f.batchSizes = append(f.batchSizes, len(results))
	f.mu.Unlock()

	return abi.Encode([]string{abi.ResultArray}, results)
}

func (f *fakeScanner) batches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batchSizes)
}

// serve exposes the fake over JSON-RPC eth_call.
func (f *fakeScanner) serve(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     any `json:"id"`
			Params []json.RawMessage
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Params) == 0 {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		var msg struct {
			To   string `json:"to"`
			Data string `json:"data"`
		}
		if err := json.Unmarshal(req.Params[0], &msg); err != nil {
			http.Error(w, "bad params", http.StatusBadRequest)
			return
		}

		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		data, err := hexutil.Decode(msg.Data)
		if err == nil {
			var out []byte
			out, err = f.Call(r.Context(), common.HexToAddress(msg.To), data)
			if err == nil {
				resp["result"] = hexutil.Encode(out)
			}
		}
		if err != nil {
			resp["error"] = map[string]any{"code": 3, "message": err.Error()}
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)
	return server
}

func word(v *big.Int) []byte {
	return common.LeftPadBytes(v.Bytes(), abi.WordSize)
}

func testAddresses(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = common.BigToAddress(big.NewInt(int64(i + 1))).Hex()
	}
	return out
}
