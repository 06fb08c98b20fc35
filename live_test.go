package ethscan

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/joho/godotenv"
)

const (
	// Binance hot wallet
	BinanceWallet = "0x28C6c06298d514Db089934071355E5743bf21d60"
	// USDT on mainnet
	USDTToken = "0xdAC17F958D2ee523a2206206994597C13D831ec7"
)

// liveURL returns a mainnet JSON-RPC endpoint or skips the test.
func liveURL(t *testing.T) string {
	t.Helper()

	_ = godotenv.Load()
	url := os.Getenv("ETHSCAN_RPC_URL")
	if url == "" || testing.Short() {
		t.Skip("ETHSCAN_RPC_URL not set, skipping live test")
	}
	return url
}

func TestLive_Variants(t *testing.T) {
	url := liveURL(t)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	ec, err := ethclient.DialContext(ctx, url)
	if err != nil {
		t.Fatalf("dial ethclient: %v", err)
	}
	defer ec.Close()

	rc, err := rpc.DialContext(ctx, url)
	if err != nil {
		t.Fatalf("dial rpc: %v", err)
	}
	defer rc.Close()

	handles := []struct {
		name   string
		handle any
	}{
		{"url", url},
		{"ethclient", ec},
		{"rpc client", rc},
	}

	for _, h := range handles {
		t.Run(h.name, func(t *testing.T) {
			if !IsProvider(h.handle) {
				t.Fatalf("%T is not detected as a provider", h.handle)
			}

			ether, err := GetEtherBalances(ctx, h.handle, []string{BinanceWallet}, nil)
			if err != nil {
				t.Fatalf("GetEtherBalances failed: %v", err)
			}
			if ether[BinanceWallet].Sign() <= 0 {
				t.Errorf("expected a positive ether balance, got %s", ether[BinanceWallet])
			}

			tokens, err := GetTokensBalance(ctx, h.handle, BinanceWallet, []string{USDTToken}, nil)
			if err != nil {
				t.Fatalf("GetTokensBalance failed: %v", err)
			}
			if _, ok := tokens[USDTToken]; !ok {
				t.Errorf("missing USDT key in %v", tokens)
			}
		})
	}
}
