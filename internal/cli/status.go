package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"text/tabwriter"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
	"github.com/vietddude/ethscan/internal/infra/rpc/provider"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status of every configured RPC provider",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

type providerStatus struct {
	Name    string
	Host    string
	ChainID uint64
	Block   uint64
	Latency time.Duration
	Status  string
	Err     error
}

func quantity(ctx context.Context, p *provider.HTTPProvider, method string) (uint64, error) {
	raw, err := p.Send(ctx, method, []any{})
	if err != nil {
		return 0, err
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("parse %s result: %w", method, err)
	}
	return hexutil.DecodeUint64(s)
}

func probe(ctx context.Context, p *provider.HTTPProvider) providerStatus {
	st := providerStatus{Name: p.Name(), Host: p.Endpoint()}
	if u, err := url.Parse(p.Endpoint()); err == nil {
		// Hide paths, they often carry API keys
		st.Host = u.Host
	}

	start := time.Now()
	st.ChainID, st.Err = quantity(ctx, p, "eth_chainId")
	if st.Err == nil {
		st.Block, st.Err = quantity(ctx, p, "eth_blockNumber")
	}
	st.Latency = time.Since(start)
	st.Status = p.Monitor.GetStats().Status.String()
	return st
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		return err
	}
	setupLogging(cfg.Logging)

	providers := newHTTPProviders(cfg)
	if len(providers) == 0 {
		return errNoProviders
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "PROVIDER\tHOST\tCHAIN\tBLOCK\tLATENCY\tSTATUS")

	for _, p := range providers {
		st := probe(ctx, p)
		_ = p.Close()

		if st.Err != nil {
			slog.Warn("Provider check failed", "provider", st.Name, "error", st.Err)
			_, _ = fmt.Fprintf(w, "%s\t%s\t-\t-\t%s\t%s\n", st.Name, st.Host, st.Latency.Round(time.Millisecond), "error")
			continue
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n",
			st.Name, st.Host, st.ChainID, st.Block, st.Latency.Round(time.Millisecond), st.Status)
	}
	return w.Flush()
}
