package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/vietddude/ethscan"
	"github.com/vietddude/ethscan/internal/core/config"
	"github.com/vietddude/ethscan/internal/infra/rpc/provider"
	"github.com/vietddude/stylelog"
)

var (
	cfgPath     string
	isDebug     bool
	rpcURLs     []string
	contract    string
	batchSize   int
	concurrency int
	output      string
)

var rootCmd = &cobra.Command{
	Use:   "ethscan",
	Short: "Batched Ethereum balance scanner",
	Long: `ethscan queries native and ERC-20 token balances of many addresses
through the on-chain balance scanner contract, one call per batch.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringSliceVar(&rpcURLs, "rpc", nil, "JSON-RPC endpoint URL, repeatable (overrides config providers)")
	rootCmd.PersistentFlags().StringVar(&contract, "contract", "", "balance scanner contract address")
	rootCmd.PersistentFlags().IntVar(&batchSize, "batch-size", 0, "maximum addresses per scanner call")
	rootCmd.PersistentFlags().IntVar(&concurrency, "concurrency", 0, "maximum in-flight calls")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "json", "output format: json or table")
}

// session is everything a command needs to run one query.
type session struct {
	cfg       *config.AppConfig
	log       *slog.Logger
	providers []*provider.HTTPProvider
	caller    ethscan.Caller
	close     func()
}

func (s *session) options() *ethscan.Options {
	return &ethscan.Options{
		ContractAddress: s.cfg.Scanner.ContractAddress,
		BatchSize:       s.cfg.Scanner.BatchSize,
		Concurrency:     s.cfg.Scanner.Concurrency,
		Logger:          s.log,
	}
}

func loadConfig(cmd *cobra.Command) (*config.AppConfig, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		// A missing default config file is fine when everything comes from flags
		if cmd.Flags().Changed("config") || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = config.Default()
	}

	if len(rpcURLs) > 0 {
		cfg.Providers = nil
		for i, u := range rpcURLs {
			cfg.Providers = append(cfg.Providers, config.ProviderConfig{
				Name: fmt.Sprintf("rpc-%d", i),
				URL:  u,
			})
		}
		cfg.ApplyDefaults()
	}
	if contract != "" {
		cfg.Scanner.ContractAddress = contract
	}
	if batchSize != 0 {
		cfg.Scanner.BatchSize = batchSize
	}
	if concurrency > 0 {
		cfg.Scanner.Concurrency = concurrency
	}
	return cfg, nil
}

func setupLogging(cfg config.LoggingConfig) {
	slogLevel := slog.LevelInfo
	if isDebug || cfg.Level == "debug" {
		slogLevel = slog.LevelDebug
	}

	if cfg.Format == "json" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slogLevel})))
		return
	}

	stylelog.InitDefault(&tint.Options{
		Level:      slogLevel,
		TimeFormat: time.RFC3339,
	})
}

func newSession(cmd *cobra.Command) (*session, error) {
	_ = godotenv.Load()

	cfg, err := loadConfig(cmd)
	if err != nil {
		stylelog.InitDefault()
		slog.Error("Failed to load config", "error", err)
		return nil, err
	}
	setupLogging(cfg.Logging)

	log := slog.Default().With("run_id", uuid.NewString())

	providers := newHTTPProviders(cfg)
	caller, closeFn, err := newCaller(cfg, providers, log)
	if err != nil {
		log.Error("Failed to initialize providers", "error", err)
		return nil, err
	}

	return &session{
		cfg:       cfg,
		log:       log,
		providers: providers,
		caller:    caller,
		close:     closeFn,
	}, nil
}

// run executes fn with a context cancelled on SIGINT or SIGTERM.
func run(cmd *cobra.Command, fn func(ctx context.Context, s *session) (any, error)) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	result, err := fn(ctx, s)
	if err != nil {
		s.log.Error("Query failed", "command", cmd.Name(), "error", err)
		return err
	}
	s.log.Debug("Query done", "command", cmd.Name(), "elapsed", time.Since(start))

	return render(cmd.OutOrStdout(), output, result)
}
