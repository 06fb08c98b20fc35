package ethscan

import (
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vietddude/ethscan/internal/core/abi"
	"github.com/vietddude/ethscan/internal/scan"
)

const (
	// DefaultContractAddress is the deployed balance scanner.
	DefaultContractAddress = "0x08A8fDBddc160A7d5b957256b903dCAb1aE512C5"

	// DefaultBatchSize is the maximum number of items per scanner call.
	DefaultBatchSize = 1000

	// DefaultConcurrency is the maximum number of in-flight calls.
	DefaultConcurrency = scan.DefaultConcurrency
)

// Options overrides the defaults of a query. A nil *Options and zero fields
// mean "use the default".
type Options struct {
	ContractAddress string
	BatchSize       int
	Concurrency     int
	Logger          *slog.Logger
}

type settings struct {
	contract    common.Address
	batchSize   int
	concurrency int
	logger      *slog.Logger
}

func (o *Options) resolve() (settings, error) {
	var opts Options
	if o != nil {
		opts = *o
	}

	contract := DefaultContractAddress
	if opts.ContractAddress != "" {
		contract = opts.ContractAddress
	}
	addr, err := abi.ParseAddress(contract)
	if err != nil {
		return settings{}, err
	}

	s := settings{
		contract:    addr,
		batchSize:   DefaultBatchSize,
		concurrency: DefaultConcurrency,
		logger:      slog.Default(),
	}
	if opts.BatchSize < 0 {
		return settings{}, fmt.Errorf("%w: %d", ErrInvalidBatchSize, opts.BatchSize)
	}
	if opts.BatchSize > 0 {
		s.batchSize = opts.BatchSize
	}
	if opts.Concurrency > 0 {
		s.concurrency = opts.Concurrency
	}
	if opts.Logger != nil {
		s.logger = opts.Logger
	}
	return s, nil
}
