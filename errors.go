package ethscan

import (
	"github.com/vietddude/ethscan/internal/core/abi"
	"github.com/vietddude/ethscan/internal/core/batch"
	"github.com/vietddude/ethscan/internal/infra/rpc"
	"github.com/vietddude/ethscan/internal/infra/rpc/provider"
)

var (
	// ErrInvalidProviderType is returned when a handle matches no provider shape.
	ErrInvalidProviderType = rpc.ErrInvalidProviderType

	// ErrCallFailed wraps every transport or JSON-RPC level failure.
	ErrCallFailed = provider.ErrCallFailed

	// ErrInvalidAddress is returned for inputs that are not hex addresses.
	ErrInvalidAddress = abi.ErrInvalidAddress

	// ErrInvalidBatchSize is returned for a negative batch size.
	ErrInvalidBatchSize = batch.ErrInvalidSize
)

// DecodeError reports a scanner response that does not match the expected layout.
type DecodeError = abi.DecodeError
