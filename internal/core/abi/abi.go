// Package abi encodes and decodes the balance scanner's calling convention.
//
// It is a thin profile over go-ethereum's ABI type machinery covering the
// types the scanner exchanges: addresses, address arrays, uint256 values and
// the (bool success, bytes data)[] tuple array the aggregator returns for
// every batched call.
package abi

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// WordSize is the size of a single ABI word.
const WordSize = 32

// SelectorSize is the size of a function selector.
const SelectorSize = 4

// ResultArray is the type tag of the aggregator's per-item result array.
const ResultArray = "(bool,bytes)[]"

var (
	// ErrUnsupportedType is returned for type tags outside the supported profile.
	ErrUnsupportedType = errors.New("abi: unsupported type")

	// ErrInvalidAddress is returned when a string value is not a hex address.
	ErrInvalidAddress = errors.New("abi: invalid address")

	// ErrInvalidSelector is returned when a selector is not 4 hex-encoded bytes.
	ErrInvalidSelector = errors.New("abi: invalid selector")
)

// Result is the outcome of one call inside an aggregated batch.
type Result struct {
	Success bool
	Data    []byte
}

// DecodeError reports response bytes that do not match the expected types.
type DecodeError struct {
	Types []string
	Len   int
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("abi: decode %s from %d bytes: %v", strings.Join(e.Types, ","), e.Len, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

var resultComponents = []gethabi.ArgumentMarshaling{
	{Name: "success", Type: "bool"},
	{Name: "data", Type: "bytes"},
}

var (
	typeCacheMu sync.RWMutex
	typeCache   = make(map[string]gethabi.Type)
)

func parseType(tag string) (gethabi.Type, error) {
	typeCacheMu.RLock()
	t, ok := typeCache[tag]
	typeCacheMu.RUnlock()
	if ok {
		return t, nil
	}

	var err error
	switch tag {
	case ResultArray:
		t, err = gethabi.NewType("tuple[]", "", resultComponents)
	case "address", "address[]", "uint256", "uint256[]", "bool", "bytes":
		t, err = gethabi.NewType(tag, "", nil)
	default:
		return gethabi.Type{}, fmt.Errorf("%w: %q", ErrUnsupportedType, tag)
	}
	if err != nil {
		return gethabi.Type{}, fmt.Errorf("parse type %q: %w", tag, err)
	}

	typeCacheMu.Lock()
	typeCache[tag] = t
	typeCacheMu.Unlock()
	return t, nil
}

func arguments(types []string) (gethabi.Arguments, error) {
	args := make(gethabi.Arguments, len(types))
	for i, tag := range types {
		t, err := parseType(tag)
		if err != nil {
			return nil, err
		}
		args[i] = gethabi.Argument{Type: t}
	}
	return args, nil
}

// Encode packs values according to types. Address values may be given as
// common.Address or hex strings, address arrays as []common.Address or []string.
func Encode(types []string, values ...any) ([]byte, error) {
	if len(types) != len(values) {
		return nil, fmt.Errorf("abi: %d types but %d values", len(types), len(values))
	}

	args, err := arguments(types)
	if err != nil {
		return nil, err
	}

	normalized := make([]any, len(values))
	for i, v := range values {
		normalized[i], err = normalize(types[i], v)
		if err != nil {
			return nil, err
		}
	}

	data, err := args.Pack(normalized...)
	if err != nil {
		return nil, fmt.Errorf("abi: encode %s: %w", strings.Join(types, ","), err)
	}
	return data, nil
}

func normalize(tag string, v any) (any, error) {
	switch tag {
	case "address":
		if s, ok := v.(string); ok {
			return ParseAddress(s)
		}
	case "address[]":
		if ss, ok := v.([]string); ok {
			return ParseAddresses(ss)
		}
	}
	return v, nil
}

// Decode unpacks data according to types. A leading 4-byte selector is
// skipped when present.
func Decode(types []string, data []byte) ([]any, error) {
	if len(data)%WordSize == SelectorSize {
		data = data[SelectorSize:]
	}
	if len(data)%WordSize != 0 {
		return nil, &DecodeError{Types: types, Len: len(data), Err: errors.New("length is not a multiple of 32")}
	}

	args, err := arguments(types)
	if err != nil {
		return nil, err
	}

	out, err := args.Unpack(data)
	if err != nil {
		return nil, &DecodeError{Types: types, Len: len(data), Err: err}
	}

	for i, tag := range types {
		if tag == ResultArray {
			out[i] = *gethabi.ConvertType(out[i], new([]Result)).(*[]Result)
		}
	}
	return out, nil
}

// DecodeResults decodes an aggregator response into per-item results.
// Return data never carries a selector, so the length must be word aligned.
func DecodeResults(data []byte) ([]Result, error) {
	if len(data)%WordSize != 0 {
		return nil, &DecodeError{Types: []string{ResultArray}, Len: len(data), Err: errors.New("length is not a multiple of 32")}
	}
	out, err := Decode([]string{ResultArray}, data)
	if err != nil {
		return nil, err
	}
	return out[0].([]Result), nil
}

// Uint256 reads the first word of data as an unsigned integer.
func Uint256(data []byte) (*big.Int, error) {
	if len(data) < WordSize {
		return nil, &DecodeError{Types: []string{"uint256"}, Len: len(data), Err: errors.New("short word")}
	}
	return new(big.Int).SetBytes(data[:WordSize]), nil
}

// WithSelector prefixes body with a hex-encoded 4-byte selector.
func WithSelector(selector string, body []byte) ([]byte, error) {
	id, err := hexutil.Decode("0x" + strings.TrimPrefix(selector, "0x"))
	if err != nil || len(id) != SelectorSize {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSelector, selector)
	}

	data := make([]byte, 0, SelectorSize+len(body))
	data = append(data, id...)
	return append(data, body...), nil
}

// SelectorOf derives the selector of a canonical function signature.
func SelectorOf(signature string) string {
	return hexutil.Encode(crypto.Keccak256([]byte(signature))[:SelectorSize])
}

// ParseAddress validates and converts a hex address string.
func ParseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return common.HexToAddress(s), nil
}

// ParseAddresses validates and converts a list of hex address strings.
func ParseAddresses(ss []string) ([]common.Address, error) {
	addrs := make([]common.Address, len(ss))
	for i, s := range ss {
		a, err := ParseAddress(s)
		if err != nil {
			return nil, err
		}
		addrs[i] = a
	}
	return addrs, nil
}
