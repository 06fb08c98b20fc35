package abi

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

var (
	addrA = common.HexToAddress("0x1111111111111111111111111111111111111111")
	addrB = common.HexToAddress("0x2222222222222222222222222222222222222222")
	addrC = common.HexToAddress("0x3333333333333333333333333333333333333333")
)

func TestSelectorConstants(t *testing.T) {
	tests := []struct {
		signature string
		want      string
	}{
		{"balanceOf(address)", "0x70a08231"},
		{"etherBalances(address[])", "0xdbdbb51b"},
		{"tokenBalances(address[],address)", "0xaad33091"},
		{"tokensBalance(address,address[])", "0xe5da1b68"},
	}

	for _, tt := range tests {
		if got := SelectorOf(tt.signature); got != tt.want {
			t.Errorf("SelectorOf(%q) = %s, want %s", tt.signature, got, tt.want)
		}
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		types  []string
		values []any
	}{
		{"single address", []string{"address"}, []any{addrA}},
		{"address array", []string{"address[]"}, []any{[]common.Address{addrA, addrB, addrC}}},
		{"empty address array", []string{"address[]"}, []any{[]common.Address{}}},
		{"array then address", []string{"address[]", "address"}, []any{[]common.Address{addrA, addrB}, addrC}},
		{"address then array", []string{"address", "address[]"}, []any{addrC, []common.Address{addrA}}},
		{"address then empty array", []string{"address", "address[]"}, []any{addrC, []common.Address{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Encode(tt.types, tt.values...)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if len(data)%WordSize != 0 {
				t.Fatalf("encoded length %d is not word aligned", len(data))
			}

			out, err := Decode(tt.types, data)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if len(out) != len(tt.values) {
				t.Fatalf("expected %d values, got %d", len(tt.values), len(out))
			}

			for i, want := range tt.values {
				switch w := want.(type) {
				case common.Address:
					if got := out[i].(common.Address); got != w {
						t.Errorf("value %d: expected %s, got %s", i, w.Hex(), got.Hex())
					}
				case []common.Address:
					got := out[i].([]common.Address)
					if len(got) != len(w) {
						t.Fatalf("value %d: expected %d addresses, got %d", i, len(w), len(got))
					}
					for j := range w {
						if got[j] != w[j] {
							t.Errorf("value %d[%d]: expected %s, got %s", i, j, w[j].Hex(), got[j].Hex())
						}
					}
				}
			}
		})
	}
}

func TestEncode_EmptyArrayLayout(t *testing.T) {
	data, err := Encode([]string{"address[]"}, []common.Address{})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	// offset word followed by a zero length word
	if len(data) != 2*WordSize {
		t.Fatalf("expected %d bytes, got %d", 2*WordSize, len(data))
	}
	if new(big.Int).SetBytes(data[:WordSize]).Int64() != WordSize {
		t.Errorf("expected offset %d, got %x", WordSize, data[:WordSize])
	}
	if new(big.Int).SetBytes(data[WordSize:]).Sign() != 0 {
		t.Errorf("expected zero length word, got %x", data[WordSize:])
	}
}

func TestEncode_StringAddresses(t *testing.T) {
	fromStrings, err := Encode([]string{"address[]", "address"},
		[]string{addrA.Hex(), addrB.Hex()}, addrC.Hex())
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	fromTyped, err := Encode([]string{"address[]", "address"},
		[]common.Address{addrA, addrB}, addrC)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if !bytes.Equal(fromStrings, fromTyped) {
		t.Errorf("string and typed encodings differ")
	}
}

func TestEncode_InvalidAddress(t *testing.T) {
	_, err := Encode([]string{"address[]"}, []string{addrA.Hex(), "0x1234"})
	if !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("expected ErrInvalidAddress, got %v", err)
	}
}

func TestEncode_UnsupportedType(t *testing.T) {
	_, err := Encode([]string{"int8"}, int8(1))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestResults_RoundTrip(t *testing.T) {
	word := make([]byte, WordSize)
	word[WordSize-1] = 0x2a

	results := []Result{
		{Success: true, Data: word},
		{Success: false, Data: []byte{}},
		{Success: true, Data: []byte{0x01, 0x02, 0x03}},
	}

	data, err := Encode([]string{ResultArray}, results)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	got, err := DecodeResults(data)
	if err != nil {
		t.Fatalf("DecodeResults failed: %v", err)
	}
	if len(got) != len(results) {
		t.Fatalf("expected %d results, got %d", len(results), len(got))
	}
	for i := range results {
		if got[i].Success != results[i].Success || !bytes.Equal(got[i].Data, results[i].Data) {
			t.Errorf("result %d: expected %+v, got %+v", i, results[i], got[i])
		}
	}
}

func TestResults_Empty(t *testing.T) {
	data, err := Encode([]string{ResultArray}, []Result{})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	got, err := DecodeResults(data)
	if err != nil {
		t.Fatalf("DecodeResults failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty results, got %d", len(got))
	}
}

func TestDecode_SkipsSelector(t *testing.T) {
	body, err := Encode([]string{"address", "address[]"}, addrA, []common.Address{addrB})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	data, err := WithSelector("0xe5da1b68", body)
	if err != nil {
		t.Fatalf("WithSelector failed: %v", err)
	}

	out, err := Decode([]string{"address", "address[]"}, data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if out[0].(common.Address) != addrA {
		t.Errorf("expected %s, got %s", addrA.Hex(), out[0].(common.Address).Hex())
	}
	if arr := out[1].([]common.Address); len(arr) != 1 || arr[0] != addrB {
		t.Errorf("unexpected array %v", arr)
	}
}

func TestDecode_Malformed(t *testing.T) {
	valid, err := Encode([]string{ResultArray}, []Result{{Success: true, Data: make([]byte, WordSize)}})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	// offset word pointing at a length word that promises 5 elements with none present
	truncated := make([]byte, 2*WordSize)
	truncated[WordSize-1] = 0x20
	truncated[2*WordSize-1] = 0x05

	// well-formed empty array with 4 stray leading bytes
	empty := make([]byte, 2*WordSize)
	empty[WordSize-1] = 0x20
	padded := append([]byte{0x12, 0x34, 0x56, 0x78}, empty...)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"unaligned", valid[:len(valid)-7]},
		{"short offset target", truncated},
		{"cut tail", valid[:len(valid)-WordSize]},
		{"selector sized remainder", append(append([]byte{}, valid...), 0xde, 0xad, 0xbe, 0xef)},
		{"36 bytes", append([]byte{0x12, 0x34, 0x56, 0x78}, truncated[:WordSize]...)},
		{"68 bytes", padded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeResults(tt.data)
			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Errorf("expected DecodeError, got %v", err)
			}
		})
	}
}

func TestWithSelector(t *testing.T) {
	data, err := WithSelector("70a08231", []byte{0xff})
	if err != nil {
		t.Fatalf("WithSelector failed: %v", err)
	}
	if !bytes.Equal(data, []byte{0x70, 0xa0, 0x82, 0x31, 0xff}) {
		t.Errorf("unexpected data %x", data)
	}

	for _, bad := range []string{"", "0x70a082", "0x70a0823100", "zzzzzzzz"} {
		if _, err := WithSelector(bad, nil); !errors.Is(err, ErrInvalidSelector) {
			t.Errorf("WithSelector(%q): expected ErrInvalidSelector, got %v", bad, err)
		}
	}
}

func TestUint256(t *testing.T) {
	word := make([]byte, WordSize)
	word[WordSize-2] = 0x03
	word[WordSize-1] = 0xe8

	n, err := Uint256(word)
	if err != nil {
		t.Fatalf("Uint256 failed: %v", err)
	}
	if n.Int64() != 1000 {
		t.Errorf("expected 1000, got %s", n)
	}

	full := bytes.Repeat([]byte{0xff}, WordSize)
	n, err = Uint256(full)
	if err != nil {
		t.Fatalf("Uint256 failed: %v", err)
	}
	if n.BitLen() != 256 {
		t.Errorf("expected 256-bit value, got %d bits", n.BitLen())
	}

	if _, err := Uint256(word[:31]); err == nil {
		t.Error("expected error for short word")
	}
}
