package types

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// BigInt wraps big.Int so it round-trips through JSON and CBOR. JSON input
// accepts decimal and 0x-prefixed hexadecimal; output is always decimal.
// CBOR carries the decimal string, which keeps the sign intact.
type BigInt big.Int

// MathBigInt returns the underlying *big.Int.
func (i *BigInt) MathBigInt() *big.Int { return (*big.Int)(i) }

func (i *BigInt) String() string { return i.MathBigInt().String() }

// Equal reports whether both values are non-nil and numerically equal.
func (i *BigInt) Equal(j *BigInt) bool {
	if i == nil || j == nil {
		return false
	}
	return i.MathBigInt().Cmp(j.MathBigInt()) == 0
}

// SetString parses s as decimal, or as hexadecimal when 0x-prefixed.
func (i *BigInt) SetString(s string) (*BigInt, error) {
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	if _, ok := i.MathBigInt().SetString(s, base); !ok {
		return nil, fmt.Errorf("invalid number %q", s)
	}
	return i, nil
}

// MarshalText implements encoding.TextMarshaler. Together with
// UnmarshalText it covers JSON and any other text-based codec.
func (i *BigInt) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *BigInt) UnmarshalText(b []byte) error {
	_, err := i.SetString(string(b))
	return err
}

// MarshalCBOR implements cbor.Marshaler.
func (i *BigInt) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(i.String())
}

// UnmarshalCBOR implements cbor.Unmarshaler.
func (i *BigInt) UnmarshalCBOR(b []byte) error {
	var s string
	if err := cbor.Unmarshal(b, &s); err != nil {
		return err
	}
	_, err := i.SetString(s)
	return err
}