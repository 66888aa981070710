package tvm

import (
	"errors"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
)

var (
	errInvalidNumber  = errors.New("invalid number")
	errNegativeNumber = errors.New("negative numbers are not supported")
	errNumberOverflow = errors.New("number out of range")

	int128Min = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	int128Max = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	two64     = new(big.Int).Lsh(big.NewInt(1), 64)
)

// MaxTokensBits is the width of a currency amount.
const MaxTokensBits = 120

// Tokens is a currency amount in the smallest unit.
type Tokens struct {
	v uint256.Int
}

func NewTokens(n uint64) Tokens {
	var t Tokens
	t.v.SetUint64(n)
	return t
}

// ParseTokens parses a decimal amount.
func ParseTokens(s string) (Tokens, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Tokens{}, errInvalidNumber
	}
	if strings.HasPrefix(s, "-") {
		return Tokens{}, errNegativeNumber
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		if errors.Is(err, uint256.ErrBig256Range) {
			return Tokens{}, errNumberOverflow
		}
		return Tokens{}, errInvalidNumber
	}
	if v.BitLen() > MaxTokensBits {
		return Tokens{}, errNumberOverflow
	}
	return Tokens{v: *v}, nil
}

func (t Tokens) Uint256() *uint256.Int { return t.v.Clone() }
func (t Tokens) String() string        { return t.v.Dec() }
func (t Tokens) IsZero() bool          { return t.v.IsZero() }

func (t Tokens) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Tokens) UnmarshalText(b []byte) error {
	v, err := ParseTokens(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Uint128 is an unsigned 128-bit integer.
type Uint128 struct {
	Hi, Lo uint64
}

func (u Uint128) Big() *big.Int {
	v := new(big.Int).SetUint64(u.Hi)
	v.Lsh(v, 64)
	return v.Or(v, new(big.Int).SetUint64(u.Lo))
}

func Uint128FromBig(v *big.Int) (Uint128, error) {
	if v.Sign() < 0 {
		return Uint128{}, errNegativeNumber
	}
	if v.BitLen() > 128 {
		return Uint128{}, errNumberOverflow
	}
	lo := new(big.Int).And(v, new(big.Int).Sub(two64, big.NewInt(1)))
	hi := new(big.Int).Rsh(v, 64)
	return Uint128{Hi: hi.Uint64(), Lo: lo.Uint64()}, nil
}

func (u Uint128) String() string { return u.Big().String() }

func (u Uint128) MarshalText() ([]byte, error) { return []byte(u.String()), nil }

func (u *Uint128) UnmarshalText(b []byte) error {
	v, ok := new(big.Int).SetString(strings.TrimSpace(string(b)), 0)
	if !ok {
		return errInvalidNumber
	}
	out, err := Uint128FromBig(v)
	if err != nil {
		return err
	}
	*u = out
	return nil
}

// Int128 is a two's complement signed 128-bit integer.
type Int128 struct {
	Hi int64
	Lo uint64
}

func (i Int128) Big() *big.Int {
	v := big.NewInt(i.Hi)
	v.Lsh(v, 64)
	return v.Add(v, new(big.Int).SetUint64(i.Lo))
}

func Int128FromBig(v *big.Int) (Int128, error) {
	if v.Cmp(int128Min) < 0 || v.Cmp(int128Max) > 0 {
		return Int128{}, errNumberOverflow
	}
	hi := new(big.Int).Rsh(v, 64) // arithmetic shift, floors negatives
	lo := new(big.Int).Sub(v, new(big.Int).Lsh(hi, 64))
	return Int128{Hi: hi.Int64(), Lo: lo.Uint64()}, nil
}

func (i Int128) String() string { return i.Big().String() }

func (i Int128) MarshalText() ([]byte, error) { return []byte(i.String()), nil }

func (i *Int128) UnmarshalText(b []byte) error {
	v, ok := new(big.Int).SetString(strings.TrimSpace(string(b)), 0)
	if !ok {
		return errInvalidNumber
	}
	out, err := Int128FromBig(v)
	if err != nil {
		return err
	}
	*i = out
	return nil
}
