// Package tvm holds the value types that generated structs refer to.
// Their binary encoding is owned by the cell encoder and is not handled
// here; these types only carry values and their text forms.
package tvm

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	errInvalidAddress = errors.New("invalid address")
	errInvalidCell    = errors.New("invalid cell")
)

// Address is an internal message address: a workchain and a 256-bit
// account id.
type Address struct {
	Workchain int8
	Account   [32]byte
}

// ParseAddress parses the raw "<workchain>:<64 hex digits>" form.
func ParseAddress(s string) (Address, error) {
	wc, account, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return Address{}, fmt.Errorf("%w: %q has no workchain", errInvalidAddress, s)
	}
	w, err := strconv.ParseInt(wc, 10, 8)
	if err != nil {
		return Address{}, fmt.Errorf("%w: workchain %q", errInvalidAddress, wc)
	}
	if len(account) != 64 {
		return Address{}, fmt.Errorf("%w: account id must be 64 hex digits, got %d", errInvalidAddress, len(account))
	}
	var out Address
	if _, err := hex.Decode(out.Account[:], []byte(account)); err != nil {
		return Address{}, fmt.Errorf("%w: %v", errInvalidAddress, err)
	}
	out.Workchain = int8(w)
	return out, nil
}

func (a Address) String() string {
	return fmt.Sprintf("%d:%s", a.Workchain, hex.EncodeToString(a.Account[:]))
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(b []byte) error {
	v, err := ParseAddress(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Cell is an opaque serialized cell tree. It is passed through unexamined.
type Cell struct {
	BOC []byte
}

func (c Cell) IsEmpty() bool { return len(c.BOC) == 0 }

func (c Cell) String() string {
	return base64.StdEncoding.EncodeToString(c.BOC)
}

func (c Cell) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Cell) UnmarshalText(b []byte) error {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(b)))
	if err != nil {
		return fmt.Errorf("%w: %v", errInvalidCell, err)
	}
	c.BOC = raw
	return nil
}
