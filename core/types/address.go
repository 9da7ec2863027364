package types

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Address identifies an account on the simulated ledger. It mirrors the
// 20-byte layout used by EVM-style chains so identifiers coming from wallet
// tooling round-trip unchanged.
type Address [20]byte

// ParseAddress decodes a 0x-prefixed or bare hex string into an Address.
func ParseAddress(s string) (Address, error) {
	var addr Address
	trimmed := strings.TrimSpace(s)
	trimmed = strings.TrimPrefix(trimmed, "0x")
	trimmed = strings.TrimPrefix(trimmed, "0X")
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return addr, fmt.Errorf("invalid address %q: %w", s, err)
	}
	if len(raw) != len(addr) {
		return addr, fmt.Errorf("invalid address length: %d", len(raw))
	}
	copy(addr[:], raw)
	return addr, nil
}

// Hex returns the canonical 0x-prefixed lowercase encoding of the address.
func (a Address) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

// IsZero reports whether the address is the all-zero value.
func (a Address) IsZero() bool {
	return a == (Address{})
}

func (a Address) String() string { return a.Hex() }
