// Package mac validates and normalizes hardware addresses into the
// canonical form stored in the filter set: six colon-separated hex
// octets, lowercase.
package mac

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

// addrRegex matches exactly six colon-separated hexadecimal octet pairs.
// Dashed, dotted, and EUI-64 forms are deliberately rejected: the filter
// set stores colon-delimited strings and the configuration store is
// expected to hold the same shape.
var addrRegex = regexp.MustCompile(`^[0-9a-fA-F]{2}(:[0-9a-fA-F]{2}){5}$`)

// Addr is a validated, canonical hardware address. The zero value is not
// a valid address; construct via Normalize.
type Addr struct {
	s string // lowercase canonical form
}

// Normalize validates a raw address string and returns its canonical form.
// Input case is ignored; the canonical form is lowercase.
func Normalize(raw string) (Addr, error) {
	trimmed := strings.TrimSpace(raw)
	if !addrRegex.MatchString(trimmed) {
		return Addr{}, &MalformedAddressError{Raw: raw}
	}
	return Addr{s: strings.ToLower(trimmed)}, nil
}

// MustNormalize is Normalize for known-good literals; it panics on error.
// Intended for tests and constants.
func MustNormalize(raw string) Addr {
	a, err := Normalize(raw)
	if err != nil {
		panic(err)
	}
	return a
}

// String returns the canonical colon-delimited lowercase form.
func (a Addr) String() string {
	return a.s
}

// IsZero reports whether a is the zero Addr (not a validated address).
func (a Addr) IsZero() bool {
	return a.s == ""
}

// Bytes returns the six-byte binary form used as the nftables set key.
func (a Addr) Bytes() []byte {
	b, err := hex.DecodeString(strings.ReplaceAll(a.s, ":", ""))
	if err != nil || len(b) != 6 {
		// Unreachable for an Addr built via Normalize.
		panic(fmt.Sprintf("corrupt canonical address %q", a.s))
	}
	return b
}

// FromBytes converts a six-byte set key back into a canonical Addr.
func FromBytes(b []byte) (Addr, error) {
	if len(b) != 6 {
		return Addr{}, fmt.Errorf("hardware address key must be 6 bytes, got %d", len(b))
	}
	return Addr{s: fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", b[0], b[1], b[2], b[3], b[4], b[5])}, nil
}

// MalformedAddressError reports a raw entry that does not parse as a
// six-octet colon-delimited hardware address. Index is the ordinal of
// the entry in the configuration store, when known.
type MalformedAddressError struct {
	Raw   string
	Index int
}

func (e *MalformedAddressError) Error() string {
	return fmt.Sprintf("malformed hardware address %q at index %d", e.Raw, e.Index)
}
