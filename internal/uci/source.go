// Package uci reads candidate hardware addresses from an OpenWrt-style
// UCI configuration store. Entries are addressed ordinally
// (dhcp.@host[0].mac, dhcp.@host[1].mac, ...); the first absent index
// ends enumeration for a pass.
package uci

import (
	"context"
	"fmt"
)

// Selector names the UCI location enumerated by a source.
type Selector struct {
	Package string // UCI package, e.g. "dhcp"
	Section string // section type, e.g. "host"
	Option  string // option name, e.g. "mac"
}

// DefaultSelector matches the static lease sections consulted by the
// packet filter's allow-list.
func DefaultSelector() Selector {
	return Selector{Package: "dhcp", Section: "host", Option: "mac"}
}

func (s Selector) key(index int) string {
	return fmt.Sprintf("%s.@%s[%d].%s", s.Package, s.Section, index, s.Option)
}

func (s Selector) String() string {
	return fmt.Sprintf("%s.@%s[].%s", s.Package, s.Section, s.Option)
}

// Source is ordinal read access to the configuration store. Lookup
// reports the raw value at index, or ok=false when the store has no
// value there. A non-nil error means the store itself could not be
// read; absence is not an error.
type Source interface {
	Lookup(ctx context.Context, index int) (value string, ok bool, err error)
}

// SourceError wraps a failure to read the configuration store.
type SourceError struct {
	Op  string
	Err error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("config store read failed (%s): %v", e.Op, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Entry is one raw value read from the store during a pass.
type Entry struct {
	Index int
	Raw   string
}

// Iterator enumerates a Source from index 0 upward, stopping permanently
// at the first absent index. It is a two-state machine: enumerating
// until the store reports absence, then done. A fresh Iterator must be
// created for each reconciliation pass.
type Iterator struct {
	src   Source
	index int
	done  bool
}

// NewIterator creates an iterator positioned at index 0.
func NewIterator(src Source) *Iterator {
	return &Iterator{src: src}
}

// Next returns the next entry. ok=false means enumeration is complete;
// once complete, no further store lookups occur. Note that a gap in the
// index space ends enumeration: entries beyond the first absent index
// are never read (see ProbeGap).
func (it *Iterator) Next(ctx context.Context) (Entry, bool, error) {
	if it.done {
		return Entry{}, false, nil
	}

	value, ok, err := it.src.Lookup(ctx, it.index)
	if err != nil {
		it.done = true
		return Entry{}, false, err
	}
	if !ok {
		it.done = true
		return Entry{}, false, nil
	}

	e := Entry{Index: it.index, Raw: value}
	it.index++
	return e, true, nil
}

// Stopped returns the index at which enumeration stopped (the first
// absent index), valid once Next has returned ok=false.
func (it *Iterator) Stopped() int {
	return it.index
}

// gapProbeWindow is how many indices past the stop point ProbeGap
// inspects. A heuristic: gaps wider than the window go undetected.
const gapProbeWindow = 4

// ProbeGap checks whether the store still holds an entry within a short
// window past the index where enumeration stopped. A positive result
// means the index space is sparse and entries are being silently
// skipped; callers should surface this to operators. Probe failures are
// reported as "no gap" since the pass itself already succeeded against
// the store.
func ProbeGap(ctx context.Context, src Source, stopped int) bool {
	for i := 1; i <= gapProbeWindow; i++ {
		_, ok, err := src.Lookup(ctx, stopped+i)
		if err != nil {
			return false
		}
		if ok {
			return true
		}
	}
	return false
}
