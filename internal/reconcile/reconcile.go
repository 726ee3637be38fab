// Package reconcile implements the reconciliation pass: read the
// allow-list from the configuration store, validate and deduplicate it,
// and replace the kernel filter set's membership in one atomic step.
//
// The pass is all-or-nothing. Any malformed entry aborts before the
// filter set is touched: a partially-applied allow-list is a silent
// enforcement regression, so failing loud wins over drifting. This is a
// deliberate departure from the flush-then-add loop this tool replaces,
// which could leave the set empty or half-filled under a mid-loop
// failure while live traffic kept consulting it.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"grimm.is/macsync/internal/clock"
	"grimm.is/macsync/internal/logging"
	"grimm.is/macsync/internal/mac"
	"grimm.is/macsync/internal/uci"
)

// SetApplier is the handle on the kernel filter set. Replace must be
// atomic with respect to concurrent readers: they observe the full old
// membership or the full new membership, never an intermediate state,
// and a failed Replace must leave the old membership in place.
type SetApplier interface {
	Replace(addrs []mac.Addr) error
	Current() ([]mac.Addr, error)
	Name() string
}

// Reconciler runs reconciliation passes against one source and one set.
type Reconciler struct {
	source uci.Source
	set    SetApplier
	clk    clock.Clock
	logger *logging.Logger
	dryRun bool
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithClock injects a clock (for tests).
func WithClock(c clock.Clock) Option {
	return func(r *Reconciler) { r.clk = c }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(r *Reconciler) { r.logger = l.WithComponent("reconcile") }
}

// WithDryRun makes Run stop short of the apply step.
func WithDryRun(dry bool) Option {
	return func(r *Reconciler) { r.dryRun = dry }
}

// New creates a Reconciler.
func New(source uci.Source, set SetApplier, opts ...Option) *Reconciler {
	r := &Reconciler{
		source: source,
		set:    set,
		clk:    &clock.RealClock{},
		logger: logging.WithComponent("reconcile"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result summarizes one reconciliation pass.
type Result struct {
	Scanned     int  // raw entries read from the store
	Applied     int  // unique valid addresses in the target set
	Rejected    int  // malformed entries
	Duplicates  int  // valid entries collapsed by deduplication
	GapDetected bool // store has entries past the enumeration stop point
	Unchanged   bool // target equaled current membership; no write issued
	DryRun      bool // apply step skipped
	Elapsed     time.Duration
}

// Summary renders the one-line success summary.
func (r Result) Summary() string {
	if r.DryRun {
		return fmt.Sprintf("Dry run: would synchronize %d static MAC addresses.", r.Applied)
	}
	return fmt.Sprintf("Successfully synchronized %d static MAC addresses.", r.Applied)
}

// Plan executes the read-and-validate phase of a pass without touching
// the filter set: enumerate, validate every entry, deduplicate. Returns
// the target membership in first-seen order.
func (r *Reconciler) Plan(ctx context.Context) ([]mac.Addr, Result, error) {
	res := Result{DryRun: r.dryRun}

	target, invalid, err := r.scan(ctx, &res)
	if err != nil {
		return nil, res, err
	}

	if len(invalid) > 0 {
		for _, m := range invalid {
			r.logger.Warn("rejected entry", "index", m.Index, "raw", m.Raw)
		}
		return nil, res, &ValidationAbortError{Scanned: res.Scanned, Invalid: invalid}
	}

	res.Applied = len(target)
	return target, res, nil
}

// Run executes one reconciliation pass. On any error the filter set is
// exactly as it was before the call.
func (r *Reconciler) Run(ctx context.Context) (Result, error) {
	start := r.clk.Now()

	target, res, err := r.Plan(ctx)
	if err != nil {
		return res, err
	}

	if r.dryRun {
		res.Elapsed = r.clk.Since(start)
		r.logger.Info("dry run complete", "scanned", res.Scanned, "target", res.Applied)
		return res, nil
	}

	// Skip the write when membership already matches. Best effort: if
	// the current membership cannot be read, apply anyway.
	if current, err := r.set.Current(); err == nil && sameMembership(current, target) {
		res.Unchanged = true
		res.Elapsed = r.clk.Since(start)
		r.logger.Debug("filter set already in sync", "set", r.set.Name(), "elements", res.Applied)
		return res, nil
	}

	if err := r.set.Replace(target); err != nil {
		return res, &ApplyError{Set: r.set.Name(), Err: err}
	}

	res.Elapsed = r.clk.Since(start)
	r.logger.Audit("replace", r.set.Name(), map[string]any{
		"scanned":    res.Scanned,
		"applied":    res.Applied,
		"duplicates": res.Duplicates,
	})
	return res, nil
}

// scan enumerates the store and validates every entry without
// short-circuiting, so totals and all malformed entries are reported.
// Returns the deduplicated target membership in first-seen order.
func (r *Reconciler) scan(ctx context.Context, res *Result) ([]mac.Addr, []*mac.MalformedAddressError, error) {
	var (
		target  []mac.Addr
		invalid []*mac.MalformedAddressError
		seen    = make(map[mac.Addr]int)
	)

	it := uci.NewIterator(r.source)
	for {
		entry, ok, err := it.Next(ctx)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			break
		}
		res.Scanned++

		addr, err := mac.Normalize(entry.Raw)
		if err != nil {
			var malformed *mac.MalformedAddressError
			if errors.As(err, &malformed) {
				malformed.Index = entry.Index
				invalid = append(invalid, malformed)
			} else {
				invalid = append(invalid, &mac.MalformedAddressError{Raw: entry.Raw, Index: entry.Index})
			}
			res.Rejected++
			continue
		}

		if firstIndex, dup := seen[addr]; dup {
			res.Duplicates++
			r.logger.Debug("duplicate entry", "index", entry.Index, "first_index", firstIndex, "addr", addr.String())
			continue
		}
		seen[addr] = entry.Index
		target = append(target, addr)
	}

	// Enumeration stops at the first absent index; anything stored past
	// a gap is silently skipped. Probe a short window further and warn,
	// so sparse stores do not rot unnoticed.
	if uci.ProbeGap(ctx, r.source, it.Stopped()) {
		res.GapDetected = true
		r.logger.Warn("configuration has entries past a gap; they were not synchronized",
			"stopped_at", it.Stopped())
	}

	return target, invalid, nil
}

// sameMembership compares two membership lists as sets.
func sameMembership(a, b []mac.Addr) bool {
	if len(a) != len(b) {
		return false
	}
	as := make([]string, len(a))
	bs := make([]string, len(b))
	for i := range a {
		as[i] = a[i].String()
	}
	for i := range b {
		bs[i] = b[i].String()
	}
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
