package reconcile

import (
	"fmt"

	"grimm.is/macsync/internal/mac"
)

// ValidationAbortError aborts a pass before any mutation: one or more
// store entries failed validation.
type ValidationAbortError struct {
	Scanned int
	Invalid []*mac.MalformedAddressError
}

func (e *ValidationAbortError) Error() string {
	if len(e.Invalid) == 1 {
		return fmt.Sprintf("validation aborted: %v (scanned %d entries, filter set untouched)",
			e.Invalid[0], e.Scanned)
	}
	return fmt.Sprintf("validation aborted: %d of %d entries malformed (first: %v; filter set untouched)",
		len(e.Invalid), e.Scanned, e.Invalid[0])
}

// ApplyError reports that the filter subsystem rejected the atomic
// replacement. The prior membership is still in place.
type ApplyError struct {
	Set string
	Err error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("failed to apply filter set %s (prior membership preserved): %v", e.Set, e.Err)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}
