package checkout

import "time"

// SetClock replaces the flow's clock in tests.
func (f *Flow) SetClock(now func() time.Time) {
	f.now = now
}
