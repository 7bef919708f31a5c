package aggregate

import (
	"math"
	"time"

	"github.com/thedittmer/intel-hub/internal/models"
)

// Window is a recency window measured in whole days.
type Window struct {
	Days int
}

// Contains reports whether published falls inside the window as seen from
// now. Ages are counted in whole elapsed days, so with a 7 day window an
// item 7 days and 23 hours old still passes. A zero time always passes.
func (w Window) Contains(now, published time.Time) bool {
	if published.IsZero() {
		return true
	}
	age := math.Floor(now.Sub(published).Hours() / 24)
	return age <= float64(w.Days)
}

// Admits reports whether item passes the window.
func (w Window) Admits(now time.Time, item models.Item) bool {
	return w.Contains(now, item.Published)
}
