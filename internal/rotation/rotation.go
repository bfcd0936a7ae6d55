// Package rotation computes the daily shop rotation boundary.
//
// The item shop rotates at 20:00 America/Toronto. Everything downstream — the
// cache freshness check and the shop_date grouping label — is derived from the
// most recent boundary instant at or before "now". All comparisons happen on
// time.Time instants, so callers never mix wall-clock representations.
package rotation

import (
	"time"
	_ "time/tzdata" // embed the zone database so the binary works without a system tzdata
)

// BoundaryHour is the local hour at which the shop rotates.
const BoundaryHour = 20

var toronto *time.Location

func init() {
	loc, err := time.LoadLocation("America/Toronto")
	if err != nil {
		// Cannot happen with time/tzdata embedded.
		panic("rotation: loading America/Toronto: " + err.Error())
	}
	toronto = loc
}

// Boundary returns the most recent 20:00 America/Toronto instant at or before
// now. When now is earlier than today's 20:00 local time, the boundary rolls
// back one calendar day.
func Boundary(now time.Time) time.Time {
	local := now.In(toronto)
	b := time.Date(local.Year(), local.Month(), local.Day(), BoundaryHour, 0, 0, 0, toronto)
	if local.Before(b) {
		b = b.AddDate(0, 0, -1)
	}
	return b
}

// NextBoundary returns the boundary that follows the current one. AddDate
// keeps the 20:00 wall clock across DST transitions.
func NextBoundary(now time.Time) time.Time {
	return Boundary(now).AddDate(0, 0, 1)
}

// ShopDate returns the civil date of the current boundary, formatted
// YYYY-MM-DD. Items fetched any time between two boundaries share one label.
func ShopDate(now time.Time) string {
	return Boundary(now).Format("2006-01-02")
}

// Fresh reports whether a payload fetched at fetchedAt is still valid at now:
// it must have been fetched at or after the current boundary.
func Fresh(fetchedAt, now time.Time) bool {
	return !fetchedAt.Before(Boundary(now))
}
