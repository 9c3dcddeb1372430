package utils

import "time"

// NowUTC is the clock for every persisted timestamp. sqlite compares
// timestamps as text, so stored values and query bounds share one zone.
func NowUTC() time.Time {
	return time.Now().UTC()
}
