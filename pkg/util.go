package pkg

import (
	"math"
	"time"
	"unsafe"
)

// BytesToString converts bytes slice to a string without extra allocation
func BytesToString(buf []byte) string {
	return *(*string)(unsafe.Pointer(&buf))
}

// CalendarDate returns the calendar day of t, as seen in t's location,
// at midnight UTC. Two instants on the same local day map to the same value.
func CalendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole number of calendar days from a to b,
// negative when b comes first.
func DaysBetween(a, b time.Time) int {
	diff := CalendarDate(b).Sub(CalendarDate(a))
	return int(math.Round(diff.Hours() / 24))
}
