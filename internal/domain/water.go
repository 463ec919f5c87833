package domain

import "math"

const (
	MaxWaterSlots      = 8
	DefaultWaterCount  = 4
	DefaultWaterStart  = "07:00"
	DefaultWaterEnd    = "21:00"
	WaterDisplayID     = "hydration"
	waterFirstNotifyID = 120
)

// WaterNotificationID maps a slot index (0..7) to its gateway id (120..127).
func WaterNotificationID(slot int) int {
	return waterFirstNotifyID + slot
}

// ClampWaterCount forces n into [1, MaxWaterSlots].
func ClampWaterCount(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxWaterSlots {
		return MaxWaterSlots
	}
	return n
}

// Distribute returns count evenly spaced clock times across [start, end].
// A single slot lands on the midpoint; otherwise the first slot is start and the
// last is end. An end before start is clamped to start.
func Distribute(count int, start, end string) []string {
	if count < 1 {
		return nil
	}
	s := ParseClock(start)
	e := ParseClock(end)
	if e < s {
		e = s
	}

	out := make([]string, count)
	if count == 1 {
		out[0] = FormatMinutes(int(math.Round(float64(s+e) / 2)))
		return out
	}
	step := float64(e-s) / float64(count-1)
	for i := range out {
		out[i] = FormatMinutes(int(math.Round(float64(s) + float64(i)*step)))
	}
	return out
}
