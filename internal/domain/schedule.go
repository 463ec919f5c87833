package domain

import "time"

// Matches reports whether the local time t falls on the minute described by spec.
func (s TimeSpec) Matches(t time.Time) bool {
	if t.Hour() != s.Hour || t.Minute() != s.Minute {
		return false
	}
	return s.Weekday == 0 || int(t.Weekday())+1 == s.Weekday
}

// NextOccurrence returns the first instant strictly after now (in loc) at which spec fires.
// Weekly specs jump to the next matching weekday; daily specs roll to tomorrow once
// today's minute has passed.
func NextOccurrence(now time.Time, spec TimeSpec, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	localNow := now.In(loc)

	makeLocalAt := func(base time.Time) time.Time {
		return time.Date(base.Year(), base.Month(), base.Day(), spec.Hour, spec.Minute, 0, 0, loc)
	}

	// Walk at most a week forward; AddDate keeps the wall clock stable across DST shifts.
	for days := 0; days <= 7; days++ {
		day := localNow.AddDate(0, 0, days)
		candidate := makeLocalAt(day)
		if !candidate.After(localNow) {
			continue
		}
		if spec.Weekday != 0 && int(candidate.Weekday())+1 != spec.Weekday {
			continue
		}
		return candidate
	}
	// Unreachable for valid specs.
	return makeLocalAt(localNow.AddDate(0, 0, 1))
}
