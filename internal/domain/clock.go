package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidClock is returned by the strict parsers for anything that is not a valid HH:MM.
var ErrInvalidClock = errors.New("invalid clock time")

const (
	MinutesPerDay = 24 * 60
	lastMinute    = MinutesPerDay - 1
)

// ParseClock converts "HH:MM" to minutes since midnight.
// It never fails: missing or non-numeric fields read as 0. User input must go
// through ParseClockStrict first.
func ParseClock(s string) int {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	h, _ := strconv.Atoi(strings.TrimSpace(parts[0]))
	m := 0
	if len(parts) == 2 {
		m, _ = strconv.Atoi(strings.TrimSpace(parts[1]))
	}
	return h*60 + m
}

// ParseClockStrict parses "HH:MM" (or "H:MM") and rejects out-of-range fields.
func ParseClockStrict(s string) (int, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: expected HH:MM, got %q", ErrInvalidClock, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: invalid hour in %q", ErrInvalidClock, s)
	}
	if len(parts[1]) != 2 {
		return 0, fmt.Errorf("%w: invalid minute in %q", ErrInvalidClock, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: invalid minute in %q", ErrInvalidClock, s)
	}
	return h*60 + m, nil
}

// NormalizeClock validates s and returns it in canonical zero-padded form.
func NormalizeClock(s string) (string, error) {
	mins, err := ParseClockStrict(s)
	if err != nil {
		return "", err
	}
	return FormatMinutes(mins), nil
}

// FormatMinutes returns HH:MM for minutes since midnight, clamped to 00:00..23:59.
func FormatMinutes(mins int) string {
	mins = clampMinute(mins)
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}

// AddMinutes adds delta to a wall-clock time. The result saturates at 00:00 and
// 23:59 instead of wrapping past midnight.
func AddMinutes(clock string, delta int) string {
	return FormatMinutes(ParseClock(clock) + delta)
}

// ParseWindow parses "HH:MM–HH:MM" or "HH:MM-HH:MM" into canonical bounds.
func ParseWindow(s string) (start, end string, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", "", errors.New("empty window")
	}
	sep := "–"
	if strings.Contains(s, "-") && !strings.Contains(s, "–") {
		sep = "-"
	}
	parts := strings.Split(s, sep)
	if len(parts) != 2 {
		return "", "", errors.New("expected format HH:MM–HH:MM")
	}
	if start, err = NormalizeClock(parts[0]); err != nil {
		return "", "", fmt.Errorf("from: %w", err)
	}
	if end, err = NormalizeClock(parts[1]); err != nil {
		return "", "", fmt.Errorf("to: %w", err)
	}
	return start, end, nil
}

func clampMinute(m int) int {
	if m < 0 {
		return 0
	}
	if m > lastMinute {
		return lastMinute
	}
	return m
}
