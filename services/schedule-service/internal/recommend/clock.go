// Package recommend ranks free calendar slots for a new tutoring session.
// It is a pure computation: callers supply a pre-fetched day snapshot and
// get back scored candidate slots plus day-level tips. No I/O happens here.
package recommend

import (
	"fmt"
	"strconv"
	"strings"
)

// Day periods used for workload balancing.
const (
	PeriodMorning   = "morning"
	PeriodAfternoon = "afternoon"
	PeriodEvening   = "evening"
)

const (
	afternoonStartMins = 12 * 60
	eveningStartMins   = 17 * 60
	minutesPerDay      = 24 * 60
)

// ParseClock converts a 24-hour "HH:MM" string to minutes since midnight.
func ParseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	h, m, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	min, err := strconv.Atoi(m)
	if err != nil || min < 0 || min > 59 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	return hour*60 + min, nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(mins int) string {
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}

// PeriodOf classifies a minutes-since-midnight value into a day period.
func PeriodOf(mins int) string {
	switch {
	case mins < afternoonStartMins:
		return PeriodMorning
	case mins < eveningStartMins:
		return PeriodAfternoon
	default:
		return PeriodEvening
	}
}
