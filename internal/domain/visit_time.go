package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay is the length of the wall clock used for visit times.
const MinutesPerDay = 24 * 60

type visitKind uint8

const (
	visitUnset visitKind = iota
	visitDerived
	visitPinned
)

// VisitTime is the estimated or user-fixed arrival at a stop, in minutes since
// midnight. It is one of Unset, Derived(min) or Pinned(min); the zero value is Unset.
type VisitTime struct {
	kind    visitKind
	minutes int
}

func UnsetTime() VisitTime { return VisitTime{} }

// DerivedTime is a time computed by propagation. It may be overwritten by the next run.
func DerivedTime(min int) VisitTime { return VisitTime{kind: visitDerived, minutes: normalizeClock(min)} }

// PinnedTime is a time set explicitly by the user. Propagation never overwrites it.
func PinnedTime(min int) VisitTime { return VisitTime{kind: visitPinned, minutes: normalizeClock(min)} }

func (v VisitTime) Minutes() (int, bool) { return v.minutes, v.kind != visitUnset }

func (v VisitTime) IsSet() bool    { return v.kind != visitUnset }
func (v VisitTime) IsPinned() bool { return v.kind == visitPinned }

func (v VisitTime) String() string {
	switch v.kind {
	case visitDerived:
		return FormatClock(v.minutes)
	case visitPinned:
		return FormatClock(v.minutes) + " (pinned)"
	}
	return "unset"
}

// FormatClock renders minutes since midnight as HH:MM, wrapping past midnight.
func FormatClock(min int) string {
	min = normalizeClock(min)
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}

// ParseClock parses an HH:MM wall-clock time into minutes since midnight.
func ParseClock(s string) (int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("parse clock %q: expected HH:MM", s)
	}
	hours, err := strconv.Atoi(h)
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("parse clock %q: invalid hour", s)
	}
	mins, err := strconv.Atoi(m)
	if err != nil || len(m) != 2 || mins < 0 || mins > 59 {
		return 0, fmt.Errorf("parse clock %q: invalid minute", s)
	}
	return hours*60 + mins, nil
}

func normalizeClock(min int) int {
	min %= MinutesPerDay
	if min < 0 {
		min += MinutesPerDay
	}
	return min
}
