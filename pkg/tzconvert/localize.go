package tzconvert

import "time"

// Localize interprets the wall-clock fields of naive as local time in loc.
//
// Wall times that occur twice (when clocks fall back) resolve to the
// standard-time instant. Wall times that never occur (when clocks spring
// forward) are read with the offset in effect before the jump, so 02:30 on
// the New York spring-forward date becomes 07:30 UTC.
func Localize(naive time.Time, loc *time.Location) time.Time {
	wall := time.Date(naive.Year(), naive.Month(), naive.Day(),
		naive.Hour(), naive.Minute(), naive.Second(), naive.Nanosecond(), time.UTC)

	// Offsets on either side of any transition near wall. Zone offsets stay
	// within a day, so a day's distance lands outside the transition.
	before := wall.Add(-24 * time.Hour).In(loc)
	after := wall.Add(24 * time.Hour).In(loc)
	_, beforeOff := before.Zone()
	_, afterOff := after.Zone()

	var matches []time.Time
	for _, off := range []int{beforeOff, afterOff} {
		t := wall.Add(-time.Duration(off) * time.Second).In(loc)
		if sameWall(t, wall) && !containsInstant(matches, t) {
			matches = append(matches, t)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0]
	case 2:
		first, second := matches[0], matches[1]
		if second.Before(first) {
			first, second = second, first
		}
		if first.IsDST() && !second.IsDST() {
			return second
		}
		if !first.IsDST() && second.IsDST() {
			return first
		}
		return second
	}

	if beforeOff == afterOff {
		// No transition nearby; defer to the runtime.
		return time.Date(wall.Year(), wall.Month(), wall.Day(),
			wall.Hour(), wall.Minute(), wall.Second(), wall.Nanosecond(), loc)
	}

	// Gap.
	return wall.Add(-time.Duration(beforeOff) * time.Second).In(loc)
}

func sameWall(t, wall time.Time) bool {
	y, m, d := t.Date()
	wy, wm, wd := wall.Date()
	return y == wy && m == wm && d == wd &&
		t.Hour() == wall.Hour() && t.Minute() == wall.Minute() &&
		t.Second() == wall.Second() && t.Nanosecond() == wall.Nanosecond()
}

func containsInstant(ts []time.Time, t time.Time) bool {
	for _, x := range ts {
		if x.Equal(t) {
			return true
		}
	}
	return false
}
