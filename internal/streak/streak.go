// Package streak computes day streaks from a set of activity instants.
//
// Instants are reduced to calendar dates in a given location, so several sessions on
// one day count once. The current streak ends today; if today has no activity it is 0
// even when older runs exist.
package streak

import (
	"sort"
	"time"
)

// Result holds the current and longest runs of consecutive days.
type Result struct {
	Current int
	Longest int
}

// date is a calendar day independent of time zone and DST.
type date struct {
	y int
	m time.Month
	d int
}

func dateOf(t time.Time, loc *time.Location) date {
	y, m, d := t.In(loc).Date()
	return date{y, m, d}
}

// days counts calendar days since the epoch; noon UTC avoids DST edges.
func (d date) days() int64 {
	return time.Date(d.y, d.m, d.d, 12, 0, 0, 0, time.UTC).Unix() / 86400
}

// Compute returns the streaks for activity instants relative to now. Dates are taken in
// loc; a nil loc means now.Location().
func Compute(instants []time.Time, now time.Time, loc *time.Location) Result {
	if loc == nil {
		loc = now.Location()
	}
	seen := make(map[int64]struct{}, len(instants))
	for _, t := range instants {
		seen[dateOf(t, loc).days()] = struct{}{}
	}
	if len(seen) == 0 {
		return Result{}
	}

	today := dateOf(now, loc).days()
	current := 0
	if _, ok := seen[today]; ok {
		for d := today; ; d-- {
			if _, ok := seen[d]; !ok {
				break
			}
			current++
		}
	}

	longest := longestRun(seen)
	if current > longest {
		longest = current
	}
	return Result{Current: current, Longest: longest}
}

func longestRun(seen map[int64]struct{}) int {
	days := make([]int64, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i]-days[i-1] == 1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}
