package week

import (
	"time"

	"github.com/homesync/homesync-backend/internal/apierr"
	"github.com/homesync/homesync-backend/internal/types"
)

const (
	Monday    = "monday"
	Tuesday   = "tuesday"
	Wednesday = "wednesday"
	Thursday  = "thursday"
	Friday    = "friday"
	Saturday  = "saturday"
	Sunday    = "sunday"
)

// Days in grid order.
var Days = []string{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

func IsDay(s string) bool {
	for _, d := range Days {
		if d == s {
			return true
		}
	}
	return false
}

// Truncate drops the time-of-day and zone, leaving a bare calendar date in UTC.
// Week anchors are calendar days; wall-clock arithmetic would drift across DST.
func Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MondayOf returns the Monday on or before t as a bare date.
func MondayOf(t time.Time) time.Time {
	t = Truncate(t)
	// Weekday: Sunday=0 .. Saturday=6; shift so Monday is 0.
	back := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -back)
}

// ShiftWeek moves a week anchor by n weeks using calendar arithmetic.
func ShiftWeek(monday time.Time, n int) time.Time {
	return Truncate(monday).AddDate(0, 0, 7*n)
}

func IsMonday(t time.Time) bool {
	return t.Weekday() == time.Monday
}

// SameDate reports whether a and b are the same calendar day.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Partitioned is the display partition of a household's task set for one
// viewed week.
type Partitioned struct {
	Backlog []*types.Task
	ByDay   map[string][]*types.Task
}

// Partition splits tasks into the backlog and per-day buckets for the week
// anchored at monday. Scheduled tasks belonging to other weeks are excluded;
// they stay persisted and reappear when their week is viewed. No task is ever
// dropped from or duplicated within the viewed set.
func Partition(tasks []*types.Task, monday time.Time) Partitioned {
	p := Partitioned{ByDay: make(map[string][]*types.Task, len(Days))}
	for _, d := range Days {
		p.ByDay[d] = nil
	}
	for _, t := range tasks {
		if t.DayWindow == nil {
			p.Backlog = append(p.Backlog, t)
			continue
		}
		if t.WeekStart == nil || !SameDate(*t.WeekStart, monday) {
			continue
		}
		if !IsDay(*t.DayWindow) {
			continue
		}
		p.ByDay[*t.DayWindow] = append(p.ByDay[*t.DayWindow], t)
	}
	return p
}

// Place moves a task between the backlog and a day slot. It is the sole legal
// way to change a task's scheduling fields: DayWindow and WeekStart are set
// and cleared together so partial placements cannot exist.
func Place(task *types.Task, dayWindow *string, monday time.Time) error {
	if dayWindow == nil {
		task.DayWindow = nil
		task.WeekStart = nil
		return nil
	}
	if !IsDay(*dayWindow) {
		return apierr.Validation("invalid day window %q", *dayWindow)
	}
	if !IsMonday(monday) {
		return apierr.Validation("week start %s is not a Monday", monday.Format("2006-01-02"))
	}
	anchor := Truncate(monday)
	d := *dayWindow
	task.DayWindow = &d
	task.WeekStart = &anchor
	return nil
}
