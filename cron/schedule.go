package cron

import (
	"time"

	cronlib "github.com/robfig/cron/v3"
)

// Schedule yields the next activation strictly after a given time. A zero
// time means there is no further activation.
type Schedule = cronlib.Schedule

// cronParser supports standard 5-field cron and descriptors like "@every 30s".
var cronParser = cronlib.NewParser(
	cronlib.Minute | cronlib.Hour | cronlib.Dom | cronlib.Month | cronlib.Dow | cronlib.Descriptor,
)

// ParseSchedule parses a cron expression and returns the schedule.
// Schedules are evaluated in UTC unless the expression carries a
// CRON_TZ= or TZ= prefix.
func ParseSchedule(expr string) (Schedule, error) {
	return cronParser.Parse(expr)
}

// MustParseSchedule is like ParseSchedule but panics on error.
func MustParseSchedule(expr string) Schedule {
	s, err := ParseSchedule(expr)
	if err != nil {
		panic(err)
	}
	return s
}

// onceSchedule activates exactly once.
type onceSchedule struct {
	at time.Time
}

// Once returns a schedule with a single activation at at. Asked after at,
// it has no further activation.
func Once(at time.Time) Schedule {
	return onceSchedule{at: at}
}

func (s onceSchedule) Next(t time.Time) time.Time {
	if t.Before(s.at) {
		return s.at
	}
	return time.Time{}
}
