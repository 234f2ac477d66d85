// Package cron wraps robfig/cron parsing for the reminder schedule.
package cron

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Schedule yields activation times for the reminder scan.
type Schedule interface {
	// Next returns the first activation strictly after the given time.
	Next(after time.Time) time.Time
}

// ParseSchedule parses a five-field cron expression bound to a timezone.
// The returned schedule evaluates activations in that timezone, so a
// "0 9 * * *" expression fires at 09:00 local wall-clock time.
func ParseSchedule(expression, timezone string) (Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("parse cron: %w", err)
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	return &schedule{sched: sched, loc: loc}, nil
}

type schedule struct {
	sched cron.Schedule
	loc   *time.Location
}

func (s *schedule) Next(after time.Time) time.Time {
	return s.sched.Next(after.In(s.loc))
}
