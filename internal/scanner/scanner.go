// Package scanner finds applications whose reminder date falls inside the
// current day and emits one ReminderEvent per match.
//
// The scan keeps no per-record sent state and never clears reminder_date,
// so a record whose date still matches on a later cycle fires again. Dedup
// belongs to whoever sets the reminder date, not to the scan.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/roshini1406/job-tracker1/internal/cron"
	"github.com/roshini1406/job-tracker1/internal/domain"
)

// ErrScanInFlight is returned when a cycle is skipped because the previous
// one has not finished.
var ErrScanInFlight = errors.New("scan cycle already in flight")

// Match is one reminder hit: the application plus its owner's resolved
// notification address.
type Match struct {
	App        domain.JobApplication
	OwnerEmail string
}

type Store interface {
	// FindByReminderWindow returns applications with
	// reminder_date >= start AND reminder_date < end, owner joined.
	FindByReminderWindow(ctx context.Context, start, end time.Time) ([]Match, error)
}

type EventEmitter interface {
	Emit(ctx context.Context, event domain.ReminderEvent) error
}

// MetricsSink records scanner metrics. All methods must be non-blocking
// and fire-and-forget.
type MetricsSink interface {
	ScanStarted()
	ScanCompleted(duration time.Duration, matched int, err error)
	ScanSkipped()
}

// AnalyticsSink records per-owner reminder counters. Best-effort; the sink
// handles its own errors.
type AnalyticsSink interface {
	ReminderEmitted(ctx context.Context, event domain.ReminderEvent)
}

type Config struct {
	// TickInterval is how often the run loop checks whether the schedule
	// is due. Activations are minute-granular, so the default is 1m.
	TickInterval time.Duration
}

type Scanner struct {
	config    Config
	store     Store
	emitter   EventEmitter
	schedule  cron.Schedule
	loc       *time.Location
	clock     func() time.Time
	metrics   MetricsSink   // optional, nil = disabled
	analytics AnalyticsSink // optional, nil = disabled

	lastTick time.Time
	inFlight atomic.Bool
}

func New(config Config, store Store, emitter EventEmitter, schedule cron.Schedule, loc *time.Location) *Scanner {
	if config.TickInterval <= 0 {
		config.TickInterval = time.Minute
	}
	if loc == nil {
		loc = time.Local
	}
	return &Scanner{
		config:   config,
		store:    store,
		emitter:  emitter,
		schedule: schedule,
		loc:      loc,
		clock:    time.Now,
	}
}

// WithMetrics attaches a metrics sink to the scanner.
func (s *Scanner) WithMetrics(sink MetricsSink) *Scanner {
	s.metrics = sink
	return s
}

// WithAnalytics attaches an analytics sink to the scanner.
func (s *Scanner) WithAnalytics(sink AnalyticsSink) *Scanner {
	s.analytics = sink
	return s
}

// WithClock replaces the time source. Tests only.
func (s *Scanner) WithClock(clock func() time.Time) *Scanner {
	s.clock = clock
	return s
}

// Run drives the schedule until ctx is cancelled. A cycle that is still
// running when the next activation fires is skipped, not queued.
func (s *Scanner) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.config.TickInterval)
	defer ticker.Stop()

	s.lastTick = s.clock()
	log.Printf("scanner: started, tick=%s tz=%s", s.config.TickInterval, s.loc)

	for {
		select {
		case <-ctx.Done():
			log.Println("scanner: stopped")
			return ctx.Err()
		case <-ticker.C:
			now := s.clock()
			due := s.schedule.Next(s.lastTick)
			s.lastTick = now
			if due.After(now) {
				continue
			}
			if err := s.Scan(ctx); err != nil {
				if errors.Is(err, ErrScanInFlight) {
					log.Println("scanner: previous cycle still running, skipping this activation")
					continue
				}
				// Abort this cycle only; the next activation retries.
				log.Printf("scanner: cycle error: %v", err)
			}
		}
	}
}

// Scan executes one cycle: query the current day window and emit one event
// per match. Returns ErrScanInFlight when a previous cycle is still running.
// A store query failure aborts the whole cycle; emission failures are
// isolated per record.
func (s *Scanner) Scan(ctx context.Context) error {
	if !s.inFlight.CompareAndSwap(false, true) {
		if s.metrics != nil {
			s.metrics.ScanSkipped()
		}
		return ErrScanInFlight
	}
	defer s.inFlight.Store(false)

	if s.metrics != nil {
		s.metrics.ScanStarted()
	}
	started := s.clock()

	now := started.In(s.loc)
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	windowEnd := todayStart.AddDate(0, 0, 1)

	matches, err := s.store.FindByReminderWindow(ctx, todayStart, windowEnd)
	if err != nil {
		if s.metrics != nil {
			s.metrics.ScanCompleted(s.clock().Sub(started), 0, err)
		}
		return fmt.Errorf("reminder window query: %w", err)
	}

	emitted := 0
	for _, m := range matches {
		if m.OwnerEmail == "" {
			log.Printf("scanner: application=%s owner=%s has no notification address, skipping",
				m.App.ID, m.App.OwnerID)
			continue
		}

		event := domain.ReminderEvent{
			ApplicationID: m.App.ID,
			OwnerID:       m.App.OwnerID,
			Address:       m.OwnerEmail,
			Title:         m.App.Title,
			Company:       m.App.Company,
			ScheduledFor:  todayStart,
			FiredAt:       s.clock(),
		}

		if err := s.emitter.Emit(ctx, event); err != nil {
			log.Printf("scanner: application=%s emit error: %v", m.App.ID, err)
			continue
		}
		emitted++

		if s.analytics != nil {
			s.analytics.ReminderEmitted(ctx, event)
		}
	}

	if s.metrics != nil {
		s.metrics.ScanCompleted(s.clock().Sub(started), emitted, nil)
	}
	log.Printf("scanner: cycle complete, window=[%s, %s) matched=%d emitted=%d",
		todayStart.Format(time.RFC3339), windowEnd.Format(time.RFC3339), len(matches), emitted)
	return nil
}
