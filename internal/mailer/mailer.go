// Package mailer consumes ReminderEvents and sends one email per event.
//
// Events are processed independently: a failed or hung send is logged and
// recorded, never raised into the run loop, so the rest of the cycle's
// reminders still go out. There are no retries; the next scan that still
// matches the record fires again.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/roshini1406/job-tracker1/internal/circuitbreaker"
	"github.com/roshini1406/job-tracker1/internal/domain"
	"github.com/roshini1406/job-tracker1/internal/notify"
)

const (
	reminderSubject  = "Job Application Reminder"
	reminderBodyTmpl = "Don't forget to follow up on your application for %s at %s."
)

// DefaultSendTimeout bounds a single send so a hung relay cannot stall a worker.
const DefaultSendTimeout = 30 * time.Second

// DefaultDrainTimeout is the maximum time to wait for buffered events during shutdown.
const DefaultDrainTimeout = 30 * time.Second

type Store interface {
	InsertMailAttempt(ctx context.Context, attempt domain.MailAttempt) error
}

// MetricsSink records mailer metrics. All methods must be non-blocking
// and fire-and-forget.
type MetricsSink interface {
	MailAttemptCompleted(statusClass string, duration time.Duration)
	MailOutcome(outcome string)
	EventsInFlightIncr()
	EventsInFlightDecr()
}

type Config struct {
	Workers      int
	SendTimeout  time.Duration
	DrainTimeout time.Duration
}

type Mailer struct {
	config  Config
	store   Store
	sender  notify.Sender
	breaker *circuitbreaker.CircuitBreaker // optional, nil = disabled
	metrics MetricsSink                    // optional, nil = disabled
	clock   func() time.Time
}

func New(config Config, store Store, sender notify.Sender) *Mailer {
	if config.Workers <= 0 {
		config.Workers = 4
	}
	if config.SendTimeout <= 0 {
		config.SendTimeout = DefaultSendTimeout
	}
	if config.DrainTimeout <= 0 {
		config.DrainTimeout = DefaultDrainTimeout
	}
	return &Mailer{
		config: config,
		store:  store,
		sender: sender,
		clock:  time.Now,
	}
}

// WithBreaker attaches a circuit breaker guarding the relay host.
func (m *Mailer) WithBreaker(cb *circuitbreaker.CircuitBreaker) *Mailer {
	m.breaker = cb
	return m
}

// WithMetrics attaches a metrics sink to the mailer.
func (m *Mailer) WithMetrics(sink MetricsSink) *Mailer {
	m.metrics = sink
	return m
}

// Run processes events from the channel with the configured worker count
// until ctx is cancelled, then drains remaining buffered events with a timeout.
func (m *Mailer) Run(ctx context.Context, ch <-chan domain.ReminderEvent) {
	var wg sync.WaitGroup
	for i := 0; i < m.config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case event := <-ch:
					m.Deliver(ctx, event)
				}
			}
		}()
	}
	wg.Wait()
	m.drain(ch)
}

// drain processes events left in the buffer after shutdown signal.
// Uses a fresh context since the run context is already cancelled.
func (m *Mailer) drain(ch <-chan domain.ReminderEvent) {
	drainCtx, cancel := context.WithTimeout(context.Background(), m.config.DrainTimeout)
	defer cancel()

	count := 0
	for {
		select {
		case <-drainCtx.Done():
			if count > 0 {
				log.Printf("mailer: drain timeout, processed %d events", count)
			}
			return
		case event, ok := <-ch:
			if !ok {
				log.Printf("mailer: drain complete, processed %d events", count)
				return
			}
			m.Deliver(drainCtx, event)
			count++
		default:
			if count > 0 {
				log.Printf("mailer: drain complete, processed %d events", count)
			}
			return
		}
	}
}

// Deliver sends one reminder and records the attempt. All failure modes
// settle here; nothing propagates to the caller.
func (m *Mailer) Deliver(ctx context.Context, event domain.ReminderEvent) {
	if m.metrics != nil {
		m.metrics.EventsInFlightIncr()
		defer m.metrics.EventsInFlightDecr()
	}

	host := m.sender.Host()
	if m.breaker != nil {
		if err := m.breaker.Allow(host); err != nil {
			log.Printf("mailer: application=%s relay=%s circuit open, dropping", event.ApplicationID, host)
			m.recordAttempt(ctx, event, err, m.clock(), m.clock())
			if m.metrics != nil {
				m.metrics.MailOutcome("dropped")
			}
			return
		}
	}

	msg := notify.Message{
		To:      event.Address,
		Subject: reminderSubject,
		Body:    fmt.Sprintf(reminderBodyTmpl, event.Title, event.Company),
	}

	sendCtx, cancel := context.WithTimeout(ctx, m.config.SendTimeout)
	startedAt := m.clock()
	result := m.sender.Send(sendCtx, msg)
	finishedAt := m.clock()
	cancel()

	if m.metrics != nil {
		m.metrics.MailAttemptCompleted(classifyResult(result), result.Duration)
	}

	m.recordAttempt(ctx, event, result.Error, startedAt, finishedAt)

	if result.IsSuccess() {
		if m.breaker != nil {
			m.breaker.RecordSuccess(host)
		}
		if m.metrics != nil {
			m.metrics.MailOutcome("success")
		}
		log.Printf("mailer: reminder sent application=%s to=%s", event.ApplicationID, event.Address)
		return
	}

	if m.breaker != nil {
		m.breaker.RecordFailure(host)
	}
	if m.metrics != nil {
		m.metrics.MailOutcome("failed")
	}
	log.Printf("mailer: reminder failed application=%s to=%s err=%v", event.ApplicationID, event.Address, result.Error)
}

// recordAttempt appends to the mail log. Best-effort: a log write failure
// must not take down the delivery path.
func (m *Mailer) recordAttempt(ctx context.Context, event domain.ReminderEvent, sendErr error, startedAt, finishedAt time.Time) {
	attempt := domain.MailAttempt{
		ID:            uuid.New(),
		ApplicationID: event.ApplicationID,
		OwnerID:       event.OwnerID,
		Address:       event.Address,
		StartedAt:     startedAt,
		FinishedAt:    finishedAt,
	}
	if sendErr != nil {
		attempt.Error = sendErr.Error()
	}
	if err := m.store.InsertMailAttempt(ctx, attempt); err != nil {
		log.Printf("mailer: failed to record attempt: %v", err)
	}
}

// classifyResult maps a send outcome to a bounded-cardinality status class.
func classifyResult(r notify.Result) string {
	if r.Error == nil {
		return "ok"
	}
	if errors.Is(r.Error, context.DeadlineExceeded) || errors.Is(r.Error, context.Canceled) {
		return "timeout"
	}
	if errors.Is(r.Error, circuitbreaker.ErrCircuitOpen) {
		return "circuit_open"
	}
	return "send_error"
}
