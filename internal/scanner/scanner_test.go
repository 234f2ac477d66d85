package scanner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/roshini1406/job-tracker1/internal/domain"
	"github.com/roshini1406/job-tracker1/internal/testutil"
)

// mockStore filters its matches by the requested window, mirroring the SQL
// half-open interval.
type mockStore struct {
	mu      sync.Mutex
	matches []Match
	err     error
	queries []window
	block   chan struct{} // when set, FindByReminderWindow blocks until closed
}

type window struct {
	start, end time.Time
}

func (s *mockStore) FindByReminderWindow(ctx context.Context, start, end time.Time) ([]Match, error) {
	s.mu.Lock()
	s.queries = append(s.queries, window{start, end})
	block := s.block
	s.mu.Unlock()

	if block != nil {
		<-block
	}
	if s.err != nil {
		return nil, s.err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var result []Match
	for _, m := range s.matches {
		if m.App.ReminderDate == nil {
			continue
		}
		d := *m.App.ReminderDate
		if !d.Before(start) && d.Before(end) {
			result = append(result, m)
		}
	}
	return result, nil
}

type mockEmitter struct {
	mu     sync.Mutex
	events []domain.ReminderEvent
	failOn uuid.UUID
}

func (e *mockEmitter) Emit(ctx context.Context, event domain.ReminderEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if event.ApplicationID == e.failOn {
		return errors.New("bus full")
	}
	e.events = append(e.events, event)
	return nil
}

func (e *mockEmitter) got() []domain.ReminderEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.ReminderEvent, len(e.events))
	copy(out, e.events)
	return out
}

func ptr(t time.Time) *time.Time { return &t }

func match(reminder *time.Time, email string) Match {
	return Match{
		App: domain.JobApplication{
			ID:           uuid.New(),
			OwnerID:      uuid.New(),
			Title:        "Backend Engineer",
			Company:      "Initech",
			Status:       domain.StatusApplied,
			ReminderDate: reminder,
		},
		OwnerEmail: email,
	}
}

func newTestScanner(store *mockStore, emitter *mockEmitter, now time.Time) *Scanner {
	clock := testutil.NewFakeClock(now)
	return New(Config{}, store, emitter, nil, time.UTC).WithClock(clock.Now)
}

func TestScan_WindowBounds(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	inWindow := match(ptr(time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)), "a@example.com")
	atStart := match(ptr(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)), "b@example.com")
	nextMidnight := match(ptr(time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)), "c@example.com")
	yesterday := match(ptr(time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC)), "d@example.com")

	store := &mockStore{matches: []Match{inWindow, atStart, nextMidnight, yesterday}}
	emitter := &mockEmitter{}
	s := newTestScanner(store, emitter, now)

	if err := s.Scan(context.Background()); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(store.queries) != 1 {
		t.Fatalf("expected 1 store query, got %d", len(store.queries))
	}
	q := store.queries[0]
	wantStart := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	if !q.start.Equal(wantStart) || !q.end.Equal(wantEnd) {
		t.Errorf("window = [%v, %v), want [%v, %v)", q.start, q.end, wantStart, wantEnd)
	}

	events := emitter.got()
	if len(events) != 2 {
		t.Fatalf("expected 2 events (08:00 and midnight-start), got %d", len(events))
	}
	for _, e := range events {
		if e.ApplicationID == nextMidnight.App.ID {
			t.Error("next-midnight reminder must be excluded (exclusive upper bound)")
		}
		if e.ApplicationID == yesterday.App.ID {
			t.Error("yesterday's reminder must be excluded")
		}
	}
}

func TestScan_EventCarriesApplicationFields(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	m := match(ptr(now), "owner@example.com")
	store := &mockStore{matches: []Match{m}}
	emitter := &mockEmitter{}
	s := newTestScanner(store, emitter, now)

	if err := s.Scan(context.Background()); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	events := emitter.got()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.ApplicationID != m.App.ID || e.OwnerID != m.App.OwnerID {
		t.Errorf("event ids = (%v, %v), want (%v, %v)", e.ApplicationID, e.OwnerID, m.App.ID, m.App.OwnerID)
	}
	if e.Address != "owner@example.com" {
		t.Errorf("Address = %q, want owner email", e.Address)
	}
	if e.Title != "Backend Engineer" || e.Company != "Initech" {
		t.Errorf("event payload = (%q, %q)", e.Title, e.Company)
	}
	if !e.ScheduledFor.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("ScheduledFor = %v, want window start", e.ScheduledFor)
	}
}

func TestScan_SkipsBlankAddress(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	orphan := match(ptr(now), "")
	ok := match(ptr(now), "owner@example.com")
	store := &mockStore{matches: []Match{orphan, ok}}
	emitter := &mockEmitter{}
	s := newTestScanner(store, emitter, now)

	if err := s.Scan(context.Background()); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	events := emitter.got()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].ApplicationID != ok.App.ID {
		t.Error("wrong record emitted")
	}
}

func TestScan_QueryFailureAbortsCycle(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	store := &mockStore{err: errors.New("connection refused")}
	emitter := &mockEmitter{}
	s := newTestScanner(store, emitter, now)

	err := s.Scan(context.Background())
	if err == nil {
		t.Fatal("expected error when store query fails")
	}
	if len(emitter.got()) != 0 {
		t.Error("no events should be emitted on query failure")
	}
}

func TestScan_EmitFailureIsolatedPerRecord(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	a := match(ptr(now), "a@example.com")
	b := match(ptr(now), "b@example.com")
	store := &mockStore{matches: []Match{a, b}}
	emitter := &mockEmitter{failOn: a.App.ID}
	s := newTestScanner(store, emitter, now)

	if err := s.Scan(context.Background()); err != nil {
		t.Fatalf("Scan should not fail on per-record emit errors: %v", err)
	}

	events := emitter.got()
	if len(events) != 1 || events[0].ApplicationID != b.App.ID {
		t.Errorf("record B should still be emitted after A fails, got %d events", len(events))
	}
}

func TestScan_OverlappingCycleSkipped(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	block := make(chan struct{})
	store := &mockStore{block: block}
	emitter := &mockEmitter{}
	s := newTestScanner(store, emitter, now)

	done := make(chan error, 1)
	go func() { done <- s.Scan(context.Background()) }()

	// Wait for the first cycle to reach the store.
	deadline := time.After(2 * time.Second)
	for {
		store.mu.Lock()
		started := len(store.queries) > 0
		store.mu.Unlock()
		if started {
			break
		}
		select {
		case <-deadline:
			t.Fatal("first cycle never queried the store")
		case <-time.After(time.Millisecond):
		}
	}

	if err := s.Scan(context.Background()); !errors.Is(err, ErrScanInFlight) {
		t.Errorf("expected ErrScanInFlight, got %v", err)
	}

	close(block)
	if err := <-done; err != nil {
		t.Fatalf("first cycle failed: %v", err)
	}
}

func TestScan_RepeatedCycleReEmits(t *testing.T) {
	// No sent flag: the same still-matching record fires again on a re-run.
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	m := match(ptr(now), "owner@example.com")
	store := &mockStore{matches: []Match{m}}
	emitter := &mockEmitter{}
	s := newTestScanner(store, emitter, now)

	for i := 0; i < 2; i++ {
		if err := s.Scan(context.Background()); err != nil {
			t.Fatalf("Scan %d failed: %v", i, err)
		}
	}

	if got := len(emitter.got()); got != 2 {
		t.Errorf("expected 2 emissions across 2 cycles, got %d", got)
	}
}
