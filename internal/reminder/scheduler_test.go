package reminder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeTimer captures scheduled callbacks so tests can fire them by hand.
type fakeTimer struct {
	mu      sync.Mutex
	pending []*fakeTimerEntry
}

type fakeTimerEntry struct {
	delay   time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (e *fakeTimerEntry) Stop() bool { e.stopped = true; return !e.fired }

func (t *fakeTimer) AfterFunc(d time.Duration, fn func()) TimerHandle {
	t.mu.Lock()
	defer t.mu.Unlock()
	e := &fakeTimerEntry{delay: d, fn: fn}
	t.pending = append(t.pending, e)
	return e
}

// fireNext runs the oldest armed callback, honoring Stop.
func (t *fakeTimer) fireNext() bool {
	t.mu.Lock()
	var next *fakeTimerEntry
	for _, e := range t.pending {
		if !e.stopped && !e.fired {
			next = e
			break
		}
	}
	if next != nil {
		next.fired = true
	}
	t.mu.Unlock()
	if next == nil {
		return false
	}
	next.fn()
	return true
}

// takeNext detaches the oldest armed callback without running it, so a
// test can simulate a timer that is in flight during cancellation.
func (t *fakeTimer) takeNext() func() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range t.pending {
		if !e.stopped && !e.fired {
			e.fired = true
			return e.fn
		}
	}
	return nil
}

type recordSender struct {
	mu     sync.Mutex
	sent   []string
	fail   int    // number of upcoming sends to fail
	onSend func() // runs during SendMessage, simulating concurrent activity
}

func (r *recordSender) SendMessage(_ context.Context, to, body string) error {
	if r.onSend != nil {
		r.onSend()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail > 0 {
		r.fail--
		return errors.New("transport down")
	}
	r.sent = append(r.sent, to+"|"+body)
	return nil
}

func (r *recordSender) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

func (r *recordSender) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sent) == 0 {
		return ""
	}
	return r.sent[len(r.sent)-1]
}

func newTestScheduler() (*Scheduler, *fakeTimer, *recordSender) {
	ft := &fakeTimer{}
	rs := &recordSender{}
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewScheduler(rs, WithTimer(ft), WithClock(func() time.Time { return base }))
	return s, ft, rs
}

func TestScheduleRejectsNonFutureFireTime(t *testing.T) {
	s, _, _ := newTestScheduler()
	_, err := s.Schedule(Request{
		UserID:      "u1",
		Kind:        KindMedication,
		Message:     "take it",
		FireAt:      s.now(), // not after now
		Occurrences: 1,
	})
	if err == nil {
		t.Fatal("past fire time accepted")
	}
	if s.Len() != 0 {
		t.Errorf("registry not empty after rejected schedule")
	}
}

func TestOccurrenceIDsNeverCollide(t *testing.T) {
	s, _, _ := newTestScheduler()
	fireAt := s.now().Add(time.Hour)
	id1, err := s.Schedule(Request{UserID: "u1", Kind: KindMedication, Message: "a", FireAt: fireAt, Occurrences: 1})
	if err != nil {
		t.Fatal(err)
	}
	id2, err := s.Schedule(Request{UserID: "u1", Kind: KindMedication, Message: "b", FireAt: fireAt, Occurrences: 1})
	if err != nil {
		t.Fatal(err)
	}
	if id1 == id2 {
		t.Errorf("two chains share id %q", id1)
	}
}

func TestBoundedChainExhausts(t *testing.T) {
	s, ft, rs := newTestScheduler()
	_, err := s.Schedule(Request{
		UserID:      "u1",
		Kind:        KindFitness,
		Message:     "workout",
		FireAt:      s.now().Add(time.Hour),
		Occurrences: 3,
	})
	if err != nil {
		t.Fatal(err)
	}

	fired := 0
	for ft.fireNext() {
		fired++
		if fired > 10 {
			t.Fatal("chain did not terminate")
		}
	}
	if rs.count() != 3 {
		t.Errorf("deliveries = %d, want 3", rs.count())
	}
	if s.Len() != 0 {
		t.Errorf("registry not empty after chain exhausted: %d", s.Len())
	}
}

func TestUnboundedChainKeepsRearming(t *testing.T) {
	s, ft, rs := newTestScheduler()
	_, err := s.Schedule(Request{
		UserID:      "u1",
		Kind:        KindDailyTips,
		Message:     "tip",
		FireAt:      s.now().Add(time.Hour),
		Occurrences: Unbounded,
	})
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 5; i++ {
		if !ft.fireNext() {
			t.Fatalf("unbounded chain stopped re-arming after %d firings", i)
		}
	}
	if rs.count() != 5 {
		t.Errorf("deliveries = %d, want 5", rs.count())
	}
	if !s.Active("u1", KindDailyTips) {
		t.Errorf("unbounded chain no longer active")
	}
}

func TestCancelWhileTimerInFlightDeliversNothing(t *testing.T) {
	s, ft, rs := newTestScheduler()
	_, err := s.Schedule(Request{
		UserID:      "u1",
		Kind:        KindSymptomFollowup,
		Message:     "how are your symptoms",
		FireAt:      s.now().Add(time.Hour),
		Occurrences: 1,
	})
	if err != nil {
		t.Fatal(err)
	}

	// The timer has elapsed and its callback is about to run, but the user
	// cancels first. The firing must see the cancellation and drop out.
	fire := ft.takeNext()
	if fire == nil {
		t.Fatal("no armed timer")
	}
	if n := s.CancelForUser("u1"); n != 1 {
		t.Fatalf("CancelForUser = %d, want 1", n)
	}
	fire()

	if rs.count() != 0 {
		t.Errorf("cancelled reminder still delivered: %v", rs.sent)
	}
	if s.Len() != 0 {
		t.Errorf("registry not empty after cancelled firing")
	}
}

func TestCancelDuringRegenerationStopsChain(t *testing.T) {
	s, ft, rs := newTestScheduler()
	var cancelled int
	_, err := s.Schedule(Request{
		UserID:      "u1",
		Kind:        KindDailyTips,
		Message:     "tip",
		FireAt:      s.now().Add(time.Hour),
		Occurrences: Unbounded,
		Regenerate: func(context.Context) (string, error) {
			// The user cancels while regeneration is still running. The
			// occurrence must still be findable, and nothing may be
			// delivered once the cancel call has returned.
			cancelled = s.CancelForUser("u1")
			return "fresh tip", nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	ft.fireNext()
	if cancelled != 1 {
		t.Errorf("CancelForUser during a fire = %d, want 1", cancelled)
	}
	if rs.count() != 0 {
		t.Errorf("cancelled chain still delivered: %v", rs.sent)
	}
	if s.Len() != 0 {
		t.Errorf("registry not empty after mid-fire cancellation: %d", s.Len())
	}
	if ft.fireNext() {
		t.Error("chain re-armed after cancellation")
	}
}

func TestCancelDuringSendDoesNotRearm(t *testing.T) {
	s, ft, rs := newTestScheduler()
	rs.onSend = func() { s.CancelKind("u1", KindMedication) }
	_, err := s.Schedule(Request{
		UserID:      "u1",
		Kind:        KindMedication,
		Message:     "meds",
		FireAt:      s.now().Add(time.Hour),
		Occurrences: Unbounded,
	})
	if err != nil {
		t.Fatal(err)
	}

	ft.fireNext()
	if s.Len() != 0 {
		t.Errorf("registry not empty after cancellation during send: %d", s.Len())
	}
	if ft.fireNext() {
		t.Error("chain re-armed after cancellation during send")
	}
}

func TestCancelKindLeavesOtherChains(t *testing.T) {
	s, ft, rs := newTestScheduler()
	fireAt := s.now().Add(time.Hour)
	mustSchedule := func(kind Kind, msg string) {
		t.Helper()
		if _, err := s.Schedule(Request{UserID: "u1", Kind: kind, Message: msg, FireAt: fireAt, Occurrences: 1}); err != nil {
			t.Fatal(err)
		}
	}
	mustSchedule(KindMedication, "meds")
	mustSchedule(KindDailyTips, "tip")

	if n := s.CancelKind("u1", KindDailyTips); n != 1 {
		t.Fatalf("CancelKind = %d, want 1", n)
	}
	for ft.fireNext() {
	}
	if rs.count() != 1 || rs.last() != "u1|meds" {
		t.Errorf("sent = %v, want only the medication reminder", rs.sent)
	}
}

func TestRegenerateFailureFallsBackToPreviousMessage(t *testing.T) {
	s, ft, rs := newTestScheduler()
	calls := 0
	_, err := s.Schedule(Request{
		UserID:      "u1",
		Kind:        KindMeal,
		Message:     "yesterday's plan",
		FireAt:      s.now().Add(time.Hour),
		Occurrences: 2,
		Regenerate: func(context.Context) (string, error) {
			calls++
			if calls == 1 {
				return "", errors.New("model unavailable")
			}
			return "fresh plan", nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	ft.fireNext()
	if rs.last() != "u1|yesterday's plan" {
		t.Errorf("first delivery = %q, want fallback to previous message", rs.last())
	}
	ft.fireNext()
	if rs.last() != "u1|fresh plan" {
		t.Errorf("second delivery = %q, want regenerated content", rs.last())
	}
}

func TestSendFailureDoesNotBreakChain(t *testing.T) {
	s, ft, rs := newTestScheduler()
	rs.fail = 1
	_, err := s.Schedule(Request{
		UserID:      "u1",
		Kind:        KindMedication,
		Message:     "meds",
		FireAt:      s.now().Add(time.Hour),
		Occurrences: 2,
	})
	if err != nil {
		t.Fatal(err)
	}

	ft.fireNext() // delivery fails
	if s.Len() != 1 {
		t.Fatalf("chain dropped after delivery failure")
	}
	ft.fireNext()
	if rs.count() != 1 {
		t.Errorf("deliveries = %d, want 1 successful", rs.count())
	}
}

func TestStopCancelsEverythingAndRejectsNewChains(t *testing.T) {
	s, ft, rs := newTestScheduler()
	if _, err := s.Schedule(Request{UserID: "u1", Kind: KindFitness, Message: "w", FireAt: s.now().Add(time.Hour), Occurrences: Unbounded}); err != nil {
		t.Fatal(err)
	}
	s.Stop()

	for ft.fireNext() {
	}
	if rs.count() != 0 {
		t.Errorf("stopped scheduler still delivered %d messages", rs.count())
	}
	if _, err := s.Schedule(Request{UserID: "u2", Kind: KindMeal, Message: "m", FireAt: s.now().Add(time.Hour), Occurrences: 1}); err == nil {
		t.Errorf("stopped scheduler accepted a new chain")
	}
}
