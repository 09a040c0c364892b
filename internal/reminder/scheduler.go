// Package reminder schedules recurring outbound messages.
//
// A reminder chain delivers a message, then re-arms itself one interval
// later until its occurrence count is spent or the chain is cancelled.
// Each occurrence is registered under a unique id of the form
// userID:kind:seq; the monotonic sequence means two chains created in the
// same instant can never collide.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"
)

// Kind labels what a chain delivers. Cancellation can target a single
// kind without disturbing a user's other chains.
type Kind string

const (
	KindSymptomFollowup Kind = "symptom_followup"
	KindFitness         Kind = "fitness"
	KindMeal            Kind = "meal"
	KindMedication      Kind = "medication"
	KindDailyTips       Kind = "daily_tips"
)

// Unbounded makes a chain repeat until cancelled.
const Unbounded = -1

// DefaultInterval is the gap between occurrences when a request leaves
// Interval zero.
const DefaultInterval = 24 * time.Hour

const (
	regenerateTimeout = 30 * time.Second
	sendTimeout       = 30 * time.Second
)

// Sender delivers reminder texts to a recipient.
type Sender interface {
	SendMessage(ctx context.Context, to, body string) error
}

// Request describes a reminder chain.
type Request struct {
	UserID      string
	Kind        Kind
	Message     string
	FireAt      time.Time
	Occurrences int           // remaining deliveries; Unbounded repeats forever
	Interval    time.Duration // gap between occurrences; DefaultInterval when zero

	// Regenerate, when set, produces fresh content before each delivery.
	// On error the previous message is re-sent instead.
	Regenerate func(ctx context.Context) (string, error)

	// AfterSend, when set, runs after each successful delivery.
	AfterSend func()
}

type entry struct {
	req    Request
	handle TimerHandle
}

// Scheduler owns all live reminder chains.
//
// The registry lock is the cancellation barrier. An occurrence stays in
// the registry for the whole duration of its firing, so cancellation can
// always find it; the firing callback re-checks its id under the lock
// immediately before sending and again before re-arming, and drops out
// if cancellation removed it in the meantime.
type Scheduler struct {
	sender Sender
	timer  Timer
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
	seq     int64
	stopped bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithTimer overrides the timer implementation.
func WithTimer(t Timer) Option {
	return func(s *Scheduler) { s.timer = t }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// NewScheduler creates a scheduler delivering through sender.
func NewScheduler(sender Sender, opts ...Option) *Scheduler {
	s := &Scheduler{
		sender:  sender,
		timer:   SimpleTimer{},
		now:     time.Now,
		entries: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule registers a chain and arms its first timer, returning the
// occurrence id. The fire time must be in the future.
func (s *Scheduler) Schedule(req Request) (string, error) {
	if req.UserID == "" || req.Kind == "" {
		return "", fmt.Errorf("schedule reminder: user id and kind are required")
	}
	if req.Occurrences == 0 || req.Occurrences < Unbounded {
		return "", fmt.Errorf("schedule reminder: invalid occurrence count %d", req.Occurrences)
	}
	if req.Interval <= 0 {
		req.Interval = DefaultInterval
	}
	now := s.now()
	if !req.FireAt.After(now) {
		return "", fmt.Errorf("schedule reminder: fire time %s is not in the future", req.FireAt.Format(time.RFC3339))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return "", fmt.Errorf("schedule reminder: scheduler stopped")
	}
	return s.armLocked(req, now), nil
}

// armLocked stores a new occurrence and starts its timer. Callers hold mu.
func (s *Scheduler) armLocked(req Request, now time.Time) string {
	s.seq++
	id := req.UserID + ":" + string(req.Kind) + ":" + strconv.FormatInt(s.seq, 10)
	e := &entry{req: req}
	e.handle = s.timer.AfterFunc(req.FireAt.Sub(now), func() { s.fire(id) })
	s.entries[id] = e
	slog.Debug("Reminder occurrence armed", "id", id, "fireAt", req.FireAt, "occurrences", req.Occurrences)
	return id
}

// fire runs when an occurrence's timer elapses. The occurrence stays
// registered while regeneration and delivery run, so a concurrent
// cancellation still matches it; its continued existence is re-checked
// under the lock right before the send and again before re-arming.
func (s *Scheduler) fire(id string) {
	s.mu.Lock()
	e, ok := s.entries[id]
	s.mu.Unlock()
	if !ok {
		slog.Debug("Reminder fired after cancellation, dropping", "id", id)
		return
	}

	req := e.req
	msg := req.Message
	if req.Regenerate != nil {
		ctx, cancel := context.WithTimeout(context.Background(), regenerateTimeout)
		fresh, err := req.Regenerate(ctx)
		cancel()
		if err != nil {
			slog.Warn("Reminder content regeneration failed, re-sending previous message", "id", id, "error", err)
		} else {
			msg = fresh
		}
	}

	// Regeneration can take a while; the chain may have been cancelled
	// under us. Nothing may be sent once cancellation has returned.
	if !s.live(id) {
		slog.Debug("Reminder cancelled mid-fire, dropping", "id", id)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	err := s.sender.SendMessage(ctx, req.UserID, msg)
	cancel()
	if err != nil {
		// Delivery failure does not break the chain.
		slog.Error("Reminder delivery failed", "id", id, "error", err)
	} else {
		slog.Debug("Reminder delivered", "id", id)
		if req.AfterSend != nil {
			req.AfterSend()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		// Cancelled while the send was in flight; the chain is dead.
		slog.Debug("Reminder cancelled mid-fire, not re-arming", "id", id)
		return
	}
	delete(s.entries, id)
	if s.stopped {
		return
	}
	if req.Occurrences != Unbounded {
		req.Occurrences--
		if req.Occurrences <= 0 {
			slog.Debug("Reminder chain complete", "id", id)
			return
		}
	}
	req.Message = msg
	req.FireAt = req.FireAt.Add(req.Interval)
	s.armLocked(req, s.now())
}

// live reports whether an occurrence is still registered.
func (s *Scheduler) live(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[id]
	return ok
}

// CancelForUser stops every chain for a user and reports how many were
// cancelled.
func (s *Scheduler) CancelForUser(userID string) int {
	return s.cancel(func(r Request) bool { return r.UserID == userID })
}

// CancelKind stops a user's chains of one kind, leaving the rest intact.
func (s *Scheduler) CancelKind(userID string, kind Kind) int {
	return s.cancel(func(r Request) bool { return r.UserID == userID && r.Kind == kind })
}

func (s *Scheduler) cancel(match func(Request) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.entries {
		if match(e.req) {
			e.handle.Stop()
			delete(s.entries, id)
			n++
			slog.Debug("Reminder occurrence cancelled", "id", id)
		}
	}
	return n
}

// Active reports whether a user has a live chain of the given kind.
func (s *Scheduler) Active(userID string, kind Kind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.req.UserID == userID && e.req.Kind == kind {
			return true
		}
	}
	return false
}

// Len reports the number of armed occurrences.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Stop cancels all chains and rejects further scheduling.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for id, e := range s.entries {
		e.handle.Stop()
		delete(s.entries, id)
	}
	slog.Info("Reminder scheduler stopped")
}
