// Package flow implements the conversation engine: one inbound message
// moves one user's session through the step machine and produces the
// outbound replies.
//
// Dispatch is a step-to-handler table. Unknown steps fall back to the
// main menu, and any handler error is caught at the top level so the user
// always gets a reply.
package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aliya-health/aliyabot/internal/genai"
	"github.com/aliya-health/aliyabot/internal/messages"
	"github.com/aliya-health/aliyabot/internal/models"
	"github.com/aliya-health/aliyabot/internal/reminder"
	"github.com/aliya-health/aliyabot/internal/session"
	"github.com/aliya-health/aliyabot/internal/store"
	"github.com/aliya-health/aliyabot/internal/validation"
)

const storeTimeout = 5 * time.Second

// Sender delivers outbound messages to a recipient.
type Sender interface {
	SendMessage(ctx context.Context, to, body string) error
}

// Generator produces AI content for a topic. Implementations return their
// fallback text alongside the error when generation fails.
type Generator interface {
	GenerateFor(ctx context.Context, topic genai.Topic, pc genai.PromptContext) (string, error)
}

// Reminders is the slice of the reminder scheduler the engine drives.
type Reminders interface {
	Schedule(req reminder.Request) (string, error)
	CancelForUser(userID string) int
	CancelKind(userID string, kind reminder.Kind) int
}

// A handler receives the normalized input (trimmed, lowercased) for
// matching plus the raw trimmed text, which free-text fields store so
// casing the user typed is preserved.
type handlerFunc func(ctx context.Context, s *session.Session, input, raw string) error

// Engine routes inbound messages through the conversation step machine.
type Engine struct {
	store     store.Store
	sessions  *session.Manager
	sender    Sender
	gen       Generator
	reminders Reminders
	loc       *time.Location
	now       func() time.Time
	handlers  map[models.Step]handlerFunc

	// userLocks serializes session mutation per user. Inbound messages are
	// already ordered by the dispatcher, but reminder callbacks fire on
	// timer goroutines and touch the same sessions.
	userLocks sync.Map // userID -> *sync.Mutex
}

// lockUser acquires the per-user mutex and returns the unlock func.
func (e *Engine) lockUser(userID string) func() {
	mu, _ := e.userLocks.LoadOrStore(userID, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock overrides the engine's time source.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// WithLocation sets the timezone reminder times are interpreted in.
func WithLocation(loc *time.Location) EngineOption {
	return func(e *Engine) { e.loc = loc }
}

// NewEngine wires the conversation engine.
func NewEngine(st store.Store, sessions *session.Manager, sender Sender, gen Generator, reminders Reminders, opts ...EngineOption) *Engine {
	e := &Engine{
		store:     st,
		sessions:  sessions,
		sender:    sender,
		gen:       gen,
		reminders: reminders,
		loc:       DefaultLocation(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.handlers = map[models.Step]handlerFunc{
		models.StepIntroduction:      e.handleIntroduction,
		models.StepWaitingForStart:   e.handleWaitingForStart,
		models.StepWaitingForConsent: e.handleWaitingForConsent,

		models.StepOnboardingName:      e.handleOnboardingName,
		models.StepOnboardingAge:       e.handleOnboardingAge,
		models.StepOnboardingSex:       e.handleOnboardingSex,
		models.StepOnboardingHeight:    e.handleOnboardingHeight,
		models.StepOnboardingWeight:    e.handleOnboardingWeight,
		models.StepOnboardingLocation:  e.handleOnboardingLocation,
		models.StepOnboardingMenstrual: e.handleOnboardingMenstrual,
		models.StepAskHealthAssessment: e.handleAskHealthAssessment,

		models.StepMainMenu:         e.handleMainMenu,
		models.StepHealthAssessment: e.handleAssessmentAnswer,

		models.StepSymptomDescribe: e.handleSymptomDescribe,
		models.StepSymptomSeverity: e.handleSymptomSeverity,
		models.StepSymptomDuration: e.handleSymptomDuration,
		models.StepSymptomFollowup: e.handleSymptomFollowup,

		models.StepConfirmNewFitnessPlan: e.handleConfirmNewFitnessPlan,
		models.StepFitnessPlanGoal:       e.handleFitnessPlanGoal,
		models.StepFitnessPlanType:       e.handleFitnessPlanType,
		models.StepFitnessPlanDuration:   e.handleFitnessPlanDuration,
		models.StepFitnessPlanDailyTime:  e.handleFitnessPlanDailyTime,
		models.StepFitnessPlanRemindTime: e.handleFitnessPlanRemindTime,

		models.StepConfirmNewMealPlan: e.handleConfirmNewMealPlan,
		models.StepMealPlanPreference: e.handleMealPlanPreference,
		models.StepMealPlanGoal:       e.handleMealPlanGoal,
		models.StepMealPlanDuration:   e.handleMealPlanDuration,
		models.StepMealPlanRemindTime: e.handleMealPlanRemindTime,

		models.StepMenstrualUpdate:      e.handleMenstrualUpdate,
		models.StepMenstrualLastPeriod:  e.handleMenstrualLastPeriod,
		models.StepMenstrualCycleLength: e.handleMenstrualCycleLength,

		models.StepMedicationName: e.handleMedicationName,
		models.StepMedicationTime: e.handleMedicationTime,

		models.StepDailyTips: e.handleDailyTips,
	}
	return e
}

// HandleMessage processes one inbound message for a user. The messaging
// dispatcher guarantees at most one call per user at a time, so session
// access inside a handler needs no further locking.
func (e *Engine) HandleMessage(ctx context.Context, userID, body string) {
	raw := strings.TrimSpace(body)
	input := strings.ToLower(raw)
	slog.Debug("Handling inbound message", "userID", userID, "input_len", len(input))

	unlock := e.lockUser(userID)
	defer unlock()

	e.recordResponse(ctx, userID, raw)

	s := e.sessions.Get(userID)
	if len(s.Data) == 0 {
		e.mergeStoredProfile(ctx, s)
	}

	// Global cancel, honored from any step: wipe reminders and the
	// in-flight sub-flow, back to the menu. Checked before dispatch so a
	// free-text step cannot swallow it as field input.
	if input == "cancel" {
		n := e.reminders.CancelForUser(userID)
		slog.Info("User cancelled all reminders", "userID", userID, "cancelled", n)
		e.clearTipsSubscription(ctx, userID)
		e.send(ctx, userID, messages.Get(messages.KeyCancelled, nil))
		e.sendMainMenu(ctx, s)
		return
	}

	if !e.validateInput(ctx, s, input) {
		return
	}

	h, ok := e.handlers[s.Step]
	if !ok {
		slog.Warn("No handler for step, returning to main menu", "userID", userID, "step", s.Step)
		e.sendMainMenu(ctx, s)
		return
	}
	if err := h(ctx, s, input, raw); err != nil {
		slog.Error("Handler failed", "userID", userID, "step", s.Step, "error", err)
		e.send(ctx, userID, messages.Get(messages.KeyErrorGeneral, nil))
		e.sendMainMenu(ctx, s)
	}
}

// validateInput checks the message against the current step's validator.
// During the assessment the active question supplies the validator. On
// failure the user gets the error text plus the prompt again.
func (e *Engine) validateInput(ctx context.Context, s *session.Session, input string) bool {
	step := s.Step
	if step == models.StepHealthAssessment {
		idx := s.GetInt(session.FieldQuestionIndex)
		if idx < 0 || idx >= len(models.AssessmentQuestions) {
			return true
		}
		step = models.AssessmentQuestions[idx]
	}
	v, ok := validation.ForStep(step)
	if !ok || v(input) {
		return true
	}
	e.send(ctx, s.UserID, messages.Get(messages.KeyErrorInvalidInput, nil))
	e.send(ctx, s.UserID, messages.Prompt(step))
	return false
}

// send delivers one outbound message, logging rather than propagating
// transport errors.
func (e *Engine) send(ctx context.Context, userID, body string) {
	if err := e.sender.SendMessage(ctx, userID, body); err != nil {
		slog.Error("Failed to send message", "userID", userID, "error", err)
	}
}

// prompt moves the session to a step and sends that step's prompt.
func (e *Engine) prompt(ctx context.Context, s *session.Session, step models.Step) {
	s.Step = step
	e.send(ctx, s.UserID, messages.Prompt(step))
}

// sendMainMenu resets the sub-flow state and shows the menu.
func (e *Engine) sendMainMenu(ctx context.Context, s *session.Session) {
	s.ClearTransient()
	s.Step = models.StepMainMenu
	e.send(ctx, s.UserID, messages.MainMenu(s.Get(session.FieldSex)))
}

func (e *Engine) mergeStoredProfile(ctx context.Context, s *session.Session) {
	cctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	u, err := e.store.GetUser(cctx, s.UserID)
	if err != nil {
		slog.Error("Failed to load user profile", "userID", s.UserID, "error", err)
		return
	}
	if u != nil {
		s.MergeProfile(u)
		if s.Step == models.StepIntroduction {
			s.Step = models.StepMainMenu
		}
	}
}

func (e *Engine) recordResponse(ctx context.Context, userID, body string) {
	cctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	r := models.Response{From: userID, Body: body, Time: e.now().Unix()}
	if err := e.store.AddResponse(cctx, r); err != nil {
		slog.Warn("Failed to record inbound response", "userID", userID, "error", err)
	}
}

// clearTipsSubscription upserts the daily-tips flag to false; the row is
// kept so re-subscribing is a plain update.
func (e *Engine) clearTipsSubscription(ctx context.Context, userID string) {
	cctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	sub := &models.Subscription{UserID: userID, DailyTips: false, CreatedAt: e.now()}
	if err := e.store.SaveSubscription(cctx, sub); err != nil {
		slog.Warn("Failed to clear tips subscription", "userID", userID, "error", err)
	}
}

// promptContext assembles the profile portion of a generation request.
func (e *Engine) promptContext(s *session.Session) genai.PromptContext {
	return genai.PromptContext{
		Name:     s.Get(session.FieldName),
		Age:      s.GetInt(session.FieldAge),
		Sex:      s.Get(session.FieldSex),
		Height:   s.GetInt(session.FieldHeight),
		Weight:   s.GetInt(session.FieldWeight),
		Location: s.Get(session.FieldLocation),
	}
}

func (e *Engine) withStoreTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, storeTimeout)
}

func wrapStoreErr(op string, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
