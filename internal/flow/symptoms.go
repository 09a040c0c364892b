package flow

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/aliya-health/aliyabot/internal/genai"
	"github.com/aliya-health/aliyabot/internal/messages"
	"github.com/aliya-health/aliyabot/internal/models"
	"github.com/aliya-health/aliyabot/internal/reminder"
	"github.com/aliya-health/aliyabot/internal/session"
)

// handleSymptomDescribe keeps the raw description so the stored record
// and the generation prompt read as the user wrote them.
func (e *Engine) handleSymptomDescribe(ctx context.Context, s *session.Session, _, raw string) error {
	s.Set(session.FieldSymptoms, raw)
	e.prompt(ctx, s, models.StepSymptomSeverity)
	return nil
}

func (e *Engine) handleSymptomSeverity(ctx context.Context, s *session.Session, input, _ string) error {
	s.Set(session.FieldSeverity, input)
	e.prompt(ctx, s, models.StepSymptomDuration)
	return nil
}

func (e *Engine) handleSymptomDuration(ctx context.Context, s *session.Session, input, _ string) error {
	s.Set(session.FieldSymptomDuration, input)

	pc := e.promptContext(s)
	pc.Symptoms = s.Get(session.FieldSymptoms)
	pc.Severity = s.Get(session.FieldSeverity)
	pc.DurationDays = s.GetInt(session.FieldSymptomDuration)
	analysis, _ := e.gen.GenerateFor(ctx, genai.TopicSymptoms, pc)

	d := models.SymptomDiagnosis{
		UserID:       s.UserID,
		Symptoms:     pc.Symptoms,
		Severity:     pc.Severity,
		DurationDays: pc.DurationDays,
		Analysis:     analysis,
		CreatedAt:    e.now(),
	}
	cctx, cancel := e.withStoreTimeout(ctx)
	defer cancel()
	if err := e.store.AddSymptomDiagnosis(cctx, d); err != nil {
		return wrapStoreErr("save symptom diagnosis", err)
	}

	e.send(ctx, s.UserID, messages.Get(messages.KeySymptomResult, map[string]string{"analysis": analysis}))
	e.scheduleSymptomFollowup(s.UserID, analysis)
	e.sendMainMenu(ctx, s)
	return nil
}

// scheduleSymptomFollowup arms a one-shot check-in 24 hours out. When it
// delivers, the user's session moves to the follow-up step so their next
// reply is read as a symptom update.
func (e *Engine) scheduleSymptomFollowup(userID, analysis string) {
	_, err := e.reminders.Schedule(reminder.Request{
		UserID:      userID,
		Kind:        reminder.KindSymptomFollowup,
		Message:     messages.Get(messages.KeySymptomFollowupPrompt, nil),
		FireAt:      e.now().Add(24 * time.Hour),
		Occurrences: 1,
		AfterSend: func() {
			unlock := e.lockUser(userID)
			defer unlock()
			sess := e.sessions.Get(userID)
			sess.Set(session.FieldPreviousAnalysis, analysis)
			sess.Step = models.StepSymptomFollowup
		},
	})
	if err != nil {
		slog.Error("Failed to schedule symptom follow-up", "userID", userID, "error", err)
	}
}

func (e *Engine) handleSymptomFollowup(ctx context.Context, s *session.Session, _, raw string) error {
	pc := e.promptContext(s)
	pc.PreviousAnalysis = s.Get(session.FieldPreviousAnalysis)
	pc.Update = raw
	analysis, _ := e.gen.GenerateFor(ctx, genai.TopicSymptomFollowup, pc)

	e.send(ctx, s.UserID, analysis)
	// The escalation warning keys on the analysis, not the user's own
	// wording: the model decides whether attention is warranted.
	if strings.Contains(strings.ToLower(analysis), "seek medical attention") {
		e.send(ctx, s.UserID, messages.Get(messages.KeySymptomPersist, nil))
	}
	e.sendMainMenu(ctx, s)
	return nil
}
