package flow

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/aliya-health/aliyabot/internal/genai"
	"github.com/aliya-health/aliyabot/internal/messages"
	"github.com/aliya-health/aliyabot/internal/models"
	"github.com/aliya-health/aliyabot/internal/reminder"
	"github.com/aliya-health/aliyabot/internal/session"
)

// startFitnessPlan enters the fitness sub-flow, asking for confirmation
// first when an active plan already exists.
func (e *Engine) startFitnessPlan(ctx context.Context, s *session.Session) error {
	cctx, cancel := e.withStoreTimeout(ctx)
	defer cancel()
	existing, err := e.store.GetFitnessPlan(cctx, s.UserID)
	if err != nil {
		return wrapStoreErr("load fitness plan", err)
	}
	if existing != nil && existing.DaysRemaining(e.now()) > 0 {
		e.prompt(ctx, s, models.StepConfirmNewFitnessPlan)
		return nil
	}
	e.prompt(ctx, s, models.StepFitnessPlanGoal)
	return nil
}

func (e *Engine) handleConfirmNewFitnessPlan(ctx context.Context, s *session.Session, input, _ string) error {
	if input != "yes" {
		e.send(ctx, s.UserID, messages.Get(messages.KeyFitnessPlanKept, nil))
		e.sendMainMenu(ctx, s)
		return nil
	}
	cctx, cancel := e.withStoreTimeout(ctx)
	defer cancel()
	if err := e.store.DeleteFitnessPlan(cctx, s.UserID); err != nil {
		return wrapStoreErr("delete fitness plan", err)
	}
	e.reminders.CancelKind(s.UserID, reminder.KindFitness)
	e.send(ctx, s.UserID, messages.Get(messages.KeyFitnessPlanReplaced, nil))
	e.prompt(ctx, s, models.StepFitnessPlanGoal)
	return nil
}

func (e *Engine) handleFitnessPlanGoal(ctx context.Context, s *session.Session, input, _ string) error {
	s.Set(session.FieldFitnessGoal, input)
	e.prompt(ctx, s, models.StepFitnessPlanType)
	return nil
}

func (e *Engine) handleFitnessPlanType(ctx context.Context, s *session.Session, input, _ string) error {
	s.Set(session.FieldFitnessType, input)
	e.prompt(ctx, s, models.StepFitnessPlanDuration)
	return nil
}

func (e *Engine) handleFitnessPlanDuration(ctx context.Context, s *session.Session, input, _ string) error {
	s.Set(session.FieldFitnessDuration, input)
	e.prompt(ctx, s, models.StepFitnessPlanDailyTime)
	return nil
}

func (e *Engine) handleFitnessPlanDailyTime(ctx context.Context, s *session.Session, input, _ string) error {
	s.Set(session.FieldFitnessDailyTime, input)
	e.prompt(ctx, s, models.StepFitnessPlanRemindTime)
	return nil
}

func (e *Engine) handleFitnessPlanRemindTime(ctx context.Context, s *session.Session, input, _ string) error {
	s.Set(session.FieldFitnessRemindTime, input)

	pc := e.promptContext(s)
	pc.FitnessGoal = s.Get(session.FieldFitnessGoal)
	pc.FitnessType = s.Get(session.FieldFitnessType)
	pc.DailyTime = s.Get(session.FieldFitnessDailyTime)
	planText, _ := e.gen.GenerateFor(ctx, genai.TopicFitnessPlan, pc)

	p := &models.FitnessPlan{
		UserID:       s.UserID,
		Goal:         pc.FitnessGoal,
		Type:         pc.FitnessType,
		DurationDays: s.GetInt(session.FieldFitnessDuration),
		DailyTime:    pc.DailyTime,
		ReminderTime: input,
		Plan:         planText,
		CreatedAt:    e.now(),
	}
	cctx, cancel := e.withStoreTimeout(ctx)
	defer cancel()
	if err := e.store.SaveFitnessPlan(cctx, p); err != nil {
		return wrapStoreErr("save fitness plan", err)
	}

	e.scheduleFitnessReminders(s.UserID, p, pc)

	e.send(ctx, s.UserID, messages.Get(messages.KeyFitnessPlanResult, map[string]string{
		"plan":     planText,
		"duration": strconv.Itoa(p.DurationDays),
	}))
	e.sendMainMenu(ctx, s)
	return nil
}

// scheduleFitnessReminders arms the daily workout chain. Each delivery
// regenerates the day's plan; on generation failure the previous plan is
// re-sent.
func (e *Engine) scheduleFitnessReminders(userID string, p *models.FitnessPlan, pc genai.PromptContext) {
	fireAt, err := NextOccurrence(p.ReminderTime, e.now().In(e.loc))
	if err != nil {
		slog.Error("Invalid fitness reminder time", "userID", userID, "time", p.ReminderTime, "error", err)
		return
	}
	_, err = e.reminders.Schedule(reminder.Request{
		UserID:      userID,
		Kind:        reminder.KindFitness,
		Message:     messages.Get(messages.KeyFitnessReminder, map[string]string{"plan": p.Plan}),
		FireAt:      fireAt,
		Occurrences: p.DurationDays,
		Regenerate: func(ctx context.Context) (string, error) {
			fresh, err := e.gen.GenerateFor(ctx, genai.TopicFitnessPlan, pc)
			if err != nil {
				return "", err
			}
			cctx, cancel := context.WithTimeout(ctx, storeTimeout)
			if err := e.store.UpdateFitnessPlanBody(cctx, userID, fresh); err != nil {
				slog.Warn("Failed to persist regenerated fitness plan", "userID", userID, "error", err)
			}
			cancel()
			return messages.Get(messages.KeyFitnessReminder, map[string]string{"plan": fresh}), nil
		},
	})
	if err != nil {
		slog.Error("Failed to schedule fitness reminders", "userID", userID, "error", err)
	}
}
