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

func (e *Engine) startMealPlan(ctx context.Context, s *session.Session) error {
	cctx, cancel := e.withStoreTimeout(ctx)
	defer cancel()
	existing, err := e.store.GetMealPlan(cctx, s.UserID)
	if err != nil {
		return wrapStoreErr("load meal plan", err)
	}
	if existing != nil && existing.DaysRemaining(e.now()) > 0 {
		e.prompt(ctx, s, models.StepConfirmNewMealPlan)
		return nil
	}
	e.prompt(ctx, s, models.StepMealPlanPreference)
	return nil
}

func (e *Engine) handleConfirmNewMealPlan(ctx context.Context, s *session.Session, input, _ string) error {
	if input != "yes" {
		e.send(ctx, s.UserID, messages.Get(messages.KeyMealPlanKept, nil))
		e.sendMainMenu(ctx, s)
		return nil
	}
	cctx, cancel := e.withStoreTimeout(ctx)
	defer cancel()
	if err := e.store.DeleteMealPlan(cctx, s.UserID); err != nil {
		return wrapStoreErr("delete meal plan", err)
	}
	e.reminders.CancelKind(s.UserID, reminder.KindMeal)
	e.send(ctx, s.UserID, messages.Get(messages.KeyMealPlanReplaced, nil))
	e.prompt(ctx, s, models.StepMealPlanPreference)
	return nil
}

func (e *Engine) handleMealPlanPreference(ctx context.Context, s *session.Session, input, _ string) error {
	s.Set(session.FieldMealPreference, input)
	e.prompt(ctx, s, models.StepMealPlanGoal)
	return nil
}

func (e *Engine) handleMealPlanGoal(ctx context.Context, s *session.Session, input, _ string) error {
	s.Set(session.FieldMealGoal, input)
	e.prompt(ctx, s, models.StepMealPlanDuration)
	return nil
}

func (e *Engine) handleMealPlanDuration(ctx context.Context, s *session.Session, input, _ string) error {
	s.Set(session.FieldMealDuration, input)
	e.prompt(ctx, s, models.StepMealPlanRemindTime)
	return nil
}

func (e *Engine) handleMealPlanRemindTime(ctx context.Context, s *session.Session, input, _ string) error {
	s.Set(session.FieldMealRemindTime, input)

	pc := e.promptContext(s)
	pc.MealPreference = s.Get(session.FieldMealPreference)
	pc.MealGoal = s.Get(session.FieldMealGoal)
	planText, _ := e.gen.GenerateFor(ctx, genai.TopicMealPlan, pc)

	p := &models.MealPlan{
		UserID:       s.UserID,
		Preference:   pc.MealPreference,
		Goal:         pc.MealGoal,
		DurationDays: s.GetInt(session.FieldMealDuration),
		ReminderTime: input,
		Plan:         planText,
		CreatedAt:    e.now(),
	}
	cctx, cancel := e.withStoreTimeout(ctx)
	defer cancel()
	if err := e.store.SaveMealPlan(cctx, p); err != nil {
		return wrapStoreErr("save meal plan", err)
	}

	e.scheduleMealReminders(s.UserID, p, pc)

	e.send(ctx, s.UserID, messages.Get(messages.KeyMealPlanResult, map[string]string{
		"plan":     planText,
		"duration": strconv.Itoa(p.DurationDays),
	}))
	e.sendMainMenu(ctx, s)
	return nil
}

func (e *Engine) scheduleMealReminders(userID string, p *models.MealPlan, pc genai.PromptContext) {
	fireAt, err := NextOccurrence(p.ReminderTime, e.now().In(e.loc))
	if err != nil {
		slog.Error("Invalid meal reminder time", "userID", userID, "time", p.ReminderTime, "error", err)
		return
	}
	_, err = e.reminders.Schedule(reminder.Request{
		UserID:      userID,
		Kind:        reminder.KindMeal,
		Message:     messages.Get(messages.KeyMealReminder, map[string]string{"plan": p.Plan}),
		FireAt:      fireAt,
		Occurrences: p.DurationDays,
		Regenerate: func(ctx context.Context) (string, error) {
			fresh, err := e.gen.GenerateFor(ctx, genai.TopicMealPlan, pc)
			if err != nil {
				return "", err
			}
			cctx, cancel := context.WithTimeout(ctx, storeTimeout)
			if err := e.store.UpdateMealPlanBody(cctx, userID, fresh); err != nil {
				slog.Warn("Failed to persist regenerated meal plan", "userID", userID, "error", err)
			}
			cancel()
			return messages.Get(messages.KeyMealReminder, map[string]string{"plan": fresh}), nil
		},
	})
	if err != nil {
		slog.Error("Failed to schedule meal reminders", "userID", userID, "error", err)
	}
}
