package flow

import (
	"context"

	"github.com/aliya-health/aliyabot/internal/messages"
	"github.com/aliya-health/aliyabot/internal/models"
	"github.com/aliya-health/aliyabot/internal/session"
)

func (e *Engine) handleMainMenu(ctx context.Context, s *session.Session, input, _ string) error {
	switch input {
	case "1":
		return e.startAssessment(ctx, s)
	case "2":
		e.prompt(ctx, s, models.StepSymptomDescribe)
	case "3":
		return e.startFitnessPlan(ctx, s)
	case "4":
		return e.startMealPlan(ctx, s)
	case "5":
		if s.Get(session.FieldSex) != "female" {
			e.send(ctx, s.UserID, messages.Get(messages.KeyErrorNotAvailable, nil))
			e.sendMainMenu(ctx, s)
			return nil
		}
		return e.startMenstrualTracking(ctx, s)
	case "6":
		e.prompt(ctx, s, models.StepMedicationName)
	case "7":
		e.prompt(ctx, s, models.StepDailyTips)
	default:
		// Anything unrecognized just gets the menu again; the distinct
		// error reply is reserved for options that exist but are
		// unavailable to this profile.
		e.sendMainMenu(ctx, s)
	}
	return nil
}
