package flow

import (
	"context"

	"github.com/aliya-health/aliyabot/internal/messages"
	"github.com/aliya-health/aliyabot/internal/models"
	"github.com/aliya-health/aliyabot/internal/session"
)

func (e *Engine) handleIntroduction(ctx context.Context, s *session.Session, _, _ string) error {
	e.send(ctx, s.UserID, messages.Get(messages.KeyIntroduction, nil))
	s.Step = models.StepWaitingForStart
	return nil
}

func (e *Engine) handleWaitingForStart(ctx context.Context, s *session.Session, input, _ string) error {
	if input != "start" {
		e.send(ctx, s.UserID, messages.Get(messages.KeyIntroduction, nil))
		return nil
	}
	e.send(ctx, s.UserID, messages.Get(messages.KeyDisclaimer, nil))
	s.Step = models.StepWaitingForConsent
	return nil
}

func (e *Engine) handleWaitingForConsent(ctx context.Context, s *session.Session, input, _ string) error {
	switch input {
	case "accept":
		e.prompt(ctx, s, models.StepOnboardingName)
	case "decline":
		e.send(ctx, s.UserID, messages.Get(messages.KeyDeclineResponse, nil))
		e.sessions.Clear(s.UserID)
	default:
		e.send(ctx, s.UserID, messages.Get(messages.KeyErrorInvalidInput, nil))
		e.send(ctx, s.UserID, messages.Get(messages.KeyDisclaimer, nil))
	}
	return nil
}

// Name and location keep the casing the user typed.
func (e *Engine) handleOnboardingName(ctx context.Context, s *session.Session, _, raw string) error {
	s.Set(session.FieldName, raw)
	e.prompt(ctx, s, models.StepOnboardingAge)
	return nil
}

func (e *Engine) handleOnboardingAge(ctx context.Context, s *session.Session, input, _ string) error {
	s.Set(session.FieldAge, input)
	e.prompt(ctx, s, models.StepOnboardingSex)
	return nil
}

func (e *Engine) handleOnboardingSex(ctx context.Context, s *session.Session, input, _ string) error {
	s.Set(session.FieldSex, input)
	e.prompt(ctx, s, models.StepOnboardingHeight)
	return nil
}

func (e *Engine) handleOnboardingHeight(ctx context.Context, s *session.Session, input, _ string) error {
	s.Set(session.FieldHeight, input)
	e.prompt(ctx, s, models.StepOnboardingWeight)
	return nil
}

func (e *Engine) handleOnboardingWeight(ctx context.Context, s *session.Session, input, _ string) error {
	s.Set(session.FieldWeight, input)
	e.prompt(ctx, s, models.StepOnboardingLocation)
	return nil
}

func (e *Engine) handleOnboardingLocation(ctx context.Context, s *session.Session, _, raw string) error {
	s.Set(session.FieldLocation, raw)
	if s.Get(session.FieldSex) == "female" {
		e.prompt(ctx, s, models.StepOnboardingMenstrual)
		return nil
	}
	s.Set(session.FieldMenstrual, "false")
	return e.finishOnboarding(ctx, s)
}

func (e *Engine) handleOnboardingMenstrual(ctx context.Context, s *session.Session, input, _ string) error {
	if input == "yes" {
		s.Set(session.FieldMenstrual, "true")
	} else {
		s.Set(session.FieldMenstrual, "false")
	}
	return e.finishOnboarding(ctx, s)
}

// finishOnboarding persists the profile and offers the first assessment.
func (e *Engine) finishOnboarding(ctx context.Context, s *session.Session) error {
	u := &models.User{
		UserID:    s.UserID,
		Name:      s.Get(session.FieldName),
		Age:       s.GetInt(session.FieldAge),
		Sex:       s.Get(session.FieldSex),
		Height:    s.GetInt(session.FieldHeight),
		Weight:    s.GetInt(session.FieldWeight),
		Location:  s.Get(session.FieldLocation),
		Menstrual: s.Get(session.FieldMenstrual) == "true",
		CreatedAt: e.now(),
	}
	cctx, cancel := e.withStoreTimeout(ctx)
	defer cancel()
	if err := e.store.SaveUser(cctx, u); err != nil {
		return wrapStoreErr("save user", err)
	}

	e.send(ctx, s.UserID, messages.Get(messages.KeyOnboardingComplete, map[string]string{"name": u.Name}))
	e.prompt(ctx, s, models.StepAskHealthAssessment)
	return nil
}

func (e *Engine) handleAskHealthAssessment(ctx context.Context, s *session.Session, input, _ string) error {
	if input == "now" {
		return e.startAssessment(ctx, s)
	}
	e.sendMainMenu(ctx, s)
	return nil
}
