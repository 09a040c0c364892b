package flow

import (
	"context"
	"time"

	"github.com/aliya-health/aliyabot/internal/genai"
	"github.com/aliya-health/aliyabot/internal/messages"
	"github.com/aliya-health/aliyabot/internal/models"
	"github.com/aliya-health/aliyabot/internal/session"
)

// startMenstrualTracking enters the tracking sub-flow. Callers have
// already verified the user is female.
func (e *Engine) startMenstrualTracking(ctx context.Context, s *session.Session) error {
	cctx, cancel := e.withStoreTimeout(ctx)
	defer cancel()
	existing, err := e.store.GetMenstrualCycle(cctx, s.UserID)
	if err != nil {
		return wrapStoreErr("load menstrual cycle", err)
	}
	if existing != nil {
		e.prompt(ctx, s, models.StepMenstrualUpdate)
		return nil
	}
	e.prompt(ctx, s, models.StepMenstrualLastPeriod)
	return nil
}

func (e *Engine) handleMenstrualUpdate(ctx context.Context, s *session.Session, input, _ string) error {
	if input == "yes" {
		e.prompt(ctx, s, models.StepMenstrualLastPeriod)
		return nil
	}
	cctx, cancel := e.withStoreTimeout(ctx)
	defer cancel()
	existing, err := e.store.GetMenstrualCycle(cctx, s.UserID)
	if err != nil {
		return wrapStoreErr("load menstrual cycle", err)
	}
	if existing != nil {
		e.send(ctx, s.UserID, messages.Get(messages.KeyMenstrualResult, map[string]string{
			"next_period": existing.NextPeriod,
			"analysis":    existing.Analysis,
		}))
	}
	e.sendMainMenu(ctx, s)
	return nil
}

func (e *Engine) handleMenstrualLastPeriod(ctx context.Context, s *session.Session, input, _ string) error {
	s.Set(session.FieldLastPeriod, input)
	e.prompt(ctx, s, models.StepMenstrualCycleLength)
	return nil
}

func (e *Engine) handleMenstrualCycleLength(ctx context.Context, s *session.Session, input, _ string) error {
	s.Set(session.FieldCycleLength, input)

	lastPeriod := s.Get(session.FieldLastPeriod)
	cycleLength := s.GetInt(session.FieldCycleLength)
	start, err := time.Parse("2006-01-02", lastPeriod)
	if err != nil {
		// Validation guarantees the format; a parse failure here means
		// session data was corrupted.
		return err
	}
	nextPeriod := start.AddDate(0, 0, cycleLength).Format("2006-01-02")

	pc := e.promptContext(s)
	pc.LastPeriod = lastPeriod
	pc.CycleLength = cycleLength
	analysis, _ := e.gen.GenerateFor(ctx, genai.TopicMenstrual, pc)

	c := &models.MenstrualCycle{
		UserID:      s.UserID,
		LastPeriod:  lastPeriod,
		CycleLength: cycleLength,
		NextPeriod:  nextPeriod,
		Analysis:    analysis,
		CreatedAt:   e.now(),
	}
	cctx, cancel := e.withStoreTimeout(ctx)
	defer cancel()
	if err := e.store.SaveMenstrualCycle(cctx, c); err != nil {
		return wrapStoreErr("save menstrual cycle", err)
	}

	e.send(ctx, s.UserID, messages.Get(messages.KeyMenstrualResult, map[string]string{
		"next_period": nextPeriod,
		"analysis":    analysis,
	}))
	e.sendMainMenu(ctx, s)
	return nil
}
