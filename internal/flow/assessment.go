package flow

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aliya-health/aliyabot/internal/genai"
	"github.com/aliya-health/aliyabot/internal/messages"
	"github.com/aliya-health/aliyabot/internal/models"
	"github.com/aliya-health/aliyabot/internal/session"
)

// startAssessment begins the 15-question health assessment.
func (e *Engine) startAssessment(ctx context.Context, s *session.Session) error {
	e.send(ctx, s.UserID, messages.Get(messages.KeyAssessmentStart, nil))
	s.SetInt(session.FieldQuestionIndex, 0)
	s.Step = models.StepHealthAssessment
	e.send(ctx, s.UserID, messages.Prompt(models.AssessmentQuestions[0]))
	return nil
}

// handleAssessmentAnswer records one answer and either asks the next
// question or scores and closes the assessment.
func (e *Engine) handleAssessmentAnswer(ctx context.Context, s *session.Session, input, _ string) error {
	idx := s.GetInt(session.FieldQuestionIndex)
	if idx < 0 || idx >= len(models.AssessmentQuestions) {
		// Corrupted index; restart rather than guess.
		return e.startAssessment(ctx, s)
	}

	q := models.AssessmentQuestions[idx]
	s.Set(session.Field(q.FieldName()), input)

	idx++
	if idx < len(models.AssessmentQuestions) {
		s.SetInt(session.FieldQuestionIndex, idx)
		e.send(ctx, s.UserID, messages.Prompt(models.AssessmentQuestions[idx]))
		return nil
	}
	return e.finishAssessment(ctx, s)
}

func (e *Engine) finishAssessment(ctx context.Context, s *session.Session) error {
	d := healthDataFromSession(s)
	d.CreatedAt = e.now()
	score := calculateHealthScore(d)

	pc := e.promptContext(s)
	pc.Score = score
	pc.AssessmentSummary = assessmentSummary(s)
	// Generation failure falls back to canned text; the assessment is
	// still recorded.
	analysis, _ := e.gen.GenerateFor(ctx, genai.TopicOverallHealth, pc)

	cctx, cancel := e.withStoreTimeout(ctx)
	defer cancel()
	if err := e.store.AddHealthData(cctx, d); err != nil {
		return wrapStoreErr("save health data", err)
	}
	a := models.HealthAssessment{UserID: s.UserID, Score: score, Analysis: analysis, CreatedAt: d.CreatedAt}
	if err := e.store.AddHealthAssessment(cctx, a); err != nil {
		return wrapStoreErr("save health assessment", err)
	}

	e.send(ctx, s.UserID, messages.Get(messages.KeyAssessmentResult, map[string]string{
		"score":    strconv.Itoa(score),
		"analysis": analysis,
	}))
	e.sendMainMenu(ctx, s)
	return nil
}

func healthDataFromSession(s *session.Session) models.HealthData {
	get := func(step models.Step) string { return s.Get(session.Field(step.FieldName())) }
	getInt := func(step models.Step) int { return s.GetInt(session.Field(step.FieldName())) }
	return models.HealthData{
		UserID:               s.UserID,
		OverallHealth:        get(models.StepAssessOverallHealth),
		FruitVeggie:          getInt(models.StepAssessFruitVeggie),
		SugaryDrinks:         get(models.StepAssessSugaryDrinks),
		ExerciseDays:         getInt(models.StepAssessExerciseDays),
		SittingBreaks:        get(models.StepAssessSittingBreaks),
		SleepHours:           getInt(models.StepAssessSleepHours),
		WakeRefreshed:        get(models.StepAssessWakeRefreshed),
		StressAnxiety:        get(models.StepAssessStressAnxiety),
		RelaxationTechniques: get(models.StepAssessRelaxation),
		ChronicConditions:    get(models.StepAssessChronic),
		FamilyHistory:        get(models.StepAssessFamilyHistory),
		SmokingVaping:        get(models.StepAssessSmokingVaping),
		AlcoholDrinks:        getInt(models.StepAssessAlcoholDrinks),
		HeadachesBodyAches:   get(models.StepAssessHeadaches),
		WeightChanges:        get(models.StepAssessWeightChanges),
	}
}

func assessmentSummary(s *session.Session) string {
	var b strings.Builder
	for _, q := range models.AssessmentQuestions {
		field := q.FieldName()
		fmt.Fprintf(&b, "%s: %s\n", strings.ReplaceAll(field, "_", " "), s.Get(session.Field(field)))
	}
	return b.String()
}

// calculateHealthScore maps the assessment answers to a 0-100 score.
// Point weights sum past 100 so consistently healthy answers saturate.
func calculateHealthScore(d models.HealthData) int {
	score := 0

	switch d.OverallHealth {
	case "excellent":
		score += 10
	case "good":
		score += 7
	case "fair":
		score += 4
	}

	switch {
	case d.FruitVeggie >= 5:
		score += 10
	case d.FruitVeggie >= 3:
		score += 7
	case d.FruitVeggie >= 1:
		score += 4
	}

	switch d.SugaryDrinks {
	case "never":
		score += 10
	case "rarely":
		score += 7
	case "weekly":
		score += 4
	}

	switch {
	case d.ExerciseDays >= 5:
		score += 10
	case d.ExerciseDays >= 3:
		score += 7
	case d.ExerciseDays >= 1:
		score += 4
	}

	switch d.SittingBreaks {
	case "often":
		score += 5
	case "sometimes":
		score += 3
	case "rarely":
		score += 1
	}

	switch {
	case d.SleepHours >= 7 && d.SleepHours <= 9:
		score += 10
	case d.SleepHours == 6 || d.SleepHours == 10:
		score += 6
	default:
		score += 2
	}

	switch d.WakeRefreshed {
	case "always":
		score += 5
	case "mostly":
		score += 4
	case "sometimes":
		score += 2
	}

	switch d.StressAnxiety {
	case "never":
		score += 10
	case "sometimes":
		score += 6
	case "mostly":
		score += 3
	}

	if d.RelaxationTechniques == "yes" {
		score += 5
	}
	if d.ChronicConditions == "no" {
		score += 5
	}
	if d.FamilyHistory == "no" {
		score += 5
	}
	if d.SmokingVaping == "no" {
		score += 10
	}

	switch {
	case d.AlcoholDrinks == 0:
		score += 5
	case d.AlcoholDrinks <= 7:
		score += 3
	}

	switch d.HeadachesBodyAches {
	case "never":
		score += 5
	case "sometimes":
		score += 3
	case "mostly":
		score += 1
	}

	if d.WeightChanges == "no" {
		score += 5
	}

	if score > 100 {
		score = 100
	}
	return score
}
