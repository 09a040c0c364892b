package models

import (
	"testing"
	"time"
)

func TestFitnessPlanDaysRemaining(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		created  time.Time
		duration int
		want     int
	}{
		{"fresh plan owes full duration", now, 30, 30},
		{"half elapsed rounds up", now.Add(-36 * time.Hour), 3, 2},
		{"expired plan owes nothing", now.Add(-10 * 24 * time.Hour), 7, 0},
		{"expires exactly now", now.Add(-7 * 24 * time.Hour), 7, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := FitnessPlan{CreatedAt: tc.created, DurationDays: tc.duration}
			if got := p.DaysRemaining(now); got != tc.want {
				t.Errorf("DaysRemaining = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestAssessmentQuestionCount(t *testing.T) {
	if len(AssessmentQuestions) != 15 {
		t.Fatalf("expected 15 assessment questions, got %d", len(AssessmentQuestions))
	}
}

func TestStepFieldName(t *testing.T) {
	if got := StepAssessOverallHealth.FieldName(); got != "overall_health" {
		t.Errorf("FieldName = %q, want %q", got, "overall_health")
	}
	if got := StepMainMenu.FieldName(); got != "main_menu" {
		t.Errorf("FieldName on non-assessment step = %q, want %q", got, "main_menu")
	}
}
