package messages

import (
	"strings"
	"testing"

	"github.com/aliya-health/aliyabot/internal/models"
)

func TestGetSubstitutesPlaceholders(t *testing.T) {
	got := Get(KeyOnboardingComplete, map[string]string{"name": "jane"})
	if !strings.Contains(got, "jane") {
		t.Errorf("placeholder not substituted: %q", got)
	}
	if strings.Contains(got, "{name}") {
		t.Errorf("raw placeholder left in message: %q", got)
	}
}

func TestGetUnknownKeyFallsBack(t *testing.T) {
	got := Get("no_such_key", nil)
	if got != Get(KeyErrorGeneral, nil) {
		t.Errorf("unknown key returned %q, want general error text", got)
	}
	if got == "" {
		t.Errorf("fallback produced empty message")
	}
}

func TestEveryAssessmentQuestionHasPrompt(t *testing.T) {
	for _, step := range models.AssessmentQuestions {
		if Prompt(step) == Get(KeyErrorGeneral, nil) {
			t.Errorf("no prompt for assessment step %q", step)
		}
	}
}

func TestMainMenuMenstrualOption(t *testing.T) {
	if !strings.Contains(MainMenu("female"), "5. Menstrual Cycle Tracking") {
		t.Errorf("female menu missing menstrual option")
	}
	if strings.Contains(MainMenu("male"), "Menstrual") {
		t.Errorf("male menu offers menstrual option")
	}
}
