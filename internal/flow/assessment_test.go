package flow

import (
	"testing"

	"github.com/aliya-health/aliyabot/internal/models"
)

func TestCalculateHealthScoreSaturatesAt100(t *testing.T) {
	best := models.HealthData{
		OverallHealth:        "excellent",
		FruitVeggie:          5,
		SugaryDrinks:         "never",
		ExerciseDays:         6,
		SittingBreaks:        "often",
		SleepHours:           8,
		WakeRefreshed:        "always",
		StressAnxiety:        "never",
		RelaxationTechniques: "yes",
		ChronicConditions:    "no",
		FamilyHistory:        "no",
		SmokingVaping:        "no",
		AlcoholDrinks:        0,
		HeadachesBodyAches:   "never",
		WeightChanges:        "no",
	}
	if got := calculateHealthScore(best); got != 100 {
		t.Errorf("best answers score = %d, want capped 100", got)
	}
}

func TestCalculateHealthScoreWorstCase(t *testing.T) {
	worst := models.HealthData{
		OverallHealth:        "poor",
		FruitVeggie:          0,
		SugaryDrinks:         "daily",
		ExerciseDays:         0,
		SittingBreaks:        "never",
		SleepHours:           3,
		WakeRefreshed:        "never",
		StressAnxiety:        "always",
		RelaxationTechniques: "no",
		ChronicConditions:    "yes",
		FamilyHistory:        "yes",
		SmokingVaping:        "yes",
		AlcoholDrinks:        20,
		HeadachesBodyAches:   "always",
		WeightChanges:        "yes",
	}
	got := calculateHealthScore(worst)
	if got < 0 || got > 15 {
		t.Errorf("worst answers score = %d, want a low single-digit band", got)
	}
}

func TestCalculateHealthScoreMonotonicOnSleep(t *testing.T) {
	base := models.HealthData{OverallHealth: "good", SleepHours: 4}
	better := base
	better.SleepHours = 8
	if calculateHealthScore(better) <= calculateHealthScore(base) {
		t.Error("healthy sleep did not raise the score")
	}
}
