// Package validation maps conversation steps to input predicates.
//
// The registry is pure lookup: no side effects, no state. Every
// data-collection step has an entry; a missing entry is a programming
// error the flow engine fails loudly on rather than silently accepting
// input.
package validation

import (
	"regexp"
	"strconv"
	"time"

	"github.com/aliya-health/aliyabot/internal/models"
)

// Validator reports whether a normalized (trimmed, lowercased) input is
// acceptable for a step.
type Validator func(input string) bool

var (
	nameRe = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	timeRe = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):([0-5][0-9])$`)
	dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// OneOf accepts exactly the listed values.
func OneOf(values ...string) Validator {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return func(input string) bool { return set[input] }
}

// IntRange accepts integers in [min, max].
func IntRange(min, max int) Validator {
	return func(input string) bool {
		n, err := strconv.Atoi(input)
		return err == nil && n >= min && n <= max
	}
}

// Alphabetic accepts letters and spaces only.
func Alphabetic() Validator {
	return func(input string) bool { return nameRe.MatchString(input) }
}

// TimeOfDay accepts HH:MM in 24-hour format.
func TimeOfDay() Validator {
	return func(input string) bool { return timeRe.MatchString(input) }
}

// ISODate accepts YYYY-MM-DD dates that exist on the calendar.
func ISODate() Validator {
	return func(input string) bool {
		if !dateRe.MatchString(input) {
			return false
		}
		_, err := time.Parse("2006-01-02", input)
		return err == nil
	}
}

// AnyText accepts any non-empty input.
func AnyText() Validator {
	return func(input string) bool { return input != "" }
}

// registry covers every step that validates free user input. Menu-style
// steps whose allow-list depends on the profile (main_menu) are validated
// in the flow engine instead.
var registry = map[models.Step]Validator{
	models.StepOnboardingName:      Alphabetic(),
	models.StepOnboardingAge:       IntRange(18, 120),
	models.StepOnboardingSex:       OneOf("male", "female"),
	models.StepOnboardingHeight:    IntRange(100, 250),
	models.StepOnboardingWeight:    IntRange(30, 300),
	models.StepOnboardingLocation:  Alphabetic(),
	models.StepOnboardingMenstrual: OneOf("yes", "no"),
	models.StepAskHealthAssessment: OneOf("now", "later"),

	models.StepAssessOverallHealth: OneOf("excellent", "good", "fair", "poor"),
	models.StepAssessFruitVeggie:   IntRange(0, 50),
	models.StepAssessSugaryDrinks:  OneOf("daily", "weekly", "rarely", "never"),
	models.StepAssessExerciseDays:  IntRange(0, 7),
	models.StepAssessSittingBreaks: OneOf("often", "sometimes", "rarely", "never"),
	models.StepAssessSleepHours:    IntRange(0, 24),
	models.StepAssessWakeRefreshed: OneOf("always", "mostly", "sometimes", "never"),
	models.StepAssessStressAnxiety: OneOf("always", "mostly", "sometimes", "never"),
	models.StepAssessRelaxation:    OneOf("yes", "no"),
	models.StepAssessChronic:       OneOf("yes", "no"),
	models.StepAssessFamilyHistory: OneOf("yes", "no"),
	models.StepAssessSmokingVaping: OneOf("yes", "no"),
	models.StepAssessAlcoholDrinks: IntRange(0, 100),
	models.StepAssessHeadaches:     OneOf("always", "mostly", "sometimes", "never"),
	models.StepAssessWeightChanges: OneOf("yes", "no"),

	models.StepSymptomDescribe: AnyText(),
	models.StepSymptomSeverity: OneOf("mild", "moderate", "severe"),
	models.StepSymptomDuration: IntRange(0, 3650),
	models.StepSymptomFollowup: AnyText(),

	models.StepConfirmNewFitnessPlan: OneOf("yes", "no"),
	models.StepFitnessPlanGoal:       OneOf("weight loss", "muscle gain", "general fitness"),
	models.StepFitnessPlanType:       OneOf("home", "gym"),
	models.StepFitnessPlanDuration:   IntRange(1, 365),
	models.StepFitnessPlanDailyTime:  OneOf("30min", "45min", "1hr"),
	models.StepFitnessPlanRemindTime: TimeOfDay(),

	models.StepConfirmNewMealPlan: OneOf("yes", "no"),
	models.StepMealPlanPreference: OneOf("vegetarian", "vegan", "omnivore"),
	models.StepMealPlanGoal:       OneOf("weight loss", "muscle gain", "general fitness"),
	models.StepMealPlanDuration:   IntRange(1, 365),
	models.StepMealPlanRemindTime: TimeOfDay(),

	models.StepMenstrualUpdate:      OneOf("yes", "no"),
	models.StepMenstrualLastPeriod:  ISODate(),
	models.StepMenstrualCycleLength: IntRange(21, 35),

	models.StepMedicationName: AnyText(),
	models.StepMedicationTime: TimeOfDay(),

	models.StepDailyTips: OneOf("subscribe", "unsubscribe"),
}

// ForStep returns the validator registered for a step. The second return
// is false when the step collects no validated input.
func ForStep(step models.Step) (Validator, bool) {
	v, ok := registry[step]
	return v, ok
}
