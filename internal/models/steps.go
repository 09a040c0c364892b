// Package models defines the core data structures for Aliya Health Bot.
//
// It includes the conversation step enum, domain records persisted by the
// store, and the transport event types shared across modules.
package models

// Step identifies a point in the conversation flow. Each step determines
// which prompt and validator apply to the next inbound message.
type Step string

// Onboarding steps.
const (
	StepIntroduction        Step = "introduction"
	StepWaitingForStart     Step = "waiting_for_start"
	StepWaitingForConsent   Step = "waiting_for_consent"
	StepOnboardingName      Step = "onboarding_name"
	StepOnboardingAge       Step = "onboarding_age"
	StepOnboardingSex       Step = "onboarding_sex"
	StepOnboardingHeight    Step = "onboarding_height"
	StepOnboardingWeight    Step = "onboarding_weight"
	StepOnboardingLocation  Step = "onboarding_location"
	StepOnboardingMenstrual Step = "onboarding_menstrual"
	StepAskHealthAssessment Step = "ask_health_assessment"
)

// Menu and sub-flow steps.
const (
	StepMainMenu Step = "main_menu"

	StepHealthAssessment Step = "health_assessment"

	StepSymptomDescribe Step = "symptom_diagnosis"
	StepSymptomSeverity Step = "symptom_severity"
	StepSymptomDuration Step = "symptom_duration"
	StepSymptomFollowup Step = "symptom_followup"

	StepConfirmNewFitnessPlan  Step = "confirm_new_fitness_plan"
	StepFitnessPlanGoal        Step = "fitness_plan_goal"
	StepFitnessPlanType        Step = "fitness_plan_type"
	StepFitnessPlanDuration    Step = "fitness_plan_duration"
	StepFitnessPlanDailyTime   Step = "fitness_plan_daily_time"
	StepFitnessPlanRemindTime  Step = "fitness_plan_reminder_time"

	StepConfirmNewMealPlan    Step = "confirm_new_meal_plan"
	StepMealPlanPreference    Step = "meal_plan_preference"
	StepMealPlanGoal          Step = "meal_plan_goal"
	StepMealPlanDuration      Step = "meal_plan_duration"
	StepMealPlanRemindTime    Step = "meal_plan_reminder_time"

	StepMenstrualUpdate      Step = "menstrual_tracking_update"
	StepMenstrualLastPeriod  Step = "menstrual_last_period"
	StepMenstrualCycleLength Step = "menstrual_cycle_length"

	StepMedicationName Step = "medication_name"
	StepMedicationTime Step = "medication_time"

	StepDailyTips Step = "daily_tips"
)

// AssessmentQuestions lists the health assessment question steps in order.
// The session's question index selects into this slice.
var AssessmentQuestions = []Step{
	StepAssessOverallHealth,
	StepAssessFruitVeggie,
	StepAssessSugaryDrinks,
	StepAssessExerciseDays,
	StepAssessSittingBreaks,
	StepAssessSleepHours,
	StepAssessWakeRefreshed,
	StepAssessStressAnxiety,
	StepAssessRelaxation,
	StepAssessChronic,
	StepAssessFamilyHistory,
	StepAssessSmokingVaping,
	StepAssessAlcoholDrinks,
	StepAssessHeadaches,
	StepAssessWeightChanges,
}

// Health assessment question steps. These are not dispatch targets on their
// own; the engine stays on StepHealthAssessment and indexes into
// AssessmentQuestions, but each question carries its own prompt and
// validator keyed by these constants.
const (
	StepAssessOverallHealth Step = "assessment_overall_health"
	StepAssessFruitVeggie   Step = "assessment_fruit_veggie"
	StepAssessSugaryDrinks  Step = "assessment_sugary_drinks"
	StepAssessExerciseDays  Step = "assessment_exercise_days"
	StepAssessSittingBreaks Step = "assessment_sitting_breaks"
	StepAssessSleepHours    Step = "assessment_sleep_hours"
	StepAssessWakeRefreshed Step = "assessment_wake_refreshed"
	StepAssessStressAnxiety Step = "assessment_stress_anxiety"
	StepAssessRelaxation    Step = "assessment_relaxation_techniques"
	StepAssessChronic       Step = "assessment_chronic_conditions"
	StepAssessFamilyHistory Step = "assessment_family_history"
	StepAssessSmokingVaping Step = "assessment_smoking_vaping"
	StepAssessAlcoholDrinks Step = "assessment_alcohol_drinks"
	StepAssessHeadaches     Step = "assessment_headaches_body_aches"
	StepAssessWeightChanges Step = "assessment_weight_changes"
)

// FieldName strips the "assessment_" prefix from a question step, yielding
// the session data key the answer is stored under.
func (s Step) FieldName() string {
	const prefix = "assessment_"
	str := string(s)
	if len(str) > len(prefix) && str[:len(prefix)] == prefix {
		return str[len(prefix):]
	}
	return str
}
