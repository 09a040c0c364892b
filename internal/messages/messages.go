// Package messages holds the user-facing message catalog.
//
// Prompts are keyed by conversation step where one exists, plus a set of
// named result/error texts. Formatting is plain placeholder substitution;
// no templating engine.
package messages

import (
	"strings"

	"github.com/aliya-health/aliyabot/internal/models"
)

// Named message keys that are not step prompts.
const (
	KeyIntroduction    = "introduction"
	KeyDisclaimer      = "disclaimer"
	KeyDeclineResponse = "decline_response"

	KeyErrorInvalidInput = "error_invalid_input"
	KeyErrorGeneral      = "error_general"
	KeyErrorNotAvailable = "error_not_available"

	KeyOnboardingComplete    = "onboarding_complete"
	KeyAssessmentStart       = "health_assessment_start"
	KeyAssessmentResult      = "assessment_result"
	KeySymptomResult         = "symptom_result"
	KeySymptomFollowupPrompt = "symptom_followup"
	KeySymptomPersist        = "symptom_persist"
	KeyFitnessPlanResult     = "fitness_plan_result"
	KeyFitnessReminder       = "fitness_reminder"
	KeyFitnessPlanKept       = "fitness_plan_kept"
	KeyFitnessPlanReplaced   = "fitness_plan_replaced"
	KeyMealPlanResult        = "meal_plan_result"
	KeyMealReminder          = "meal_reminder"
	KeyMealPlanKept          = "meal_plan_kept"
	KeyMealPlanReplaced      = "meal_plan_replaced"
	KeyMenstrualResult       = "menstrual_result"
	KeyMedicationResult      = "medication_result"
	KeyMedicationReminder    = "medication_reminder"
	KeyTipsSubscribed        = "daily_tips_subscribe"
	KeyTipsUnsubscribed      = "daily_tips_unsubscribe"
	KeyDailyTip              = "daily_tip"
	KeyActionFailed          = "action_failed"
	KeyCancelled             = "cancelled"
)

var catalog = map[string]string{
	KeyIntroduction: "Hello! I am Aliya, your personal health assistant. I can help you with health assessments, symptom diagnosis, fitness and meal plans, menstrual cycle tracking, medication reminders, and daily health tips. To get started, please type \"start\".",

	KeyDisclaimer: `*Disclaimer and Terms of Use*

Aliya Health Bot provides general health information and tools for wellness tracking.

- *Not Medical Advice*: I am not a doctor. The information I provide is for educational purposes only and should not replace professional medical advice, diagnosis, or treatment. Always consult a qualified healthcare provider for medical concerns.
- *Data Usage*: Your data (e.g., name, age, health information) will be stored securely to personalize your experience and provide tailored recommendations.
- *Consent*: By using this bot, you consent to the collection, storage, and use of your data as described.

Please type "accept" to agree to these terms and proceed, or "decline" to exit.`,

	KeyDeclineResponse: "Thank you for your interest. If you change your mind, feel free to message me again to start the process. Goodbye!",

	KeyErrorInvalidInput: "Invalid input. Please try again with the correct format.",
	KeyErrorGeneral:      "Something went wrong. Please try again later.",
	KeyErrorNotAvailable: "This feature is not available for your profile.",
	KeyActionFailed:      "There was an issue completing that action. Let's return to the main menu.",
	KeyCancelled:         "All your reminders have been cancelled.",

	string(models.StepOnboardingName):      "Please enter your full name.",
	string(models.StepOnboardingAge):       "Please enter your age (18-120).",
	string(models.StepOnboardingSex):       "Please enter your sex (male/female).",
	string(models.StepOnboardingHeight):    "Please enter your height in cm (100-250).",
	string(models.StepOnboardingWeight):    "Please enter your weight in kg (30-300).",
	string(models.StepOnboardingLocation):  "Please enter your location (e.g., Nairobi).",
	string(models.StepOnboardingMenstrual): "Do you have a menstrual cycle? (yes/no)",
	KeyOnboardingComplete:                  "Onboarding complete, {name}! You're all set to start using Aliya Health Bot.",
	string(models.StepAskHealthAssessment): "Would you like to do a health assessment now or later? (now/later)",

	KeyAssessmentStart:                     "Starting health assessment. Answer the following questions.",
	string(models.StepAssessOverallHealth): "How would you rate your overall health? (excellent/good/fair/poor)",
	string(models.StepAssessFruitVeggie):   "How many servings of fruits and vegetables do you eat daily? (e.g., 3)",
	string(models.StepAssessSugaryDrinks):  "How often do you consume sugary drinks or snacks? (daily/weekly/rarely/never)",
	string(models.StepAssessExerciseDays):  "How many days per week do you exercise? (0-7)",
	string(models.StepAssessSittingBreaks): "How often do you take breaks from sitting? (often/sometimes/rarely/never)",
	string(models.StepAssessSleepHours):    "How many hours do you sleep per night? (e.g., 7)",
	string(models.StepAssessWakeRefreshed): "Do you wake up feeling refreshed? (always/mostly/sometimes/never)",
	string(models.StepAssessStressAnxiety): "How often do you feel stressed or anxious? (always/mostly/sometimes/never)",
	string(models.StepAssessRelaxation):    "Do you use relaxation techniques like meditation? (yes/no)",
	string(models.StepAssessChronic):       "Do you have any chronic conditions? (yes/no)",
	string(models.StepAssessFamilyHistory): "Is there a family history of chronic diseases? (yes/no)",
	string(models.StepAssessSmokingVaping): "Do you smoke or vape? (yes/no)",
	string(models.StepAssessAlcoholDrinks): "How many alcoholic drinks do you have per week? (e.g., 2)",
	string(models.StepAssessHeadaches):     "Do you experience frequent headaches or body aches? (always/mostly/sometimes/never)",
	string(models.StepAssessWeightChanges): "Have you had unintentional weight changes recently? (yes/no)",
	KeyAssessmentResult:                    "Health Assessment Complete!\nScore: {score}/100\nAnalysis: {analysis}\nConsult a doctor for professional advice.",

	string(models.StepSymptomDescribe): "Please describe your symptoms (e.g., fever, cough).",
	string(models.StepSymptomSeverity): "How severe are your symptoms? (mild/moderate/severe)",
	string(models.StepSymptomDuration): "How many days have you had these symptoms? (e.g., 2)",
	KeySymptomResult:                   "Diagnosis: {analysis}\nPlease consult a doctor for a professional diagnosis.",
	KeySymptomFollowupPrompt:           "How are your symptoms now? Reply with an update or type \"cancel\".",
	KeySymptomPersist:                  "Your symptoms may be serious. Please seek immediate medical attention.",

	string(models.StepConfirmNewFitnessPlan): "You already have an active fitness plan. Replace it with a new one? (yes/no)",
	string(models.StepFitnessPlanGoal):       "What is your fitness goal? (weight loss/muscle gain/general fitness)",
	string(models.StepFitnessPlanType):       "Where will you work out? (home/gym)",
	string(models.StepFitnessPlanDuration):   "How many days do you want to pursue this goal? (1-365)",
	string(models.StepFitnessPlanDailyTime):  "How long will you work out daily? (30min/45min/1hr)",
	string(models.StepFitnessPlanRemindTime): "At what time would you like to receive your daily fitness plan? (HH:MM, 24-hour format)",
	KeyFitnessPlanResult:                     "Fitness Plan:\n{plan}\nYou'll receive a new plan daily at your specified time for {duration} days.",
	KeyFitnessReminder:                       "Time for your workout!\nToday's Plan: {plan}",
	KeyFitnessPlanKept:                       "Keeping your existing fitness plan.",
	KeyFitnessPlanReplaced:                   "Existing fitness plan deleted. Let's create a new one.",

	string(models.StepConfirmNewMealPlan): "You already have an active meal plan. Replace it with a new one? (yes/no)",
	string(models.StepMealPlanPreference): "What is your dietary preference? (vegetarian/vegan/omnivore)",
	string(models.StepMealPlanGoal):       "What is your meal plan goal? (weight loss/muscle gain/general fitness)",
	string(models.StepMealPlanDuration):   "How many days do you want to pursue this goal? (1-365)",
	string(models.StepMealPlanRemindTime): "At what time would you like to receive your daily meal plan? (HH:MM, 24-hour format)",
	KeyMealPlanResult:                     "Meal Plan:\n{plan}\nYou'll receive a new plan daily at your specified time for {duration} days.",
	KeyMealReminder:                       "Time for your meal!\nToday's Plan: {plan}",
	KeyMealPlanKept:                       "Keeping your existing meal plan.",
	KeyMealPlanReplaced:                   "Existing meal plan deleted. Let's create a new one.",

	string(models.StepMenstrualUpdate):      "Do you want to update your menstrual cycle details? (yes/no)",
	string(models.StepMenstrualLastPeriod):  "Please enter the start date of your last period (YYYY-MM-DD).",
	string(models.StepMenstrualCycleLength): "What is your average cycle length in days? (21-35)",
	KeyMenstrualResult:                      "Next Period: {next_period}\nTips: {analysis}\nTrack again next month.",

	string(models.StepMedicationName): "Please enter the name of the medication.",
	string(models.StepMedicationTime): "Please enter the reminder time (HH:MM, 24-hour format).",
	KeyMedicationResult:               "Medication reminder set! You'll be notified daily.",
	KeyMedicationReminder:             "Time to take your medication: {name}",

	string(models.StepDailyTips): "Do you want to subscribe or unsubscribe from daily health tips? (subscribe/unsubscribe)",
	KeyTipsSubscribed:            "You're now subscribed to daily health tips!",
	KeyTipsUnsubscribed:          "You've unsubscribed from daily health tips.",
	KeyDailyTip:                  "Daily Health Tip: {tip}",
}

// Get returns the message for a key with {placeholder} substitutions
// applied. Unknown keys fall back to the generic error message so a
// catalog gap never produces an empty send.
func Get(key string, params map[string]string) string {
	msg, ok := catalog[key]
	if !ok {
		msg = catalog[KeyErrorGeneral]
	}
	if len(params) == 0 {
		return msg
	}
	pairs := make([]string, 0, len(params)*2)
	for k, v := range params {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

// Prompt returns the prompt text for a conversation step.
func Prompt(step models.Step) string {
	return Get(string(step), nil)
}

// MainMenu renders the menu for a profile. Option 5 (menstrual cycle
// tracking) is only offered to female users.
func MainMenu(sex string) string {
	var b strings.Builder
	b.WriteString("Please choose an option by typing the number:\n")
	b.WriteString("1. Health Assessment\n")
	b.WriteString("2. Symptom Diagnosis\n")
	b.WriteString("3. Fitness Plan\n")
	b.WriteString("4. Meal Plan\n")
	if sex == "female" {
		b.WriteString("5. Menstrual Cycle Tracking\n")
	}
	b.WriteString("6. Medication Reminder\n")
	b.WriteString("7. Daily Health Tips\n")
	b.WriteString("Type \"cancel\" to reset.")
	return b.String()
}
