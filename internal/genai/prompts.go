package genai

import (
	"fmt"
	"strings"
)

// Topic selects which prompt template and fallback text to use.
type Topic string

const (
	TopicHealthTip       Topic = "health_tip"
	TopicSymptoms        Topic = "symptoms"
	TopicSymptomFollowup Topic = "symptom_followup"
	TopicOverallHealth   Topic = "overall_health"
	TopicFitnessPlan     Topic = "fitness_plan"
	TopicMealPlan        Topic = "meal_plan"
	TopicMenstrual       Topic = "menstrual"
)

// PromptContext carries the profile and per-topic inputs a template can
// draw on. Unused fields are ignored by the template.
type PromptContext struct {
	Name     string
	Age      int
	Sex      string
	Height   int
	Weight   int
	Location string

	Symptoms     string
	Severity     string
	DurationDays int
	// PreviousAnalysis and Update feed the symptom follow-up template.
	PreviousAnalysis string
	Update           string

	// AssessmentSummary is the "question: answer" rendering of a completed
	// health assessment.
	AssessmentSummary string
	Score             int

	FitnessGoal string
	FitnessType string
	DailyTime   string

	MealPreference string
	MealGoal       string

	LastPeriod  string
	CycleLength int
}

const systemPrompt = "You are Aliya, a concise and friendly health assistant for WhatsApp users. Keep responses under 150 words, use plain language, and always remind users that you are not a substitute for professional medical advice when discussing symptoms or diagnoses."

func (pc PromptContext) profileLine() string {
	return fmt.Sprintf("User profile: %s, %d years old, %s, %dcm, %dkg, located in %s.",
		pc.Name, pc.Age, pc.Sex, pc.Height, pc.Weight, pc.Location)
}

// BuildPrompt returns the system and user prompts for a topic.
func BuildPrompt(topic Topic, pc PromptContext) (string, string) {
	var b strings.Builder
	b.WriteString(pc.profileLine())
	b.WriteString("\n\n")

	switch topic {
	case TopicHealthTip:
		b.WriteString("Give this user one short, practical health tip for today. Vary the topic: nutrition, movement, sleep, hydration, or mental wellbeing.")
	case TopicSymptoms:
		fmt.Fprintf(&b, "The user reports these symptoms: %s. Severity: %s. Duration: %d days.\n", pc.Symptoms, pc.Severity, pc.DurationDays)
		b.WriteString("Suggest possible common causes and sensible self-care steps. Say clearly when they should see a doctor.")
	case TopicSymptomFollowup:
		fmt.Fprintf(&b, "Yesterday you told the user: %s\n", pc.PreviousAnalysis)
		fmt.Fprintf(&b, "Today the user says: %s\n", pc.Update)
		b.WriteString("Assess whether things seem to be improving and advise on next steps. If symptoms persist or worsened, recommend seeing a doctor promptly.")
	case TopicOverallHealth:
		fmt.Fprintf(&b, "The user completed a health assessment scoring %d/100. Their answers:\n%s\n", pc.Score, pc.AssessmentSummary)
		b.WriteString("Summarize their overall health and give two or three specific improvements to focus on.")
	case TopicFitnessPlan:
		fmt.Fprintf(&b, "Create today's workout for this user. Goal: %s. Setting: %s. Session length: %s.\n", pc.FitnessGoal, pc.FitnessType, pc.DailyTime)
		b.WriteString("List concrete exercises with sets and reps or durations that fit the session length.")
	case TopicMealPlan:
		fmt.Fprintf(&b, "Create today's meal plan for this user. Dietary preference: %s. Goal: %s.\n", pc.MealPreference, pc.MealGoal)
		b.WriteString("Give breakfast, lunch, dinner and one snack using foods commonly available in their location.")
	case TopicMenstrual:
		fmt.Fprintf(&b, "The user's last period started on %s and their average cycle length is %d days.\n", pc.LastPeriod, pc.CycleLength)
		b.WriteString("Give brief cycle-phase-aware wellness tips for the coming week.")
	default:
		b.WriteString("Give the user a short, helpful health message.")
	}

	return systemPrompt, b.String()
}

var fallbacks = map[Topic]string{
	TopicHealthTip:       "Drink plenty of water and aim for at least 30 minutes of movement today.",
	TopicSymptoms:        "I couldn't analyze your symptoms right now. If they are severe or worsening, please see a doctor.",
	TopicSymptomFollowup: "I couldn't review your update right now. If your symptoms persist or have worsened, please see a doctor.",
	TopicOverallHealth:   "Keep up regular exercise, balanced meals, and consistent sleep. Review your results with a healthcare provider.",
	TopicFitnessPlan:     "Try 20 minutes of brisk walking, 3 sets of 10 squats, and 3 sets of 10 push-ups today.",
	TopicMealPlan:        "Aim for balanced meals today: whole grains, lean protein, and plenty of vegetables.",
	TopicMenstrual:       "Stay hydrated, rest as needed, and track any unusual changes to discuss with your doctor.",
}

// Fallback returns the canned text delivered when generation fails.
func Fallback(topic Topic) string {
	if f, ok := fallbacks[topic]; ok {
		return f
	}
	return fallbacks[TopicHealthTip]
}
