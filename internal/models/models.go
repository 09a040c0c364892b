package models

import "time"

// User is a registered participant's profile. Created exactly once, when
// the onboarding chain completes.
type User struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	Sex       string    `json:"sex"`
	Height    int       `json:"height"`
	Weight    int       `json:"weight"`
	Location  string    `json:"location"`
	Menstrual bool      `json:"menstrual"`
	CreatedAt time.Time `json:"created_at"`
}

// HealthAssessment is the scored result of one completed 15-question
// assessment.
type HealthAssessment struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Score     int       `json:"score"`
	Analysis  string    `json:"analysis"`
	CreatedAt time.Time `json:"created_at"`
}

// HealthData holds the raw answers behind one assessment.
type HealthData struct {
	ID                   int64     `json:"id"`
	UserID               string    `json:"user_id"`
	OverallHealth        string    `json:"overall_health"`
	FruitVeggie          int       `json:"fruit_veggie"`
	SugaryDrinks         string    `json:"sugary_drinks"`
	ExerciseDays         int       `json:"exercise_days"`
	SittingBreaks        string    `json:"sitting_breaks"`
	SleepHours           int       `json:"sleep_hours"`
	WakeRefreshed        string    `json:"wake_refreshed"`
	StressAnxiety        string    `json:"stress_anxiety"`
	RelaxationTechniques string    `json:"relaxation_techniques"`
	ChronicConditions    string    `json:"chronic_conditions"`
	FamilyHistory        string    `json:"family_history"`
	SmokingVaping        string    `json:"smoking_vaping"`
	AlcoholDrinks        int       `json:"alcohol_drinks"`
	HeadachesBodyAches   string    `json:"headaches_body_aches"`
	WeightChanges        string    `json:"weight_changes"`
	CreatedAt            time.Time `json:"created_at"`
}

// SymptomDiagnosis records one symptom consultation and its AI analysis.
type SymptomDiagnosis struct {
	ID           int64     `json:"id"`
	UserID       string    `json:"user_id"`
	Symptoms     string    `json:"symptoms"`
	Severity     string    `json:"severity"`
	DurationDays int       `json:"duration_days"`
	Analysis     string    `json:"analysis"`
	CreatedAt    time.Time `json:"created_at"`
}

// FitnessPlan is an active or expired fitness plan. A plan is active while
// CreatedAt + DurationDays is still in the future.
type FitnessPlan struct {
	ID           int64     `json:"id"`
	UserID       string    `json:"user_id"`
	Goal         string    `json:"goal"`
	Type         string    `json:"type"`
	DurationDays int       `json:"duration_days"`
	DailyTime    string    `json:"daily_time"`
	ReminderTime string    `json:"reminder_time"` // HH:MM, 24-hour
	Plan         string    `json:"plan"`
	CreatedAt    time.Time `json:"created_at"`
}

// DaysRemaining reports how many daily deliveries the plan still owes,
// rounded up. Zero or negative means the plan has expired.
func (p FitnessPlan) DaysRemaining(now time.Time) int {
	return planDaysRemaining(p.CreatedAt, p.DurationDays, now)
}

// MealPlan mirrors FitnessPlan for meals.
type MealPlan struct {
	ID           int64     `json:"id"`
	UserID       string    `json:"user_id"`
	Preference   string    `json:"preference"`
	Goal         string    `json:"goal"`
	DurationDays int       `json:"duration_days"`
	ReminderTime string    `json:"reminder_time"` // HH:MM, 24-hour
	Plan         string    `json:"plan"`
	CreatedAt    time.Time `json:"created_at"`
}

// DaysRemaining reports how many daily deliveries the plan still owes.
func (p MealPlan) DaysRemaining(now time.Time) int {
	return planDaysRemaining(p.CreatedAt, p.DurationDays, now)
}

func planDaysRemaining(createdAt time.Time, durationDays int, now time.Time) int {
	end := createdAt.Add(time.Duration(durationDays) * 24 * time.Hour)
	remaining := end.Sub(now)
	if remaining <= 0 {
		return 0
	}
	days := int(remaining / (24 * time.Hour))
	if remaining%(24*time.Hour) != 0 {
		days++
	}
	return days
}

// MenstrualCycle records one cycle tracking entry.
type MenstrualCycle struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	LastPeriod  string    `json:"last_period"` // YYYY-MM-DD
	CycleLength int       `json:"cycle_length"`
	NextPeriod  string    `json:"next_period"` // YYYY-MM-DD
	Analysis    string    `json:"analysis"`
	CreatedAt   time.Time `json:"created_at"`
}

// MedicationReminder is a standing daily medication alert.
type MedicationReminder struct {
	ID             int64     `json:"id"`
	UserID         string    `json:"user_id"`
	MedicationName string    `json:"medication_name"`
	ReminderTime   string    `json:"reminder_time"` // HH:MM, 24-hour
	CreatedAt      time.Time `json:"created_at"`
}

// Subscription tracks a user's daily-tips opt-in.
type Subscription struct {
	UserID    string    `json:"user_id"`
	DailyTips bool      `json:"daily_tips"`
	CreatedAt time.Time `json:"created_at"`
}

// MessageStatus represents the delivery status of an outbound message.
type MessageStatus string

const (
	// MessageStatusSent indicates the message was sent.
	MessageStatusSent MessageStatus = "sent"
	// MessageStatusDelivered indicates the message was delivered.
	MessageStatusDelivered MessageStatus = "delivered"
	// MessageStatusRead indicates the message was read.
	MessageStatusRead MessageStatus = "read"
	// MessageStatusFailed indicates the message failed to send.
	MessageStatusFailed MessageStatus = "failed"
)

// Receipt is a delivery/read receipt event from the transport.
type Receipt struct {
	To     string        `json:"to"`
	Status MessageStatus `json:"status"`
	Time   int64         `json:"time"`
}

// Response is an incoming message from a participant.
type Response struct {
	From string `json:"from"`
	Body string `json:"body"`
	Time int64  `json:"time"`
}
