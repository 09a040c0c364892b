// Package session provides the volatile per-user conversation state store.
//
// Sessions live only in process memory; an in-flight sub-flow does not
// survive a restart and the user simply starts it again. The raw map is
// never exposed — all access goes through the Manager.
package session

import (
	"log/slog"
	"strconv"
	"sync"

	"github.com/aliya-health/aliyabot/internal/models"
)

// Field names a value collected during a conversation. Profile fields are
// preserved across sub-flow completions; everything else is transient.
type Field string

// Profile fields, merged from the user record on every inbound message.
const (
	FieldName      Field = "name"
	FieldAge       Field = "age"
	FieldSex       Field = "sex"
	FieldHeight    Field = "height"
	FieldWeight    Field = "weight"
	FieldLocation  Field = "location"
	FieldMenstrual Field = "menstrual"
)

// Transient sub-flow fields.
const (
	FieldQuestionIndex Field = "question_index"

	FieldSymptoms         Field = "symptoms"
	FieldSeverity         Field = "severity"
	FieldSymptomDuration  Field = "symptom_duration"
	FieldPreviousAnalysis Field = "previous_analysis"

	FieldFitnessGoal       Field = "fitness_goal"
	FieldFitnessType       Field = "fitness_type"
	FieldFitnessDuration   Field = "fitness_duration"
	FieldFitnessDailyTime  Field = "fitness_daily_time"
	FieldFitnessRemindTime Field = "fitness_reminder_time"

	FieldMealPreference Field = "meal_preference"
	FieldMealGoal       Field = "meal_goal"
	FieldMealDuration   Field = "meal_duration"
	FieldMealRemindTime Field = "meal_reminder_time"

	FieldLastPeriod  Field = "last_period"
	FieldCycleLength Field = "cycle_length"

	FieldMedicationName Field = "medication_name"
	FieldMedicationTime Field = "medication_time"
)

var profileFields = map[Field]bool{
	FieldName:      true,
	FieldAge:       true,
	FieldSex:       true,
	FieldHeight:    true,
	FieldWeight:    true,
	FieldLocation:  true,
	FieldMenstrual: true,
}

// Session is one user's live conversation state.
type Session struct {
	UserID string
	Step   models.Step
	Data   map[Field]string
}

// Get returns the value for a field, or "" if unset.
func (s *Session) Get(f Field) string {
	return s.Data[f]
}

// GetInt returns the integer value for a field, or 0 if unset or malformed.
func (s *Session) GetInt(f Field) int {
	n, err := strconv.Atoi(s.Data[f])
	if err != nil {
		return 0
	}
	return n
}

// Set stores a field value.
func (s *Session) Set(f Field, value string) {
	s.Data[f] = value
}

// SetInt stores an integer field value.
func (s *Session) SetInt(f Field, value int) {
	s.Data[f] = strconv.Itoa(value)
}

// MergeProfile copies the user record's fields into the session so
// sub-flows and prompt building can read them uniformly.
func (s *Session) MergeProfile(u *models.User) {
	if u == nil {
		return
	}
	s.Set(FieldName, u.Name)
	s.SetInt(FieldAge, u.Age)
	s.Set(FieldSex, u.Sex)
	s.SetInt(FieldHeight, u.Height)
	s.SetInt(FieldWeight, u.Weight)
	s.Set(FieldLocation, u.Location)
	s.Set(FieldMenstrual, strconv.FormatBool(u.Menstrual))
}

// ClearTransient drops every non-profile field. Called when a sub-flow
// completes so accumulated answers do not leak into the next flow.
func (s *Session) ClearTransient() {
	for f := range s.Data {
		if !profileFields[f] {
			delete(s.Data, f)
		}
	}
}

// Manager owns the session map. Access to a given user's session is
// serialized by the caller (the flow engine processes one message per user
// at a time); the Manager's own lock only protects the map itself.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Get returns the session for a user, creating one at the introduction
// step on first contact.
func (m *Manager) Get(userID string) *Session {
	m.mu.RLock()
	s, ok := m.sessions[userID]
	m.mu.RUnlock()
	if ok {
		return s
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userID]; ok {
		return s
	}
	s = &Session{
		UserID: userID,
		Step:   models.StepIntroduction,
		Data:   make(map[Field]string),
	}
	m.sessions[userID] = s
	slog.Debug("Session created", "userID", userID)
	return s
}

// Clear removes a user's session entirely. The next lookup starts fresh
// (profile fields are re-merged from the record store).
func (m *Manager) Clear(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	slog.Debug("Session cleared", "userID", userID)
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
