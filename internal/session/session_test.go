package session

import (
	"testing"

	"github.com/aliya-health/aliyabot/internal/models"
)

func TestManagerCreatesSessionLazily(t *testing.T) {
	m := NewManager()
	s := m.Get("user1")
	if s.Step != models.StepIntroduction {
		t.Errorf("new session step = %q, want %q", s.Step, models.StepIntroduction)
	}
	if m.Len() != 1 {
		t.Errorf("Len = %d, want 1", m.Len())
	}

	// Same session comes back on repeat lookups.
	s.Step = models.StepMainMenu
	if got := m.Get("user1"); got.Step != models.StepMainMenu {
		t.Errorf("repeat lookup returned a fresh session")
	}
}

func TestManagerClear(t *testing.T) {
	m := NewManager()
	s := m.Get("user1")
	s.Set(FieldSymptoms, "fever")
	m.Clear("user1")

	if got := m.Get("user1"); got.Get(FieldSymptoms) != "" {
		t.Errorf("cleared session retained data")
	}
}

func TestClearTransientKeepsProfile(t *testing.T) {
	s := &Session{UserID: "u", Step: models.StepMainMenu, Data: map[Field]string{}}
	s.MergeProfile(&models.User{Name: "jane doe", Age: 29, Sex: "female", Height: 165, Weight: 60, Location: "nairobi", Menstrual: true})
	s.Set(FieldSymptoms, "cough")
	s.SetInt(FieldQuestionIndex, 7)

	s.ClearTransient()

	if s.Get(FieldSymptoms) != "" || s.Get(FieldQuestionIndex) != "" {
		t.Errorf("transient fields survived ClearTransient")
	}
	if s.Get(FieldName) != "jane doe" || s.GetInt(FieldAge) != 29 {
		t.Errorf("profile fields lost: name=%q age=%d", s.Get(FieldName), s.GetInt(FieldAge))
	}
}

func TestGetIntMalformed(t *testing.T) {
	s := &Session{Data: map[Field]string{FieldAge: "not-a-number"}}
	if got := s.GetInt(FieldAge); got != 0 {
		t.Errorf("GetInt on malformed value = %d, want 0", got)
	}
}
