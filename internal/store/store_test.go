package store

import (
	"context"
	"testing"
	"time"

	"github.com/aliya-health/aliyabot/internal/models"
)

func TestDetectDSNType(t *testing.T) {
	cases := []struct {
		dsn  string
		want DSNType
	}{
		{"postgres://user:pw@localhost/db", DSNTypePostgres},
		{"postgresql://localhost/db", DSNTypePostgres},
		{"host=localhost dbname=aliya sslmode=disable", DSNTypePostgres},
		{"/var/lib/aliyabot/bot.db", DSNTypeSQLite},
		{"bot.db", DSNTypeSQLite},
	}
	for _, tc := range cases {
		if got := DetectDSNType(tc.dsn); got != tc.want {
			t.Errorf("DetectDSNType(%q) = %q, want %q", tc.dsn, got, tc.want)
		}
	}
}

func TestUserRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	if u, err := s.GetUser(ctx, "u1"); err != nil || u != nil {
		t.Fatalf("missing user: got %v, %v; want nil, nil", u, err)
	}

	u := &models.User{UserID: "u1", Name: "jane doe", Age: 29, Sex: "female", Height: 165, Weight: 60, Location: "nairobi", Menstrual: true, CreatedAt: time.Now()}
	if err := s.SaveUser(ctx, u); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetUser(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Name != "jane doe" || !got.Menstrual {
		t.Errorf("round trip mismatch: %+v", got)
	}

	// Upsert replaces fields.
	u.Weight = 62
	if err := s.SaveUser(ctx, u); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetUser(ctx, "u1")
	if got.Weight != 62 {
		t.Errorf("upsert did not update weight: %d", got.Weight)
	}
}

func TestFitnessPlanLatestWins(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	old := &models.FitnessPlan{UserID: "u1", Goal: "weight loss", Type: "home", DurationDays: 30, DailyTime: "30min", ReminderTime: "07:00", Plan: "old", CreatedAt: base}
	newer := &models.FitnessPlan{UserID: "u1", Goal: "muscle gain", Type: "gym", DurationDays: 60, DailyTime: "1hr", ReminderTime: "18:00", Plan: "new", CreatedAt: base.Add(48 * time.Hour)}
	if err := s.SaveFitnessPlan(ctx, old); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveFitnessPlan(ctx, newer); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetFitnessPlan(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Plan != "new" {
		t.Errorf("GetFitnessPlan returned %q, want most recent plan", got.Plan)
	}

	if err := s.DeleteFitnessPlan(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.GetFitnessPlan(ctx, "u1"); got != nil {
		t.Errorf("plan survived delete: %+v", got)
	}
}

func TestUpdateFitnessPlanBodyTouchesLatestOnly(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	old := &models.FitnessPlan{UserID: "u1", Plan: "old", DurationDays: 30, CreatedAt: base}
	newer := &models.FitnessPlan{UserID: "u1", Plan: "new", DurationDays: 30, CreatedAt: base.Add(24 * time.Hour)}
	if err := s.SaveFitnessPlan(ctx, old); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveFitnessPlan(ctx, newer); err != nil {
		t.Fatal(err)
	}

	if err := s.UpdateFitnessPlanBody(ctx, "u1", "regenerated"); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetFitnessPlan(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Plan != "regenerated" {
		t.Errorf("latest plan body = %q, want regenerated text", got.Plan)
	}

	// No rows for an unknown user is not an error.
	if err := s.UpdateMealPlanBody(ctx, "nobody", "x"); err != nil {
		t.Errorf("UpdateMealPlanBody for unknown user: %v", err)
	}
}

func TestMenstrualCycleUpsert(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	c := &models.MenstrualCycle{UserID: "u1", LastPeriod: "2025-05-20", CycleLength: 28, NextPeriod: "2025-06-17", Analysis: "a", CreatedAt: time.Now()}
	if err := s.SaveMenstrualCycle(ctx, c); err != nil {
		t.Fatal(err)
	}
	firstID := c.ID

	c.LastPeriod = "2025-06-17"
	c.NextPeriod = "2025-07-15"
	if err := s.SaveMenstrualCycle(ctx, c); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetMenstrualCycle(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != firstID || got.LastPeriod != "2025-06-17" {
		t.Errorf("upsert created a second row or lost the update: %+v", got)
	}
}

func TestMedicationReminders(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	for _, name := range []string{"aspirin", "vitamin d"} {
		if err := s.AddMedicationReminder(ctx, models.MedicationReminder{UserID: "u1", MedicationName: name, ReminderTime: "08:00", CreatedAt: time.Now()}); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.AddMedicationReminder(ctx, models.MedicationReminder{UserID: "u2", MedicationName: "iron", ReminderTime: "21:00", CreatedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}

	mine, err := s.ListMedicationReminders(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 2 {
		t.Errorf("ListMedicationReminders = %d entries, want 2", len(mine))
	}
	all, err := s.ListAllMedicationReminders(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("ListAllMedicationReminders = %d entries, want 3", len(all))
	}

	if err := s.DeleteMedicationReminders(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	mine, _ = s.ListMedicationReminders(ctx, "u1")
	if len(mine) != 0 {
		t.Errorf("reminders survived delete")
	}
}

func TestListSubscriptionsOnlyActive(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	if err := s.SaveSubscription(ctx, &models.Subscription{UserID: "u1", DailyTips: true, CreatedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveSubscription(ctx, &models.Subscription{UserID: "u2", DailyTips: false, CreatedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}

	subs, err := s.ListSubscriptions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 1 || subs[0].UserID != "u1" {
		t.Errorf("ListSubscriptions = %+v, want only the opted-in user", subs)
	}
}
