package recovery

import (
	"context"
	"testing"
	"time"

	"github.com/aliya-health/aliyabot/internal/genai"
	"github.com/aliya-health/aliyabot/internal/models"
	"github.com/aliya-health/aliyabot/internal/reminder"
	"github.com/aliya-health/aliyabot/internal/store"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeScheduler struct {
	requests []reminder.Request
}

func (f *fakeScheduler) Schedule(req reminder.Request) (string, error) {
	f.requests = append(f.requests, req)
	return "id", nil
}

func (f *fakeScheduler) byKind(kind reminder.Kind) []reminder.Request {
	var out []reminder.Request
	for _, r := range f.requests {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

type fakeGen struct{}

func (fakeGen) GenerateFor(ctx context.Context, topic genai.Topic, pc genai.PromptContext) (string, error) {
	return "generated " + string(topic), nil
}

func newTestManager(t *testing.T, st store.Store) (*Manager, *fakeScheduler) {
	t.Helper()
	sch := &fakeScheduler{}
	m := NewManager(st, sch, fakeGen{},
		WithClock(func() time.Time { return testNow }),
		WithLocation(time.UTC))
	return m, sch
}

func TestRecoverActiveFitnessPlan(t *testing.T) {
	st := store.NewInMemoryStore()
	ctx := context.Background()
	if err := st.SaveFitnessPlan(ctx, &models.FitnessPlan{
		UserID:       "100200300",
		Goal:         "weight loss",
		Type:         "home",
		DurationDays: 10,
		DailyTime:    "30min",
		ReminderTime: "06:30",
		Plan:         "day one plan",
		CreatedAt:    testNow.Add(-3 * 24 * time.Hour),
	}); err != nil {
		t.Fatal(err)
	}

	m, sch := newTestManager(t, st)
	if err := m.RecoverAll(ctx); err != nil {
		t.Fatalf("RecoverAll: %v", err)
	}

	reqs := sch.byKind(reminder.KindFitness)
	if len(reqs) != 1 {
		t.Fatalf("scheduled %d fitness chains, want 1", len(reqs))
	}
	req := reqs[0]
	if req.Occurrences != 7 {
		t.Errorf("occurrences = %d, want 7 days remaining", req.Occurrences)
	}
	// 06:30 has already passed at noon, so the chain resumes tomorrow.
	want := time.Date(2025, 6, 2, 6, 30, 0, 0, time.UTC)
	if !req.FireAt.Equal(want) {
		t.Errorf("FireAt = %v, want %v", req.FireAt, want)
	}
	if req.Regenerate == nil {
		t.Error("fitness chain recovered without regeneration")
	}
}

func TestExpiredPlansAreSkipped(t *testing.T) {
	st := store.NewInMemoryStore()
	ctx := context.Background()
	if err := st.SaveMealPlan(ctx, &models.MealPlan{
		UserID:       "100200300",
		Preference:   "vegan",
		Goal:         "general fitness",
		DurationDays: 5,
		ReminderTime: "07:00",
		Plan:         "old plan",
		CreatedAt:    testNow.Add(-10 * 24 * time.Hour),
	}); err != nil {
		t.Fatal(err)
	}

	m, sch := newTestManager(t, st)
	if err := m.RecoverAll(ctx); err != nil {
		t.Fatalf("RecoverAll: %v", err)
	}
	if len(sch.requests) != 0 {
		t.Errorf("scheduled %d chains for an expired plan, want 0", len(sch.requests))
	}
}

func TestRecoverMedicationAndTipsUnbounded(t *testing.T) {
	st := store.NewInMemoryStore()
	ctx := context.Background()
	if err := st.AddMedicationReminder(ctx, models.MedicationReminder{
		UserID:         "100200300",
		MedicationName: "ibuprofen",
		ReminderTime:   "21:00",
		CreatedAt:      testNow.Add(-time.Hour),
	}); err != nil {
		t.Fatal(err)
	}
	if err := st.SaveSubscription(ctx, &models.Subscription{
		UserID:    "400500600",
		DailyTips: true,
		CreatedAt: testNow.Add(-time.Hour),
	}); err != nil {
		t.Fatal(err)
	}

	m, sch := newTestManager(t, st)
	if err := m.RecoverAll(ctx); err != nil {
		t.Fatalf("RecoverAll: %v", err)
	}

	meds := sch.byKind(reminder.KindMedication)
	if len(meds) != 1 || meds[0].Occurrences != reminder.Unbounded {
		t.Errorf("medication chains = %+v, want one unbounded chain", meds)
	}
	tips := sch.byKind(reminder.KindDailyTips)
	if len(tips) != 1 || tips[0].Occurrences != reminder.Unbounded {
		t.Errorf("tips chains = %+v, want one unbounded chain", tips)
	}
	if tips[0].Regenerate == nil {
		t.Error("tips chain recovered without regeneration")
	}
}

func TestBadRecordIsSkippedNotFatal(t *testing.T) {
	st := store.NewInMemoryStore()
	ctx := context.Background()
	if err := st.AddMedicationReminder(ctx, models.MedicationReminder{
		UserID:         "100200300",
		MedicationName: "ibuprofen",
		ReminderTime:   "25:99", // corrupt
		CreatedAt:      testNow,
	}); err != nil {
		t.Fatal(err)
	}
	if err := st.AddMedicationReminder(ctx, models.MedicationReminder{
		UserID:         "400500600",
		MedicationName: "vitamin d",
		ReminderTime:   "09:00",
		CreatedAt:      testNow,
	}); err != nil {
		t.Fatal(err)
	}

	m, sch := newTestManager(t, st)
	if err := m.RecoverAll(ctx); err != nil {
		t.Fatalf("RecoverAll: %v", err)
	}
	meds := sch.byKind(reminder.KindMedication)
	if len(meds) != 1 || meds[0].UserID != "400500600" {
		t.Errorf("recovered chains = %+v, want only the valid record", meds)
	}
}
