// Package recovery re-arms reminder chains after a restart. Timers live in
// memory only, so on startup every still-active plan, medication reminder
// and tips subscription in the store gets its chain rebuilt from the next
// occurrence of its stored HH:MM time.
package recovery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aliya-health/aliyabot/internal/flow"
	"github.com/aliya-health/aliyabot/internal/genai"
	"github.com/aliya-health/aliyabot/internal/messages"
	"github.com/aliya-health/aliyabot/internal/models"
	"github.com/aliya-health/aliyabot/internal/reminder"
	"github.com/aliya-health/aliyabot/internal/store"
)

const storeTimeout = 5 * time.Second

// Scheduler is the slice of the reminder scheduler recovery needs.
type Scheduler interface {
	Schedule(req reminder.Request) (string, error)
}

// Generator produces AI content for regenerated reminder deliveries.
type Generator interface {
	GenerateFor(ctx context.Context, topic genai.Topic, pc genai.PromptContext) (string, error)
}

// Manager scans the store and re-registers reminders on startup.
type Manager struct {
	st  store.Store
	sch Scheduler
	gen Generator
	loc *time.Location
	now func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the manager's time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLocation sets the timezone reminder times are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(m *Manager) { m.loc = loc }
}

// NewManager creates a recovery Manager.
func NewManager(st store.Store, sch Scheduler, gen Generator, opts ...Option) *Manager {
	m := &Manager{
		st:  st,
		sch: sch,
		gen: gen,
		loc: flow.DefaultLocation(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RecoverAll rebuilds every reminder chain the store still owes. Failures
// on individual records are logged and skipped; only listing failures make
// the whole pass fail.
func (m *Manager) RecoverAll(ctx context.Context) error {
	var listErrs []error

	recovered, err := m.recoverFitnessPlans(ctx)
	if err != nil {
		listErrs = append(listErrs, err)
	}
	n, err := m.recoverMealPlans(ctx)
	recovered += n
	if err != nil {
		listErrs = append(listErrs, err)
	}
	n, err = m.recoverMedicationReminders(ctx)
	recovered += n
	if err != nil {
		listErrs = append(listErrs, err)
	}
	n, err = m.recoverSubscriptions(ctx)
	recovered += n
	if err != nil {
		listErrs = append(listErrs, err)
	}

	slog.Info("Reminder recovery completed", "recovered", recovered, "list_errors", len(listErrs))
	if len(listErrs) > 0 {
		return fmt.Errorf("recovery completed with %d listing failures (first: %w)", len(listErrs), listErrs[0])
	}
	return nil
}

func (m *Manager) recoverFitnessPlans(ctx context.Context) (int, error) {
	cctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	plans, err := m.st.ListFitnessPlans(cctx)
	if err != nil {
		return 0, fmt.Errorf("list fitness plans: %w", err)
	}

	recovered := 0
	for _, p := range plans {
		remaining := p.DaysRemaining(m.now())
		if remaining <= 0 {
			continue
		}
		fireAt, err := flow.NextOccurrence(p.ReminderTime, m.now().In(m.loc))
		if err != nil {
			slog.Warn("Skipping fitness plan with invalid reminder time", "userID", p.UserID, "time", p.ReminderTime, "error", err)
			continue
		}
		pc := m.promptContext(ctx, p.UserID)
		pc.FitnessGoal = p.Goal
		pc.FitnessType = p.Type
		pc.DailyTime = p.DailyTime
		_, err = m.sch.Schedule(reminder.Request{
			UserID:      p.UserID,
			Kind:        reminder.KindFitness,
			Message:     messages.Get(messages.KeyFitnessReminder, map[string]string{"plan": p.Plan}),
			FireAt:      fireAt,
			Occurrences: remaining,
			Regenerate: func(ctx context.Context) (string, error) {
				fresh, err := m.gen.GenerateFor(ctx, genai.TopicFitnessPlan, pc)
				if err != nil {
					return "", err
				}
				cctx, cancel := context.WithTimeout(ctx, storeTimeout)
				if err := m.st.UpdateFitnessPlanBody(cctx, p.UserID, fresh); err != nil {
					slog.Warn("Failed to persist regenerated fitness plan", "userID", p.UserID, "error", err)
				}
				cancel()
				return messages.Get(messages.KeyFitnessReminder, map[string]string{"plan": fresh}), nil
			},
		})
		if err != nil {
			slog.Warn("Failed to recover fitness plan reminder", "userID", p.UserID, "error", err)
			continue
		}
		recovered++
	}
	return recovered, nil
}

func (m *Manager) recoverMealPlans(ctx context.Context) (int, error) {
	cctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	plans, err := m.st.ListMealPlans(cctx)
	if err != nil {
		return 0, fmt.Errorf("list meal plans: %w", err)
	}

	recovered := 0
	for _, p := range plans {
		remaining := p.DaysRemaining(m.now())
		if remaining <= 0 {
			continue
		}
		fireAt, err := flow.NextOccurrence(p.ReminderTime, m.now().In(m.loc))
		if err != nil {
			slog.Warn("Skipping meal plan with invalid reminder time", "userID", p.UserID, "time", p.ReminderTime, "error", err)
			continue
		}
		pc := m.promptContext(ctx, p.UserID)
		pc.MealPreference = p.Preference
		pc.MealGoal = p.Goal
		_, err = m.sch.Schedule(reminder.Request{
			UserID:      p.UserID,
			Kind:        reminder.KindMeal,
			Message:     messages.Get(messages.KeyMealReminder, map[string]string{"plan": p.Plan}),
			FireAt:      fireAt,
			Occurrences: remaining,
			Regenerate: func(ctx context.Context) (string, error) {
				fresh, err := m.gen.GenerateFor(ctx, genai.TopicMealPlan, pc)
				if err != nil {
					return "", err
				}
				cctx, cancel := context.WithTimeout(ctx, storeTimeout)
				if err := m.st.UpdateMealPlanBody(cctx, p.UserID, fresh); err != nil {
					slog.Warn("Failed to persist regenerated meal plan", "userID", p.UserID, "error", err)
				}
				cancel()
				return messages.Get(messages.KeyMealReminder, map[string]string{"plan": fresh}), nil
			},
		})
		if err != nil {
			slog.Warn("Failed to recover meal plan reminder", "userID", p.UserID, "error", err)
			continue
		}
		recovered++
	}
	return recovered, nil
}

func (m *Manager) recoverMedicationReminders(ctx context.Context) (int, error) {
	cctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	reminders, err := m.st.ListAllMedicationReminders(cctx)
	if err != nil {
		return 0, fmt.Errorf("list medication reminders: %w", err)
	}

	recovered := 0
	for _, r := range reminders {
		fireAt, err := flow.NextOccurrence(r.ReminderTime, m.now().In(m.loc))
		if err != nil {
			slog.Warn("Skipping medication reminder with invalid time", "userID", r.UserID, "time", r.ReminderTime, "error", err)
			continue
		}
		userID, timeOfDay := r.UserID, r.ReminderTime
		_, err = m.sch.Schedule(reminder.Request{
			UserID:      r.UserID,
			Kind:        reminder.KindMedication,
			Message:     messages.Get(messages.KeyMedicationReminder, map[string]string{"name": r.MedicationName}),
			FireAt:      fireAt,
			Occurrences: reminder.Unbounded,
			Regenerate: func(ctx context.Context) (string, error) {
				cctx, cancel := context.WithTimeout(ctx, storeTimeout)
				defer cancel()
				current, err := m.st.ListMedicationReminders(cctx, userID)
				if err != nil {
					return "", fmt.Errorf("load medication reminders: %w", err)
				}
				for _, c := range current {
					if c.ReminderTime == timeOfDay {
						return messages.Get(messages.KeyMedicationReminder, map[string]string{"name": c.MedicationName}), nil
					}
				}
				return "", fmt.Errorf("no medication reminder for %s at %s", userID, timeOfDay)
			},
		})
		if err != nil {
			slog.Warn("Failed to recover medication reminder", "userID", r.UserID, "error", err)
			continue
		}
		recovered++
	}
	return recovered, nil
}

func (m *Manager) recoverSubscriptions(ctx context.Context) (int, error) {
	cctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	subs, err := m.st.ListSubscriptions(cctx)
	if err != nil {
		return 0, fmt.Errorf("list subscriptions: %w", err)
	}

	recovered := 0
	for _, sub := range subs {
		fireAt, err := flow.NextOccurrence(flow.DailyTipTime, m.now().In(m.loc))
		if err != nil {
			slog.Warn("Skipping tips subscription with invalid time", "userID", sub.UserID, "error", err)
			continue
		}
		pc := m.promptContext(ctx, sub.UserID)
		_, err = m.sch.Schedule(reminder.Request{
			UserID:      sub.UserID,
			Kind:        reminder.KindDailyTips,
			Message:     messages.Get(messages.KeyDailyTip, map[string]string{"tip": genai.Fallback(genai.TopicHealthTip)}),
			FireAt:      fireAt,
			Occurrences: reminder.Unbounded,
			Regenerate: func(ctx context.Context) (string, error) {
				tip, err := m.gen.GenerateFor(ctx, genai.TopicHealthTip, pc)
				if err != nil {
					return "", err
				}
				return messages.Get(messages.KeyDailyTip, map[string]string{"tip": tip}), nil
			},
		})
		if err != nil {
			slog.Warn("Failed to recover daily tips reminder", "userID", sub.UserID, "error", err)
			continue
		}
		recovered++
	}
	return recovered, nil
}

// promptContext loads the user's profile for regeneration prompts. Missing
// profiles degrade to an empty context rather than blocking recovery.
func (m *Manager) promptContext(ctx context.Context, userID string) genai.PromptContext {
	cctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	u, err := m.st.GetUser(cctx, userID)
	if err != nil || u == nil {
		if err != nil {
			slog.Warn("Failed to load profile during recovery", "userID", userID, "error", err)
		}
		return genai.PromptContext{}
	}
	return promptContextFor(u)
}

func promptContextFor(u *models.User) genai.PromptContext {
	return genai.PromptContext{
		Name:     u.Name,
		Age:      u.Age,
		Sex:      u.Sex,
		Height:   u.Height,
		Weight:   u.Weight,
		Location: u.Location,
	}
}
