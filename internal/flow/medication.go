package flow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aliya-health/aliyabot/internal/messages"
	"github.com/aliya-health/aliyabot/internal/models"
	"github.com/aliya-health/aliyabot/internal/reminder"
	"github.com/aliya-health/aliyabot/internal/session"
	"github.com/aliya-health/aliyabot/internal/store"
)

// handleMedicationName keeps the raw text so "Aspirin 75mg" is stored
// and delivered the way the user wrote it.
func (e *Engine) handleMedicationName(ctx context.Context, s *session.Session, _, raw string) error {
	s.Set(session.FieldMedicationName, raw)
	e.prompt(ctx, s, models.StepMedicationTime)
	return nil
}

func (e *Engine) handleMedicationTime(ctx context.Context, s *session.Session, input, _ string) error {
	s.Set(session.FieldMedicationTime, input)
	name := s.Get(session.FieldMedicationName)

	r := models.MedicationReminder{
		UserID:         s.UserID,
		MedicationName: name,
		ReminderTime:   input,
		CreatedAt:      e.now(),
	}
	cctx, cancel := e.withStoreTimeout(ctx)
	defer cancel()
	if err := e.store.AddMedicationReminder(cctx, r); err != nil {
		return wrapStoreErr("save medication reminder", err)
	}

	e.scheduleMedicationReminder(s.UserID, name, input)
	e.send(ctx, s.UserID, messages.Get(messages.KeyMedicationResult, nil))
	e.sendMainMenu(ctx, s)
	return nil
}

// scheduleMedicationReminder arms the unbounded daily chain for one
// medication. It repeats until the user cancels. Each delivery re-reads
// the medication name so a renamed or removed record is reflected.
func (e *Engine) scheduleMedicationReminder(userID, name, timeOfDay string) {
	fireAt, err := NextOccurrence(timeOfDay, e.now().In(e.loc))
	if err != nil {
		slog.Error("Invalid medication reminder time", "userID", userID, "time", timeOfDay, "error", err)
		return
	}
	_, err = e.reminders.Schedule(reminder.Request{
		UserID:      userID,
		Kind:        reminder.KindMedication,
		Message:     messages.Get(messages.KeyMedicationReminder, map[string]string{"name": name}),
		FireAt:      fireAt,
		Occurrences: reminder.Unbounded,
		Regenerate:  medicationMessage(e.store, userID, timeOfDay),
	})
	if err != nil {
		slog.Error("Failed to schedule medication reminder", "userID", userID, "error", err)
	}
}

// medicationMessage builds a regeneration func that looks the medication
// back up by its reminder time.
func medicationMessage(st store.Store, userID, timeOfDay string) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		cctx, cancel := context.WithTimeout(ctx, storeTimeout)
		defer cancel()
		reminders, err := st.ListMedicationReminders(cctx, userID)
		if err != nil {
			return "", fmt.Errorf("load medication reminders: %w", err)
		}
		for _, r := range reminders {
			if r.ReminderTime == timeOfDay {
				return messages.Get(messages.KeyMedicationReminder, map[string]string{"name": r.MedicationName}), nil
			}
		}
		return "", fmt.Errorf("no medication reminder for %s at %s", userID, timeOfDay)
	}
}
