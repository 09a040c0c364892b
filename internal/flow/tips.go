package flow

import (
	"context"
	"log/slog"

	"github.com/aliya-health/aliyabot/internal/genai"
	"github.com/aliya-health/aliyabot/internal/messages"
	"github.com/aliya-health/aliyabot/internal/models"
	"github.com/aliya-health/aliyabot/internal/reminder"
	"github.com/aliya-health/aliyabot/internal/session"
)

// DailyTipTime is when subscribed users receive their tip.
const DailyTipTime = "08:00"

func (e *Engine) handleDailyTips(ctx context.Context, s *session.Session, input, _ string) error {
	cctx, cancel := e.withStoreTimeout(ctx)
	defer cancel()

	if input == "subscribe" {
		sub := &models.Subscription{UserID: s.UserID, DailyTips: true, CreatedAt: e.now()}
		if err := e.store.SaveSubscription(cctx, sub); err != nil {
			return wrapStoreErr("save subscription", err)
		}
		e.scheduleDailyTips(s.UserID)
		e.send(ctx, s.UserID, messages.Get(messages.KeyTipsSubscribed, nil))
	} else {
		// Unsubscribe upserts the flag to false rather than deleting the
		// row, so the history of having subscribed survives.
		sub := &models.Subscription{UserID: s.UserID, DailyTips: false, CreatedAt: e.now()}
		if err := e.store.SaveSubscription(cctx, sub); err != nil {
			return wrapStoreErr("save subscription", err)
		}
		e.reminders.CancelKind(s.UserID, reminder.KindDailyTips)
		e.send(ctx, s.UserID, messages.Get(messages.KeyTipsUnsubscribed, nil))
	}
	e.sendMainMenu(ctx, s)
	return nil
}

// scheduleDailyTips arms the unbounded tip chain. Each delivery asks the
// model for a fresh tip; failures fall back to the last one sent.
func (e *Engine) scheduleDailyTips(userID string) {
	// Duplicate chains would double-deliver after repeat subscribes.
	e.reminders.CancelKind(userID, reminder.KindDailyTips)

	fireAt, err := NextOccurrence(DailyTipTime, e.now().In(e.loc))
	if err != nil {
		slog.Error("Invalid daily tip time", "userID", userID, "error", err)
		return
	}
	pc := e.promptContext(e.sessions.Get(userID))
	_, err = e.reminders.Schedule(reminder.Request{
		UserID:      userID,
		Kind:        reminder.KindDailyTips,
		Message:     messages.Get(messages.KeyDailyTip, map[string]string{"tip": genai.Fallback(genai.TopicHealthTip)}),
		FireAt:      fireAt,
		Occurrences: reminder.Unbounded,
		Regenerate: func(ctx context.Context) (string, error) {
			tip, err := e.gen.GenerateFor(ctx, genai.TopicHealthTip, pc)
			if err != nil {
				return "", err
			}
			return messages.Get(messages.KeyDailyTip, map[string]string{"tip": tip}), nil
		},
	})
	if err != nil {
		slog.Error("Failed to schedule daily tips", "userID", userID, "error", err)
	}
}
