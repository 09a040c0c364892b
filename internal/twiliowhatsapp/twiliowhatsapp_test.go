package twiliowhatsapp

import (
	"context"
	"testing"
)

func TestNewClientRequiresCredentials(t *testing.T) {
	t.Setenv("TWILIO_ACCOUNT_SID", "")
	t.Setenv("TWILIO_AUTH_TOKEN", "")
	t.Setenv("TWILIO_FROM_NUMBER", "")

	if _, err := NewClient(); err == nil {
		t.Error("expected error without credentials")
	}
	if _, err := NewClient(WithAccountSID("AC123"), WithAuthToken("token")); err == nil {
		t.Error("expected error without a from number")
	}
}

func TestMockClientRecordsMessages(t *testing.T) {
	mock := NewMockClient()

	if err := mock.SendMessage(context.Background(), "1234567890", "take your meds"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	if len(mock.SentMessages) != 1 {
		t.Fatalf("recorded %d messages, want 1", len(mock.SentMessages))
	}
	if got := mock.SentMessages[0]; got.To != "1234567890" || got.Body != "take your meds" {
		t.Errorf("recorded message = %+v", got)
	}
}
