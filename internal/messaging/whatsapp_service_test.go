package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/aliya-health/aliyabot/internal/models"
)

type recordingSender struct {
	sent []struct{ to, body string }
	fail error
}

func (r *recordingSender) SendMessage(ctx context.Context, to, body string) error {
	if r.fail != nil {
		return r.fail
	}
	r.sent = append(r.sent, struct{ to, body string }{to, body})
	return nil
}

func TestWhatsAppServiceSendEmitsSentReceipt(t *testing.T) {
	sender := &recordingSender{}
	svc := NewWhatsAppService(sender)

	if err := svc.SendMessage(context.Background(), "+1234567890", "hello"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	if len(sender.sent) != 1 || sender.sent[0].to != "1234567890" {
		t.Fatalf("sender got %+v, want one message to canonical 1234567890", sender.sent)
	}

	select {
	case r := <-svc.Receipts():
		if r.To != "1234567890" || r.Status != models.MessageStatusSent {
			t.Errorf("receipt = %+v, want sent receipt for 1234567890", r)
		}
	default:
		t.Error("no receipt emitted")
	}
}

func TestWhatsAppServiceSendFailureEmitsNoReceipt(t *testing.T) {
	sender := &recordingSender{fail: errors.New("boom")}
	svc := NewWhatsAppService(sender)

	if err := svc.SendMessage(context.Background(), "+1234567890", "hello"); err == nil {
		t.Fatal("expected send error")
	}

	select {
	case r := <-svc.Receipts():
		t.Errorf("unexpected receipt %+v after failed send", r)
	default:
	}
}

func TestWhatsAppServiceRejectsInvalidRecipient(t *testing.T) {
	sender := &recordingSender{}
	svc := NewWhatsAppService(sender)

	if err := svc.SendMessage(context.Background(), "bogus", "hello"); err == nil {
		t.Fatal("expected validation error")
	}
	if len(sender.sent) != 0 {
		t.Errorf("sender was invoked for invalid recipient: %+v", sender.sent)
	}
}

func TestWhatsAppServiceStoppedRejectsSends(t *testing.T) {
	svc := NewWhatsAppService(&recordingSender{})
	if err := svc.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := svc.SendMessage(context.Background(), "+1234567890", "hello"); !errors.Is(err, ErrServiceStopped) {
		t.Errorf("SendMessage after Stop = %v, want ErrServiceStopped", err)
	}
	// Stop again is a no-op, not a double close.
	if err := svc.Stop(); err != nil {
		t.Errorf("second Stop: %v", err)
	}
}
