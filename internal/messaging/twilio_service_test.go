package messaging

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/aliya-health/aliyabot/internal/models"
	"github.com/aliya-health/aliyabot/internal/twiliowhatsapp"
)

func postWebhook(t *testing.T, svc *TwilioService, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook/twilio", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	svc.TwilioWebhookHandler(w, req)
	return w
}

func TestTwilioWebhookEmitsResponse(t *testing.T) {
	svc := NewTwilioService(twiliowhatsapp.NewMockClient())

	w := postWebhook(t, svc, url.Values{
		"From": {"whatsapp:+1234567890"},
		"Body": {"hello aliya"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("webhook status = %d, want 200", w.Code)
	}

	select {
	case resp := <-svc.Responses():
		if resp.From != "whatsapp:+1234567890" || resp.Body != "hello aliya" {
			t.Errorf("response = %+v", resp)
		}
	default:
		t.Fatal("no response emitted")
	}
}

func TestTwilioWebhookRejectsMissingFields(t *testing.T) {
	svc := NewTwilioService(twiliowhatsapp.NewMockClient())

	w := postWebhook(t, svc, url.Values{"From": {"+1234567890"}})
	if w.Code != http.StatusBadRequest {
		t.Errorf("webhook status = %d, want 400", w.Code)
	}

	select {
	case resp := <-svc.Responses():
		t.Errorf("unexpected response %+v", resp)
	default:
	}
}

func TestTwilioSendCanonicalizesAndEmitsReceipt(t *testing.T) {
	mock := twiliowhatsapp.NewMockClient()
	svc := NewTwilioService(mock)

	if err := svc.SendMessage(context.Background(), "whatsapp:+1234567890", "hi"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if len(mock.SentMessages) != 1 || mock.SentMessages[0].To != "1234567890" {
		t.Fatalf("mock got %+v, want one message to canonical 1234567890", mock.SentMessages)
	}

	select {
	case r := <-svc.Receipts():
		if r.Status != models.MessageStatusSent {
			t.Errorf("receipt status = %q, want sent", r.Status)
		}
	default:
		t.Error("no receipt emitted")
	}
}
