package messaging

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aliya-health/aliyabot/internal/models"
	"github.com/aliya-health/aliyabot/internal/store"
)

// fakeTransport is a Service whose channels the test feeds directly.
type fakeTransport struct {
	responses chan models.Response
	receipts  chan models.Receipt
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		responses: make(chan models.Response, DefaultChannelBufferSize),
		receipts:  make(chan models.Receipt, DefaultChannelBufferSize),
	}
}

func (f *fakeTransport) ValidateAndCanonicalizeRecipient(r string) (string, error) {
	return canonicalizePhone(r)
}
func (f *fakeTransport) SendMessage(ctx context.Context, to, body string) error { return nil }
func (f *fakeTransport) Start(ctx context.Context) error                        { return nil }
func (f *fakeTransport) Stop() error                                            { return nil }
func (f *fakeTransport) Receipts() <-chan models.Receipt                        { return f.receipts }
func (f *fakeTransport) Responses() <-chan models.Response                      { return f.responses }

// countingHandler records per-user message order and signals each call.
type countingHandler struct {
	mu     sync.Mutex
	byUser map[string][]string
	calls  chan struct{}
}

func newCountingHandler() *countingHandler {
	return &countingHandler{
		byUser: make(map[string][]string),
		calls:  make(chan struct{}, 1024),
	}
}

func (h *countingHandler) HandleMessage(ctx context.Context, userID, body string) {
	h.mu.Lock()
	h.byUser[userID] = append(h.byUser[userID], body)
	h.mu.Unlock()
	h.calls <- struct{}{}
}

func (h *countingHandler) waitCalls(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-h.calls:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for call %d of %d", i+1, n)
		}
	}
}

func (h *countingHandler) messages(userID string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.byUser[userID]))
	copy(out, h.byUser[userID])
	return out
}

func startDispatcher(t *testing.T) (*fakeTransport, *countingHandler, *store.InMemoryStore) {
	t.Helper()
	transport := newFakeTransport()
	handler := newCountingHandler()
	st := store.NewInMemoryStore()
	d := NewDispatcher(transport, handler, st)
	d.Start(context.Background())
	t.Cleanup(d.Stop)
	return transport, handler, st
}

func TestDispatcherPreservesPerUserOrder(t *testing.T) {
	transport, handler, _ := startDispatcher(t)

	const n = 25
	for i := 0; i < n; i++ {
		transport.responses <- models.Response{From: "+1234567890", Body: fmt.Sprintf("msg-%02d", i)}
	}
	handler.waitCalls(t, n)

	got := handler.messages("1234567890")
	if len(got) != n {
		t.Fatalf("handled %d messages, want %d", len(got), n)
	}
	for i, body := range got {
		if want := fmt.Sprintf("msg-%02d", i); body != want {
			t.Fatalf("message %d = %q, want %q (order violated)", i, body, want)
		}
	}
}

func TestDispatcherIsolatesUsers(t *testing.T) {
	transport, handler, _ := startDispatcher(t)

	for i := 0; i < 10; i++ {
		transport.responses <- models.Response{From: "+1111111111", Body: fmt.Sprintf("a-%d", i)}
		transport.responses <- models.Response{From: "+2222222222", Body: fmt.Sprintf("b-%d", i)}
	}
	handler.waitCalls(t, 20)

	for user, prefix := range map[string]string{"1111111111": "a-", "2222222222": "b-"} {
		got := handler.messages(user)
		if len(got) != 10 {
			t.Fatalf("user %s handled %d messages, want 10", user, len(got))
		}
		for i, body := range got {
			if want := fmt.Sprintf("%s%d", prefix, i); body != want {
				t.Errorf("user %s message %d = %q, want %q", user, i, body, want)
			}
		}
	}
}

func TestDispatcherDropsInvalidSenders(t *testing.T) {
	transport, handler, _ := startDispatcher(t)

	transport.responses <- models.Response{From: "garbage", Body: "ignored"}
	transport.responses <- models.Response{From: "+1234567890", Body: "kept"}
	handler.waitCalls(t, 1)

	if got := handler.messages("1234567890"); len(got) != 1 || got[0] != "kept" {
		t.Errorf("handled = %v, want only the valid sender's message", got)
	}
}

func TestDispatcherPersistsReceipts(t *testing.T) {
	transport, _, st := startDispatcher(t)

	transport.receipts <- models.Receipt{To: "1234567890", Status: models.MessageStatusDelivered, Time: 42}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if rs := st.Receipts(); len(rs) == 1 {
			if rs[0].Status != models.MessageStatusDelivered {
				t.Errorf("stored receipt status = %q, want delivered", rs[0].Status)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("receipt was never persisted")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
