package messaging

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aliya-health/aliyabot/internal/models"
	"github.com/aliya-health/aliyabot/internal/store"
)

const (
	// DefaultUserQueueSize is the per-user inbound queue depth.
	DefaultUserQueueSize = 32
	// receiptStoreTimeout bounds receipt persistence writes.
	receiptStoreTimeout = 5 * time.Second
)

// Handler consumes one inbound message for a user. The conversation engine
// implements this.
type Handler interface {
	HandleMessage(ctx context.Context, userID, body string)
}

// Dispatcher connects a transport Service to a Handler. Each user gets a
// dedicated worker goroutine and queue, so one user's messages are handled
// strictly in arrival order while different users run in parallel. Receipt
// events are persisted to the store.
type Dispatcher struct {
	svc     Service
	handler Handler
	st      store.Store

	mu     sync.Mutex
	queues map[string]chan models.Response
	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewDispatcher creates a Dispatcher over the given service and handler.
func NewDispatcher(svc Service, handler Handler, st store.Store) *Dispatcher {
	return &Dispatcher{
		svc:     svc,
		handler: handler,
		st:      st,
		queues:  make(map[string]chan models.Response),
	}
}

// Start launches the consumer goroutines. Stop (or cancelling the parent
// context) shuts them down.
func (d *Dispatcher) Start(ctx context.Context) {
	ctx, d.cancel = context.WithCancel(ctx)
	d.wg.Add(2)
	go d.consumeResponses(ctx)
	go d.consumeReceipts(ctx)
	slog.Debug("Dispatcher started")
}

// Stop shuts down the dispatcher and waits for in-flight handling to finish.
func (d *Dispatcher) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
	d.wg.Wait()
	slog.Info("Dispatcher stopped")
}

func (d *Dispatcher) consumeResponses(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case resp, ok := <-d.svc.Responses():
			if !ok {
				return
			}
			userID, err := d.svc.ValidateAndCanonicalizeRecipient(resp.From)
			if err != nil {
				slog.Warn("Dispatcher dropping response with invalid sender", "from", resp.From, "error", err)
				continue
			}
			resp.From = userID
			d.enqueue(ctx, userID, resp)
		}
	}
}

// enqueue places the response on the user's queue, creating the queue and
// its worker on first contact. A full queue drops the message after the
// channel timeout rather than stalling other users.
func (d *Dispatcher) enqueue(ctx context.Context, userID string, resp models.Response) {
	d.mu.Lock()
	q, ok := d.queues[userID]
	if !ok {
		q = make(chan models.Response, DefaultUserQueueSize)
		d.queues[userID] = q
		d.wg.Add(1)
		go d.runWorker(ctx, userID, q)
	}
	d.mu.Unlock()

	select {
	case q <- resp:
	case <-time.After(DefaultChannelTimeout):
		slog.Warn("Dispatcher user queue full, dropping message", "userID", userID)
	case <-ctx.Done():
	}
}

func (d *Dispatcher) runWorker(ctx context.Context, userID string, q <-chan models.Response) {
	defer d.wg.Done()
	slog.Debug("Dispatcher worker started", "userID", userID)
	for {
		select {
		case <-ctx.Done():
			return
		case resp := <-q:
			d.handler.HandleMessage(ctx, userID, resp.Body)
		}
	}
}

func (d *Dispatcher) consumeReceipts(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case receipt, ok := <-d.svc.Receipts():
			if !ok {
				return
			}
			cctx, cancel := context.WithTimeout(ctx, receiptStoreTimeout)
			if err := d.st.AddReceipt(cctx, receipt); err != nil {
				slog.Warn("Failed to persist receipt", "to", receipt.To, "status", receipt.Status, "error", err)
			}
			cancel()
		}
	}
}
