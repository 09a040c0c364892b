// Package messaging abstracts the message transport. A Service delivers
// outbound messages and surfaces inbound responses and delivery receipts
// as channels; the Dispatcher consumes those channels and drives the
// conversation engine with per-user ordering.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/aliya-health/aliyabot/internal/models"
)

// Channel sizing shared by the transport implementations.
const (
	// DefaultChannelBufferSize is the buffer size for receipt and response channels.
	DefaultChannelBufferSize = 100
	// DefaultChannelTimeout bounds non-blocking channel sends before dropping.
	DefaultChannelTimeout = 1 * time.Second
)

// ErrServiceStopped is returned when an operation is attempted on a stopped service.
var ErrServiceStopped = errors.New("messaging service is stopped")

// Service defines a pluggable message delivery abstraction.
type Service interface {
	// ValidateAndCanonicalizeRecipient validates and canonicalizes a recipient
	// identifier. Each transport may apply its own rules.
	ValidateAndCanonicalizeRecipient(recipient string) (string, error)

	// SendMessage sends a message to a recipient.
	SendMessage(ctx context.Context, to string, body string) error

	// Start begins any background processing (e.g., event polling).
	Start(ctx context.Context) error

	// Stop stops background processing and cleans up resources.
	Stop() error

	// Receipts returns a channel of receipt events (sent, delivered, read).
	Receipts() <-chan models.Receipt

	// Responses returns a channel of incoming user messages.
	Responses() <-chan models.Response
}

var nonDigitRegex = regexp.MustCompile(`[^0-9]`)

// canonicalizePhone strips everything but digits and validates the result
// looks like a phone number. Both transports share these rules so a user is
// keyed identically no matter which transport delivered the message.
func canonicalizePhone(recipient string) (string, error) {
	if recipient == "" {
		return "", fmt.Errorf("recipient cannot be empty")
	}

	canonical := nonDigitRegex.ReplaceAllString(recipient, "")
	if canonical == "" {
		return "", fmt.Errorf("invalid phone number: no digits found in recipient %q", recipient)
	}
	if len(canonical) < 6 {
		return "", fmt.Errorf("invalid phone number: %q is too short (minimum 6 digits required)", canonical)
	}

	if canonical != recipient {
		slog.Debug("Canonicalized recipient", "original", recipient, "canonical", canonical)
	}
	return canonical, nil
}
