// Package describe produces short descriptions of scanned content through a
// chat-completion API, one call at a time and no more often than a cooldown.
package describe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"qrscanner/internal/contextutil"
	"qrscanner/internal/llm"
)

const (
	systemPrompt = "You are a helpful assistant that provides brief descriptions for barcode or QR code content."
	userPrompt   = "Provide a brief description for the following barcode or QR code content: %s"

	// NoDescription is returned when the model answers with nothing usable.
	NoDescription = "No description available"
)

// DefaultCooldown is the minimum spacing between two remote calls.
const DefaultCooldown = 60 * time.Second

// ChatClient sends a structured conversation to a chat-completion API.
type ChatClient interface {
	ChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)
}

// Describer serializes description requests behind a cooldown gate.
// The zero value is not usable; use New.
type Describer struct {
	client   ChatClient
	cooldown time.Duration
	params   llm.ChatParams

	mu       sync.Mutex
	lastCall time.Time

	now  func() time.Time
	wait func(ctx context.Context, d time.Duration) error
}

// New creates a Describer. A non-positive cooldown disables waiting.
func New(client ChatClient, cooldown time.Duration) *Describer {
	return &Describer{
		client:   client,
		cooldown: cooldown,
		now:      time.Now,
		wait:     sleepContext,
	}
}

// WithParams sets the model and sampling parameters sent with each request.
func (d *Describer) WithParams(params llm.ChatParams) *Describer {
	d.params = params
	return d
}

// Describe returns a brief description of content. Calls made before the
// cooldown has elapsed block until it has; only ctx cancellation ends the wait
// early. The cooldown restarts only after a successful remote call.
func (d *Describer) Describe(ctx context.Context, content string) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.lastCall.IsZero() && d.cooldown > 0 {
		if remaining := d.cooldown - d.now().Sub(d.lastCall); remaining > 0 {
			logger.DebugContext(ctx, "waiting for description cooldown", "remaining", remaining)
			if err := d.wait(ctx, remaining); err != nil {
				return "", fmt.Errorf("waiting for cooldown: %w", err)
			}
		}
	}

	messages := []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: fmt.Sprintf(userPrompt, content)},
	}

	reply, err := d.client.ChatWithMessages(ctx, messages, d.params)
	if err != nil && !errors.Is(err, llm.ErrNoChoices) {
		logger.WarnContext(ctx, "description request failed", "error", err)
		return "", err
	}
	d.lastCall = d.now()

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return NoDescription, nil
	}
	return reply, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
