// Package notify surfaces borrower-facing messages on an output channel.
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Channel labels the medium a message is sent through.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "SMS"
)

var ErrUnknownChannel = errors.New("unknown notification channel")

// Notifier delivers a message to a recipient.
type Notifier interface {
	Notify(ctx context.Context, message, recipient string) error
	Channel() Channel
}

// Console writes one line per notification to an io.Writer.
type Console struct {
	channel Channel
	out     io.Writer
}

func NewEmail(out io.Writer) *Console { return &Console{channel: ChannelEmail, out: out} }

func NewSMS(out io.Writer) *Console { return &Console{channel: ChannelSMS, out: out} }

// ForChannel builds a console notifier from a channel name such as "email" or "sms".
func ForChannel(name string, out io.Writer) (Notifier, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "email":
		return NewEmail(out), nil
	case "sms":
		return NewSMS(out), nil
	default:
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownChannel)
	}
}

func (c *Console) Notify(_ context.Context, message, recipient string) error {
	if _, err := fmt.Fprintf(c.out, "Sending %s to %s: %s\n", c.channel, recipient, message); err != nil {
		return fmt.Errorf("failed to send %s to %s: %w", c.channel, recipient, err)
	}
	return nil
}

func (c *Console) Channel() Channel { return c.channel }
