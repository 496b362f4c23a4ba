package notify

import (
	"context"
	"fmt"

	"github.com/gen2brain/beeep"
)

// beeepSend is replaced in tests.
var beeepSend = func(title, message string) error {
	return beeep.Notify(title, message, "")
}

// beeepNotifier implements Notifier using the cross-platform beeep library.
type beeepNotifier struct {
	config Config
}

func newBeeepNotifier(config Config) *beeepNotifier {
	return &beeepNotifier{config: config}
}

// Send sends a notification using beeep, bounded by the configured timeout.
func (n *beeepNotifier) Send(ctx context.Context, notification Notification) error {
	ctx, cancel := context.WithTimeout(ctx, n.config.Timeout)
	defer cancel()

	title := notification.Title
	if n.config.AppName != "" {
		title = n.config.AppName + ": " + title
	}

	done := make(chan error, 1)
	go func() {
		done <- beeepSend(title, notification.Message)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%w: %w", ErrNotificationFailed, err)
		}
		return nil
	case <-ctx.Done():
		return ErrTimeout
	}
}

// IsAvailable returns true since beeep handles platform detection internally.
func (n *beeepNotifier) IsAvailable() bool {
	return true
}

// Close is a no-op for beeep.
func (n *beeepNotifier) Close() error {
	return nil
}
