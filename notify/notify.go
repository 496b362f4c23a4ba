// Package notify sends desktop notifications when a supervised process
// exits on its own.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Severity levels.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
)

// Notification represents a notification to be displayed.
type Notification struct {
	// Title is the notification title (typically the role name)
	Title string

	// Message is the notification body
	Message string

	// Severity indicates the notification severity
	Severity string // "critical", "warning", "info"

	// Timestamp when the notification was created
	Timestamp time.Time

	// Data contains arbitrary data associated with the notification
	Data map[string]string
}

// Notifier is the interface for desktop notification systems.
type Notifier interface {
	// Send sends a notification to the OS notification system.
	Send(ctx context.Context, notification Notification) error

	// IsAvailable returns true if OS notifications are available.
	IsAvailable() bool

	// Close cleans up notification system resources.
	Close() error
}

// Config contains notification system configuration.
type Config struct {
	// AppName is prefixed to every notification title
	AppName string

	// Timeout bounds a single Send
	Timeout time.Duration
}

// DefaultConfig returns default notification configuration.
func DefaultConfig() Config {
	return Config{
		AppName: "pyhost",
		Timeout: 5 * time.Second,
	}
}

// New creates a desktop notifier.
func New(config Config) (Notifier, error) {
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	return newBeeepNotifier(config), nil
}

var (
	ErrNotificationFailed = errors.New("failed to send notification")
	ErrTimeout            = errors.New("notification timeout")
)

// RoleExited builds the notification for a role process found dead.
func RoleExited(role string, pid, exitCode int) Notification {
	msg := fmt.Sprintf("Process %d exited with code %d", pid, exitCode)
	severity := SeverityCritical
	switch {
	case exitCode == 0:
		msg = fmt.Sprintf("Process %d exited", pid)
		severity = SeverityInfo
	case exitCode < 0:
		msg = fmt.Sprintf("Process %d is no longer running", pid)
		severity = SeverityWarning
	}
	return Notification{
		Title:     role,
		Message:   msg,
		Severity:  severity,
		Timestamp: time.Now(),
		Data: map[string]string{
			"role": role,
			"pid":  fmt.Sprint(pid),
		},
	}
}

// Noop discards all notifications.
type Noop struct{}

var _ Notifier = Noop{}

// Send does nothing.
func (Noop) Send(context.Context, Notification) error { return nil }

// IsAvailable reports false.
func (Noop) IsAvailable() bool { return false }

// Close does nothing.
func (Noop) Close() error { return nil }
