// Package notify carries transient user-facing messages ("toasts") from the
// cart to whatever surface displays them.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

func ParseSeverity(s string) (Severity, error) {
	switch Severity(s) {
	case SeverityInfo, SeveritySuccess, SeverityWarning, SeverityError:
		return Severity(s), nil
	default:
		return "", fmt.Errorf("unknown severity %q", s)
	}
}

type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewNotification(severity Severity, message string) Notification {
	return Notification{
		ID:        uuid.NewString(),
		Message:   message,
		Severity:  severity,
		CreatedAt: time.Now().UTC(),
	}
}

// Notifier is fire-and-forget: implementations must not block the caller
// on display and have nothing to report back.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

type multi []Notifier

// Multi fans a notification out to every non-nil notifier in order.
func Multi(notifiers ...Notifier) Notifier {
	out := make(multi, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

func (m multi) Notify(ctx context.Context, n Notification) {
	for _, target := range m {
		target.Notify(ctx, n)
	}
}

// Discard drops every notification.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Notify(context.Context, Notification) {}
