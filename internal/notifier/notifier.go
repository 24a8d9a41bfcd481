package notifier

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotConfigured reports that a notifier is missing the settings it needs
// to deliver anything. Callers that treat delivery as optional check
// Configured first instead of handling this error.
var ErrNotConfigured = errors.New("notifier not configured")

// Notifier delivers a rendered digest.
type Notifier interface {
	// Configured reports whether delivery settings are complete.
	Configured() bool

	// Notify delivers one digest. It returns ErrNotConfigured when
	// Configured is false and a *SendError when delivery itself fails.
	Notify(ctx context.Context, subject, body string) error
}

// SendError is a delivery failure on a configured channel. The pipeline
// aborts on it before persisting state, so the next run recomputes the same
// diff and the digest is not lost.
type SendError struct {
	Channel string
	Err     error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("%s delivery failed: %v", e.Channel, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}
