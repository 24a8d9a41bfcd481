package notifier

import (
	"context"
	"fmt"
	"io"
)

// DryRun writes the digest to a writer instead of delivering it.
type DryRun struct {
	out io.Writer
}

// NewDryRun creates a dry-run notifier writing to out.
func NewDryRun(out io.Writer) *DryRun {
	return &DryRun{out: out}
}

// Configured is always true; a dry run needs nothing.
func (n *DryRun) Configured() bool {
	return true
}

// Notify prints the digest the way it would be mailed.
func (n *DryRun) Notify(ctx context.Context, subject, body string) error {
	if _, err := fmt.Fprintf(n.out, "Subject: %s\n\n%s", subject, body); err != nil {
		return &SendError{Channel: "dry-run", Err: err}
	}
	return nil
}
