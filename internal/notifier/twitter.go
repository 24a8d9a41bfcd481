package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/dghubble/oauth1"

	"github.com/akum32o/ncsl-ai-energy-watch/internal/bill"
	"github.com/akum32o/ncsl-ai-energy-watch/internal/config"
)

// Announcer posts per-bill announcements after a digest has gone out.
// Announcements are best-effort: the pipeline logs failures and moves on.
type Announcer interface {
	Announce(ctx context.Context, bills []*bill.Bill) error
}

// TwitterAnnouncer posts one status per new or updated bill.
type TwitterAnnouncer struct {
	client *twitter.Client

	// pause between posts, to stay clear of the rate limit
	pause time.Duration
}

// NewTwitterAnnouncer builds an announcer from API credentials. It returns
// ErrNotConfigured when any of the four credentials is missing.
func NewTwitterAnnouncer(cfg config.TwitterConfig) (*TwitterAnnouncer, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}

	oauthConfig := oauth1.NewConfig(cfg.APIKey, cfg.APISecret)
	token := oauth1.NewToken(cfg.AccessToken, cfg.AccessSecret)
	httpClient := oauthConfig.Client(oauth1.NoContext, token)

	return &TwitterAnnouncer{
		client: twitter.NewClient(httpClient),
		pause:  2 * time.Second,
	}, nil
}

// Announce posts a status for each bill, pausing between posts.
func (a *TwitterAnnouncer) Announce(ctx context.Context, bills []*bill.Bill) error {
	for i, b := range bills {
		if err := ctx.Err(); err != nil {
			return err
		}

		status := formatStatus(b)
		if _, _, err := a.client.Statuses.Update(status, nil); err != nil {
			return fmt.Errorf("posting status for %s: %w", b.ID, err)
		}

		if i < len(bills)-1 {
			time.Sleep(a.pause)
		}
	}

	return nil
}

// formatStatus renders a bill announcement within the 280-character limit.
func formatStatus(b *bill.Bill) string {
	status := fmt.Sprintf("New or updated AI energy bill: %s %s - %s\nStatus: %s\n%s",
		b.Jurisdiction, b.Number, b.Title, b.Status, b.URL)

	if len(status) > 280 {
		status = status[:277] + "..."
	}

	return status
}
