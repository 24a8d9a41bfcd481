package notifier

import (
	"strings"
	"testing"

	"github.com/akum32o/ncsl-ai-energy-watch/internal/bill"
	"github.com/akum32o/ncsl-ai-energy-watch/internal/config"
)

func TestFormatStatus(t *testing.T) {
	tests := []struct {
		name     string
		bill     *bill.Bill
		contains []string
	}{
		{
			name: "complete bill",
			bill: bill.New("Connecticut", "SB 2", "Grid reliability standards", "In committee",
				"Energy", "", "https://www.ncsl.org/research/ct-sb-2"),
			contains: []string{
				"Connecticut SB 2",
				"Grid reliability standards",
				"Status: In committee",
				"https://www.ncsl.org/research/ct-sb-2",
			},
		},
		{
			name: "very long title gets truncated",
			bill: bill.New("California", "AB 1008",
				strings.Repeat("An act concerning extremely verbose legislative drafting ", 8),
				"Introduced", "Consumer Protection", "", "https://legtrack.example.org/ca/ab-1008"),
			contains: []string{"..."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatStatus(tt.bill)

			if len(got) > 280 {
				t.Errorf("formatStatus() length = %d, want <= 280", len(got))
			}

			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("formatStatus() missing %q in status:\n%s", want, got)
				}
			}
		})
	}
}

func TestNewTwitterAnnouncer_RequiresAllCredentials(t *testing.T) {
	_, err := NewTwitterAnnouncer(config.TwitterConfig{APIKey: "k", APISecret: "s"})
	if err != ErrNotConfigured {
		t.Errorf("NewTwitterAnnouncer() error = %v, want ErrNotConfigured", err)
	}

	announcer, err := NewTwitterAnnouncer(config.TwitterConfig{
		APIKey: "k", APISecret: "s", AccessToken: "t", AccessSecret: "x",
	})
	if err != nil {
		t.Fatalf("NewTwitterAnnouncer() error = %v", err)
	}
	if announcer == nil || announcer.client == nil {
		t.Error("NewTwitterAnnouncer() returned an unusable announcer")
	}
}
