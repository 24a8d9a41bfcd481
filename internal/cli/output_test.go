package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/akum32o/ncsl-ai-energy-watch/internal/watch"
)

func TestWriteReport(t *testing.T) {
	tests := []struct {
		name   string
		report *watch.Report
		want   string
	}{
		{
			name: "digest body goes to stdout verbatim",
			report: &watch.Report{
				Changed:    2,
				Dispatched: true,
				Body:       "NCSL — AI + Energy/Utilities Legislation Digest\n",
			},
			want: "NCSL — AI + Energy/Utilities Legislation Digest\n",
		},
		{
			name: "undelivered digest still prints",
			report: &watch.Report{
				Changed:        1,
				Dispatched:     false,
				StatePersisted: true,
				Body:           "digest body\n",
			},
			want: "digest body\n",
		},
		{
			name:   "quiet run prints status line",
			report: &watch.Report{StatePersisted: true},
			want:   "No new or updated relevant bills; not sending email.\n",
		},
		{
			name:   "time-gated run explains the hold",
			report: &watch.Report{Changed: 3, TimeGated: true},
			want:   "Digest held back by MIN_INTERVAL_DAYS; it will go out on the next eligible run.\n",
		},
		{
			name:   "failed run prints nothing, error goes to stderr",
			report: &watch.Report{},
			want:   "",
		},
		{
			name:   "nil report prints nothing",
			report: nil,
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			writeReport(&buf, tt.report)
			if buf.String() != tt.want {
				t.Errorf("writeReport() = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	if cmd.Use != "ncsl-watch" {
		t.Errorf("Use = %q, want %q", cmd.Use, "ncsl-watch")
	}
	if cmd.HasSubCommands() {
		t.Error("root command should have no subcommands")
	}
	if cmd.Flags().HasFlags() {
		t.Error("root command should have no flags; configuration is environment-driven")
	}
	if !strings.Contains(cmd.Long, "NCSL") {
		t.Errorf("Long description should name the source:\n%s", cmd.Long)
	}
}
