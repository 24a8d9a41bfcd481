package cli

import (
	"fmt"
	"io"

	"github.com/akum32o/ncsl-ai-energy-watch/internal/watch"
)

// writeReport prints the run outcome for the terminal. Whenever a digest was
// due, the body goes to stdout exactly as mailed, so a cron job's captured
// output doubles as a digest archive; quiet and gated runs get a single
// status line instead. Diagnostics stay on stderr via the logger.
func writeReport(w io.Writer, report *watch.Report) {
	if report == nil {
		return
	}

	switch {
	case report.Body != "":
		fmt.Fprint(w, report.Body)
	case report.TimeGated:
		fmt.Fprintln(w, "Digest held back by MIN_INTERVAL_DAYS; it will go out on the next eligible run.")
	case report.StatePersisted:
		fmt.Fprintln(w, "No new or updated relevant bills; not sending email.")
	}
}
