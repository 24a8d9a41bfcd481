package digest

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/akum32o/ncsl-ai-energy-watch/internal/bill"
)

// subjectPrefix tags every digest so recipients can filter on it.
const subjectPrefix = "[NCSL AI Energy Watch]"

// Input carries everything the formatter needs from a run.
type Input struct {
	PageURL        string
	Changed        []*bill.Bill
	TotalRelevant  int
	LastDigest     time.Time
	PriorityStates []string
}

// Subject builds the email subject line. A zero count only reaches
// recipients on a forced digest, and the subject says so.
func Subject(changed int) string {
	if changed == 0 {
		return subjectPrefix + " No changes (forced digest)"
	}
	return fmt.Sprintf("%s %d new/updated", subjectPrefix, changed)
}

// Body renders the digest body. Changed bills are grouped by jurisdiction:
// priority jurisdictions first in their configured order, the rest
// alphabetically, and source order within a group. Zero changed bills render
// an explicit no-changes line rather than an empty body.
func Body(in Input) string {
	var b strings.Builder

	b.WriteString("NCSL — AI + Energy/Utilities Legislation Digest\n")
	b.WriteString(in.PageURL + "\n\n")
	fmt.Fprintf(&b, "Total relevant AI+energy/utility bills on NCSL: %d\n", in.TotalRelevant)
	if !in.LastDigest.IsZero() {
		fmt.Fprintf(&b, "Last digest: %s\n", in.LastDigest.UTC().Format("2006-01-02 15:04 MST"))
	}
	b.WriteString("\n")

	if len(in.Changed) == 0 {
		b.WriteString("No new or updated relevant bills since the last digest.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "New or updated relevant bills since last digest (%d):\n\n", len(in.Changed))

	byJurisdiction := make(map[string][]*bill.Bill)
	for _, changed := range in.Changed {
		byJurisdiction[changed.Jurisdiction] = append(byJurisdiction[changed.Jurisdiction], changed)
	}

	for _, jurisdiction := range groupOrder(byJurisdiction, in.PriorityStates) {
		group := byJurisdiction[jurisdiction]
		fmt.Fprintf(&b, "%s (%d):\n", jurisdiction, len(group))

		for _, changed := range group {
			fmt.Fprintf(&b, "- %s — %s\n", changed.Number, changed.Title)
			fmt.Fprintf(&b, "  Status: %s\n", changed.Status)
			fmt.Fprintf(&b, "  Category: %s\n", changed.Category)
			fmt.Fprintf(&b, "  Link: %s\n", changed.URL)
			if changed.Summary != "" {
				fmt.Fprintf(&b, "  Summary: %s\n", changed.Summary)
			}
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// groupOrder returns the jurisdictions present in groups, priority ones
// first in their configured order, then the rest alphabetically. Priority
// matching is case-insensitive.
func groupOrder(groups map[string][]*bill.Bill, priority []string) []string {
	order := make([]string, 0, len(groups))
	used := make(map[string]bool, len(groups))

	for _, p := range priority {
		for jurisdiction := range groups {
			if !used[jurisdiction] && strings.EqualFold(jurisdiction, p) {
				order = append(order, jurisdiction)
				used[jurisdiction] = true
			}
		}
	}

	rest := make([]string, 0, len(groups))
	for jurisdiction := range groups {
		if !used[jurisdiction] {
			rest = append(rest, jurisdiction)
		}
	}
	sort.Strings(rest)

	return append(order, rest...)
}
