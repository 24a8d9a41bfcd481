package bill

import (
	"fmt"
	"time"
)

// Policy selects how the differ decides that a bill needs notifying.
type Policy string

const (
	// PolicySnapshot flags a bill when its ID is unknown or when any tracked
	// field (title, status, category, URL) differs from the stored value.
	PolicySnapshot Policy = "snapshot"

	// PolicySeenID flags only the first appearance of an ID. Once digested,
	// an ID is seen permanently; later edits never re-trigger.
	PolicySeenID Policy = "seen-id"
)

// ParsePolicy validates a policy name from configuration.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicySnapshot, PolicySeenID:
		return Policy(s), nil
	}
	return "", fmt.Errorf("unknown diff policy %q (want %q or %q)", s, PolicySnapshot, PolicySeenID)
}

// WatcherState is the persisted state between runs. Only the active policy's
// field is consulted; both round-trip through the state file so a deployment
// can switch policies without losing the other set.
type WatcherState struct {
	Bills      map[string]Meta `json:"bills,omitempty"`
	SeenIDs    map[string]bool `json:"seen_ids,omitempty"`
	LastDigest time.Time       `json:"last_digest,omitempty"`
}

// NewWatcherState creates an empty state, the default for a first run or an
// unreadable state file.
func NewWatcherState() *WatcherState {
	return &WatcherState{
		Bills:   make(map[string]Meta),
		SeenIDs: make(map[string]bool),
	}
}

// DiffResult contains the outcome of comparing a scrape against prior state.
type DiffResult struct {
	// Changed are the bills to notify about, in source table order.
	Changed []*Bill
	// Next is the state to persist once the digest outcome is final.
	Next *WatcherState
}

// Diff compares the relevant bills of the current run against the previous
// state under the given policy. Changed preserves the input order; no sorting
// happens here so the digest reads in the same order as the source table.
func Diff(previous *WatcherState, relevant []*Bill, policy Policy) *DiffResult {
	if previous == nil {
		previous = NewWatcherState()
	}

	next := NewWatcherState()
	next.LastDigest = previous.LastDigest

	result := &DiffResult{
		Changed: make([]*Bill, 0),
		Next:    next,
	}

	switch policy {
	case PolicySeenID:
		// Seen IDs accumulate forever: a bill that drops off the page stays
		// seen and will not re-notify if it returns unchanged.
		for id := range previous.SeenIDs {
			next.SeenIDs[id] = true
		}
		for _, b := range relevant {
			if !previous.SeenIDs[b.ID] {
				result.Changed = append(result.Changed, b)
			}
			next.SeenIDs[b.ID] = true
		}

	default: // PolicySnapshot
		// The snapshot tracks exactly the current relevant set; bills that
		// disappear from the page drop out and would re-notify on return.
		for _, b := range relevant {
			meta := b.Meta()
			next.Bills[b.ID] = meta

			prev, ok := previous.Bills[b.ID]
			if !ok || prev != meta {
				result.Changed = append(result.Changed, b)
			}
		}
	}

	return result
}
