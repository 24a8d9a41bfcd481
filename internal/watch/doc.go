// Package watch runs one watch cycle end to end: load state, fetch and parse
// the tracking page, filter to relevant bills, diff against the previous
// state, deliver the digest, and persist the new state.
//
// Persistence is deliberate about failure: state is written only when the
// digest outcome is final. A failed send or a time-gated pending digest
// leaves the old state in place so the next run recomputes the same diff.
package watch
