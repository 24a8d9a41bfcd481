// Package storage persists watcher state between runs.
//
// The state is a single JSON file holding the bill snapshot, the set of seen
// bill IDs, and the time of the last digest. Loading is forgiving: a missing
// or corrupt file yields an empty state so a run can always proceed. Saving
// writes a temp file and renames it over the old one, so an interrupted save
// never destroys the previous state.
package storage
