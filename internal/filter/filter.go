// Package filter decides which scraped bills are relevant to the watch.
//
// Relevance is keyword-driven: the filter holds named keyword groups
// (energy, utility, consumer, ...) and a bill is relevant when any keyword
// from any group appears, case-insensitively, in its title, category, or
// summary. The source page is already AI-only, so the groups narrow "AI
// legislation" down to "AI x energy/utilities/consumers".
//
// The built-in groups can be replaced wholesale by a YAML profile:
//
//	energy:
//	  - grid
//	  - interconnection
//	consumer:
//	  - privacy
//	  - profiling
package filter

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/akum32o/ncsl-ai-energy-watch/internal/bill"
)

// Default keyword groups. Deliberately a bit broad; tune as you see what
// comes through.
var defaultGroups = map[string][]string{
	"energy": {
		"energy", "electric", "electricity", "power", "grid",
		"generation", "nuclear", "solar", "wind", "renewable",
		"transmission", "distribution", "microgrid", "demand response",
		"load", "capacity", "efficiency",
	},
	"utility": {
		"utility", "utilities", "public utility", "public utilities",
		"ratepayer", "rate payers", "rates", "billing",
		"natural gas", "gas utility", "water utility", "telecommunications",
		"regulated utility",
	},
	"consumer": {
		"consumer", "customers", "customer", "data privacy",
		"privacy", "profiling", "disclosure", "notification",
		"fraud", "scam", "deceptive", "harassment",
	},
	"infrastructure": {
		"data center", "data centers", "siting", "interconnection",
		"water use", "cooling",
	},
}

// Profile is the YAML shape of a keywords file: group name to keyword list.
type Profile map[string][]string

// Filter matches bills against keyword groups.
type Filter struct {
	groups map[string][]string

	// keywords is the flattened, lowercased union of all groups, in
	// deterministic order (groups sorted by name, then file order).
	keywords []string
}

// New returns a filter with the built-in keyword groups.
func New() *Filter {
	return FromGroups(defaultGroups)
}

// FromGroups builds a filter from explicit keyword groups. Keywords are
// lowercased; empty keywords and empty groups are dropped.
func FromGroups(groups Profile) *Filter {
	f := &Filter{groups: make(map[string][]string, len(groups))}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		var words []string
		for _, word := range groups[name] {
			word = strings.ToLower(strings.TrimSpace(word))
			if word == "" {
				continue
			}
			words = append(words, word)
		}
		if len(words) == 0 {
			continue
		}
		f.groups[name] = words
		f.keywords = append(f.keywords, words...)
	}

	return f
}

// LoadProfile reads a YAML keywords file and builds a filter from it. The
// file replaces the built-in groups entirely rather than merging with them.
func LoadProfile(path string) (*Filter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keywords file: %w", err)
	}

	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parse keywords file %s: %w", path, err)
	}

	f := FromGroups(profile)
	if len(f.keywords) == 0 {
		return nil, fmt.Errorf("keywords file %s defines no keywords", path)
	}

	return f, nil
}

// Relevant reports whether the bill matches any keyword in any group.
// The haystack is the lowercased title, category, and summary; matching is
// plain substring search. A filter with no keywords matches nothing.
func (f *Filter) Relevant(b *bill.Bill) bool {
	haystack := strings.ToLower(b.Title + " " + b.Category + " " + b.Summary)
	for _, word := range f.keywords {
		if strings.Contains(haystack, word) {
			return true
		}
	}
	return false
}

// Apply returns the relevant subset of bills, preserving source order.
func (f *Filter) Apply(bills []*bill.Bill) []*bill.Bill {
	var relevant []*bill.Bill
	for _, b := range bills {
		if f.Relevant(b) {
			relevant = append(relevant, b)
		}
	}
	return relevant
}

// KeywordCount returns the total number of keywords across all groups.
func (f *Filter) KeywordCount() int {
	return len(f.keywords)
}

// String describes the active groups, e.g. "consumer: 12 | energy: 17".
func (f *Filter) String() string {
	if len(f.groups) == 0 {
		return "no keyword groups"
	}

	names := make([]string, 0, len(f.groups))
	for name := range f.groups {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %d", name, len(f.groups[name])))
	}
	return strings.Join(parts, " | ")
}
