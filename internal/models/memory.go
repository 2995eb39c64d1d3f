package models

import (
	"sort"

	"fjacquet/expense-categorizer/internal/textutils"
)

// RuleEntry is a learned global term to category mapping.
type RuleEntry struct {
	Term     string `yaml:"term"`
	Category string `yaml:"category"`
}

// MemoryEntry is a user's confirmed usage of one category.
type MemoryEntry struct {
	UserID     string
	Category   string
	UsageCount int64
	Terms      TermSet
}

// TermSet is a set of normalized terms. The zero value is ready to use.
type TermSet struct {
	m map[string]struct{}
}

// NewTermSet builds a set from terms, normalizing each one.
func NewTermSet(terms ...string) TermSet {
	var s TermSet
	for _, t := range terms {
		s.Add(t)
	}
	return s
}

// Add normalizes term and inserts it. Empty terms are ignored.
// It reports whether the set changed.
func (s *TermSet) Add(term string) bool {
	term = textutils.NormalizeTerm(term)
	if term == "" {
		return false
	}
	if s.m == nil {
		s.m = make(map[string]struct{})
	}
	if _, ok := s.m[term]; ok {
		return false
	}
	s.m[term] = struct{}{}
	return true
}

// Contains reports whether the normalized form of term is in the set.
func (s TermSet) Contains(term string) bool {
	_, ok := s.m[textutils.NormalizeTerm(term)]
	return ok
}

// Len returns the number of terms.
func (s TermSet) Len() int {
	return len(s.m)
}

// Sorted returns the terms in ascending order.
func (s TermSet) Sorted() []string {
	out := make([]string, 0, len(s.m))
	for t := range s.m {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy of the set.
func (s TermSet) Clone() TermSet {
	return NewTermSet(s.Sorted()...)
}

// SortMemoryEntries orders entries by usage count descending, then category
// ascending. This is the enumeration order used when matching user memory.
func SortMemoryEntries(entries []MemoryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].UsageCount != entries[j].UsageCount {
			return entries[i].UsageCount > entries[j].UsageCount
		}
		return entries[i].Category < entries[j].Category
	})
}
