package types

import "strings"

// ScopeState is the caller-held retrieval constraint: which part of the
// term/topic/title hierarchy a query should search. A zero ScopeState means
// "search everything". It is a plain value passed into every retrieval call;
// nothing in the core mutates or stores it.
type ScopeState struct {
	Term   string   // Active term, empty = any
	Topic  string   // Active topic, empty = any; only meaningful with Term
	Titles []string // Active title set, empty = all titles
}

// IsEmpty reports whether the scope imposes no constraint at all.
func (s ScopeState) IsEmpty() bool {
	return s.Term == "" && s.Topic == "" && len(s.Titles) == 0
}

// Describe returns a human-readable description of the scope, used by the
// outer surfaces when reporting what a query was constrained to.
func (s ScopeState) Describe() string {
	if s.IsEmpty() {
		return "all materials (no active scope)"
	}
	parts := make([]string, 0, 3)
	if s.Term != "" {
		parts = append(parts, "term: "+s.Term)
	}
	if s.Topic != "" {
		parts = append(parts, "topic: "+s.Topic)
	}
	if len(s.Titles) > 0 {
		parts = append(parts, "titles: "+strings.Join(s.Titles, ", "))
	}
	return strings.Join(parts, " | ")
}
