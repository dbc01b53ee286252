// Package gate decides which engine handles an objective and whether a
// caller may use the agentic engine at all.
package gate

import (
	"strings"
	"unicode"

	"github.com/ShayCichocki/codi/internal/orchestrator/policy"
)

// Signals are the heuristics the decision gate works from.
type Signals struct {
	RequiresMultiStep     bool `json:"requires_multi_step"`
	RequiresMultipleTools bool `json:"requires_multiple_tools"`
}

// ShouldUseAgentic returns true iff either signal is set.
func ShouldUseAgentic(s Signals) bool {
	return s.RequiresMultiStep || s.RequiresMultipleTools
}

// DeriveSignals inspects objective text. Multi-step work is implied by a
// conjunction word, a comma, or a multi-step keyword. Multiple tools are
// implied when at least two distinct tool domains are referenced.
func DeriveSignals(objective string, p policy.GatePolicy) Signals {
	lower := strings.ToLower(objective)
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	var s Signals
	s.RequiresMultiStep = strings.Contains(lower, ",") ||
		containsWord(words, p.Conjunctions) ||
		hasPrefix(words, p.MultiStepKeywords)

	domains := 0
	for _, prefixes := range p.ToolDomains {
		if hasPrefix(words, prefixes) {
			domains++
		}
	}
	s.RequiresMultipleTools = domains >= 2
	return s
}

func containsWord(words, set []string) bool {
	for _, w := range words {
		for _, c := range set {
			if w == c {
				return true
			}
		}
	}
	return false
}

func hasPrefix(words, prefixes []string) bool {
	for _, w := range words {
		for _, p := range prefixes {
			if strings.HasPrefix(w, p) {
				return true
			}
		}
	}
	return false
}
