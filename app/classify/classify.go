// Package classify runs the post-normalization rule chain. Rules are
// data, not closures: an ordered list of (predicate, effect) entries
// that can be inspected and tested without executing the chain.
package classify

import (
	"fmt"
	"regexp"

	"github.com/osinthq/intake/app/normalize"
)

// Rule is one data-described classification rule. Exactly one
// predicate form applies per rule:
//
//   - Pattern alone: case-insensitive regex over the named text field;
//   - MetadataKey + Pattern: regex over the metadata value's string form;
//   - MetadataKey + Threshold: numeric metadata value >= Threshold.
//
// The effect floors the priority at PriorityAtLeast (a rule may raise,
// never lower) and unions AddTags into the record's tag set.
type Rule struct {
	Name string

	// Field selects the haystack for text rules: "title", "summary"
	// or "" for title+summary combined.
	Field       string
	Pattern     string
	MetadataKey string
	Threshold   float64

	PriorityAtLeast normalize.Priority
	AddTags         []string

	re *regexp.Regexp
}

// Chain is an ordered rule list. Order matters per item: later rules
// see the tags earlier rules added.
type Chain []Rule

// Compile validates every rule's pattern up front so a bad rule fails
// loudly at startup instead of silently never matching.
func (c Chain) Compile() (Chain, error) {
	out := make(Chain, len(c))
	for i, rule := range c {
		if rule.Pattern != "" {
			re, err := regexp.Compile("(?i)" + rule.Pattern)
			if err != nil {
				return nil, fmt.Errorf("rule %q: invalid pattern: %w", rule.Name, err)
			}
			rule.re = re
		}
		if !rule.PriorityAtLeast.Valid() {
			return nil, fmt.Errorf("rule %q: invalid priority %q", rule.Name, rule.PriorityAtLeast)
		}
		out[i] = rule
	}
	return out, nil
}

// Apply runs the chain over every item and returns a new slice; input
// items are never mutated. Priority is only ever raised above the
// normalizer-assigned floor.
func (c Chain) Apply(items []normalize.Item) []normalize.Item {
	out := make([]normalize.Item, 0, len(items))
	for _, item := range items {
		next := item.Clone()
		for _, rule := range c {
			if !rule.matches(next) {
				continue
			}
			next.Priority = next.Priority.Max(rule.PriorityAtLeast)
			if len(rule.AddTags) > 0 {
				next.Tags = normalize.DedupTags(append(next.Tags, rule.AddTags...))
			}
		}
		out = append(out, next)
	}
	return out
}

func (r Rule) matches(item normalize.Item) bool {
	if r.MetadataKey != "" {
		value, ok := item.Metadata[r.MetadataKey]
		if !ok {
			return false
		}
		if r.Pattern != "" {
			return r.regex().MatchString(fmt.Sprintf("%v", value))
		}
		number, ok := asFloat(value)
		return ok && number >= r.Threshold
	}

	if r.Pattern == "" {
		return false
	}

	var haystack string
	switch r.Field {
	case "title":
		haystack = item.Title
	case "summary":
		haystack = item.Summary
	default:
		haystack = item.Title + " " + item.Summary
	}
	return r.regex().MatchString(haystack)
}

func (r Rule) regex() *regexp.Regexp {
	if r.re != nil {
		return r.re
	}
	return regexp.MustCompile("(?i)" + r.Pattern)
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// CVEPattern matches standardized vulnerability identifiers.
const CVEPattern = `CVE-\d{4}-\d{4,}`

// DefaultChain is the stock rule chain applied after normalization.
// Thresholds mirror the per-source cut points documented in sources.
func DefaultChain() Chain {
	chain, err := Chain{
		{
			Name:            "cve-detected",
			Pattern:         CVEPattern,
			PriorityAtLeast: normalize.PriorityHigh,
			AddTags:         []string{"cve", "vulnerability"},
		},
		{
			Name:            "extreme-weather",
			MetadataKey:     "severity",
			Pattern:         `^extreme$`,
			PriorityAtLeast: normalize.PriorityCritical,
			AddTags:         []string{"extreme-weather"},
		},
		{
			Name:            "great-quake",
			MetadataKey:     "magnitude",
			Threshold:       7.0,
			PriorityAtLeast: normalize.PriorityCritical,
			AddTags:         []string{"major-seismic-event"},
		},
		{
			Name:            "major-quake",
			MetadataKey:     "magnitude",
			Threshold:       6.0,
			PriorityAtLeast: normalize.PriorityHigh,
			AddTags:         []string{"significant-seismic-event"},
		},
		{
			Name:            "viral-engagement",
			MetadataKey:     "score",
			Threshold:       10000,
			PriorityAtLeast: normalize.PriorityHigh,
			AddTags:         []string{"viral"},
		},
	}.Compile()
	if err != nil {
		panic(err)
	}
	return chain
}
