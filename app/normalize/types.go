package normalize

import (
	"regexp"
	"strings"
	"time"
)

// Canonical record types

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

var priorityRanks = map[Priority]int{
	PriorityLow:      0,
	PriorityMedium:   1,
	PriorityHigh:     2,
	PriorityCritical: 3,
}

func (p Priority) Rank() int {
	return priorityRanks[p]
}

func (p Priority) Valid() bool {
	_, ok := priorityRanks[p]
	return ok
}

// Max returns the higher of the two priorities.
func (p Priority) Max(other Priority) Priority {
	if other.Rank() > p.Rank() {
		return other
	}
	return p
}

type VerificationStatus string

const (
	VerificationOfficial   VerificationStatus = "OFFICIAL"
	VerificationVerified   VerificationStatus = "VERIFIED"
	VerificationUnverified VerificationStatus = "UNVERIFIED"
)

// Item is the canonical record every upstream shape is converted into.
// It is a flat, self-contained value: items never reference each other,
// and enrichment produces new values rather than mutating in place.
type Item struct {
	ID                 string             `json:"id"`
	Title              string             `json:"title"`
	Summary            string             `json:"summary"`
	URL                string             `json:"url"`
	PublishedAt        time.Time          `json:"publishedAt"`
	Source             string             `json:"source"`
	Category           string             `json:"category"`
	Tags               []string           `json:"tags"`
	Priority           Priority           `json:"priority"`
	TrustRating        int                `json:"trustRating"`
	VerificationStatus VerificationStatus `json:"verificationStatus"`
	DataQuality        int                `json:"dataQuality"`
	Metadata           map[string]any     `json:"metadata,omitempty"`
}

// Clone returns a deep-enough copy for the classifier to modify:
// tags and metadata are copied, scalar fields are shared by value.
func (i Item) Clone() Item {
	out := i
	out.Tags = append([]string(nil), i.Tags...)
	if i.Metadata != nil {
		out.Metadata = make(map[string]any, len(i.Metadata))
		for k, v := range i.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// Context is what priority mappers and enrichment hooks see for a
// single raw entry.
type Context struct {
	Title      string
	Summary    string
	Categories []string
	Raw        map[string]any
}

// Text returns the lower-cased title+summary haystack keyword rules
// match against.
func (c Context) Text() string {
	return strings.ToLower(c.Title + " " + c.Summary)
}

// PriorityRule maps a case-insensitive pattern to a priority tier.
// Tables are data so per-source heuristics can be tuned and tested
// without touching the pipeline.
type PriorityRule struct {
	Pattern  string
	Priority Priority

	re *regexp.Regexp
}

// CompileRule builds a PriorityRule, panicking on an invalid pattern.
// Built-in tables use it; YAML overrides go through Compile instead.
func CompileRule(pattern string, priority Priority) PriorityRule {
	return PriorityRule{
		Pattern:  pattern,
		Priority: priority,
		re:       regexp.MustCompile("(?i)" + pattern),
	}
}

// Compile validates and compiles a rule loaded from configuration.
func (r PriorityRule) Compile() (PriorityRule, error) {
	re, err := regexp.Compile("(?i)" + r.Pattern)
	if err != nil {
		return PriorityRule{}, err
	}
	r.re = re
	return r, nil
}

func (r PriorityRule) Matches(text string) bool {
	if r.re == nil {
		re, err := regexp.Compile("(?i)" + r.Pattern)
		if err != nil {
			return false
		}
		r.re = re
	}
	return r.re.MatchString(text)
}

// PriorityTable is an ordered rule list; the first matching rule wins.
type PriorityTable []PriorityRule

// Evaluate returns the tier of the first rule matching text, or
// PriorityLow when nothing matches.
func (t PriorityTable) Evaluate(text string) Priority {
	for _, rule := range t {
		if rule.Matches(text) {
			return rule.Priority
		}
	}
	return PriorityLow
}

// SourceConfig parametrizes the generic feed normalizer for one
// upstream source. Only Source and Category are required; every hook
// is optional.
type SourceConfig struct {
	// Source is the fallback origin name used when the feed carries
	// no title of its own.
	Source   string
	Category string
	BaseTags []string

	// Static per-source weighting, never derived from content.
	TrustRating  int
	Verification VerificationStatus
	DataQuality  int

	// Rules drive keyword-based priority mapping; Priority, when set,
	// takes precedence (used by numeric-threshold sources).
	Rules    PriorityTable
	Priority func(Context) Priority

	AdditionalTags func(Context) []string
	EnrichMetadata func(Context) map[string]any

	TransformTitle   func(Context, string) string
	TransformSummary func(Context, string) string
	// TransformURL may replace the URL (e.g. rewrite a magnet link to
	// a companion web page) and contribute extra tags and metadata.
	TransformURL func(Context, string) (string, []string, map[string]any)
}
