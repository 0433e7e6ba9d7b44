package normalize

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// SummaryLimit bounds normalized summaries, ellipsis included.
	SummaryLimit = 500

	ellipsis = "..."
)

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	slugPattern       = regexp.MustCompile(`[^a-z0-9]+`)

	titleCaser = cases.Title(language.English)
)

// StripMarkup removes HTML markup from a fragment and collapses
// whitespace. The fragment is parsed as a document and its text
// extracted; if parsing fails the tags are stripped with a regex
// instead, so the function never fails.
func StripMarkup(s string) string {
	if s == "" {
		return ""
	}

	text := s
	if strings.ContainsRune(s, '<') {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
		if err == nil {
			text = doc.Text()
		} else {
			text = tagPattern.ReplaceAllString(s, " ")
		}
	}

	return strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
}

// Truncate shortens s to at most max characters including the
// ellipsis marker. The marker is appended only when content was cut
// and is never split.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}

	runes := []rune(s)
	if len(runes) <= max {
		return s
	}

	if max <= len(ellipsis) {
		return string(runes[:max])
	}

	return string(runes[:max-len(ellipsis)]) + ellipsis
}

// ParseTime parses the first parsable candidate date string. When
// none parse the current time is substituted: a record with an
// approximate timestamp beats dropping valid content.
func ParseTime(candidates ...string) (time.Time, bool) {
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		if ts, err := dateparse.ParseAny(candidate); err == nil {
			return ts, true
		}
	}
	return time.Now().UTC(), false
}

// Slugify lowercases s and collapses every non-alphanumeric run into
// a single hyphen. Used for deterministic id generation.
func Slugify(s string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(slug, "-")
}

// HumanizeSlug turns an ALL_CAPS or kebab-case upstream slug into a
// readable title, e.g. "ARTEMIS_II_BOOSTER_TEST" -> "Artemis Ii
// Booster Test".
func HumanizeSlug(s string) string {
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	s = strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
	if s == "" {
		return ""
	}
	return titleCaser.String(strings.ToLower(s))
}
