package normalize

import (
	"strings"
	"testing"
	"time"
)

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain text", "Hello world", "Hello world"},
		{"simple tags", "<p>Hello <b>world</b></p>", "Hello world"},
		{"nested markup", "<div><a href=\"https://example.com\">link</a> text</div>", "link text"},
		{"whitespace collapse", "  too \n\n many   spaces  ", "too many spaces"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := StripMarkup(tt.input)
			if result != tt.expected {
				t.Errorf("StripMarkup(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestTruncate_UnderLimit(t *testing.T) {
	s := "short summary"
	if result := Truncate(s, SummaryLimit); result != s {
		t.Errorf("Expected unchanged string, got %q", result)
	}
}

func TestTruncate_OverLimit(t *testing.T) {
	long := strings.Repeat("x", 600)

	result := Truncate(long, SummaryLimit)

	if len([]rune(result)) > SummaryLimit {
		t.Errorf("Expected at most %d characters, got %d", SummaryLimit, len([]rune(result)))
	}
	if !strings.HasSuffix(result, "...") {
		t.Errorf("Expected ellipsis suffix, got %q", result[len(result)-10:])
	}
	// The marker must be appended whole, never split.
	if strings.HasSuffix(strings.TrimSuffix(result, "..."), ".") {
		t.Errorf("Ellipsis marker appears split: %q", result[len(result)-10:])
	}
}

func TestTruncate_ExactLimit(t *testing.T) {
	exact := strings.Repeat("y", SummaryLimit)
	if result := Truncate(exact, SummaryLimit); result != exact {
		t.Errorf("String at exactly the limit should not be truncated")
	}
}

func TestTruncate_Multibyte(t *testing.T) {
	long := strings.Repeat("é", 600)

	result := Truncate(long, SummaryLimit)

	if len([]rune(result)) != SummaryLimit {
		t.Errorf("Expected %d runes, got %d", SummaryLimit, len([]rune(result)))
	}
}

func TestParseTime_Formats(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"RFC1123Z", "Mon, 02 Jan 2006 15:04:05 -0700"},
		{"RFC3339", "2024-03-15T10:30:00Z"},
		{"date only", "2024-03-15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, ok := ParseTime(tt.input)
			if !ok {
				t.Errorf("Expected %q to parse", tt.input)
			}
			if ts.IsZero() {
				t.Errorf("Expected non-zero time for %q", tt.input)
			}
		})
	}
}

func TestParseTime_FallbackToNow(t *testing.T) {
	before := time.Now().UTC()
	ts, ok := ParseTime("not a date at all")
	after := time.Now().UTC()

	if ok {
		t.Errorf("Expected ok=false for unparsable input")
	}
	if ts.Before(before) || ts.After(after) {
		t.Errorf("Expected fallback timestamp near now, got %v", ts)
	}
}

func TestParseTime_SkipsEmptyCandidates(t *testing.T) {
	ts, ok := ParseTime("", "  ", "2024-03-15T10:30:00Z")
	if !ok {
		t.Errorf("Expected the third candidate to parse")
	}
	if ts.Year() != 2024 {
		t.Errorf("Expected year 2024, got %d", ts.Year())
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello World", "hello-world"},
		{"Breaking: News!! (Update)", "breaking-news-update"},
		{"--already--slugged--", "already-slugged"},
		{"", ""},
	}

	for _, tt := range tests {
		if result := Slugify(tt.input); result != tt.expected {
			t.Errorf("Slugify(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestHumanizeSlug(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"ARTEMIS_II_BOOSTER_TEST", "Artemis Ii Booster Test"},
		{"mission-status-update", "Mission Status Update"},
		{"", ""},
	}

	for _, tt := range tests {
		if result := HumanizeSlug(tt.input); result != tt.expected {
			t.Errorf("HumanizeSlug(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}
