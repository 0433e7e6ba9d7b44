package sources

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/osinthq/intake/app/normalize"
)

func TestBuiltinTables_EverySourceCovered(t *testing.T) {
	tables := &Tables{}

	ids := []string{
		"defense-news", "geopolitics", "investigative-journalism",
		"climate-monitor", "ai-governance", "privacy-watch",
		"financial-transparency", "security-advisories", "cyber-research",
		"osint-community", "energy-infrastructure", "health-surveillance",
		"leak-archive", "mission-updates", "launch-schedule",
		"occrp-investigations", "icij-investigations",
	}

	for _, id := range ids {
		if table := tables.Get(id); len(table) == 0 {
			t.Errorf("Expected built-in table for %q", id)
		}
	}
}

func TestBuiltinTables_DefenseNewsTiers(t *testing.T) {
	table := (&Tables{}).Get("defense-news")

	tests := []struct {
		text     string
		expected normalize.Priority
	}{
		{"nuclear threat escalates", normalize.PriorityCritical},
		{"missile test conducted", normalize.PriorityHigh},
		{"defense procurement review", normalize.PriorityMedium},
		{"annual budget summary", normalize.PriorityLow},
	}

	for _, tt := range tests {
		if got := table.Evaluate(tt.text); got != tt.expected {
			t.Errorf("Evaluate(%q) = %q, want %q", tt.text, got, tt.expected)
		}
	}
}

func TestLoadTables_MissingDirectory(t *testing.T) {
	tables, err := LoadTables("/nonexistent/rules/dir")
	if err != nil {
		t.Fatalf("Expected missing directory tolerated, got %v", err)
	}

	// Built-ins still apply when nothing is overridden.
	if table := tables.Get("defense-news"); len(table) == 0 {
		t.Errorf("Expected built-in fallback")
	}
}

func TestLoadTables_Override(t *testing.T) {
	dir := t.TempDir()

	yml := `rules:
  - pattern: "everything"
    priority: critical
`
	if err := os.WriteFile(filepath.Join(dir, "defense-news.yml"), []byte(yml), 0644); err != nil {
		t.Fatalf("Failed to write rule file: %v", err)
	}

	tables, err := LoadTables(dir)
	if err != nil {
		t.Fatalf("Unexpected load error: %v", err)
	}

	table := tables.Get("defense-news")
	if len(table) != 1 {
		t.Fatalf("Expected 1 override rule, got %d", len(table))
	}
	if got := table.Evaluate("everything is on fire"); got != normalize.PriorityCritical {
		t.Errorf("Expected override rule to apply, got %q", got)
	}

	// Sources without an override keep their built-in table.
	if table := tables.Get("geopolitics"); len(table) != 3 {
		t.Errorf("Expected built-in geopolitics table, got %d rules", len(table))
	}
}

func TestLoadTables_InvalidPriority(t *testing.T) {
	dir := t.TempDir()

	yml := `rules:
  - pattern: "x"
    priority: urgent
`
	if err := os.WriteFile(filepath.Join(dir, "defense-news.yml"), []byte(yml), 0644); err != nil {
		t.Fatalf("Failed to write rule file: %v", err)
	}

	if _, err := LoadTables(dir); err == nil {
		t.Errorf("Expected error for unknown priority tier")
	}
}

func TestLoadTables_InvalidPattern(t *testing.T) {
	dir := t.TempDir()

	yml := `rules:
  - pattern: "([unclosed"
    priority: high
`
	if err := os.WriteFile(filepath.Join(dir, "cyber-research.yml"), []byte(yml), 0644); err != nil {
		t.Fatalf("Failed to write rule file: %v", err)
	}

	if _, err := LoadTables(dir); err == nil {
		t.Errorf("Expected error for invalid pattern")
	}
}
