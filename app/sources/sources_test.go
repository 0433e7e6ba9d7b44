package sources

import (
	"strings"
	"testing"

	"github.com/osinthq/intake/app/normalize"
)

func TestBuildRegistry_AllPluginsRegistered(t *testing.T) {
	reg := BuildRegistry(nil)

	expected := []string{
		"defense-news", "geopolitics", "investigative-journalism",
		"climate-monitor", "ai-governance", "privacy-watch",
		"financial-transparency", "security-advisories", "cyber-research",
		"osint-community", "energy-infrastructure", "health-surveillance",
		"leak-archive", "mission-updates",
		"occrp-investigations", "icij-investigations",
		"weather-alerts", "nasa-apod", "usgs-seismic", "social-pulse",
		"market-data", "financial-sentiment", "launch-schedule", "dsn-telemetry",
	}

	for _, id := range expected {
		if _, ok := reg.Get(id); !ok {
			t.Errorf("Expected plugin %q to be registered", id)
		}
	}

	if len(reg.IDs()) != len(expected) {
		t.Errorf("Expected %d plugins, got %d", len(expected), len(reg.IDs()))
	}
}

func TestBuildRegistry_UpstreamCoverage(t *testing.T) {
	reg := BuildRegistry(nil)

	// Every catalog upstream must resolve to a registered plugin.
	for _, upstream := range Upstreams() {
		if _, ok := reg.Get(upstream.PluginID); !ok {
			t.Errorf("Upstream %q references unregistered plugin", upstream.PluginID)
		}
	}
}

func TestRegistry_MalformedPayloads(t *testing.T) {
	reg := BuildRegistry(nil)

	payloads := []any{nil, map[string]any{"unexpected": true}, "junk", 17}

	for _, id := range reg.IDs() {
		for _, payload := range payloads {
			items, _, ok := reg.Run(id, payload)
			if !ok {
				t.Errorf("Plugin %q refused to run", id)
			}
			if items == nil {
				t.Errorf("Plugin %q returned nil items for payload %v", id, payload)
			}
		}
	}
}

func TestNormalizeWeatherAlerts(t *testing.T) {
	payload := map[string]any{
		"features": []any{
			map[string]any{
				"id": "https://api.weather.gov/alerts/1",
				"properties": map[string]any{
					"headline":    "Tornado Warning issued",
					"event":       "Tornado Warning",
					"severity":    "Extreme",
					"certainty":   "Observed",
					"urgency":     "Immediate",
					"areaDesc":    "Dallas County",
					"description": "A tornado has been observed.",
					"effective":   "2024-04-01T17:00:00Z",
				},
			},
			map[string]any{
				"id": "https://api.weather.gov/alerts/2",
				"properties": map[string]any{
					"headline": "Frost Advisory",
					"severity": "Minor",
				},
			},
			map[string]any{"no": "properties"},
		},
	}

	items := normalizeWeatherAlerts(payload)
	if len(items) != 2 {
		t.Fatalf("Expected 2 alerts, got %d", len(items))
	}

	if items[0].Priority != normalize.PriorityCritical {
		t.Errorf("Expected extreme severity mapped to critical, got %q", items[0].Priority)
	}
	if items[0].VerificationStatus != normalize.VerificationOfficial {
		t.Errorf("Expected OFFICIAL status, got %q", items[0].VerificationStatus)
	}
	if items[0].Metadata["severity"] != "Extreme" {
		t.Errorf("Expected severity preserved in metadata")
	}
	if items[1].Priority != normalize.PriorityLow {
		t.Errorf("Expected minor severity mapped to low, got %q", items[1].Priority)
	}
}

func TestNormalizeAPOD(t *testing.T) {
	payload := map[string]any{
		"title":       "Galaxy Cluster",
		"explanation": "A distant cluster imaged in infrared.",
		"hdurl":       "https://apod.nasa.gov/hd.jpg",
		"url":         "https://apod.nasa.gov/sd.jpg",
		"date":        "2024-06-15",
		"media_type":  "image",
		"copyright":   "J. Astronomer",
	}

	items := normalizeAPOD(payload)
	if len(items) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(items))
	}
	if items[0].URL != "https://apod.nasa.gov/hd.jpg" {
		t.Errorf("Expected hdurl preferred, got %q", items[0].URL)
	}
	if items[0].Metadata["copyright"] != "J. Astronomer" {
		t.Errorf("Expected copyright in metadata")
	}

	if got := normalizeAPOD(map[string]any{"explanation": "no title or url"}); len(got) != 0 {
		t.Errorf("Expected incomplete APOD dropped, got %d records", len(got))
	}
}

func TestSeismicPriority(t *testing.T) {
	tests := []struct {
		magnitude float64
		expected  normalize.Priority
	}{
		{7.2, normalize.PriorityCritical},
		{7.0, normalize.PriorityCritical},
		{6.5, normalize.PriorityHigh},
		{4.0, normalize.PriorityMedium},
		{3.9, normalize.PriorityLow},
	}

	for _, tt := range tests {
		if got := seismicPriority(tt.magnitude); got != tt.expected {
			t.Errorf("seismicPriority(%.1f) = %q, want %q", tt.magnitude, got, tt.expected)
		}
	}
}

func TestNormalizeSeismic(t *testing.T) {
	payload := map[string]any{
		"features": []any{
			map[string]any{
				"id": "us7000abcd",
				"properties": map[string]any{
					"mag":     7.1,
					"place":   "120 km SSE of Sand Point, Alaska",
					"time":    float64(1700000000000),
					"url":     "https://earthquake.usgs.gov/earthquakes/eventpage/us7000abcd",
					"tsunami": float64(1),
				},
				"geometry": map[string]any{
					"coordinates": []any{-160.5, 54.9, 32.5},
				},
			},
		},
	}

	items := normalizeSeismic(payload)
	if len(items) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(items))
	}

	item := items[0]
	if item.Priority != normalize.PriorityCritical {
		t.Errorf("Expected magnitude 7.1 critical, got %q", item.Priority)
	}
	if item.Metadata["depthKm"] != 32.5 {
		t.Errorf("Expected depth from geometry, got %v", item.Metadata["depthKm"])
	}
	if item.PublishedAt.Year() != 2023 {
		t.Errorf("Expected epoch millis parsed, got %v", item.PublishedAt)
	}

	hasTsunami := false
	for _, tag := range item.Tags {
		if tag == "tsunami-risk" {
			hasTsunami = true
		}
	}
	if !hasTsunami {
		t.Errorf("Expected tsunami-risk tag, got %v", item.Tags)
	}
}

func TestNormalizeSocialPulse(t *testing.T) {
	payload := map[string]any{
		"data": map[string]any{
			"children": []any{
				map[string]any{"data": map[string]any{
					"title":       "Massive outage reported",
					"permalink":   "/r/sysadmin/comments/abc/outage",
					"score":       float64(12000),
					"subreddit":   "sysadmin",
					"author":      "poster1",
					"created_utc": float64(1700000000),
				}},
				map[string]any{"data": map[string]any{
					"title": "Quiet post",
					"url":   "https://example.com/quiet",
					"score": float64(120),
				}},
			},
		},
	}

	items := normalizeSocialPulse(payload)
	if len(items) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(items))
	}

	if items[0].URL != "https://www.reddit.com/r/sysadmin/comments/abc/outage" {
		t.Errorf("Expected permalink prefixed, got %q", items[0].URL)
	}
	if items[0].Source != "r/sysadmin" {
		t.Errorf("Expected subreddit source, got %q", items[0].Source)
	}
	if items[0].Priority != normalize.PriorityHigh {
		t.Errorf("Expected score 12000 high, got %q", items[0].Priority)
	}
	if items[1].Priority != normalize.PriorityLow {
		t.Errorf("Expected score 120 low, got %q", items[1].Priority)
	}
}

func TestMarketPriority(t *testing.T) {
	tests := []struct {
		change   float64
		expected normalize.Priority
	}{
		{12.5, normalize.PriorityCritical},
		{-11.0, normalize.PriorityCritical},
		{6.0, normalize.PriorityHigh},
		{-3.0, normalize.PriorityMedium},
		{0.5, normalize.PriorityLow},
	}

	for _, tt := range tests {
		if got := marketPriority(tt.change); got != tt.expected {
			t.Errorf("marketPriority(%.1f) = %q, want %q", tt.change, got, tt.expected)
		}
	}
}

func TestNormalizeMarketData(t *testing.T) {
	payload := []any{
		map[string]any{
			"symbol":        "ACME",
			"price":         float64(104.25),
			"change":        float64(-12.1),
			"changePercent": float64(-10.4),
		},
		map[string]any{"price": float64(1.0)},
	}

	items := normalizeMarketData(payload)
	if len(items) != 1 {
		t.Fatalf("Expected symbol-less quote dropped, got %d records", len(items))
	}

	item := items[0]
	if item.Priority != normalize.PriorityCritical {
		t.Errorf("Expected |%.1f%%| move critical, got %q", -10.4, item.Priority)
	}
	if !strings.Contains(item.Title, "ACME") {
		t.Errorf("Expected symbol in title, got %q", item.Title)
	}
	if item.URL != "https://finance.yahoo.com/quote/ACME" {
		t.Errorf("Expected quote URL, got %q", item.URL)
	}
}

func TestSentimentPriority(t *testing.T) {
	tests := []struct {
		score    float64
		expected normalize.Priority
	}{
		{0.9, normalize.PriorityCritical},
		{-0.85, normalize.PriorityCritical},
		{0.6, normalize.PriorityHigh},
		{-0.3, normalize.PriorityMedium},
		{0.1, normalize.PriorityLow},
	}

	for _, tt := range tests {
		if got := sentimentPriority(tt.score); got != tt.expected {
			t.Errorf("sentimentPriority(%.2f) = %q, want %q", tt.score, got, tt.expected)
		}
	}
}

func TestNormalizeFinancialSentiment(t *testing.T) {
	payload := map[string]any{
		"items": []any{
			map[string]any{
				"headline":  "Earnings beat expectations",
				"url":       "https://example.com/earnings",
				"sentiment": float64(0.7),
				"symbol":    "ACME",
			},
			map[string]any{
				"headline":  "Guidance cut sharply",
				"url":       "https://example.com/guidance",
				"sentiment": float64(-0.6),
			},
			map[string]any{"headline": "No link"},
		},
	}

	items := normalizeFinancialSentiment(payload)
	if len(items) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(items))
	}

	if items[0].Metadata["polarity"] != "bullish" {
		t.Errorf("Expected bullish polarity, got %v", items[0].Metadata["polarity"])
	}
	if items[1].Metadata["polarity"] != "bearish" {
		t.Errorf("Expected bearish polarity, got %v", items[1].Metadata["polarity"])
	}
	if items[0].Priority != normalize.PriorityHigh {
		t.Errorf("Expected |0.7| high, got %q", items[0].Priority)
	}
	if items[1].Source != "Financial Sentiment" {
		t.Errorf("Expected fallback source, got %q", items[1].Source)
	}
}

func TestNormalizeLaunchSchedule(t *testing.T) {
	table := (&Tables{}).Get("launch-schedule")

	payload := map[string]any{
		"results": []any{
			map[string]any{
				"id":   "launch-1",
				"name": "Heavy Demo Flight",
				"net":  "2024-09-01T12:00:00Z",
				"status": map[string]any{
					"name": "Launch Scrub",
				},
				"mission": map[string]any{
					"description": "Demonstration mission.",
					"type":        "Test Flight",
				},
				"pad": map[string]any{
					"name": "LC-39A",
					"location": map[string]any{
						"name": "Kennedy Space Center",
					},
				},
			},
			map[string]any{"net": "2024-09-02T12:00:00Z"},
		},
	}

	items := normalizeLaunchSchedule(payload, table)
	if len(items) != 1 {
		t.Fatalf("Expected nameless result dropped, got %d records", len(items))
	}

	item := items[0]
	if item.Priority != normalize.PriorityCritical {
		t.Errorf("Expected scrubbed launch critical, got %q", item.Priority)
	}
	if item.URL != "https://ll.thespacedevs.com/2.2.0/launch/launch-1" {
		t.Errorf("Expected synthesized launch URL, got %q", item.URL)
	}
	if item.Metadata["pad"] != "LC-39A" {
		t.Errorf("Expected pad in metadata, got %v", item.Metadata["pad"])
	}
}

func TestNormalizeDSN(t *testing.T) {
	payload := map[string]any{
		"stations": []any{
			map[string]any{
				"friendlyName": "Canberra",
				"dishes": []any{
					map[string]any{
						"name": "DSS-43",
						"signals": []any{
							map[string]any{
								"active":     true,
								"spacecraft": "Voyager 2",
								"direction":  "down",
								"band":       "X",
								"dataRate":   float64(160),
								"frequency":  float64(8.42e9),
							},
							map[string]any{
								"active":     true,
								"spacecraft": "MSL",
								"direction":  "up",
								"band":       "Ka",
								"dataRate":   float64(2e6),
							},
							map[string]any{
								"active":     false,
								"spacecraft": "idle",
							},
						},
					},
				},
			},
		},
	}

	items := normalizeDSN(payload)

	// One record per active signal per dish, inactive signals skipped.
	if len(items) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(items))
	}

	if items[0].Title != "DSS-43 tracking Voyager 2" {
		t.Errorf("Unexpected title %q", items[0].Title)
	}
	if !strings.Contains(items[0].Summary, "receiving data from Voyager 2") {
		t.Errorf("Expected downlink phrasing, got %q", items[0].Summary)
	}
	if !strings.Contains(items[0].Summary, "160 b/s") {
		t.Errorf("Expected data rate in summary, got %q", items[0].Summary)
	}
	if items[0].Priority != normalize.PriorityMedium {
		t.Errorf("Expected modest downlink medium, got %q", items[0].Priority)
	}
	if items[1].Priority != normalize.PriorityHigh {
		t.Errorf("Expected high-rate pass high, got %q", items[1].Priority)
	}
	if items[0].ID == items[1].ID {
		t.Errorf("Expected distinct ids per signal")
	}
}

func TestNormalizeScrape_MarkdownFallback(t *testing.T) {
	source := scrapeSources(&Tables{})[0]

	payload := map[string]any{
		"contents": `[15.02.24 Cartel Network Mapped --- Court records link the network 8 minute read](https://www.occrp.org/investigations/cartel-network)`,
	}

	items := normalizeScrape(payload, source)
	if len(items) != 1 {
		t.Fatalf("Expected 1 record from markdown fallback, got %d", len(items))
	}

	item := items[0]
	if item.Title != "Cartel Network Mapped" {
		t.Errorf("Unexpected title %q", item.Title)
	}
	if item.PublishedAt.Year() != 2024 || item.PublishedAt.Month() != 2 || item.PublishedAt.Day() != 15 {
		t.Errorf("Expected dd.mm.yy date parsed, got %v", item.PublishedAt)
	}
	if item.Metadata["readMinutes"] != 8 {
		t.Errorf("Expected read time in metadata, got %v", item.Metadata["readMinutes"])
	}
	if item.Priority != normalize.PriorityCritical {
		t.Errorf("Expected cartel keyword critical, got %q", item.Priority)
	}
}

func TestNormalizeScrape_HTML(t *testing.T) {
	source := scrapeSources(&Tables{})[0]

	payload := map[string]any{
		"contents": `<article class="story-card">
  <h2>Bribery Scheme Uncovered</h2>
  <a href="/investigations/bribery-scheme">more</a>
  <p>Officials took payments.</p>
</article>`,
	}

	items := normalizeScrape(payload, source)
	if len(items) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(items))
	}
	if items[0].URL != "https://www.occrp.org/investigations/bribery-scheme" {
		t.Errorf("Expected resolved link, got %q", items[0].URL)
	}
	if items[0].Metadata["scraped"] != true {
		t.Errorf("Expected scraped marker in metadata")
	}
}

func TestRewriteMagnetLink(t *testing.T) {
	ctx := normalize.Context{Title: "Dataset Release"}

	link, tags, metadata := rewriteMagnetLink(ctx, "magnet:?xt=urn:btih:aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa&dn=archive-dump")

	if !strings.HasPrefix(link, "https://search.leakarchive.net/?q=") {
		t.Errorf("Expected companion search URL, got %q", link)
	}
	if !strings.Contains(link, "archive-dump") {
		t.Errorf("Expected display name in query, got %q", link)
	}
	if metadata["infoHash"] != strings.Repeat("a", 40) {
		t.Errorf("Expected info hash extracted, got %v", metadata["infoHash"])
	}

	hasTorrent := false
	for _, tag := range tags {
		if tag == "torrent" {
			hasTorrent = true
		}
	}
	if !hasTorrent {
		t.Errorf("Expected torrent tag, got %v", tags)
	}

	// Regular links pass through untouched.
	if link, _, _ := rewriteMagnetLink(ctx, "https://example.com/x"); link != "https://example.com/x" {
		t.Errorf("Expected non-magnet link untouched, got %q", link)
	}
}

func TestHumanizeSlugTitle(t *testing.T) {
	ctx := normalize.Context{}

	if got := humanizeSlugTitle(ctx, "ARTEMIS_II_BOOSTER_TEST"); got != "Artemis Ii Booster Test" {
		t.Errorf("Expected slug humanized, got %q", got)
	}
	if got := humanizeSlugTitle(ctx, "Normal headline text"); got != "Normal headline text" {
		t.Errorf("Expected regular title untouched, got %q", got)
	}
	if got := humanizeSlugTitle(ctx, "NASA"); got != "NASA" {
		t.Errorf("Expected plain acronym untouched, got %q", got)
	}
}

func TestEpochTime(t *testing.T) {
	seconds := epochTime(1700000000)
	millis := epochTime(1700000000000)

	if seconds.Year() != 2023 {
		t.Errorf("Expected seconds epoch parsed, got %v", seconds)
	}
	if !seconds.Equal(millis) {
		t.Errorf("Expected seconds and millis forms to agree, got %v vs %v", seconds, millis)
	}
}
