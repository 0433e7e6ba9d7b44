// Package sources defines every registered upstream: the per-source
// normalizer configurations, the direct JSON normalizers and the
// keyword tables driving priority mapping.
package sources

import (
	"fmt"

	"github.com/osinthq/intake/app/classify"
	"github.com/osinthq/intake/app/envelope"
	"github.com/osinthq/intake/app/normalize"
	"github.com/osinthq/intake/app/registry"
)

// BuildRegistry assembles the full plugin registry. tables may be nil,
// in which case the built-in priority tables are used unchanged.
func BuildRegistry(tables *Tables) *registry.Registry {
	if tables == nil {
		tables = &Tables{}
	}

	chain := classify.DefaultChain()
	reg := registry.New()

	for _, source := range feedSources(tables) {
		cfg := source.Config
		reg.Register(registry.Plugin{
			ID:          source.ID,
			Description: source.Description,
			Validate:    validateFeedShape,
			Normalize: func(payload any) []normalize.Item {
				return normalize.Feed(payload, cfg)
			},
			Classify: chain.Apply,
		})
	}

	for _, source := range scrapeSources(tables) {
		src := source
		reg.Register(registry.Plugin{
			ID:          source.ID,
			Description: source.Description,
			Validate:    validateContentsShape,
			Normalize: func(payload any) []normalize.Item {
				return normalizeScrape(payload, src)
			},
			Classify: chain.Apply,
		})
	}

	launchTable := tables.Get("launch-schedule")

	jsonPlugins := []registry.Plugin{
		{
			ID:          "weather-alerts",
			Description: "National Weather Service active alerts",
			Validate:    validateFeatureCollection,
			Normalize:   normalizeWeatherAlerts,
			Classify:    chain.Apply,
		},
		{
			ID:          "nasa-apod",
			Description: "NASA astronomy picture of the day",
			Normalize:   normalizeAPOD,
			Classify:    chain.Apply,
		},
		{
			ID:          "usgs-seismic",
			Description: "USGS significant seismic events",
			Validate:    validateFeatureCollection,
			Normalize:   normalizeSeismic,
			Classify:    chain.Apply,
		},
		{
			ID:          "social-pulse",
			Description: "High-engagement social posts",
			Normalize:   normalizeSocialPulse,
			Classify:    chain.Apply,
		},
		{
			ID:          "market-data",
			Description: "Market quote snapshots",
			Normalize:   normalizeMarketData,
			Classify:    chain.Apply,
		},
		{
			ID:          "financial-sentiment",
			Description: "Sentiment-scored financial headlines",
			Normalize:   normalizeFinancialSentiment,
			Classify:    chain.Apply,
		},
		{
			ID:          "launch-schedule",
			Description: "Upcoming launch schedule",
			Normalize: func(payload any) []normalize.Item {
				return normalizeLaunchSchedule(payload, launchTable)
			},
			Classify: chain.Apply,
		},
		{
			ID:          "dsn-telemetry",
			Description: "Deep Space Network live telemetry",
			Normalize:   normalizeDSN,
			Classify:    chain.Apply,
		},
	}
	for _, plugin := range jsonPlugins {
		reg.Register(plugin)
	}

	return reg
}

// Advisory shape checks. Warnings are informational only: handlers
// may log them, but normalization always proceeds, because upstream
// feeds routinely deviate from their nominal schema.

func validateFeedShape(payload any) []string {
	if payload == nil {
		return []string{"payload is null"}
	}
	if _, ok := envelope.Contents(payload); ok {
		return nil
	}
	if len(envelope.Entries(payload)) == 0 {
		return []string{"no entry list found in payload (expected array, .items, .entries, .feed.items or .data.items)"}
	}
	return nil
}

func validateContentsShape(payload any) []string {
	if payload == nil {
		return []string{"payload is null"}
	}
	if _, ok := envelope.Contents(payload); ok {
		return nil
	}
	if _, ok := payload.(string); ok {
		return nil
	}
	return []string{"payload carries no raw text blob (expected .contents string)"}
}

func validateFeatureCollection(payload any) []string {
	root := asMap(payload)
	if root == nil {
		return []string{"payload is not an object"}
	}
	features := asList(root["features"])
	if features == nil {
		return []string{"payload has no features array"}
	}
	var warnings []string
	for i, feature := range features {
		if asMap(asMap(feature)["properties"]) == nil {
			warnings = append(warnings, fmt.Sprintf("feature %d has no properties object", i))
		}
	}
	return warnings
}
