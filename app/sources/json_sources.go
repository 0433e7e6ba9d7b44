package sources

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/osinthq/intake/app/normalize"
)

// Direct normalizers for upstreams that are JSON APIs rather than
// feeds. Each is a pure map/filter over a known shape and degrades to
// an empty slice on anything unexpected.

// normalizeWeatherAlerts handles the NWS alert collection shape:
// {features: [{id, properties: {headline, event, severity, ...}}]}.
func normalizeWeatherAlerts(payload any) []normalize.Item {
	root := asMap(payload)
	items := []normalize.Item{}

	for i, feature := range asList(root["features"]) {
		entry := asMap(feature)
		props := asMap(entry["properties"])
		if props == nil {
			continue
		}

		link := str(entry, "id")
		if link == "" {
			link = str(props, "@id", "web")
		}
		if link == "" {
			continue
		}

		title := normalize.StripMarkup(str(props, "headline", "event"))
		if title == "" {
			title = "Weather Alert"
		}

		severity := str(props, "severity")
		priority := normalize.PriorityLow
		switch strings.ToLower(severity) {
		case "extreme":
			priority = normalize.PriorityCritical
		case "severe":
			priority = normalize.PriorityHigh
		case "moderate":
			priority = normalize.PriorityMedium
		}

		publishedAt, _ := normalize.ParseTime(str(props, "effective", "onset", "sent"))

		tags := []string{"weather", "alerts"}
		if event := str(props, "event"); event != "" {
			tags = append(tags, normalize.Slugify(event))
		}

		items = append(items, normalize.Item{
			ID:                 itemID(str(props, "id"), title, "NWS", i, publishedAt),
			Title:              title,
			Summary:            normalize.Truncate(normalize.StripMarkup(str(props, "description", "instruction")), normalize.SummaryLimit),
			URL:                link,
			PublishedAt:        publishedAt,
			Source:             "National Weather Service",
			Category:           "weather",
			Tags:               normalize.DedupTags(tags),
			Priority:           priority,
			TrustRating:        98,
			VerificationStatus: normalize.VerificationOfficial,
			DataQuality:        95,
			Metadata: map[string]any{
				"severity":  severity,
				"certainty": str(props, "certainty"),
				"urgency":   str(props, "urgency"),
				"areaDesc":  str(props, "areaDesc"),
				"event":     str(props, "event"),
				"raw":       entry,
			},
		})
	}

	return items
}

// normalizeAPOD handles the astronomy picture-of-the-day shape, a
// single object rather than a list.
func normalizeAPOD(payload any) []normalize.Item {
	root := asMap(payload)
	if root == nil {
		return []normalize.Item{}
	}

	link := str(root, "hdurl", "url")
	title := str(root, "title")
	if link == "" || title == "" {
		return []normalize.Item{}
	}

	publishedAt, _ := normalize.ParseTime(str(root, "date"))

	metadata := map[string]any{
		"mediaType": str(root, "media_type"),
		"raw":       root,
	}
	if copyright := str(root, "copyright"); copyright != "" {
		metadata["copyright"] = copyright
	}

	return []normalize.Item{{
		ID:                 itemID("", title, "NASA APOD", 0, publishedAt),
		Title:              title,
		Summary:            normalize.Truncate(normalize.StripMarkup(str(root, "explanation")), normalize.SummaryLimit),
		URL:                link,
		PublishedAt:        publishedAt,
		Source:             "NASA APOD",
		Category:           "space-operations",
		Tags:               []string{"astronomy", "apod", "nasa"},
		Priority:           normalize.PriorityLow,
		TrustRating:        95,
		VerificationStatus: normalize.VerificationOfficial,
		DataQuality:        90,
		Metadata:           metadata,
	}}
}

// Seismic magnitude cut points: >=7.0 critical, >=6.0 high,
// >=4.0 medium, else low.
func seismicPriority(magnitude float64) normalize.Priority {
	switch {
	case magnitude >= 7.0:
		return normalize.PriorityCritical
	case magnitude >= 6.0:
		return normalize.PriorityHigh
	case magnitude >= 4.0:
		return normalize.PriorityMedium
	default:
		return normalize.PriorityLow
	}
}

// normalizeSeismic handles the USGS GeoJSON event collection.
func normalizeSeismic(payload any) []normalize.Item {
	root := asMap(payload)
	items := []normalize.Item{}

	for i, feature := range asList(root["features"]) {
		entry := asMap(feature)
		props := asMap(entry["properties"])
		if props == nil {
			continue
		}

		link := str(props, "url")
		if link == "" {
			continue
		}

		magnitude, _ := num(props, "mag")
		place := str(props, "place")
		title := str(props, "title")
		if title == "" {
			title = fmt.Sprintf("M %.1f - %s", magnitude, place)
		}

		var publishedAt time.Time
		if epoch, ok := num(props, "time"); ok {
			publishedAt = epochTime(epoch)
		} else {
			publishedAt, _ = normalize.ParseTime()
		}

		metadata := map[string]any{
			"magnitude": magnitude,
			"place":     place,
			"raw":       entry,
		}
		if geometry := asMap(entry["geometry"]); geometry != nil {
			if coords := asList(geometry["coordinates"]); len(coords) >= 3 {
				if depth, ok := coords[2].(float64); ok {
					metadata["depthKm"] = depth
				}
			}
		}

		tags := []string{"seismic", "earthquake"}
		if tsunami, ok := num(props, "tsunami"); ok && tsunami >= 1 {
			tags = append(tags, "tsunami-risk")
			metadata["tsunami"] = true
		}

		items = append(items, normalize.Item{
			ID:                 itemID(str(entry, "id"), title, "USGS", i, publishedAt),
			Title:              title,
			Summary:            normalize.Truncate(fmt.Sprintf("Magnitude %.1f seismic event, %s.", magnitude, place), normalize.SummaryLimit),
			URL:                link,
			PublishedAt:        publishedAt,
			Source:             "USGS Earthquake Hazards",
			Category:           "seismic",
			Tags:               normalize.DedupTags(tags),
			Priority:           seismicPriority(magnitude),
			TrustRating:        98,
			VerificationStatus: normalize.VerificationOfficial,
			DataQuality:        95,
			Metadata:           metadata,
		})
	}

	return items
}

// Social engagement cut points: >=10000 high, >=5000 medium, else low.
// The classifier additionally tags >=10000 as viral.
func socialPriority(score float64) normalize.Priority {
	switch {
	case score >= 10000:
		return normalize.PriorityHigh
	case score >= 5000:
		return normalize.PriorityMedium
	default:
		return normalize.PriorityLow
	}
}

// normalizeSocialPulse handles the Reddit listing shape:
// {data: {children: [{data: {...}}]}}.
func normalizeSocialPulse(payload any) []normalize.Item {
	root := asMap(payload)
	listing := asMap(root["data"])
	items := []normalize.Item{}

	for i, child := range asList(listing["children"]) {
		post := asMap(asMap(child)["data"])
		if post == nil {
			continue
		}

		title := str(post, "title")
		if title == "" {
			continue
		}

		link := str(post, "permalink")
		if link != "" && !strings.HasPrefix(link, "http") {
			link = "https://www.reddit.com" + link
		}
		if link == "" {
			link = str(post, "url")
		}
		if link == "" {
			continue
		}

		score, _ := num(post, "score")
		comments, _ := num(post, "num_comments")

		var publishedAt time.Time
		if epoch, ok := num(post, "created_utc"); ok {
			publishedAt = epochTime(epoch)
		} else {
			publishedAt, _ = normalize.ParseTime()
		}

		subreddit := str(post, "subreddit")
		tags := []string{"social", "reddit"}
		if subreddit != "" {
			tags = append(tags, strings.ToLower(subreddit))
		}

		items = append(items, normalize.Item{
			ID:                 itemID(str(post, "id"), title, "Reddit", i, publishedAt),
			Title:              title,
			Summary:            normalize.Truncate(normalize.StripMarkup(str(post, "selftext")), normalize.SummaryLimit),
			URL:                link,
			PublishedAt:        publishedAt,
			Source:             sourceName(subreddit),
			Category:           "social",
			Tags:               normalize.DedupTags(tags),
			Priority:           socialPriority(score),
			TrustRating:        40,
			VerificationStatus: normalize.VerificationUnverified,
			DataQuality:        50,
			Metadata: map[string]any{
				"score":       score,
				"numComments": comments,
				"subreddit":   subreddit,
				"author":      str(post, "author"),
				"raw":         post,
			},
		})
	}

	return items
}

func sourceName(subreddit string) string {
	if subreddit == "" {
		return "Reddit"
	}
	return "r/" + subreddit
}

// Market move cut points over |change %|: >=10 critical, >=5 high,
// >=2 medium, else low.
func marketPriority(changePercent float64) normalize.Priority {
	move := math.Abs(changePercent)
	switch {
	case move >= 10:
		return normalize.PriorityCritical
	case move >= 5:
		return normalize.PriorityHigh
	case move >= 2:
		return normalize.PriorityMedium
	default:
		return normalize.PriorityLow
	}
}

// normalizeMarketData handles an array of quote objects.
func normalizeMarketData(payload any) []normalize.Item {
	quotes := asList(payload)
	if quotes == nil {
		quotes = asList(asMap(payload)["quotes"])
	}
	items := []normalize.Item{}

	for i, element := range quotes {
		quote := asMap(element)
		symbol := str(quote, "symbol", "ticker")
		if symbol == "" {
			continue
		}

		price, _ := num(quote, "price", "regularMarketPrice")
		change, _ := num(quote, "change", "regularMarketChange")
		changePercent, _ := num(quote, "changePercent", "regularMarketChangePercent")

		var publishedAt time.Time
		if epoch, ok := num(quote, "timestamp", "regularMarketTime"); ok {
			publishedAt = epochTime(epoch)
		} else {
			publishedAt, _ = normalize.ParseTime()
		}

		direction := "up"
		if change < 0 {
			direction = "down"
		}

		items = append(items, normalize.Item{
			ID:                 itemID("", symbol, "Market Data", i, publishedAt),
			Title:              fmt.Sprintf("%s %.2f (%+.2f%%)", symbol, price, changePercent),
			Summary:            normalize.Truncate(fmt.Sprintf("%s is %s %.2f%% at %.2f.", symbol, direction, math.Abs(changePercent), price), normalize.SummaryLimit),
			URL:                "https://finance.yahoo.com/quote/" + symbol,
			PublishedAt:        publishedAt,
			Source:             "Market Data",
			Category:           "markets",
			Tags:               normalize.DedupTags([]string{"markets", "quotes", strings.ToLower(symbol)}),
			Priority:           marketPriority(changePercent),
			TrustRating:        85,
			VerificationStatus: normalize.VerificationVerified,
			DataQuality:        90,
			Metadata: map[string]any{
				"symbol":        symbol,
				"price":         price,
				"change":        change,
				"changePercent": changePercent,
				"raw":           quote,
			},
		})
	}

	return items
}

// Sentiment magnitude cut points over |score| in [-1, 1]: >=0.8
// critical, >=0.5 high, >=0.2 medium, else low.
func sentimentPriority(score float64) normalize.Priority {
	magnitude := math.Abs(score)
	switch {
	case magnitude >= 0.8:
		return normalize.PriorityCritical
	case magnitude >= 0.5:
		return normalize.PriorityHigh
	case magnitude >= 0.2:
		return normalize.PriorityMedium
	default:
		return normalize.PriorityLow
	}
}

// normalizeFinancialSentiment handles scored financial headlines:
// {items: [{headline, summary, url, sentiment, datetime, symbol}]}.
func normalizeFinancialSentiment(payload any) []normalize.Item {
	root := asMap(payload)
	entries := asList(root["items"])
	if entries == nil {
		entries = asList(payload)
	}
	items := []normalize.Item{}

	for i, element := range entries {
		entry := asMap(element)
		title := str(entry, "headline", "title")
		link := str(entry, "url", "link")
		if title == "" || link == "" {
			continue
		}

		sentiment, _ := num(entry, "sentiment", "score")

		source := str(entry, "source")
		if source == "" {
			source = "Financial Sentiment"
		}

		var publishedAt time.Time
		if epoch, ok := num(entry, "datetime", "time"); ok {
			publishedAt = epochTime(epoch)
		} else {
			publishedAt, _ = normalize.ParseTime(str(entry, "date"))
		}

		polarity := "neutral"
		if sentiment >= 0.2 {
			polarity = "bullish"
		} else if sentiment <= -0.2 {
			polarity = "bearish"
		}

		items = append(items, normalize.Item{
			ID:                 itemID(str(entry, "id"), title, "Financial Sentiment", i, publishedAt),
			Title:              title,
			Summary:            normalize.Truncate(normalize.StripMarkup(str(entry, "summary")), normalize.SummaryLimit),
			URL:                link,
			PublishedAt:        publishedAt,
			Source:             source,
			Category:           "financial-news",
			Tags:               normalize.DedupTags([]string{"finance", "sentiment", polarity}),
			Priority:           sentimentPriority(sentiment),
			TrustRating:        70,
			VerificationStatus: normalize.VerificationVerified,
			DataQuality:        75,
			Metadata: map[string]any{
				"sentiment": sentiment,
				"polarity":  polarity,
				"symbol":    str(entry, "symbol"),
				"raw":       entry,
			},
		})
	}

	return items
}

// normalizeLaunchSchedule handles the launch-library shape:
// {results: [{id, name, net, status, mission, pad, ...}]}.
func normalizeLaunchSchedule(payload any, table normalize.PriorityTable) []normalize.Item {
	root := asMap(payload)
	items := []normalize.Item{}

	for i, element := range asList(root["results"]) {
		entry := asMap(element)
		name := str(entry, "name")
		if name == "" {
			continue
		}

		launchID := str(entry, "id")
		link := str(entry, "url")
		if link == "" && launchID != "" {
			link = "https://ll.thespacedevs.com/2.2.0/launch/" + launchID
		}
		if link == "" {
			continue
		}

		status := asMap(entry["status"])
		mission := asMap(entry["mission"])
		pad := asMap(entry["pad"])

		publishedAt, _ := normalize.ParseTime(str(entry, "net", "window_start"))

		statusName := str(status, "name", "abbrev")
		missionText := str(mission, "description")
		haystack := strings.ToLower(name + " " + statusName + " " + missionText)

		summary := missionText
		if summary == "" {
			summary = fmt.Sprintf("Launch %s, status: %s.", name, statusName)
		}

		tags := []string{"space", "launch"}
		if missionType := str(mission, "type"); missionType != "" {
			tags = append(tags, normalize.Slugify(missionType))
		}

		metadata := map[string]any{
			"status": statusName,
			"net":    str(entry, "net"),
			"raw":    entry,
		}
		if pad != nil {
			metadata["pad"] = str(pad, "name")
			if location := asMap(pad["location"]); location != nil {
				metadata["location"] = str(location, "name")
			}
		}

		items = append(items, normalize.Item{
			ID:                 itemID(launchID, name, "Launch Schedule", i, publishedAt),
			Title:              name,
			Summary:            normalize.Truncate(normalize.StripMarkup(summary), normalize.SummaryLimit),
			URL:                link,
			PublishedAt:        publishedAt,
			Source:             "Launch Schedule",
			Category:           "space-operations",
			Tags:               normalize.DedupTags(tags),
			Priority:           table.Evaluate(haystack),
			TrustRating:        90,
			VerificationStatus: normalize.VerificationVerified,
			DataQuality:        90,
			Metadata:           metadata,
		})
	}

	return items
}

// itemID derives a stable record id: the upstream identifier when
// present, else a deterministic slug of title+source+index+timestamp.
func itemID(guid, title, source string, index int, publishedAt time.Time) string {
	if guid != "" {
		return guid
	}
	return fmt.Sprintf("%s-%d-%d", normalize.Slugify(title+"-"+source), index, publishedAt.UnixNano())
}
