package sources

import (
	"time"

	"github.com/osinthq/intake/app/envelope"
	"github.com/osinthq/intake/app/normalize"
	"github.com/osinthq/intake/app/rawfeed"
)

// scrapeSource describes an upstream with no feed at all: a story
// listing page scraped by selector, with a Markdown-link-list
// fallback for the sources that render their index as Markdown.
type scrapeSource struct {
	ID          string
	Description string
	Selector    string
	BaseURL     string
	PathSegment string
	Config      normalize.SourceConfig
}

func scrapeSources(tables *Tables) []scrapeSource {
	return []scrapeSource{
		{
			ID:          "occrp-investigations",
			Description: "Organized crime and corruption investigations",
			Selector:    "article.story-card",
			BaseURL:     "https://www.occrp.org",
			PathSegment: "/investigations",
			Config: normalize.SourceConfig{
				Source:       "OCCRP",
				Category:     "investigative",
				BaseTags:     []string{"investigative", "organized-crime"},
				TrustRating:  85,
				Verification: normalize.VerificationVerified,
				DataQuality:  85,
				Rules:        tables.Get("occrp-investigations"),
			},
		},
		{
			ID:          "icij-investigations",
			Description: "Cross-border financial investigations",
			Selector:    "div.post-listing article",
			BaseURL:     "https://www.icij.org",
			PathSegment: "/investigations",
			Config: normalize.SourceConfig{
				Source:       "ICIJ",
				Category:     "financial-transparency",
				BaseTags:     []string{"investigative", "offshore"},
				TrustRating:  90,
				Verification: normalize.VerificationVerified,
				DataQuality:  90,
				Rules:        tables.Get("icij-investigations"),
			},
		},
	}
}

// normalizeScrape runs the HTML story-card scraper and, when it finds
// zero cards, falls back to the Markdown link-list parser.
func normalizeScrape(payload any, source scrapeSource) []normalize.Item {
	text, ok := envelope.Contents(payload)
	if !ok {
		if raw, isString := payload.(string); isString {
			text = raw
		} else {
			return []normalize.Item{}
		}
	}

	stories := rawfeed.ScrapeStories(text, source.Selector, source.BaseURL)
	if len(stories) == 0 {
		stories = rawfeed.ParseMarkdownLinks(text, source.PathSegment)
	}

	items := make([]normalize.Item, 0, len(stories))
	for i, story := range stories {
		item, ok := storyItem(story, i, source)
		if !ok {
			continue
		}
		items = append(items, item)
	}

	return items
}

func storyItem(story rawfeed.Story, index int, source scrapeSource) (normalize.Item, bool) {
	if story.Link == "" {
		return normalize.Item{}, false
	}

	publishedAt := parseStoryDate(story.Date)

	tags := append([]string{}, source.Config.BaseTags...)
	tags = append(tags, story.Labels...)

	title := normalize.StripMarkup(story.Title)
	summary := normalize.Truncate(normalize.StripMarkup(story.Summary), normalize.SummaryLimit)

	ctx := normalize.Context{Title: title, Summary: summary, Categories: story.Labels}

	metadata := map[string]any{
		"scraped": true,
	}
	if story.ReadTime > 0 {
		metadata["readMinutes"] = story.ReadTime
	}
	if len(story.Labels) > 0 {
		metadata["labels"] = story.Labels
	}

	return normalize.Item{
		ID:                 itemID("", title, source.Config.Source, index, publishedAt),
		Title:              title,
		Summary:            summary,
		URL:                story.Link,
		PublishedAt:        publishedAt,
		Source:             source.Config.Source,
		Category:           source.Config.Category,
		Tags:               normalize.DedupTags(tags),
		Priority:           source.Config.Rules.Evaluate(ctx.Text()),
		TrustRating:        source.Config.TrustRating,
		VerificationStatus: source.Config.Verification,
		DataQuality:        source.Config.DataQuality,
		Metadata:           metadata,
	}, true
}

// parseStoryDate handles the dd.mm.yy token the Markdown listings
// use before falling back to general date parsing.
func parseStoryDate(date string) time.Time {
	if ts, err := time.Parse("02.01.06", date); err == nil {
		return ts
	}
	ts, _ := normalize.ParseTime(date)
	return ts
}
