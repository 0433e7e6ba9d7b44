// Package rawfeed turns the heterogeneous raw shapes upstreams emit
// (RSS/Atom XML text, already-structured JSON entries, scraped HTML)
// into one homogeneous intermediate item shape.
package rawfeed

import (
	"cmp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/osinthq/intake/app/envelope"
)

type Feed struct {
	Title string
	Items []Item
}

// Item is the intermediate shape shared by the XML, JSON and scrape
// paths, before source-specific normalization.
type Item struct {
	GUID        string
	Title       string
	Link        string
	Description string
	Published   string
	PublishedAt *time.Time
	Author      string
	Categories  []string

	EnclosureURL  string
	EnclosureType string

	// Raw carries the original entry for downstream traceability.
	Raw map[string]any
}

// ParseFeedText parses raw RSS or Atom XML. gofeed handles both
// <item> and <entry> documents; a parse error tells the caller to
// fall back to treating the payload as already-structured JSON.
func ParseFeedText(text string) (*Feed, error) {
	parsed, err := gofeed.NewParser().ParseString(text)
	if err != nil {
		return nil, err
	}

	feed := &Feed{
		Title: parsed.Title,
		Items: make([]Item, 0, len(parsed.Items)),
	}

	for _, item := range parsed.Items {
		feed.Items = append(feed.Items, fromGofeed(item))
	}

	return feed, nil
}

// Extract resolves payload into a Feed using every strategy in order:
// a proxy-wrapped text blob is parsed as XML first; when that is
// unavailable or fails, the payload is sniffed as a JSON envelope.
// The result is never nil and extraction never fails outright.
func Extract(payload any) *Feed {
	if text, ok := envelope.Contents(payload); ok {
		if feed, err := ParseFeedText(text); err == nil {
			return feed
		}
	}

	entries := envelope.Entries(payload)
	feed := &Feed{
		Title: envelope.Title(payload),
		Items: make([]Item, 0, len(entries)),
	}
	for _, entry := range entries {
		feed.Items = append(feed.Items, FromMap(entry))
	}

	return feed
}

// Ordered candidate field names per intermediate field. Upstream JSON
// schemas are inconsistent; the first non-empty candidate wins.
var (
	titleCandidates       = []string{"title", "name", "headline"}
	linkCandidates        = []string{"link", "url", "href"}
	descriptionCandidates = []string{"description", "content", "summary", "contentSnippet", "body", "abstract"}
	dateCandidates        = []string{"pubDate", "updated", "published", "publishedAt", "date", "isoDate"}
	authorCandidates      = []string{"author", "creator", "dc:creator"}
)

// FromMap converts an already-structured JSON entry into the
// intermediate shape using the ordered candidate accessors above.
func FromMap(entry map[string]any) Item {
	item := Item{
		GUID:        stringField(entry, "guid", "id"),
		Title:       stringField(entry, titleCandidates...),
		Link:        stringField(entry, linkCandidates...),
		Description: stringField(entry, descriptionCandidates...),
		Published:   stringField(entry, dateCandidates...),
		Author:      authorField(entry),
		Categories:  categoryField(entry),
		Raw:         entry,
	}

	// An http(s) GUID doubles as the link when nothing better exists.
	if item.Link == "" && strings.HasPrefix(item.GUID, "http") {
		item.Link = item.GUID
	}

	if enclosure, ok := entry["enclosure"].(map[string]any); ok {
		item.EnclosureURL = stringField(enclosure, "url")
		item.EnclosureType = stringField(enclosure, "type")
	}

	return item
}

func fromGofeed(item *gofeed.Item) Item {
	out := Item{
		GUID:        item.GUID,
		Title:       item.Title,
		Link:        item.Link,
		Description: cmp.Or(item.Description, item.Content),
		Published:   cmp.Or(item.Published, item.Updated),
		Categories:  item.Categories,
	}

	if item.PublishedParsed != nil {
		out.PublishedAt = item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		out.PublishedAt = item.UpdatedParsed
	}

	if item.Author != nil {
		out.Author = cmp.Or(item.Author.Name, item.Author.Email)
	}
	if out.Author == "" {
		if creator, ok := item.Custom["creator"]; ok {
			out.Author = creator
		}
	}

	if len(item.Enclosures) > 0 && item.Enclosures[0] != nil {
		out.EnclosureURL = item.Enclosures[0].URL
		out.EnclosureType = item.Enclosures[0].Type
	}

	return out
}

func stringField(entry map[string]any, candidates ...string) string {
	for _, key := range candidates {
		if value, ok := entry[key].(string); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func authorField(entry map[string]any) string {
	for _, key := range authorCandidates {
		switch value := entry[key].(type) {
		case string:
			if strings.TrimSpace(value) != "" {
				return strings.TrimSpace(value)
			}
		case map[string]any:
			if name := stringField(value, "name"); name != "" {
				return name
			}
		}
	}
	return ""
}

// categoryField gathers category terms from both plain values and
// objects carrying a "term" attribute, deduplicated in order.
func categoryField(entry map[string]any) []string {
	var raw []any
	switch value := entry["categories"].(type) {
	case []any:
		raw = value
	case []string:
		for _, s := range value {
			raw = append(raw, s)
		}
	}
	if category, ok := entry["category"].(string); ok {
		raw = append(raw, category)
	}

	seen := make(map[string]bool, len(raw))
	var categories []string
	for _, element := range raw {
		var term string
		switch value := element.(type) {
		case string:
			term = value
		case map[string]any:
			term = stringField(value, "term", "name", "label")
		}
		term = strings.TrimSpace(term)
		if term == "" || seen[strings.ToLower(term)] {
			continue
		}
		seen[strings.ToLower(term)] = true
		categories = append(categories, term)
	}

	return categories
}
