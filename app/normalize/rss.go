package normalize

import (
	"cmp"
	"fmt"
	"strings"
	"time"

	"github.com/osinthq/intake/app/rawfeed"
)

// Feed converts a raw payload into canonical records using a
// source-specific configuration. The mapping is total: any input,
// including nil or unrelated JSON, yields a (possibly empty) slice,
// never an error.
func Feed(payload any, cfg SourceConfig) []Item {
	feed := rawfeed.Extract(payload)
	source := cmp.Or(StripMarkup(feed.Title), cfg.Source)

	items := make([]Item, 0, len(feed.Items))
	seen := make(map[string]bool, len(feed.Items))

	for i, raw := range feed.Items {
		item, ok := FromRaw(raw, i, source, cfg)
		if !ok {
			continue
		}

		// Intra-call id uniqueness even when upstream repeats a GUID.
		if seen[item.ID] {
			item.ID = fmt.Sprintf("%s-%d", item.ID, i)
		}
		seen[item.ID] = true

		items = append(items, item)
	}

	return items
}

// FromRaw builds one canonical record from an intermediate item.
// Items with no resolvable link are excluded rather than emitted
// malformed, reported through ok=false.
func FromRaw(raw rawfeed.Item, index int, source string, cfg SourceConfig) (Item, bool) {
	link := cmp.Or(raw.Link, httpGUID(raw.GUID))
	if link == "" {
		return Item{}, false
	}

	ctx := Context{
		Title:      StripMarkup(raw.Title),
		Summary:    StripMarkup(raw.Description),
		Categories: raw.Categories,
		Raw:        raw.Raw,
	}

	var publishedAt time.Time
	if raw.PublishedAt != nil {
		publishedAt = *raw.PublishedAt
	} else {
		publishedAt, _ = ParseTime(raw.Published)
	}

	title := ctx.Title
	if cfg.TransformTitle != nil {
		title = cfg.TransformTitle(ctx, title)
	}
	title = cmp.Or(title, Truncate(ctx.Summary, 80), "Untitled")

	summary := ctx.Summary
	if cfg.TransformSummary != nil {
		summary = cfg.TransformSummary(ctx, summary)
	}
	summary = Truncate(summary, SummaryLimit)

	metadata := map[string]any{}
	if cfg.EnrichMetadata != nil {
		for k, v := range cfg.EnrichMetadata(ctx) {
			metadata[k] = v
		}
	}

	tags := make([]string, 0, len(cfg.BaseTags)+len(raw.Categories))
	tags = append(tags, cfg.BaseTags...)
	tags = append(tags, raw.Categories...)
	if cfg.AdditionalTags != nil {
		tags = append(tags, cfg.AdditionalTags(ctx)...)
	}

	if cfg.TransformURL != nil {
		transformed, extraTags, extraMeta := cfg.TransformURL(ctx, link)
		if transformed != "" {
			link = transformed
		}
		tags = append(tags, extraTags...)
		for k, v := range extraMeta {
			metadata[k] = v
		}
	}

	priority := PriorityLow
	if cfg.Priority != nil {
		priority = cfg.Priority(ctx)
	} else if len(cfg.Rules) > 0 {
		priority = cfg.Rules.Evaluate(ctx.Text())
	}
	if !priority.Valid() {
		priority = PriorityLow
	}

	if raw.EnclosureURL != "" {
		metadata["enclosureUrl"] = raw.EnclosureURL
		metadata["enclosureType"] = raw.EnclosureType
	}
	if raw.Author != "" {
		metadata["author"] = raw.Author
	}
	if raw.Raw != nil {
		metadata["raw"] = raw.Raw
	}

	id := raw.GUID
	if id == "" {
		id = fmt.Sprintf("%s-%d-%d", Slugify(title+"-"+source), index, publishedAt.UnixNano())
	}

	return Item{
		ID:                 id,
		Title:              title,
		Summary:            summary,
		URL:                link,
		PublishedAt:        publishedAt,
		Source:             source,
		Category:           cfg.Category,
		Tags:               DedupTags(tags),
		Priority:           priority,
		TrustRating:        cfg.TrustRating,
		VerificationStatus: cfg.Verification,
		DataQuality:        cfg.DataQuality,
		Metadata:           metadata,
	}, true
}

// DedupTags lower-cases tags and removes duplicates, preserving first
// occurrence order.
func DedupTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

func httpGUID(guid string) string {
	if strings.HasPrefix(guid, "http://") || strings.HasPrefix(guid, "https://") {
		return guid
	}
	return ""
}
