package rawfeed

import (
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Story is one scraped listing entry, from either an HTML story card
// or a Markdown link list.
type Story struct {
	Title    string
	Link     string
	Summary  string
	Date     string
	Labels   []string
	ReadTime int
}

var (
	markdownLinkPattern = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^)\s]+)\)`)
	leadingDatePattern  = regexp.MustCompile(`^(\d{2}\.\d{2}\.\d{2})\s*`)
	readTimePattern     = regexp.MustCompile(`(\d+)\s+minute read\s*$`)
)

// ScrapeStories extracts story cards from an HTML document using a
// fixed per-source selector. Site-relative links are resolved against
// baseURL. A malformed tree never propagates: the helper recovers,
// logs a warning and reports zero stories so the caller can fall back.
func ScrapeStories(htmlText, selector, baseURL string) (stories []Story) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("Story scrape failed", "selector", selector, "error", r)
			stories = nil
		}
	}()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		slog.Warn("HTML parse failed", "error", err)
		return nil
	}

	base, _ := url.Parse(baseURL)

	doc.Find(selector).Each(func(_ int, card *goquery.Selection) {
		title := strings.TrimSpace(card.Find("h1, h2, h3, .title").First().Text())

		link, _ := card.Find("a").First().Attr("href")
		link = resolveLink(base, strings.TrimSpace(link))
		if title == "" || link == "" {
			return
		}

		story := Story{
			Title:   title,
			Link:    link,
			Summary: strings.TrimSpace(card.Find("p, .teaser, .summary").First().Text()),
			Date:    strings.TrimSpace(card.Find("time, .date").First().Text()),
		}
		if datetime, ok := card.Find("time").First().Attr("datetime"); ok {
			story.Date = datetime
		}

		card.Find(".badge, .label, .category, .tag").Each(func(_ int, badge *goquery.Selection) {
			if text := strings.TrimSpace(badge.Text()); text != "" {
				story.Labels = append(story.Labels, text)
			}
		})

		stories = append(stories, story)
	})

	return stories
}

// ParseMarkdownLinks is the fallback used when HTML scraping yields
// zero story cards: some upstreams render their listing as a Markdown
// link list instead. Only links whose URL contains pathSegment are
// taken, deduplicated by URL. The visible link text packs several
// tokens with fixed delimiters: a leading dd.mm.yy date, a "---"
// title/summary split and a trailing "N minute read".
func ParseMarkdownLinks(text, pathSegment string) []Story {
	seen := make(map[string]bool)
	var stories []Story

	for _, match := range markdownLinkPattern.FindAllStringSubmatch(text, -1) {
		label, link := match[1], match[2]
		if pathSegment != "" && !strings.Contains(link, pathSegment) {
			continue
		}
		if seen[link] {
			continue
		}
		seen[link] = true

		story := Story{Link: link}

		if m := leadingDatePattern.FindStringSubmatch(label); m != nil {
			story.Date = m[1]
			label = label[len(m[0]):]
		}

		if m := readTimePattern.FindStringSubmatch(label); m != nil {
			story.ReadTime = atoiSafe(m[1])
			label = strings.TrimSpace(label[:len(label)-len(m[0])])
		}

		if title, summary, ok := strings.Cut(label, "---"); ok {
			story.Title = strings.TrimSpace(title)
			story.Summary = strings.TrimSpace(summary)
		} else {
			story.Title = strings.TrimSpace(label)
		}
		if story.Title == "" {
			continue
		}

		stories = append(stories, story)
	}

	return stories
}

func resolveLink(base *url.URL, link string) string {
	if link == "" {
		return ""
	}
	parsed, err := url.Parse(link)
	if err != nil {
		return ""
	}
	if parsed.IsAbs() {
		return link
	}
	if base == nil {
		return ""
	}
	return base.ResolveReference(parsed).String()
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
