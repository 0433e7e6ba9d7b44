package rawfeed

import "testing"

const storyListingHTML = `<html><body>
<article class="story-card">
  <h2>Shell Companies Exposed</h2>
  <a href="/investigations/shell-companies">Read more</a>
  <p>A network of offshore entities traced.</p>
  <time datetime="2024-02-10">Feb 10</time>
  <span class="badge">Finance</span>
  <span class="badge">Offshore</span>
</article>
<article class="story-card">
  <h2>Untitled Card</h2>
</article>
<article class="story-card">
  <a href="https://other.example.com/full">No heading here</a>
</article>
</body></html>`

func TestScrapeStories(t *testing.T) {
	stories := ScrapeStories(storyListingHTML, "article.story-card", "https://www.example.org")

	// Cards without a title or without a link are dropped.
	if len(stories) != 1 {
		t.Fatalf("Expected 1 story, got %d", len(stories))
	}

	story := stories[0]
	if story.Title != "Shell Companies Exposed" {
		t.Errorf("Expected card title, got %q", story.Title)
	}
	if story.Link != "https://www.example.org/investigations/shell-companies" {
		t.Errorf("Expected relative link resolved, got %q", story.Link)
	}
	if story.Summary != "A network of offshore entities traced." {
		t.Errorf("Expected teaser summary, got %q", story.Summary)
	}
	if story.Date != "2024-02-10" {
		t.Errorf("Expected datetime attribute preferred, got %q", story.Date)
	}
	if len(story.Labels) != 2 {
		t.Errorf("Expected 2 badges, got %v", story.Labels)
	}
}

func TestScrapeStories_AbsoluteLink(t *testing.T) {
	html := `<div class="card"><h3>Title</h3><a href="https://cdn.example.net/x">x</a></div>`

	stories := ScrapeStories(html, "div.card", "https://www.example.org")
	if len(stories) != 1 {
		t.Fatalf("Expected 1 story, got %d", len(stories))
	}
	if stories[0].Link != "https://cdn.example.net/x" {
		t.Errorf("Expected absolute link kept, got %q", stories[0].Link)
	}
}

func TestScrapeStories_NoMatches(t *testing.T) {
	stories := ScrapeStories("<p>nothing here</p>", "article.story-card", "https://www.example.org")
	if len(stories) != 0 {
		t.Errorf("Expected no stories, got %d", len(stories))
	}
}

func TestParseMarkdownLinks(t *testing.T) {
	text := `Some intro text.
[10.03.24 Leaked Registry --- Internal documents reveal ownership 12 minute read](https://example.com/investigations/leaked-registry)
[Unrelated page](https://example.com/about)
[Plain Story](https://example.com/investigations/plain)
[10.03.24 Leaked Registry --- Internal documents reveal ownership 12 minute read](https://example.com/investigations/leaked-registry)`

	stories := ParseMarkdownLinks(text, "/investigations")

	// The /about link is filtered out and the duplicate URL dropped.
	if len(stories) != 2 {
		t.Fatalf("Expected 2 stories, got %d", len(stories))
	}

	first := stories[0]
	if first.Date != "10.03.24" {
		t.Errorf("Expected leading date token, got %q", first.Date)
	}
	if first.Title != "Leaked Registry" {
		t.Errorf("Expected title before the separator, got %q", first.Title)
	}
	if first.Summary != "Internal documents reveal ownership" {
		t.Errorf("Expected summary after the separator, got %q", first.Summary)
	}
	if first.ReadTime != 12 {
		t.Errorf("Expected read time 12, got %d", first.ReadTime)
	}

	if stories[1].Title != "Plain Story" {
		t.Errorf("Expected undelimited label as title, got %q", stories[1].Title)
	}
}

func TestParseMarkdownLinks_NoSegmentFilter(t *testing.T) {
	text := `[A](https://example.com/a) [B](https://example.com/b)`

	stories := ParseMarkdownLinks(text, "")
	if len(stories) != 2 {
		t.Errorf("Expected all links taken with empty segment, got %d", len(stories))
	}
}
