package tasks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	"github.com/osinthq/intake/app/database"
	"github.com/osinthq/intake/app/normalize"
	"github.com/osinthq/intake/app/sources"
)

// ExtractContentTask backfills summaries for scraped stories whose
// listing carried no teaser: it fetches the story page and extracts
// the readable article text.
type ExtractContentTask struct {
	Task
	Upstream   sources.Upstream
	httpClient *http.Client
	itemRepo   database.ItemRepository
	userAgent  string
}

func NewExtractContentTask(upstream sources.Upstream, httpClient *http.Client,
	itemRepo database.ItemRepository, userAgent string) *ExtractContentTask {
	return &ExtractContentTask{
		Task:       NewTask(TaskTypeExtractContent, upstream.PluginID),
		Upstream:   upstream,
		httpClient: httpClient,
		itemRepo:   itemRepo,
		userAgent:  userAgent,
	}
}

func (t *ExtractContentTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.Upstream.ExtractContent {
		slog.Debug("Content extraction disabled for source", "plugin", t.PluginID)
		return nil
	}

	items, err := t.itemRepo.GetItemsForExtraction(t.PluginID, 20)
	if err != nil {
		return fmt.Errorf("failed to get items for content extraction: %w", err)
	}

	if len(items) == 0 {
		slog.Debug("No items need content extraction", "plugin", t.PluginID)
		return nil
	}

	successCount := 0
	errorCount := 0

	for _, item := range items {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := t.extractSummary(ctx, item); err != nil {
			slog.Error("Failed to extract content for item", "item_id", item.ID, "url", item.URL, "error", err)
			errorCount++

			now := time.Now().UTC()
			if err := t.itemRepo.UpdateExtractedSummary(item.ID, "", "failed", &now); err != nil {
				slog.Error("Failed to update content extraction status", "item_id", item.ID, "error", err)
			}
		} else {
			successCount++
		}
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"plugin", t.PluginID,
		"duration", t.GetDuration(),
		"success", successCount,
		"errors", errorCount)

	return nil
}

func (t *ExtractContentTask) extractSummary(ctx context.Context, item database.ItemForExtraction) error {
	if item.URL == "" {
		return fmt.Errorf("item has no url")
	}

	data, err := t.fetchArticle(ctx, item.URL)
	if err != nil {
		return fmt.Errorf("failed to fetch article: %w", err)
	}

	article, err := readability.FromReader(strings.NewReader(string(data)), nil)
	if err != nil {
		return fmt.Errorf("failed to extract content: %w", err)
	}

	summary := normalize.Truncate(normalize.StripMarkup(article.Content), normalize.SummaryLimit)
	if summary == "" {
		return fmt.Errorf("no content extracted from article")
	}

	now := time.Now().UTC()
	if err := t.itemRepo.UpdateExtractedSummary(item.ID, summary, "success", &now); err != nil {
		return fmt.Errorf("failed to update extracted summary: %w", err)
	}

	slog.Debug("Content extracted successfully", "item_id", item.ID, "url", item.URL, "summary_length", len(summary))
	return nil
}

func (t *ExtractContentTask) fetchArticle(ctx context.Context, url string) ([]byte, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		return nil, fmt.Errorf("content type is not HTML: %s", contentType)
	}

	return io.ReadAll(resp.Body)
}
