package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/osinthq/intake/app/database"
	"github.com/osinthq/intake/app/registry"
	"github.com/osinthq/intake/app/sources"
)

// ProcessSourceTask fetches one upstream, feeds its payload through
// the normalization pipeline and stores the resulting records.
type ProcessSourceTask struct {
	Task
	Upstream   sources.Upstream
	httpClient *http.Client
	registry   *registry.Registry
	sourceRepo database.SourceRepository
	itemRepo   database.ItemRepository
	userAgent  string
}

func NewProcessSourceTask(upstream sources.Upstream, httpClient *http.Client, reg *registry.Registry,
	sourceRepo database.SourceRepository, itemRepo database.ItemRepository, userAgent string) *ProcessSourceTask {
	return &ProcessSourceTask{
		Task:       NewTask(TaskTypeProcessSource, upstream.PluginID),
		Upstream:   upstream,
		httpClient: httpClient,
		registry:   reg,
		sourceRepo: sourceRepo,
		itemRepo:   itemRepo,
		userAgent:  userAgent,
	}
}

func (t *ProcessSourceTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	data, err := t.fetch(ctx, t.Upstream.URL)
	if err != nil {
		return fmt.Errorf("failed to fetch source: %w", err)
	}

	payload := t.wrapPayload(data)

	items, warnings, ok := t.registry.Run(t.Upstream.PluginID, payload)
	if !ok {
		return fmt.Errorf("plugin %s not registered", t.Upstream.PluginID)
	}
	for _, warning := range warnings {
		slog.Warn("Payload validation warning", "plugin", t.Upstream.PluginID, "warning", warning)
	}

	stored := 0
	duplicates := 0
	for _, item := range items {
		isDuplicate, _, err := t.itemRepo.CheckDuplicate(database.ContentHash(item))
		if err != nil {
			slog.Warn("Duplicate check failed", "plugin", t.Upstream.PluginID, "error", err)
		}
		if isDuplicate {
			duplicates++
		}

		if err := t.itemRepo.UpsertItem(t.Upstream.PluginID, item); err != nil {
			slog.Error("Failed to store item", "plugin", t.Upstream.PluginID, "record", item.ID, "error", err)
			continue
		}
		stored++
	}

	now := time.Now().UTC()
	nextFetch := now.Add(time.Duration(t.Upstream.RefreshInterval) * time.Second)
	if err := t.sourceRepo.UpdateFetchStatus(t.Upstream.PluginID, now, nextFetch); err != nil {
		slog.Error("Failed to update fetch status", "plugin", t.Upstream.PluginID, "error", err)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"plugin", t.Upstream.PluginID,
		"duration", t.GetDuration(),
		"normalized", len(items),
		"stored", stored,
		"duplicates", duplicates)

	return nil
}

// wrapPayload shapes the response body the way the pipeline expects:
// JSON upstreams are decoded as-is; feed and HTML upstreams are
// carried in a proxy envelope holding the raw text.
func (t *ProcessSourceTask) wrapPayload(data []byte) any {
	switch t.Upstream.Kind {
	case "json":
		var payload any
		if err := json.Unmarshal(data, &payload); err != nil {
			slog.Warn("Upstream returned invalid JSON", "plugin", t.Upstream.PluginID, "error", err)
			return nil
		}
		return payload
	default:
		return map[string]any{"contents": string(data)}
	}
}

func (t *ProcessSourceTask) fetch(ctx context.Context, url string) ([]byte, error) {
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

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
