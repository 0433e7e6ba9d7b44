package database

import (
	"time"

	"github.com/osinthq/intake/app/normalize"
)

type SourceRepository interface {
	GetSource(pluginID string) (*Source, error)
	GetSourceCount() (int, error)

	UpsertSource(pluginID, name, url, kind string) error
	UpdateFetchStatus(pluginID string, lastFetched, nextFetch time.Time) error
}

// ItemFilter narrows GetItems; zero values mean no constraint.
type ItemFilter struct {
	PluginID string
	Category string
	Priority string
	Tag      string
	Limit    int
}

type ItemForExtraction struct {
	ID  string
	URL string
}

type ItemRepository interface {
	GetItems(filter ItemFilter) ([]Item, error)
	GetItemCount() (int, error)
	GetPriorityCounts() (map[string]int, error)
	GetCategoryCounts() (map[string]int, error)

	UpsertItem(pluginID string, item normalize.Item) error
	CheckDuplicate(contentHash string) (bool, *string, error)

	GetItemsForExtraction(pluginID string, limit int) ([]ItemForExtraction, error)
	UpdateExtractedSummary(itemID string, summary string, status string, extractedAt *time.Time) error
}
