package database

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/osinthq/intake/app/normalize"
)

type ItemRepositoryImpl struct {
	db *DB
}

var _ ItemRepository = (*ItemRepositoryImpl)(nil)

func NewItemRepository(db *DB) *ItemRepositoryImpl {
	return &ItemRepositoryImpl{db: db}
}

// ContentHash derives the deduplication key from title and URL only,
// so a record is not re-stored when just its summary changes.
func ContentHash(item normalize.Item) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s|%s", item.Title, item.URL)))
	return hex.EncodeToString(hash[:])
}

func (r *ItemRepositoryImpl) UpsertItem(pluginID string, item normalize.Item) error {
	tags, err := json.Marshal(item.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	// The raw upstream entry is kept in memory for pipeline
	// debugging but not persisted.
	metadata := make(map[string]any, len(item.Metadata))
	for k, v := range item.Metadata {
		if k == "raw" {
			continue
		}
		metadata[k] = v
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO items (
			id, plugin_id, record_id, title, summary, url, published_at,
			source, category, tags, priority, trust_rating,
			verification_status, data_quality, metadata, content_hash,
			content_extraction_status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'pending')
		ON CONFLICT (plugin_id, record_id) DO UPDATE SET
			title = excluded.title,
			summary = excluded.summary,
			url = excluded.url,
			source = excluded.source,
			tags = excluded.tags,
			priority = excluded.priority,
			metadata = excluded.metadata,
			content_hash = excluded.content_hash
	`, uuid.New().String(), pluginID, item.ID, item.Title, item.Summary,
		item.URL, item.PublishedAt.UTC(), item.Source, item.Category,
		string(tags), string(item.Priority), item.TrustRating,
		string(item.VerificationStatus), item.DataQuality,
		string(metadataJSON), ContentHash(item))

	if err != nil {
		return fmt.Errorf("failed to store item: %w", err)
	}

	return nil
}

func (r *ItemRepositoryImpl) CheckDuplicate(contentHash string) (bool, *string, error) {
	var duplicateID sql.NullString

	err := r.db.QueryRow(`SELECT id FROM items WHERE content_hash = ? LIMIT 1`, contentHash).Scan(&duplicateID)
	if err == sql.ErrNoRows {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, fmt.Errorf("failed to check duplicate: %w", err)
	}

	id := duplicateID.String
	return true, &id, nil
}

func (r *ItemRepositoryImpl) GetItems(filter ItemFilter) ([]Item, error) {
	query := `
		SELECT id, plugin_id, record_id, title, summary, url, published_at,
		       source, category, tags, priority, trust_rating,
		       verification_status, data_quality, metadata, content_hash,
		       created_at, content_extracted_at, content_extraction_status
		FROM items
		WHERE 1=1`
	var args []any

	if filter.PluginID != "" {
		query += " AND plugin_id = ?"
		args = append(args, filter.PluginID)
	}
	if filter.Category != "" {
		query += " AND category = ?"
		args = append(args, filter.Category)
	}
	if filter.Priority != "" {
		query += " AND priority = ?"
		args = append(args, filter.Priority)
	}
	if filter.Tag != "" {
		// Tags are a JSON array of lower-cased strings.
		query += ` AND tags LIKE '%"' || ? || '"%'`
		args = append(args, filter.Tag)
	}

	query += " ORDER BY published_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows: %w", err)
	}

	return items, nil
}

func scanItem(rows *sql.Rows) (Item, error) {
	var item Item
	var tags, metadata string

	err := rows.Scan(
		&item.ID, &item.PluginID, &item.RecordID, &item.Title, &item.Summary,
		&item.URL, &item.PublishedAt, &item.Source, &item.Category,
		&tags, &item.Priority, &item.TrustRating,
		&item.VerificationStatus, &item.DataQuality, &metadata,
		&item.ContentHash, &item.CreatedAt,
		&item.ContentExtractedAt, &item.ContentExtractionStatus,
	)
	if err != nil {
		return Item{}, fmt.Errorf("failed to scan item row: %w", err)
	}

	if err := json.Unmarshal([]byte(tags), &item.Tags); err != nil {
		item.Tags = nil
	}
	if err := json.Unmarshal([]byte(metadata), &item.Metadata); err != nil {
		item.Metadata = nil
	}

	return item, nil
}

func (r *ItemRepositoryImpl) GetItemCount() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}

func (r *ItemRepositoryImpl) GetPriorityCounts() (map[string]int, error) {
	return r.countBy("priority")
}

func (r *ItemRepositoryImpl) GetCategoryCounts() (map[string]int, error) {
	return r.countBy("category")
}

func (r *ItemRepositoryImpl) countBy(column string) (map[string]int, error) {
	rows, err := r.db.Query(fmt.Sprintf(`SELECT %s, COUNT(*) FROM items GROUP BY %s`, column, column))
	if err != nil {
		return nil, fmt.Errorf("failed to count by %s: %w", column, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count row: %w", err)
		}
		counts[key] = count
	}

	return counts, rows.Err()
}

func (r *ItemRepositoryImpl) GetItemsForExtraction(pluginID string, limit int) ([]ItemForExtraction, error) {
	rows, err := r.db.Query(`
		SELECT id, url FROM items
		WHERE plugin_id = ?
		  AND content_extraction_status = 'pending'
		  AND summary = ''
		ORDER BY published_at DESC
		LIMIT ?
	`, pluginID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get items for extraction: %w", err)
	}
	defer rows.Close()

	var items []ItemForExtraction
	for rows.Next() {
		var item ItemForExtraction
		if err := rows.Scan(&item.ID, &item.URL); err != nil {
			return nil, fmt.Errorf("failed to scan extraction row: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (r *ItemRepositoryImpl) UpdateExtractedSummary(itemID string, summary string, status string, extractedAt *time.Time) error {
	_, err := r.db.Exec(`
		UPDATE items
		SET summary = CASE WHEN ? != '' THEN ? ELSE summary END,
		    content_extraction_status = ?,
		    content_extracted_at = ?
		WHERE id = ?
	`, summary, summary, status, extractedAt, itemID)
	if err != nil {
		return fmt.Errorf("failed to update extracted summary: %w", err)
	}
	return nil
}
