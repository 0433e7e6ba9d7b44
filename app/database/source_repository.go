package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type SourceRepositoryImpl struct {
	db *DB
}

var _ SourceRepository = (*SourceRepositoryImpl)(nil)

func NewSourceRepository(db *DB) *SourceRepositoryImpl {
	return &SourceRepositoryImpl{db: db}
}

func (r *SourceRepositoryImpl) UpsertSource(pluginID, name, url, kind string) error {
	_, err := r.db.Exec(`
		INSERT INTO sources (id, plugin_id, name, url, kind)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (plugin_id) DO UPDATE SET
			name = excluded.name,
			url = excluded.url,
			kind = excluded.kind,
			updated_at = CURRENT_TIMESTAMP
	`, uuid.New().String(), pluginID, name, url, kind)
	if err != nil {
		return fmt.Errorf("failed to upsert source: %w", err)
	}
	return nil
}

func (r *SourceRepositoryImpl) GetSource(pluginID string) (*Source, error) {
	var source Source
	err := r.db.QueryRow(`
		SELECT id, plugin_id, name, url, kind,
		       last_fetched_at, next_fetch_at, created_at, updated_at
		FROM sources
		WHERE plugin_id = ?
	`, pluginID).Scan(
		&source.ID, &source.PluginID, &source.Name, &source.URL, &source.Kind,
		&source.LastFetchedAt, &source.NextFetchAt, &source.CreatedAt, &source.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get source: %w", err)
	}
	return &source, nil
}

func (r *SourceRepositoryImpl) GetSourceCount() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM sources`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sources: %w", err)
	}
	return count, nil
}

func (r *SourceRepositoryImpl) UpdateFetchStatus(pluginID string, lastFetched, nextFetch time.Time) error {
	_, err := r.db.Exec(`
		UPDATE sources
		SET last_fetched_at = ?, next_fetch_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE plugin_id = ?
	`, lastFetched.UTC(), nextFetch.UTC(), pluginID)
	if err != nil {
		return fmt.Errorf("failed to update fetch status: %w", err)
	}
	return nil
}
