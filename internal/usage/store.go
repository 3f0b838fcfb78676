// internal/usage/store.go
package usage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"property-intel/internal/models"
)

// Store is the append-only usage collection.
type Store interface {
	Insert(ctx context.Context, record *models.UsageRecord) error
	ListSince(ctx context.Context, userID string, since time.Time) ([]models.UsageRecord, error)
	Count(ctx context.Context, userID string) (int, error)
}

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, record *models.UsageRecord) error {
	metadata := record.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("encode usage metadata: %w", err)
	}

	query := `
		INSERT INTO api_usage (id, user_id, query, query_type, created_at, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.db.ExecContext(ctx, query,
		record.ID, record.UserID, record.Query, string(record.QueryType), record.CreatedAt.UTC(), string(metaJSON),
	)
	if err != nil {
		return fmt.Errorf("insert usage record: %w", err)
	}
	return nil
}

// ListSince returns the user's records created at or after since, oldest first.
func (s *PostgresStore) ListSince(ctx context.Context, userID string, since time.Time) ([]models.UsageRecord, error) {
	query := `
		SELECT id, user_id, query, query_type, created_at, metadata
		FROM api_usage
		WHERE user_id = $1 AND created_at >= $2
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query, userID, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("query usage records: %w", err)
	}
	defer rows.Close()

	var records []models.UsageRecord
	for rows.Next() {
		var (
			rec       models.UsageRecord
			queryType string
			metaJSON  []byte
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Query, &queryType, &rec.CreatedAt, &metaJSON); err != nil {
			return nil, fmt.Errorf("scan usage record: %w", err)
		}
		rec.QueryType = models.QueryType(queryType)
		rec.CreatedAt = rec.CreatedAt.UTC()
		if len(metaJSON) > 0 {
			if err := json.Unmarshal(metaJSON, &rec.Metadata); err != nil {
				return nil, fmt.Errorf("decode usage metadata: %w", err)
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate usage records: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) Count(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM api_usage WHERE user_id = $1`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count usage records: %w", err)
	}
	return n, nil
}
