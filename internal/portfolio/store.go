// internal/portfolio/store.go
package portfolio

import (
	"context"
	"crypto/md5"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"property-intel/internal/common/errors"
	"property-intel/internal/common/logger"
	"property-intel/internal/common/validation"
	"property-intel/internal/models"
)

// SavedProperty is a record a user chose to keep, one per (user, hash).
type SavedProperty struct {
	ID           int64                  `json:"id"`
	UserID       string                 `json:"userId"`
	PropertyHash string                 `json:"propertyHash"`
	Record       *models.PropertyRecord `json:"data"`
	SearchParams map[string]string      `json:"searchParams,omitempty"`
	CreatedAt    time.Time              `json:"createdAt"`
	UpdatedAt    time.Time              `json:"updatedAt"`
}

// PropertyHash identifies a property within a user's saved set.
func PropertyHash(address, city, state string) string {
	sum := md5.Sum([]byte(address + city + state))
	return hex.EncodeToString(sum[:])
}

type PostgresStore struct {
	db     *sql.DB
	logger logger.Logger
	now    func() time.Time
}

func NewPostgresStore(db *sql.DB, log logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "portfolio-store"}),
		now:    time.Now,
	}
}

// Save upserts record for userID. created is false when an existing entry
// was replaced.
func (s *PostgresStore) Save(ctx context.Context, userID string, record *models.PropertyRecord) (id int64, created bool, err error) {
	if record == nil {
		return 0, false, errors.NewValidationError("record is required")
	}
	result, err := validation.Validate(validation.SavePropertySchema, map[string]interface{}{
		"userId":  userID,
		"address": record.Address,
		"city":    record.City,
		"state":   record.State,
	})
	if err != nil {
		return 0, false, err
	}
	if !result.Valid {
		return 0, false, errors.NewValidationError(result.Error())
	}

	data, err := json.Marshal(record)
	if err != nil {
		return 0, false, fmt.Errorf("encode property: %w", err)
	}
	params, err := json.Marshal(nonNil(record.SearchParams))
	if err != nil {
		return 0, false, fmt.Errorf("encode search params: %w", err)
	}

	hash := PropertyHash(record.Address, record.City, record.State)
	now := s.now().UTC()

	query := `
		INSERT INTO properties (user_id, property_hash, data, search_params, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (user_id, property_hash) DO UPDATE
		SET data = EXCLUDED.data, search_params = EXCLUDED.search_params, updated_at = EXCLUDED.updated_at
		RETURNING id, (xmax = 0) AS inserted
	`
	if err := s.db.QueryRowContext(ctx, query, userID, hash, string(data), string(params), now).Scan(&id, &created); err != nil {
		return 0, false, errors.NewStoreFailureError("save property", err)
	}

	s.logger.Info("Property saved", map[string]interface{}{
		"userId":  userID,
		"id":      id,
		"created": created,
	})
	return id, created, nil
}

// List returns the user's saved properties, most recently updated first.
func (s *PostgresStore) List(ctx context.Context, userID string) ([]SavedProperty, error) {
	query := `
		SELECT id, user_id, property_hash, data, search_params, created_at, updated_at
		FROM properties
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, errors.NewStoreFailureError("list properties", err)
	}
	defer rows.Close()

	var out []SavedProperty
	for rows.Next() {
		var (
			p          SavedProperty
			data       []byte
			paramsJSON []byte
		)
		if err := rows.Scan(&p.ID, &p.UserID, &p.PropertyHash, &data, &paramsJSON, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, errors.NewStoreFailureError("scan property", err)
		}
		p.Record = &models.PropertyRecord{}
		if err := json.Unmarshal(data, p.Record); err != nil {
			s.logger.Warn("Skipping undecodable saved property", map[string]interface{}{
				"id":    p.ID,
				"error": err,
			})
			continue
		}
		if len(paramsJSON) > 0 {
			if err := json.Unmarshal(paramsJSON, &p.SearchParams); err != nil {
				p.SearchParams = nil
			}
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreFailureError("iterate properties", err)
	}
	return out, nil
}

// Delete removes one saved property owned by userID. It reports false when
// no such property exists for that user.
func (s *PostgresStore) Delete(ctx context.Context, userID string, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM properties WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, errors.NewStoreFailureError("delete property", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.NewStoreFailureError("delete property", err)
	}
	return n > 0, nil
}

func nonNil(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
