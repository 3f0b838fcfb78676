// internal/usage/usage_test.go
package usage

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"property-intel/internal/common/logger"
	"property-intel/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var insertUsage = regexp.QuoteMeta("INSERT INTO api_usage (id, user_id, query, query_type, created_at, metadata)")

func TestPostgresStore_Insert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	mock.ExpectExec(insertUsage).
		WithArgs("id-1", "42", "123 Main St, Austin, TX", "property_search", created, `{"outcome":"found"}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewPostgresStore(db)
	err = store.Insert(context.Background(), &models.UsageRecord{
		ID:        "id-1",
		UserID:    "42",
		Query:     "123 Main St, Austin, TX",
		QueryType: models.QueryTypePropertySearch,
		CreatedAt: created,
		Metadata:  map[string]interface{}{"outcome": "found"},
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListSince(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "user_id", "query", "query_type", "created_at", "metadata"}).
		AddRow("a", "42", "q1", "property_search", since.Add(time.Hour), []byte(`{"outcome":"found"}`)).
		AddRow("b", "42", "q2", "connection_test", since.Add(48*time.Hour), []byte(`{}`))
	mock.ExpectQuery(regexp.QuoteMeta("FROM api_usage")).
		WithArgs("42", since).
		WillReturnRows(rows)

	records, err := NewPostgresStore(db).ListSince(context.Background(), "42", since)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, models.QueryTypeConnectionTest, records[1].QueryType)
	assert.Equal(t, "found", records[0].Metadata["outcome"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Count(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM api_usage")).
		WithArgs("42").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(57))

	n, err := NewPostgresStore(db).Count(context.Background(), "42")

	require.NoError(t, err)
	assert.Equal(t, 57, n)
}

func TestRecorder_Record(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	fixed := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	mock.ExpectExec(insertUsage).
		WithArgs(sqlmock.AnyArg(), "42", "123 Main St, Austin, TX", "property_search", fixed, `{}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	recorder := NewRecorder(NewPostgresStore(db), logger.NewTestLogger(t))
	recorder.now = func() time.Time { return fixed }

	recorder.Record(context.Background(), "42", "123 Main St, Austin, TX", "", nil)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecorder_FailureOnlyWarns(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(insertUsage).WillReturnError(errors.New("connection refused"))

	core, logs := observer.New(zapcore.WarnLevel)
	recorder := NewRecorder(NewPostgresStore(db), logger.NewZapAdapter(zap.New(core)))

	assert.NotPanics(t, func() {
		recorder.Record(context.Background(), "42", "q", models.QueryTypePropertySearch, nil)
	})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Failed to log usage", entry.Message)
	assert.Contains(t, entry.ContextMap()["error"], "connection refused")
}
