// internal/quota/tracker_test.go
package quota

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	commonerrors "property-intel/internal/common/errors"
	"property-intel/internal/common/logger"
	"property-intel/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type memoryStore struct {
	mu      sync.Mutex
	records []models.UsageRecord
	listErr error
}

func (m *memoryStore) Insert(_ context.Context, rec *models.UsageRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, *rec)
	return nil
}

func (m *memoryStore) ListSince(_ context.Context, userID string, since time.Time) ([]models.UsageRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []models.UsageRecord
	for _, r := range m.records {
		if r.UserID == userID && !r.CreatedAt.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryStore) Count(_ context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.records {
		if r.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *memoryStore) add(userID string, qt models.QueryType, at time.Time) {
	m.records = append(m.records, models.UsageRecord{UserID: userID, QueryType: qt, CreatedAt: at})
}

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func createTestTracker(t *testing.T, store *memoryStore, limit int) *Tracker {
	tracker := NewTracker(store, limit, logger.NewTestLogger(t))
	tracker.now = func() time.Time { return testNow }
	return tracker
}

// ==========================
// Core Functionality Tests
// ==========================

func TestMonthStart(t *testing.T) {
	local := time.FixedZone("UTC-5", -5*3600)
	// 2026-03-31 22:00 at UTC-5 is already April in UTC.
	got := MonthStart(time.Date(2026, 3, 31, 22, 0, 0, 0, local))
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestTracker_CheckAndReport(t *testing.T) {
	store := &memoryStore{}
	store.add("42", models.QueryTypePropertySearch, time.Date(2026, 2, 28, 23, 59, 59, 0, time.UTC))
	store.add("42", models.QueryTypePropertySearch, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	store.add("42", models.QueryTypePropertySearch, time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC))
	store.add("42", models.QueryTypeConnectionTest, time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC))
	store.add("7", models.QueryTypePropertySearch, time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC))

	state, err := createTestTracker(t, store, DefaultMonthlyLimit).CheckAndReport(context.Background(), "42")

	require.NoError(t, err)
	assert.Equal(t, 3, state.CurrentMonthCount)
	assert.Equal(t, 4, state.LifetimeCount)
	assert.Equal(t, 30, state.Limit)
	assert.Equal(t, map[models.QueryType]int{
		models.QueryTypePropertySearch: 2,
		models.QueryTypeConnectionTest: 1,
	}, state.ByType)
	assert.Equal(t, map[string]int{"2026-03-01": 2, "2026-03-10": 1}, state.DailyCounts)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), state.PeriodStart)
}

func TestTracker_Allow(t *testing.T) {
	tests := []struct {
		name     string
		used     int
		limit    int
		wantDeny bool
	}{
		{"below limit", 29, 30, false},
		{"at limit", 30, 30, true},
		{"over limit", 31, 30, true},
		{"zero limit", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memoryStore{}
			for i := 0; i < tt.used; i++ {
				store.add("42", models.QueryTypePropertySearch, testNow.Add(-time.Duration(i)*time.Minute))
			}

			state, err := createTestTracker(t, store, tt.limit).Allow(context.Background(), "42")

			if tt.wantDeny {
				require.Error(t, err)
				assert.True(t, errors.Is(err, commonerrors.ErrQuotaExceeded))
				require.NotNil(t, state)
				assert.Equal(t, 0, state.Remaining())
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.limit-tt.used, state.Remaining())
			}
		})
	}
}

func TestTracker_StoreFailureBlocks(t *testing.T) {
	store := &memoryStore{listErr: errors.New("connection refused")}

	state, err := createTestTracker(t, store, DefaultMonthlyLimit).Allow(context.Background(), "42")

	assert.Nil(t, state)
	assert.True(t, errors.Is(err, commonerrors.ErrStoreFailure))
	assert.True(t, commonerrors.IsRetryable(err))
}

type recordingNotifier struct {
	mu     sync.Mutex
	states []*models.QuotaState
	err    error
}

func (r *recordingNotifier) QuotaExhausted(_ context.Context, state *models.QuotaState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, state)
	return r.err
}

func TestTracker_NotifiesOncePerPeriod(t *testing.T) {
	store := &memoryStore{}
	for i := 0; i < 2; i++ {
		store.add("42", models.QueryTypePropertySearch, testNow)
	}
	tracker := createTestTracker(t, store, 2)
	notifier := &recordingNotifier{}
	tracker.AddNotifier(notifier)

	for i := 0; i < 3; i++ {
		_, err := tracker.Allow(context.Background(), "42")
		require.ErrorIs(t, err, commonerrors.ErrQuotaExceeded)
	}
	require.Len(t, notifier.states, 1)
	assert.Equal(t, "42", notifier.states[0].UserID)

	tracker.now = func() time.Time { return testNow.AddDate(0, 1, 0) }
	for i := 0; i < 2; i++ {
		store.add("42", models.QueryTypePropertySearch, testNow.AddDate(0, 1, 0))
	}
	_, err := tracker.Allow(context.Background(), "42")
	require.ErrorIs(t, err, commonerrors.ErrQuotaExceeded)
	assert.Len(t, notifier.states, 2)
}

func TestTracker_NotifierFailureStillDenies(t *testing.T) {
	store := &memoryStore{}
	store.add("42", models.QueryTypePropertySearch, testNow)
	tracker := createTestTracker(t, store, 1)
	tracker.AddNotifier(&recordingNotifier{err: errors.New("sns unavailable")})

	state, err := tracker.Allow(context.Background(), "42")

	assert.ErrorIs(t, err, commonerrors.ErrQuotaExceeded)
	require.NotNil(t, state)
	assert.Equal(t, 1, state.CurrentMonthCount)
}

func TestTracker_AllowedDoesNotNotify(t *testing.T) {
	tracker := createTestTracker(t, &memoryStore{}, 5)
	notifier := &recordingNotifier{}
	tracker.AddNotifier(notifier)

	_, err := tracker.Allow(context.Background(), "42")

	require.NoError(t, err)
	assert.Empty(t, notifier.states)
}
