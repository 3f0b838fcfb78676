// internal/quota/tracker.go
package quota

import (
	"context"
	"sync"
	"time"

	"property-intel/internal/common/errors"
	"property-intel/internal/common/logger"
	"property-intel/internal/common/metrics"
	"property-intel/internal/models"
	"property-intel/internal/usage"
)

// DefaultMonthlyLimit applies to every user.
const DefaultMonthlyLimit = 30

// Tracker derives a user's quota state from the usage store. The check and
// the later usage write are not atomic: concurrent searches near the limit
// can both pass, so the monthly count may overshoot slightly.
type Tracker struct {
	store     usage.Store
	limit     int
	logger    logger.Logger
	now       func() time.Time
	notifiers []Notifier

	mu       sync.Mutex
	notified map[string]time.Time
}

// Notifier is told when a user first hits the monthly limit.
type Notifier interface {
	QuotaExhausted(ctx context.Context, state *models.QuotaState) error
}

func NewTracker(store usage.Store, limit int, log logger.Logger) *Tracker {
	return &Tracker{
		store:  store,
		limit:  limit,
		logger: log.WithFields(map[string]interface{}{"component": "quota-tracker"}),
		now:    time.Now,

		notified: make(map[string]time.Time),
	}
}

// AddNotifier registers n for quota-exhausted alerts. Each user is alerted at
// most once per period by a given tracker.
func (t *Tracker) AddNotifier(n Notifier) {
	t.notifiers = append(t.notifiers, n)
}

// MonthStart is the first instant of t's calendar month in UTC.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// CheckAndReport computes the user's quota state for the current month.
func (t *Tracker) CheckAndReport(ctx context.Context, userID string) (*models.QuotaState, error) {
	start := MonthStart(t.now())

	records, err := t.store.ListSince(ctx, userID, start)
	if err != nil {
		return nil, errors.NewStoreFailureError("list monthly usage", err)
	}
	lifetime, err := t.store.Count(ctx, userID)
	if err != nil {
		return nil, errors.NewStoreFailureError("count lifetime usage", err)
	}

	state := &models.QuotaState{
		UserID:            userID,
		CurrentMonthCount: len(records),
		LifetimeCount:     lifetime,
		Limit:             t.limit,
		ByType:            make(map[models.QueryType]int),
		DailyCounts:       make(map[string]int),
		PeriodStart:       start,
	}
	for _, rec := range records {
		qt := rec.QueryType
		if qt == "" {
			qt = models.QueryTypePropertySearch
		}
		state.ByType[qt]++
		state.DailyCounts[rec.CreatedAt.UTC().Format("2006-01-02")]++
	}
	return state, nil
}

// Allow returns the current state, or a QuotaExceeded error when another
// provider call would exceed the monthly limit. Store failures block the
// call since spent quota cannot be refunded.
func (t *Tracker) Allow(ctx context.Context, userID string) (*models.QuotaState, error) {
	state, err := t.CheckAndReport(ctx, userID)
	if err != nil {
		t.logger.Error("Quota check failed", map[string]interface{}{
			"userId": userID,
			"error":  err,
		})
		return nil, err
	}

	if !state.Allowed() {
		metrics.QuotaDenials.Inc()
		t.logger.Info("Monthly quota reached", map[string]interface{}{
			"userId": userID,
			"used":   state.CurrentMonthCount,
			"limit":  state.Limit,
		})
		t.notify(ctx, state)
		return state, errors.NewQuotaExceededError(state.CurrentMonthCount, state.Limit)
	}
	return state, nil
}

func (t *Tracker) notify(ctx context.Context, state *models.QuotaState) {
	if len(t.notifiers) == 0 {
		return
	}

	t.mu.Lock()
	if last, ok := t.notified[state.UserID]; ok && last.Equal(state.PeriodStart) {
		t.mu.Unlock()
		return
	}
	t.notified[state.UserID] = state.PeriodStart
	t.mu.Unlock()

	for _, n := range t.notifiers {
		if err := n.QuotaExhausted(ctx, state); err != nil {
			t.logger.Warn("Quota alert failed", map[string]interface{}{
				"userId": state.UserID,
				"error":  err.Error(),
			})
		}
	}
}
