// internal/usage/recorder.go
package usage

import (
	"context"
	"time"

	"property-intel/internal/common/errors"
	"property-intel/internal/common/logger"
	"property-intel/internal/common/metrics"
	"property-intel/internal/models"

	"github.com/google/uuid"
)

// Recorder appends usage records. A failed write is logged and counted,
// never returned, so acquisition never depends on analytics.
type Recorder struct {
	store  Store
	logger logger.Logger
	now    func() time.Time
}

func NewRecorder(store Store, log logger.Logger) *Recorder {
	return &Recorder{
		store:  store,
		logger: log.WithFields(map[string]interface{}{"component": "usage-recorder"}),
		now:    time.Now,
	}
}

func (r *Recorder) Record(ctx context.Context, userID, query string, queryType models.QueryType, metadata map[string]interface{}) {
	if queryType == "" {
		queryType = models.QueryTypePropertySearch
	}

	record := &models.UsageRecord{
		ID:        uuid.NewString(),
		UserID:    userID,
		Query:     query,
		QueryType: queryType,
		CreatedAt: r.now().UTC(),
		Metadata:  metadata,
	}

	if err := r.store.Insert(ctx, record); err != nil {
		metrics.UsageLogFailures.Inc()
		r.logger.Warn("Failed to log usage", map[string]interface{}{
			"userId":    userID,
			"queryType": string(queryType),
			"error":     errors.NewLoggingFailureError(err),
		})
		return
	}

	r.logger.Debug("Usage recorded", map[string]interface{}{
		"userId":    userID,
		"queryType": string(queryType),
		"id":        record.ID,
	})
}
