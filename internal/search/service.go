// internal/search/service.go
package search

import (
	"context"
	"strings"
	"time"

	"property-intel/internal/analysis"
	"property-intel/internal/common/errors"
	"property-intel/internal/common/logger"
	"property-intel/internal/common/observability"
	"property-intel/internal/common/validation"
	"property-intel/internal/models"
	"property-intel/internal/property/fetch"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

type Fetcher interface {
	Fetch(ctx context.Context, address, city, state string) fetch.Result
}

type QuotaChecker interface {
	Allow(ctx context.Context, userID string) (*models.QuotaState, error)
}

type UsageRecorder interface {
	Record(ctx context.Context, userID, query string, queryType models.QueryType, metadata map[string]interface{})
}

// Service runs one search as a single synchronous flow:
// validate, check quota, fetch, analyze, record usage.
type Service struct {
	fetcher Fetcher
	quota   QuotaChecker
	usage   UsageRecorder
	obs     *observability.Observability
	logger  logger.Logger
	now     func() time.Time
}

func NewService(fetcher Fetcher, quota QuotaChecker, usage UsageRecorder, obs *observability.Observability, log logger.Logger) *Service {
	if obs == nil {
		obs = observability.NewNoop("property-intel")
	}
	return &Service{
		fetcher: fetcher,
		quota:   quota,
		usage:   usage,
		obs:     obs,
		logger:  log.WithFields(map[string]interface{}{"component": "search"}),
		now:     time.Now,
	}
}

// Search returns an error for quota denial, invalid input and provider
// failures. NotFound is a normal response with Found=false.
func (s *Service) Search(ctx context.Context, req Request) (resp *Response, err error) {
	start := time.Now()
	requestID := uuid.NewString()

	ctx, span := s.obs.StartSpan(ctx, "search.property",
		attribute.String("request.id", requestID),
		attribute.String("user.id", req.UserID),
	)
	outcome := "error"
	defer func() {
		observability.EndSpan(span, err)
		s.obs.RecordSearch(ctx, outcome)
		s.obs.RecordSearchDuration(ctx, time.Since(start), outcome)
	}()

	if err := s.validate(req); err != nil {
		outcome = "invalid"
		return nil, err
	}

	state, err := s.quota.Allow(ctx, req.UserID)
	if err != nil {
		outcome = strings.ToLower(string(errors.CodeOf(err)))
		return nil, err
	}

	result := s.fetcher.Fetch(ctx, req.Address, req.City, req.State)
	outcome = result.Outcome.String()
	span.SetAttributes(
		attribute.String("fetch.outcome", outcome),
		attribute.Bool("fetch.cache_hit", result.CacheHit),
		attribute.Int("fetch.attempts", result.Attempts),
	)

	s.usage.Record(ctx, req.UserID, req.Query(), models.QueryTypePropertySearch, usageMetadata(req, requestID, result))

	switch result.Outcome {
	case fetch.OutcomeFound:
		a := analysis.Analyze(result.Record, s.now())
		s.logger.Info("Property search completed", map[string]interface{}{
			"requestId": requestID,
			"userId":    req.UserID,
			"cacheHit":  result.CacheHit,
			"grade":     a.InvestmentScore.Grade,
		})
		return &Response{
			RequestID: requestID,
			Outcome:   result.Outcome,
			Found:     true,
			CacheHit:  result.CacheHit,
			Record:    result.Record,
			Analysis:  &a,
			Quota:     state,
		}, nil
	case fetch.OutcomeNotFound:
		return &Response{
			RequestID: requestID,
			Outcome:   result.Outcome,
			Quota:     state,
		}, nil
	default:
		s.logger.Error("Property search failed", map[string]interface{}{
			"requestId": requestID,
			"userId":    req.UserID,
			"outcome":   outcome,
			"category":  errors.GetErrorCategory(errors.CodeOf(result.Err)),
			"error":     result.Err,
		})
		return nil, result.Err
	}
}

func (s *Service) validate(req Request) error {
	result, err := validation.Validate(validation.SearchRequestSchema, map[string]interface{}{
		"userId":  req.UserID,
		"address": req.Address,
		"city":    req.City,
		"state":   req.State,
	})
	if err != nil {
		return err
	}
	if !result.Valid {
		return errors.NewValidationError(result.Error())
	}
	return nil
}

func usageMetadata(req Request, requestID string, result fetch.Result) map[string]interface{} {
	meta := map[string]interface{}{
		"address":    req.Address,
		"city":       req.City,
		"state":      req.State,
		"request_id": requestID,
		"outcome":    result.Outcome.String(),
		"cache_hit":  result.CacheHit,
		"attempts":   result.Attempts,
	}
	if result.Err != nil {
		meta["error_code"] = string(errors.CodeOf(result.Err))
	}
	return meta
}
