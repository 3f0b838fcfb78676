// internal/common/aws/alert.go
package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"property-intel/internal/models"
)

// QuotaAlert is the payload published when a user exhausts the monthly quota.
type QuotaAlert struct {
	Event       string    `json:"event"`
	UserID      string    `json:"userId"`
	Used        int       `json:"used"`
	Limit       int       `json:"limit"`
	PeriodStart time.Time `json:"periodStart"`
	RaisedAt    time.Time `json:"raisedAt"`
}

const quotaExhaustedEvent = "quota_exhausted"

func newQuotaAlert(state *models.QuotaState, now time.Time) QuotaAlert {
	return QuotaAlert{
		Event:       quotaExhaustedEvent,
		UserID:      state.UserID,
		Used:        state.CurrentMonthCount,
		Limit:       state.Limit,
		PeriodStart: state.PeriodStart,
		RaisedAt:    now.UTC(),
	}
}

func (a QuotaAlert) subject() string {
	return fmt.Sprintf("Monthly property lookup quota reached for user %s", a.UserID)
}

func (a QuotaAlert) text() string {
	return fmt.Sprintf(
		"User %s has used %d of %d property lookups for the period starting %s.\nFurther searches are blocked until the next month.",
		a.UserID, a.Used, a.Limit, a.PeriodStart.Format("2006-01-02"),
	)
}

func loadConfig(ctx context.Context, region string) (aws.Config, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}
