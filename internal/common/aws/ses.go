// internal/common/aws/ses.go
package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"property-intel/internal/models"
)

type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESNotifier emails quota alerts to a fixed list of operators.
type SESNotifier struct {
	client sesAPI
	from   string
	to     []string
	now    func() time.Time
}

func NewSESNotifier(ctx context.Context, region, from string, to []string) (*SESNotifier, error) {
	cfg, err := loadConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return newSESNotifier(ses.NewFromConfig(cfg), from, to), nil
}

func newSESNotifier(client sesAPI, from string, to []string) *SESNotifier {
	return &SESNotifier{client: client, from: from, to: to, now: time.Now}
}

func (n *SESNotifier) QuotaExhausted(ctx context.Context, state *models.QuotaState) error {
	alert := newQuotaAlert(state, n.now())

	_, err := n.client.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(n.from),
		Destination: &types.Destination{ToAddresses: n.to},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(alert.subject()), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(alert.text()), Charset: aws.String("UTF-8")},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send failed: %w", err)
	}
	return nil
}
