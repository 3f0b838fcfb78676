// internal/common/aws/sns.go
package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"property-intel/internal/models"
)

type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSNotifier publishes quota alerts as JSON messages to a topic.
type SNSNotifier struct {
	client   snsAPI
	topicARN string
	now      func() time.Time
}

func NewSNSNotifier(ctx context.Context, region, topicARN string) (*SNSNotifier, error) {
	cfg, err := loadConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return newSNSNotifier(sns.NewFromConfig(cfg), topicARN), nil
}

func newSNSNotifier(client snsAPI, topicARN string) *SNSNotifier {
	return &SNSNotifier{client: client, topicARN: topicARN, now: time.Now}
}

func (n *SNSNotifier) QuotaExhausted(ctx context.Context, state *models.QuotaState) error {
	alert := newQuotaAlert(state, n.now())
	body, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to encode quota alert: %w", err)
	}

	_, err = n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Subject:  aws.String(alert.subject()),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event_type": {
				DataType:    aws.String("String"),
				StringValue: aws.String(alert.Event),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish failed: %w", err)
	}
	return nil
}
