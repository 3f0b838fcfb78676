// internal/common/aws/aws_test.go
package aws

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-intel/internal/models"
)

type fakeSNS struct {
	input *sns.PublishInput
	err   error
}

func (f *fakeSNS) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{}, nil
}

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{}, nil
}

var (
	fixedNow  = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	testState = &models.QuotaState{
		UserID:            "user-7",
		CurrentMonthCount: 30,
		Limit:             30,
		PeriodStart:       time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
)

func TestSNSNotifier_QuotaExhausted(t *testing.T) {
	client := &fakeSNS{}
	n := newSNSNotifier(client, "arn:aws:sns:us-east-1:123456789012:quota")
	n.now = func() time.Time { return fixedNow }

	require.NoError(t, n.QuotaExhausted(context.Background(), testState))

	require.NotNil(t, client.input)
	assert.Equal(t, "arn:aws:sns:us-east-1:123456789012:quota", *client.input.TopicArn)
	assert.Equal(t, "quota_exhausted", *client.input.MessageAttributes["event_type"].StringValue)

	var alert QuotaAlert
	require.NoError(t, json.Unmarshal([]byte(*client.input.Message), &alert))
	assert.Equal(t, "user-7", alert.UserID)
	assert.Equal(t, 30, alert.Used)
	assert.Equal(t, 30, alert.Limit)
	assert.True(t, alert.RaisedAt.Equal(fixedNow))
}

func TestSNSNotifier_PublishError(t *testing.T) {
	n := newSNSNotifier(&fakeSNS{err: errors.New("throttled")}, "arn")

	err := n.QuotaExhausted(context.Background(), testState)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}

func TestSESNotifier_QuotaExhausted(t *testing.T) {
	client := &fakeSES{}
	n := newSESNotifier(client, "alerts@example.com", []string{"ops@example.com"})
	n.now = func() time.Time { return fixedNow }

	require.NoError(t, n.QuotaExhausted(context.Background(), testState))

	require.NotNil(t, client.input)
	assert.Equal(t, "alerts@example.com", *client.input.Source)
	assert.Equal(t, []string{"ops@example.com"}, client.input.Destination.ToAddresses)
	assert.Contains(t, *client.input.Message.Subject.Data, "user-7")
	assert.Contains(t, *client.input.Message.Body.Text.Data, "30 of 30")
	assert.Contains(t, *client.input.Message.Body.Text.Data, "2026-03-01")
}

func TestSESNotifier_SendError(t *testing.T) {
	n := newSESNotifier(&fakeSES{err: errors.New("message rejected")}, "a@example.com", []string{"b@example.com"})

	err := n.QuotaExhausted(context.Background(), testState)

	assert.ErrorContains(t, err, "message rejected")
}
