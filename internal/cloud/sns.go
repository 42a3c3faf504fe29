package cloud

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// SNSClient wraps AWS SNS for report and store-health notifications.
type SNSClient struct {
	svc      *sns.Client
	topicArn string
	ctx      context.Context
}

// NewSNSClient creates a new SNS client instance.
func NewSNSClient(region, topicArn string) (*SNSClient, error) {
	ctx := context.Background()

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	return &SNSClient{
		svc:      sns.NewFromConfig(cfg),
		topicArn: topicArn,
		ctx:      ctx,
	}, nil
}

// SendAlert publishes a message to the configured topic.
func (c *SNSClient) SendAlert(subject, message string) error {
	input := &sns.PublishInput{
		TopicArn: aws.String(c.topicArn),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	}

	if _, err := c.svc.Publish(c.ctx, input); err != nil {
		return fmt.Errorf("failed to publish to SNS: %w", err)
	}
	return nil
}

// SendReportComplete notifies subscribers that a report finished,
// including how many store rows were degraded by bad inputs.
func (c *SNSClient) SendReportComplete(reportID string, stores, degraded int) error {
	subject := "Store Uptime Report Ready"
	message := fmt.Sprintf(
		"Report Generation Complete\n\n"+
			"Report ID: %s\n"+
			"Stores: %d\n"+
			"Degraded rows: %d\n"+
			"Finished: %s\n",
		reportID,
		stores,
		degraded,
		time.Now().Format(time.RFC3339),
	)

	return c.SendAlert(subject, message)
}

// SendStoreDownAlert flags a store whose latest reading switched to
// inactive.
func (c *SNSClient) SendStoreDownAlert(storeID string, since time.Time) error {
	subject := fmt.Sprintf("Store Down: %s", storeID)
	message := fmt.Sprintf(
		"Store Inactivity Alert\n\n"+
			"Store: %s\n"+
			"Inactive since: %s\n\n"+
			"Please investigate.",
		storeID,
		since.Format(time.RFC3339),
	)

	return c.SendAlert(subject, message)
}
